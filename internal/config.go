package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Admin auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Comment storage backends.
const (
	CommentsBackendMemory   = "memory"
	CommentsBackendSQLite   = "sqlite"
	CommentsBackendPostgres = "postgres"
)

// View counter backends.
const (
	ViewsBackendMemory = "memory"
	ViewsBackendRedis  = "redis"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Comments CommentsConfig    `yaml:"comments"`
	Views    ViewsConfig       `yaml:"views"`
	Admin    AuthConfig        `yaml:"admin"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Comments.Validate(); err != nil {
		return fmt.Errorf("comments: %w", err)
	}
	if err := c.Views.Validate(); err != nil {
		return fmt.Errorf("views: %w", err)
	}
	return c.Admin.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the post documents and describes the site they
// are published on.
type ContentConfig struct {
	Dir       string     `yaml:"dir"`
	Extension string     `yaml:"extension"`
	Site      SiteConfig `yaml:"site"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Length(2, 16)),
		validation.Field(&c.Site),
	)
}

// SiteConfig is the public identity of the blog, used by the feed and
// sitemap.
type SiteConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

// Validate validates the site configuration.
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.URL, validation.Required, is.URL),
	)
}

// CommentsConfig selects and configures the comment store.
type CommentsConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
}

// Validate validates the comments configuration.
func (c *CommentsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(CommentsBackendMemory, CommentsBackendSQLite, CommentsBackendPostgres)),
		validation.Field(&c.SQLitePath, validation.When(c.Backend == CommentsBackendSQLite, validation.Required)),
		validation.Field(&c.PostgresDSN, validation.When(c.Backend == CommentsBackendPostgres, validation.Required)),
		validation.Field(&c.BcryptCost, validation.Min(4), validation.Max(31)),
	)
}

// ViewsConfig selects and configures the view counter.
type ViewsConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// Validate validates the views configuration.
func (c *ViewsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(ViewsBackendMemory, ViewsBackendRedis)),
		validation.Field(&c.Redis, validation.Skip.When(c.Backend != ViewsBackendRedis)),
	)
}

// RedisConfig holds the Redis connection used for view counters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Validate validates the Redis configuration.
func (c RedisConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration for the admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): admin routes are open, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("admin: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir:       "./posts",
			Extension: ".mdx",
			Site: SiteConfig{
				Name:     "Folio",
				URL:      "http://localhost:8080",
				Language: "ko",
			},
		},
		Comments: CommentsConfig{
			Backend:    CommentsBackendSQLite,
			SQLitePath: "./folio.db",
			BcryptCost: 10,
		},
		Views: ViewsConfig{
			Backend: ViewsBackendMemory,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Admin: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
