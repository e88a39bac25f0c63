// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/authoring"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/comments"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/views"
	"github.com/starford/folio/internal/watch"
)

// catalogThrottle bounds how often catalog.updated is sent while a batch of
// documents is being written.
const catalogThrottle = 2 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// services are the long-lived domain components shared by the HTTP and MCP
// front ends.
type services struct {
	store      *storage.FS
	catalog    *catalog.Catalog
	comments   *comments.Service
	views      views.Counter
	authoring  *authoring.Service
	closeViews func() error
}

func openServices(ctx context.Context, cfg *Config, logger *slog.Logger) (*services, error) {
	store, err := storage.NewFS(cfg.Content.Dir, cfg.Content.Extension)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	commentStore, err := openCommentStore(cfg.Comments)
	if err != nil {
		return nil, fmt.Errorf("init comments: %w", err)
	}

	svc := &services{
		store:      store,
		catalog:    catalog.New(store, logger),
		comments:   comments.NewService(commentStore, comments.NewBcryptHasher(cfg.Comments.BcryptCost)),
		authoring:  authoring.NewService(store),
		closeViews: func() error { return nil },
	}

	switch cfg.Views.Backend {
	case ViewsBackendRedis:
		r, err := views.DialRedis(ctx, cfg.Views.Redis.Addr, cfg.Views.Redis.Password, cfg.Views.Redis.DB)
		if err != nil {
			_ = svc.comments.Close()
			return nil, fmt.Errorf("init views: %w", err)
		}
		svc.views = r
		svc.closeViews = r.Close
	default:
		svc.views = views.NewMemory()
	}

	return svc, nil
}

func openCommentStore(cfg CommentsConfig) (comments.Store, error) {
	switch cfg.Backend {
	case CommentsBackendSQLite:
		return comments.OpenSQLite(cfg.SQLitePath)
	case CommentsBackendPostgres:
		return comments.OpenPostgres(cfg.PostgresDSN)
	default:
		return comments.NewMemoryStore(), nil
	}
}

func (s *services) Close(logger *slog.Logger) {
	if err := s.comments.Close(); err != nil {
		logger.Error("close comment store", slog.String("error", err.Error()))
	}
	if err := s.closeViews(); err != nil {
		logger.Error("close view counter", slog.String("error", err.Error()))
	}
}

// newHTTPHandler assembles the public router: health checks, the JSON API
// under /api, and the feed and sitemap at the site root.
func newHTTPHandler(cfg *Config, svc *services, broker *sse.Broker, logger *slog.Logger) http.Handler {
	var (
		sink   api.EventSink
		events http.Handler
	)
	if broker != nil {
		sink = broker
		events = broker
	}

	h := api.NewHandler(api.Deps{
		Catalog:   svc.catalog,
		Comments:  svc.comments,
		Views:     svc.views,
		Authoring: svc.authoring,
		Events:    sink,
		Site: api.SiteInfo{
			Name:        cfg.Content.Site.Name,
			URL:         cfg.Content.Site.URL,
			Description: cfg.Content.Site.Description,
			Language:    cfg.Content.Site.Language,
		},
		Logger: logger,
	})

	apiRouter := api.NewRouter(h, api.AdminAuth{
		Enabled: cfg.Admin.AuthEnabled(),
		Token:   cfg.Admin.Token,
	}, events)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.catalog.ListSlugs(req.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)
	r.Mount("/", api.NewSiteRouter(h))
	return r
}

// Run starts the HTTP server and the content watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("comments_backend", cfg.Comments.Backend),
		slog.String("views_backend", cfg.Views.Backend),
		slog.String("admin_mode", cfg.Admin.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	broker := sse.NewBroker(catalogThrottle)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, broker, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start content watcher with SSE callback.
	g.Go(func() error {
		err := watch.Watch(gCtx, svc.store, logger, func(kind, slug string) {
			broker.PublishPostEvent(kind, slug)
		})
		if err != nil {
			logger.Error("content watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the catalog tools over stdio until the client disconnects.
// Logs go to stderr unless WithLogOutput says otherwise.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	logger.Info("MCP server starting on stdio", slog.String("content_dir", cfg.Content.Dir))
	return mcpserver.New(svc.catalog, svc.authoring, svc.comments).ServeStdio()
}
