package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/starford/folio/internal/apperr"
)

// commentRow is the GORM model for the comments table.
type commentRow struct {
	PostSlug     string     `gorm:"primaryKey;size:200"`
	ID           string     `gorm:"primaryKey;size:26"`
	Author       string     `gorm:"not null"`
	Content      string     `gorm:"not null"`
	PasswordHash string     `gorm:"not null"`
	CreatedAt    time.Time  `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false"`
	ParentID     string     `gorm:"not null;default:''"`
}

func (commentRow) TableName() string { return "comments" }

func toRow(r Record) commentRow {
	return commentRow{
		PostSlug:     r.PostSlug,
		ID:           r.ID,
		Author:       r.Author,
		Content:      r.Content,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt,
		ParentID:     r.ParentID,
	}
}

func (c commentRow) record() Record {
	r := Record{
		ID:           c.ID,
		PostSlug:     c.PostSlug,
		Author:       c.Author,
		Content:      c.Content,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt.UTC(),
		ParentID:     c.ParentID,
	}
	if c.UpdatedAt != nil {
		t := c.UpdatedAt.UTC()
		r.UpdatedAt = &t
	}
	return r
}

// PostgresStore persists comments in PostgreSQL through GORM.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the comments table.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("comments: connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&commentRow{}); err != nil {
		return nil, fmt.Errorf("comments: migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Put(ctx context.Context, r Record) error {
	row := toRow(r)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("comments: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, postSlug, id string) (Record, error) {
	var row commentRow
	err := s.db.WithContext(ctx).First(&row, "post_slug = ? AND id = ?", postSlug, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, apperr.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("comments: get: %w", err)
	}
	return row.record(), nil
}

func (s *PostgresStore) ListByThread(ctx context.Context, postSlug string) ([]Record, error) {
	var rows []commentRow
	err := s.db.WithContext(ctx).
		Where("post_slug = ?", postSlug).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (s *PostgresStore) UpdateContent(ctx context.Context, postSlug, id, content string, updatedAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&commentRow{}).
		Where("post_slug = ? AND id = ?", postSlug, id).
		Updates(map[string]any{"content": content, "updated_at": updatedAt.UTC()})
	if res.Error != nil {
		return fmt.Errorf("comments: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, postSlug, id string) error {
	res := s.db.WithContext(ctx).Delete(&commentRow{}, "post_slug = ? AND id = ?", postSlug, id)
	if res.Error != nil {
		return fmt.Errorf("comments: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
