package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/folio/internal/apperr"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS comments (
	post_slug     TEXT NOT NULL,
	id            TEXT NOT NULL,
	author        TEXT NOT NULL,
	content       TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME,
	parent_id     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (post_slug, id)
);

CREATE INDEX IF NOT EXISTS idx_comments_thread ON comments(post_slug, created_at);
`

// SQLiteStore persists comments in a local SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("comments: open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("comments: ping sqlite: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("comments: apply schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, r Record) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO comments (post_slug, id, author, content, password_hash, created_at, updated_at, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.PostSlug, r.ID, r.Author, r.Content, r.PasswordHash, r.CreatedAt.UTC(), nullTime(r.UpdatedAt), r.ParentID)
	if err != nil {
		return fmt.Errorf("comments: insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, postSlug, id string) (Record, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT post_slug, id, author, content, password_hash, created_at, updated_at, parent_id
		FROM comments WHERE post_slug = ? AND id = ?
	`, postSlug, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, apperr.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("comments: get: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListByThread(ctx context.Context, postSlug string) ([]Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT post_slug, id, author, content, password_hash, created_at, updated_at, parent_id
		FROM comments WHERE post_slug = ?
		ORDER BY created_at, id
	`, postSlug)
	if err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("comments: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateContent(ctx context.Context, postSlug, id, content string, updatedAt time.Time) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE post_slug = ? AND id = ?`,
		content, updatedAt.UTC(), postSlug, id)
	if err != nil {
		return fmt.Errorf("comments: update: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, postSlug, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM comments WHERE post_slug = ? AND id = ?`, postSlug, id)
	if err != nil {
		return fmt.Errorf("comments: delete: %w", err)
	}
	return requireAffected(res)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r       Record
		updated sql.NullTime
	)
	if err := sc.Scan(&r.PostSlug, &r.ID, &r.Author, &r.Content, &r.PasswordHash, &r.CreatedAt, &updated, &r.ParentID); err != nil {
		return Record{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	if updated.Valid {
		t := updated.Time.UTC()
		r.UpdatedAt = &t
	}
	return r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("comments: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
