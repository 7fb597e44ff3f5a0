package progress

import (
	"context"
	"database/sql"
	"embed"

	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteStore(path string, l logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// workers write concurrently, sqlite allows a single writer
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{
		db:     db,
		logger: l,
	}

	err = s.runMigrations()
	if err != nil {
		db.Close()
		return nil, err
	}

	l.Info("sqlite progress store initialized", "path", path)

	return s, nil
}

func (s *SQLiteStore) runMigrations() error {
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	err = goose.Up(s.db, "migrations")
	if err != nil {
		return err
	}

	return nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) MarkSeeded(ctx context.Context, k Key) error {
	return s.upsert(ctx, k, StatusSeeded, "")
}

func (s *SQLiteStore) MarkFailed(ctx context.Context, k Key, reason string) error {
	return s.upsert(ctx, k, StatusFailed, reason)
}

func (s *SQLiteStore) upsert(ctx context.Context, k Key, status Status, reason string) error {
	s.logger.Debug("sqlite progress set", "layer", k.Layer, "zoom", k.Zoom, "status", status)

	query := `INSERT INTO seed_progress (layer, zoom, descriptor, status, reason, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(layer, zoom, descriptor) DO UPDATE SET
		status = excluded.status,
		reason = excluded.reason,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, k.Layer, k.Zoom, k.Descriptor, string(status), reason)
	if err != nil {
		s.logger.Error("sqlite progress set failed", "layer", k.Layer, "zoom", k.Zoom, "error", err)
		return err
	}

	return nil
}

func (s *SQLiteStore) IsSeeded(ctx context.Context, k Key) (bool, error) {
	query := `SELECT status
	FROM seed_progress
	WHERE layer = ? AND zoom = ? AND descriptor = ?`

	var status string
	err := s.db.QueryRowContext(ctx, query, k.Layer, k.Zoom, k.Descriptor).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		s.logger.Error("sqlite progress get failed", "layer", k.Layer, "zoom", k.Zoom, "error", err)
		return false, err
	}

	return Status(status) == StatusSeeded, nil
}

func (s *SQLiteStore) Stats(ctx context.Context, layer string, zoom int) (Stats, error) {
	query := `SELECT status, COUNT(*)
	FROM seed_progress
	WHERE layer = ? AND zoom = ?
	GROUP BY status`

	rows, err := s.db.QueryContext(ctx, query, layer, zoom)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		switch Status(status) {
		case StatusSeeded:
			stats.Seeded = count
		case StatusFailed:
			stats.Failed = count
		}
	}

	return stats, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
