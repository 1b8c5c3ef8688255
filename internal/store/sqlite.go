package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/models"
)

// SQLite persists alert records in a local database file.
type SQLite struct {
	mu   sync.Mutex
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// NewSQLite opens (and migrates) the alert database at path. Use
// ":memory:" for an ephemeral store.
func NewSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open alert database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	s := &SQLite{
		conn: conn,
		path: path,
		log:  log.With().Str("component", "store").Logger(),
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate alert database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		alert_id INTEGER NOT NULL,
		camera_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		sequence INTEGER NOT NULL,
		confidence REAL DEFAULT 0,
		region_x INTEGER,
		region_y INTEGER,
		region_w INTEGER,
		region_h INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_camera ON alerts(camera_id, alert_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Save(ctx context.Context, record models.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("alert store is closed")
	}

	var x, y, w, h sql.NullInt64
	if r := record.Result.Region; r != nil {
		x = sql.NullInt64{Int64: int64(r.X), Valid: true}
		y = sql.NullInt64{Int64: int64(r.Y), Valid: true}
		w = sql.NullInt64{Int64: int64(r.Width), Valid: true}
		h = sql.NullInt64{Int64: int64(r.Height), Valid: true}
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO alerts (alert_id, camera_id, timestamp, sequence, confidence, region_x, region_y, region_w, region_h)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.AlertID, record.CameraID, record.Timestamp.UTC(), record.Result.Sequence,
		record.Result.Confidence, x, y, w, h)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, fmt.Errorf("alert store is closed")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT alert_id, camera_id, timestamp, sequence, confidence, region_x, region_y, region_w, region_h
		FROM alerts ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []models.AlertRecord
	for rows.Next() {
		var rec models.AlertRecord
		var ts time.Time
		var x, y, w, h sql.NullInt64
		if err := rows.Scan(&rec.AlertID, &rec.CameraID, &ts, &rec.Result.Sequence,
			&rec.Result.Confidence, &x, &y, &w, &h); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		rec.Timestamp = ts
		rec.Result.CameraID = rec.CameraID
		rec.Result.IsAlert = true
		if x.Valid {
			rec.Result.Region = &models.Region{
				X: int(x.Int64), Y: int(y.Int64),
				Width: int(w.Int64), Height: int(h.Int64),
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Purge drops every stored alert, closes the connection and removes the
// database file. The store is unusable afterwards.
func (s *SQLite) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear alerts table during purge")
	}
	if err := s.conn.Close(); err != nil {
		s.log.Error().Err(err).Msg("Failed to close alert database during purge")
	}
	s.conn = nil

	if s.path != ":memory:" && s.path != "" {
		for _, f := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				s.log.Error().Err(err).Str("file", f).Msg("Failed to remove database file during purge")
			}
		}
	}

	s.log.Warn().Str("path", s.path).Msg("Alert store purged")
	return nil
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
