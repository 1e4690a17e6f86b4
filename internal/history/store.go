package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jellyjams/internal/config"
)

// Store manages pass history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginPass records the start of a generation run and returns the new pass.
func (s *Store) BeginPass(ctx context.Context) (*Pass, error) {
	now := time.Now().UTC()
	pass := &Pass{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		StartedAt: now,
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO passes (id, status, started_at) VALUES (?, ?, ?)`,
		pass.ID,
		string(pass.Status),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert pass: %w", err)
	}
	return pass, nil
}

// CompletePass marks a pass finished with its final counters.
func (s *Store) CompletePass(ctx context.Context, passID string, playlistCount, trackCount int) error {
	return s.finishPass(ctx, passID, StatusCompleted, playlistCount, trackCount, "")
}

// FailPass marks a pass failed and records the error text. Counters reflect
// whatever was written before the failure.
func (s *Store) FailPass(ctx context.Context, passID string, playlistCount, trackCount int, message string) error {
	return s.finishPass(ctx, passID, StatusFailed, playlistCount, trackCount, message)
}

func (s *Store) finishPass(ctx context.Context, passID string, status Status, playlistCount, trackCount int, message string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE passes
            SET status = ?, finished_at = ?, playlist_count = ?, track_count = ?, error_message = ?
          WHERE id = ?`,
		string(status),
		now.Format(time.RFC3339Nano),
		playlistCount,
		trackCount,
		nullableString(message),
		passID,
	)
	if err != nil {
		return fmt.Errorf("finish pass: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pass %s not found", passID)
	}
	return nil
}

// RecordPlaylist appends one playlist result to a pass.
func (s *Store) RecordPlaylist(ctx context.Context, rec *PlaylistRecord) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if rec.PassID == "" {
		return errors.New("record has no pass ID")
	}
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO playlists (pass_id, remote_id, name, type, owner, track_count, cover_source, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PassID,
		nullableString(rec.RemoteID),
		rec.Name,
		rec.Type,
		nullableString(rec.Owner),
		rec.TrackCount,
		nullableString(rec.CoverSource),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert playlist record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	return nil
}

// GetPass fetches a pass by identifier. A missing pass returns (nil, nil).
func (s *Store) GetPass(ctx context.Context, passID string) (*Pass, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes WHERE id = ?`, passID)
	pass, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pass: %w", err)
	}
	return pass, nil
}

// LatestPass returns the most recently started pass, or (nil, nil) when the
// history is empty.
func (s *Store) LatestPass(ctx context.Context) (*Pass, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes ORDER BY started_at DESC LIMIT 1`)
	pass, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest pass: %w", err)
	}
	return pass, nil
}

// RecentPasses lists passes newest first, up to limit.
func (s *Store) RecentPasses(ctx context.Context, limit int) ([]*Pass, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+passColumns+` FROM passes ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []*Pass
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, pass)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

// PlaylistsForPass lists the playlists written during one pass, in insertion
// order.
func (s *Store) PlaylistsForPass(ctx context.Context, passID string) ([]*PlaylistRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE pass_id = ? ORDER BY id`,
		passID,
	)
	if err != nil {
		return nil, fmt.Errorf("list playlist records: %w", err)
	}
	defer rows.Close()

	var records []*PlaylistRecord
	for rows.Next() {
		rec, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist records: %w", err)
	}
	return records, nil
}

// PruneBefore deletes passes started before the cutoff along with their
// playlist records, and returns how many passes were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM passes WHERE started_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune passes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// ResetStuckPasses marks any pass still flagged running as failed. Called on
// daemon startup so a crash does not leave phantom in-flight passes.
func (s *Store) ResetStuckPasses(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE passes SET status = ?, finished_at = ?, error_message = ? WHERE status = ?`,
		string(StatusFailed),
		now.Format(time.RFC3339Nano),
		"interrupted by shutdown",
		string(StatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck passes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
