package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/RazvanRotari/deadman/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// CreateSubject inserts a new subject with a freshly generated id.
// The timer starts at now; the notified marker starts clear.
func (r *SQLiteRepo) CreateSubject(ctx context.Context, name string, chatID int64, intervalMinutes int, now time.Time) (string, error) {
	if intervalMinutes <= 0 {
		return "", errors.New("interval must be positive")
	}

	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (
			subject_id, name, chat_id, last_check_in,
			interval_minutes, notified_at, created_at
		) VALUES (?, ?, ?, ?, ?, NULL, ?)`,
		id, name, chatID, now.UTC().Unix(), intervalMinutes, now.UTC().Unix(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordCheckIn resets last_check_in and clears notified_at in a single
// unconditional update scoped by id, so a concurrent MarkNotified cannot
// leave a half-applied state; whichever write lands last wins.
func (r *SQLiteRepo) RecordCheckIn(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subjects
		SET last_check_in = ?, notified_at = NULL
		WHERE subject_id = ?`,
		now.UTC().Unix(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// MarkNotified stamps the current overdue episode as notified.
func (r *SQLiteRepo) MarkNotified(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subjects
		SET notified_at = ?
		WHERE subject_id = ?`,
		now.UTC().Unix(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// FindOverdue returns subjects whose allowed silence elapsed before now and
// that have no notification recorded for the current episode. The predicate
// is evaluated server-side in one query.
func (r *SQLiteRepo) FindOverdue(ctx context.Context, now time.Time) ([]domain.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject_id, name, chat_id, last_check_in,
		       interval_minutes, notified_at, created_at
		FROM subjects
		WHERE (last_check_in + interval_minutes * 60) < ?
		  AND notified_at IS NULL
		ORDER BY last_check_in ASC`,
		now.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Subject
	for rows.Next() {
		s, err := scanSubject(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetSubject returns a subject by id, or ErrNotFound.
func (r *SQLiteRepo) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT subject_id, name, chat_id, last_check_in,
		       interval_minutes, notified_at, created_at
		FROM subjects
		WHERE subject_id = ?`,
		id,
	)
	s, err := scanSubject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// scanSubject reads one subjects row via the given Scan function.
func scanSubject(scan func(...any) error) (*domain.Subject, error) {
	var (
		id          string
		name        string
		chatID      int64
		lastCheckIn int64
		intervalMin int
		notifiedNS  sql.NullInt64
		createdAt   int64
	)
	if err := scan(&id, &name, &chatID, &lastCheckIn, &intervalMin, &notifiedNS, &createdAt); err != nil {
		return nil, err
	}
	return &domain.Subject{
		ID:              id,
		Name:            name,
		ChatID:          chatID,
		LastCheckIn:     time.Unix(lastCheckIn, 0).UTC(),
		IntervalMinutes: intervalMin,
		NotifiedAt:      fromNullInt64(notifiedNS),
		CreatedAt:       time.Unix(createdAt, 0).UTC(),
	}, nil
}

// requireRow converts a zero-rows-affected update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
