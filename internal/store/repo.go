package store

import (
	"context"
	"errors"
	"time"

	"github.com/RazvanRotari/deadman/internal/domain"
)

// ErrNotFound is returned when an update or lookup matches no subject.
var ErrNotFound = errors.New("subject not found")

// Repo defines storage operations for monitored subjects.
type Repo interface {
	// CreateSubject allocates a fresh id and inserts a new subject whose
	// timer starts at now and whose overdue marker is clear.
	CreateSubject(ctx context.Context, name string, chatID int64, intervalMinutes int, now time.Time) (string, error)

	// RecordCheckIn resets the subject's timer to now and clears the
	// notified marker, ending any overdue episode in progress.
	RecordCheckIn(ctx context.Context, id string, now time.Time) error

	// MarkNotified records that a notification was dispatched for the
	// subject's current overdue episode.
	MarkNotified(ctx context.Context, id string, now time.Time) error

	// FindOverdue returns subjects whose deadline elapsed before now and
	// that have not been notified for the current episode.
	FindOverdue(ctx context.Context, now time.Time) ([]domain.Subject, error)

	// GetSubject returns a subject by id or ErrNotFound.
	GetSubject(ctx context.Context, id string) (*domain.Subject, error)

	Close() error
}
