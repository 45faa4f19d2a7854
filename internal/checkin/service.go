// Package checkin exposes the liveness signal endpoint.
package checkin

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/RazvanRotari/deadman/internal/metrics"
	"github.com/RazvanRotari/deadman/internal/store"
)

// Service applies check-ins to the store.
type Service struct {
	repo    store.Repo
	log     *zap.Logger
	metrics *metrics.Collector
}

// NewService creates a check-in Service.
func NewService(repo store.Repo, log *zap.Logger, m *metrics.Collector) *Service {
	return &Service{repo: repo, log: log, metrics: m}
}

// CheckIn resets the subject's timer and clears any pending overdue marker,
// ending the current overdue episode if one existed. Repeated calls are
// idempotent beyond advancing the timer. Returns store.ErrNotFound for an
// unknown id; any other error is a store failure.
func (s *Service) CheckIn(ctx context.Context, id string) error {
	err := s.repo.RecordCheckIn(ctx, id, time.Now().UTC())
	switch {
	case err == nil:
		s.metrics.RecordCheckIn("accepted")
	case errors.Is(err, store.ErrNotFound):
		s.metrics.RecordCheckIn("not_found")
	default:
		s.metrics.RecordCheckIn("store_error")
		s.log.Error("record check-in failed", zap.Error(err), zap.String("subjectID", id))
	}
	return err
}
