// Package sweeper runs the periodic overdue scan that drives notification
// dispatch.
package sweeper

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/RazvanRotari/deadman/internal/metrics"
	"github.com/RazvanRotari/deadman/internal/notifier"
	"github.com/RazvanRotari/deadman/internal/store"
)

// Sweeper periodically scans the store for overdue subjects and sends at
// most one notification per overdue episode.
type Sweeper struct {
	repo     store.Repo
	notifier notifier.Notifier
	log      *zap.Logger
	metrics  *metrics.Collector
	period   time.Duration
}

// New creates a Sweeper with the given fixed sweep period.
func New(repo store.Repo, n notifier.Notifier, log *zap.Logger, m *metrics.Collector, period time.Duration) *Sweeper {
	if period <= 0 {
		period = time.Minute
	}
	return &Sweeper{
		repo:     repo,
		notifier: n,
		log:      log,
		metrics:  m,
		period:   period,
	}
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
// Each iteration is wrapped in a failure boundary: a store error, send error
// or panic is logged and the loop proceeds to the next tick. The loop itself
// never stops for any reason other than ctx cancellation.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.log.Info("sweeper starting", zap.Duration("period", s.period))
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one sweep inside a panic boundary.
func (s *Sweeper) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.metrics.RecordSweepFailure()
			s.log.Error("sweep panic recovered",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	s.Sweep(ctx, time.Now().UTC())
}

// Sweep performs one overdue-scan-and-notify cycle at the given instant.
// A subject is marked notified only after its notification was delivered;
// a failed send leaves it in the overdue set, so the next sweep retries it.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	subjects, err := s.repo.FindOverdue(ctx, now)
	if err != nil {
		s.metrics.RecordSweepFailure()
		s.log.Error("find overdue failed", zap.Error(err))
		return
	}
	if len(subjects) == 0 {
		return
	}
	s.log.Info("overdue subjects found", zap.Int("count", len(subjects)))

	for _, sub := range subjects {
		text := fmt.Sprintf("Check if %s is still alive. Last message was sent at %s",
			sub.Name, sub.LastCheckIn.Format(time.RFC3339))

		if err := s.notifier.Send(sub.ChatID, text); err != nil {
			s.metrics.RecordSendFailure()
			s.log.Error("notification send failed",
				zap.Error(err),
				zap.String("subjectID", sub.ID),
				zap.Int64("chatID", sub.ChatID),
			)
			continue
		}
		s.metrics.RecordNotificationSent()

		if err := s.repo.MarkNotified(ctx, sub.ID, now); err != nil {
			s.log.Error("mark notified failed",
				zap.Error(err),
				zap.String("subjectID", sub.ID),
			)
		}
	}
}
