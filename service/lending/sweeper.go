package lendingsvc

import (
	"context"
	"log/slog"
	"time"

	lendingrepo "github.com/Legend373/Legend-Library-Ms/repository/lending"
)

// Sweeper flips active loans past their due date to overdue. The transition is
// idempotent and confluent with extensions, so it is safe to run on a schedule
// alongside user traffic.
type Sweeper struct {
	store lendingrepo.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewSweeper(store lendingrepo.Store, log *slog.Logger) *Sweeper {
	return &Sweeper{store: store, log: log, now: time.Now}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	return s.store.SweepOverdue(ctx, s.now().UTC())
}

// Run sweeps on the given interval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error("overdue sweep failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Info("marked loans overdue", "count", n)
			}
		}
	}
}
