package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reaper periodically deletes games nobody has touched for ttl.
type Reaper struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
	cron   *cron.Cron
}

func NewReaper(logger *slog.Logger, store Store, ttl time.Duration, schedule string) (*Reaper, error) {
	r := &Reaper{
		store:  store,
		ttl:    ttl,
		logger: logger,
		cron:   cron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.reap(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduling reaper %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Reaper) reap(ctx context.Context) int {
	n, err := r.store.DeleteGamesBefore(ctx, time.Now().Add(-r.ttl))
	if err != nil {
		r.logger.Error("reaping idle games", "error", err)
		return 0
	}
	if n > 0 {
		r.logger.Info("reaped idle games", "count", n, "ttl", r.ttl.String())
	}
	return n
}

// Run starts the schedule and blocks until ctx is done and any running
// job has finished.
func (r *Reaper) Run(ctx context.Context) error {
	r.cron.Start()
	<-ctx.Done()
	<-r.cron.Stop().Done()
	return nil
}
