// Package job runs discovery in the background on a cron schedule.
package job

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

type Discoverer interface {
	Discover(ctx context.Context) (*sponsor.Candidates, error)
}

type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	logger  *zap.Logger
}

// StartDiscovery schedules d using a standard five-field cron spec, e.g. "0 2 * * *".
// A run is skipped while the previous one is still in progress.
func StartDiscovery(spec string, d Discoverer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, func() { s.run(d) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid discovery schedule %q: %w", spec, err)
	}

	s.cron.Start()
	logger.Info("scheduled discovery", zap.String("schedule", spec))
	return s, nil
}

func (s *Scheduler) run(d Discoverer) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("skipping scheduled discovery", zap.String("reason", "previous run still in progress"))
		return
	}
	defer s.running.Store(false)

	list, err := d.Discover(s.ctx)
	if err != nil {
		s.logger.Error("scheduled discovery failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled discovery finished", zap.Int("candidates", list.Len()))
}

// Stop cancels a running discovery and waits for it to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduled discovery did not stop in time")
	}
}
