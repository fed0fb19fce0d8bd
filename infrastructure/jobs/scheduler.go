package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

// TokenRefresher refreshes credentials that expire within window.
type TokenRefresher interface {
	RefreshExpiring(ctx context.Context, window time.Duration) (refreshed, failed int)
}

// Scheduler manages background jobs
type Scheduler struct {
	cron      *cron.Cron
	refresher TokenRefresher
	window    time.Duration
	timeout   time.Duration
}

func NewScheduler(refresher TokenRefresher, window time.Duration) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		window:    window,
		timeout:   2 * time.Minute,
	}
}

// Start registers the token sweep under spec and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshTokens); err != nil {
		return err
	}
	s.cron.Start()
	logger.GetLogger().WithField("spec", spec).Info("Job scheduler started")
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.GetLogger().Info("Job scheduler stopped")
}

func (s *Scheduler) refreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	refreshed, failed := s.refresher.RefreshExpiring(ctx, s.window)
	entry := logger.GetLogger().WithField("refreshed", refreshed).WithField("failed", failed)
	if failed > 0 {
		entry.Warn("Token refresh sweep finished with failures")
		return
	}
	entry.Info("Token refresh sweep finished")
}
