package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hanjan/hanjan-client/pkg/logger"
)

// Refresher is the slice of the cart store the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

const refreshTimeout = 30 * time.Second

// RefreshScheduler re-syncs the cart on a cron schedule, for long-lived
// clients (kiosk mode) where no user interaction would otherwise trigger a
// refresh.
type RefreshScheduler struct {
	cron  *cron.Cron
	store Refresher
	spec  string
}

func NewRefreshScheduler(store Refresher, spec string) *RefreshScheduler {
	return &RefreshScheduler{
		cron:  cron.New(),
		store: store,
		spec:  spec,
	}
}

// Start registers the refresh job and starts the scheduler.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Debug("Starting scheduled cart refresh", nil)

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := s.store.Refresh(ctx); err != nil {
			logger.Error("Scheduled cart refresh failed", err)
			return
		}

		logger.Debug("Scheduled cart refresh completed", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart refresh", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart refresh scheduler started", map[string]interface{}{
		"spec": s.spec,
	})

	return nil
}

// Stop stops the scheduler.
func (s *RefreshScheduler) Stop() {
	logger.Info("Stopping cart refresh scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart refresh scheduler stopped", nil)
}
