package background

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fundlane/fundlane/services/invest-api/internal/services"
)

// BackgroundTasks owns the periodic jobs the API runs alongside request
// traffic.
type BackgroundTasks struct {
	logger          *zap.Logger
	fundService     services.FundService
	refreshInterval time.Duration
}

func NewBackgroundTasks(logger *zap.Logger, fundService services.FundService, refreshInterval time.Duration) *BackgroundTasks {
	return &BackgroundTasks{
		logger:          logger,
		fundService:     fundService,
		refreshInterval: refreshInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startNavRefresh(ctx)
}

// startNavRefresh re-pulls every known scheme's NAV on a fixed cadence.
// Failures are logged and retried on the next tick.
func (bt *BackgroundTasks) startNavRefresh(ctx context.Context) {
	ticker := time.NewTicker(bt.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := bt.fundService.Refresh(ctx, nil)
			if err != nil {
				bt.logger.Error("scheduled nav refresh failed", zap.Error(err))
				continue
			}
			bt.logger.Info("scheduled nav refresh complete",
				zap.Int("refreshed", len(resp.Refreshed)),
				zap.Int("failed", len(resp.Failed)))
		}
	}
}
