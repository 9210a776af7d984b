package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

// DefaultPollInterval is how often vehicle positions are refreshed.
const DefaultPollInterval = 5 * time.Second

// Poller refreshes the vehicle cache on a fixed interval. Failed polls are
// not retried before the next tick.
type Poller struct {
	vehicles ports.VehicleService
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(vehicles ports.VehicleService, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		vehicles: vehicles,
		interval: interval,
		logger:   logger.With("component", "vehicle_poller"),
	}
}

// Run polls immediately and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("vehicle poller started", "interval", p.interval.String())
	defer p.logger.Info("vehicle poller stopped")

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.vehicles.Refresh(ctx); err != nil {
		// The service already logged the failure and kept the old snapshot.
		p.logger.Debug("poll failed", "error", err)
	}
}
