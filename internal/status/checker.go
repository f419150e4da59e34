package status

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/statusdeck/statusdeck/internal/catalog"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
)

// CheckRecorder records one health check observation per service.
type CheckRecorder interface {
	RecordCheck(ctx context.Context, service *domain.Service) error
}

// TickFunc receives the catalog and its aggregate after every check
// cycle, letting downstream consumers mirror the result.
type TickFunc func(ctx context.Context, services []domain.Service, aggregate domain.SystemStatus)

// CheckerConfig configures the background status checker.
type CheckerConfig struct {
	Interval time.Duration
}

// Checker periodically walks the catalog, records an uptime check per
// service, and hands the aggregate to the tick callback.
type Checker struct {
	config   CheckerConfig
	services ServiceSource
	recorder CheckRecorder
	onTick   TickFunc

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewChecker creates a new status checker. onTick may be nil.
func NewChecker(config CheckerConfig, services ServiceSource, recorder CheckRecorder, onTick TickFunc) *Checker {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	return &Checker{
		config:   config,
		services: services,
		recorder: recorder,
		onTick:   onTick,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the checker goroutine.
func (c *Checker) Start(ctx context.Context) {
	slog.Info("starting status checker", "interval", c.config.Interval)

	c.wg.Add(1)
	go c.run(ctx)
}

// Stop gracefully stops the checker.
func (c *Checker) Stop() {
	close(c.stopCh)
	c.wg.Wait()
	slog.Info("status checker stopped")
}

func (c *Checker) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *Checker) check(ctx context.Context) {
	logger := ctxlog.With(ctx, "component", "status_checker")

	services, err := c.services.ListServices(ctx, catalog.ServiceFilter{})
	if err != nil {
		logger.Error("failed to list services", "error", err)
		return
	}

	for i := range services {
		if err := c.recorder.RecordCheck(ctx, &services[i]); err != nil {
			logger.Error("failed to record uptime check",
				"service", services[i].Slug, "error", err)
		}
	}

	if c.onTick != nil {
		c.onTick(ctx, services, Aggregate(services))
	}
}
