package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/service"
)

// RefreshWorker periodically re-ingests every provider's price catalog.
type RefreshWorker struct {
	refreshService *service.RefreshService
	interval       time.Duration
}

// NewRefreshWorker constructs a RefreshWorker.
func NewRefreshWorker(refreshService *service.RefreshService, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refreshService: refreshService,
		interval:       interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting price refresh worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Price refresh worker stopped")
			return
		}
	}
}

func (w *RefreshWorker) run(ctx context.Context) {
	start := time.Now()
	report, err := w.refreshService.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Price refresh run failed")
		return
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Int("failedPairs", report.Failed).
		Msg("Price refresh run completed")
}
