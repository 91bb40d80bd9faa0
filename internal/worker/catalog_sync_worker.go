package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/service"
)

// CatalogSyncWorker periodically refreshes the provider country and service
// reference catalogs. Name directories change rarely, so this runs on a much
// longer interval than the price refresh.
type CatalogSyncWorker struct {
	refreshService *service.RefreshService
	interval       time.Duration
}

// NewCatalogSyncWorker constructs a CatalogSyncWorker.
func NewCatalogSyncWorker(refreshService *service.RefreshService, interval time.Duration) *CatalogSyncWorker {
	return &CatalogSyncWorker{
		refreshService: refreshService,
		interval:       interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *CatalogSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog sync worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog sync worker stopped")
			return
		}
	}
}

func (w *CatalogSyncWorker) run(ctx context.Context) {
	start := time.Now()
	if err := w.refreshService.SyncCatalogs(ctx); err != nil {
		log.Error().Err(err).Msg("Catalog sync run failed")
		return
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Catalog sync run completed")
}
