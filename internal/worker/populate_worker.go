package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// Populator runs the ingestion pipeline once.
type Populator interface {
	Populate(ctx context.Context, opts service.PopulateOptions) (*service.PopulateReport, error)
}

// PopulateWorker periodically ingests the first catalog page.
type PopulateWorker struct {
	populator Populator
	opts      service.PopulateOptions
	interval  time.Duration
}

// NewPopulateWorker constructs a PopulateWorker.
func NewPopulateWorker(populator Populator, opts service.PopulateOptions, interval time.Duration) *PopulateWorker {
	return &PopulateWorker{
		populator: populator,
		opts:      opts,
		interval:  interval,
	}
}

// Start begins the periodic populate loop and listens for context cancellation.
func (w *PopulateWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting populate worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Populate worker stopped")
			return
		}
	}
}

func (w *PopulateWorker) run(ctx context.Context) {
	report, err := w.populator.Populate(ctx, w.opts)
	switch {
	case errors.Is(err, utils.ErrRunInProgress):
		log.Info().Msg("Populate already running, skipping tick")
	case err != nil:
		log.Error().Err(err).Msg("Scheduled populate failed")
	default:
		log.Info().
			Str("run_id", report.RunID).
			Int("games_created", report.Games.Count(service.StatusCreated)).
			Dur("duration", report.Duration).
			Msg("Scheduled populate completed")
	}
}
