package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/metrics"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/pkg/gog"
)

// PopulateOptions selects the catalog page and how much of it to process.
type PopulateOptions struct {
	gog.CatalogOptions
	// Take processes only the first Take products of the page; 0 means all.
	Take int
}

// PopulateService is the pipeline entry point: fetch a catalog page,
// reconcile its references, then upsert its games.
type PopulateService struct {
	catalog  CatalogFetcher
	refs     *ReferenceService
	games    *GameService
	lock     RunLocker
	notifier sse.PopulateNotifier
}

// NewPopulateService constructs a PopulateService. lock may be nil.
func NewPopulateService(catalog CatalogFetcher, refs *ReferenceService, games *GameService, lock RunLocker) *PopulateService {
	return &PopulateService{
		catalog:  catalog,
		refs:     refs,
		games:    games,
		lock:     lock,
		notifier: sse.NopNotifier{},
	}
}

// SetNotifier wires a progress notifier into the service and its GameService.
func (s *PopulateService) SetNotifier(n sse.PopulateNotifier) {
	if n == nil {
		return
	}
	s.notifier = n
	s.games.SetNotifier(n)
}

// Populate runs the pipeline once. It fails only when the run lock is held
// (utils.ErrRunInProgress) or the catalog page cannot be fetched; per-item
// failures are reported in the returned report.
func (s *PopulateService) Populate(ctx context.Context, opts PopulateOptions) (*PopulateReport, error) {
	report := &PopulateReport{
		RunID:     uuid.New().String(),
		Options:   opts.CatalogOptions,
		StartedAt: time.Now(),
	}
	logger := log.With().Str("run_id", report.RunID).Logger()

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, report.RunID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("failed to release run lock")
			}
		}()
	}

	s.notifier.NotifyRunStarted(report.RunID)
	logger.Info().
		Int("limit", opts.Limit).
		Str("order", opts.Order).
		Int("page", opts.Page).
		Int("take", opts.Take).
		Msg("Populate started")

	products, err := s.catalog.FetchCatalogPage(ctx, opts.CatalogOptions)
	if err != nil {
		metrics.RecordRun("failed", time.Since(report.StartedAt))
		logger.Error().Err(err).Msg("catalog fetch failed")
		return nil, fmt.Errorf("fetch catalog page: %w", err)
	}
	report.Fetched = len(products)

	batch := selectBatch(products, opts.Take)
	report.Processed = len(batch)

	// The upserter re-reads the references the reconciler wrote.
	report.References = s.refs.Reconcile(ctx, batch)
	report.Games = s.games.UpsertGames(ctx, report.RunID, batch)
	report.Duration = time.Since(report.StartedAt)

	metrics.RecordRun("completed", report.Duration)
	s.notifier.NotifyRunFinished(report.RunID,
		report.Games.Count(StatusCreated),
		report.Games.Count(StatusSkipped),
		report.Games.Count(StatusFailed),
	)

	logger.Info().
		Int("fetched", report.Fetched).
		Int("processed", report.Processed).
		Int("references_created", report.References.Count(StatusCreated)).
		Int("references_failed", report.References.Count(StatusFailed)).
		Int("games_created", report.Games.Count(StatusCreated)).
		Int("games_skipped", report.Games.Count(StatusSkipped)).
		Int("games_failed", report.Games.Count(StatusFailed)).
		Dur("duration", report.Duration).
		Msg("Populate completed")

	return report, nil
}

func selectBatch(products []models.CatalogProduct, take int) []models.CatalogProduct {
	if take > 0 && take < len(products) {
		return products[:take]
	}
	return products
}
