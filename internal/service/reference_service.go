package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/metrics"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// ReferenceService makes sure every category, developer, platform and
// publisher named by a catalog batch exists exactly once.
type ReferenceService struct {
	store       ReferenceStore
	concurrency int
}

// NewReferenceService constructs a ReferenceService. concurrency <= 0 is unbounded.
func NewReferenceService(store ReferenceStore, concurrency int) *ReferenceService {
	return &ReferenceService{store: store, concurrency: concurrency}
}

// ReferenceName is one distinct (kind, name) pair of a batch.
type ReferenceName struct {
	Kind models.ReferenceKind
	Name string
}

// CollectReferenceNames returns the distinct names per kind referenced by
// products, deduplicated by exact string equality, in first-seen order.
// Blank names are dropped.
func CollectReferenceNames(products []models.CatalogProduct) []ReferenceName {
	seen := make(map[ReferenceName]struct{})
	var names []ReferenceName
	for _, kind := range models.ReferenceKinds {
		for i := range products {
			for _, name := range products[i].ReferenceNames(kind) {
				if strings.TrimSpace(name) == "" {
					continue
				}
				key := ReferenceName{Kind: kind, Name: name}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				names = append(names, key)
			}
		}
	}
	return names
}

// Reconcile looks up every distinct name once and creates the missing ones.
// All lookup+create pairs run concurrently; the call returns once each has
// settled. Failures are reported per name and never abort siblings, so a
// returned report does not imply every reference exists.
func (s *ReferenceService) Reconcile(ctx context.Context, products []models.CatalogProduct) *ReconcileReport {
	names := CollectReferenceNames(products)
	report := &ReconcileReport{Results: make([]ReferenceResult, len(names))}

	g := newGroup(s.concurrency)
	for i, rn := range names {
		i, rn := i, rn
		g.Go(func() error {
			report.Results[i] = s.ensure(ctx, rn.Kind, rn.Name)
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Int("distinct", len(names)).
		Int("created", report.Count(StatusCreated)).
		Int("exists", report.Count(StatusExists)).
		Int("failed", report.Count(StatusFailed)).
		Msg("References reconciled")

	return report
}

// ensure creates kind/name unless it already exists.
func (s *ReferenceService) ensure(ctx context.Context, kind models.ReferenceKind, name string) ReferenceResult {
	res := ReferenceResult{Kind: kind, Name: name}

	existing, err := s.store.FindByName(ctx, kind, name)
	switch {
	case err == nil:
		res.Status = StatusExists
		res.Reference = existing
		metrics.RecordReference(string(kind), string(StatusExists))
		return res
	case !errors.Is(err, utils.ErrNotFound):
		return s.fail(res, &utils.StoreError{Op: "findByName", Kind: string(kind), Input: name, Err: err})
	}

	ref := &models.Reference{Kind: kind, Name: name, Slug: utils.Slugify(name)}
	if err := s.store.Create(ctx, ref); err != nil {
		return s.fail(res, &utils.StoreError{Op: "create", Kind: string(kind), Input: name, Err: err})
	}

	log.Debug().Str("kind", string(kind)).Str("name", name).Str("slug", ref.Slug).Msg("Reference created")
	res.Status = StatusCreated
	res.Reference = ref
	metrics.RecordReference(string(kind), string(StatusCreated))
	return res
}

func (s *ReferenceService) fail(res ReferenceResult, err error) ReferenceResult {
	log.Error().Err(err).Str("op", "reconcileReferences").Str("kind", string(res.Kind)).Str("name", res.Name).Msg("failed to reconcile reference")
	res.Status = StatusFailed
	res.Err = err
	metrics.RecordReference(string(res.Kind), string(StatusFailed))
	return res
}
