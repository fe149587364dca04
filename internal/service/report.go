package service

import (
	"errors"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/pkg/gog"
)

// ItemStatus is the outcome of one item in a fan-out group.
type ItemStatus string

const (
	StatusCreated ItemStatus = "created"
	StatusExists  ItemStatus = "exists"
	StatusSkipped ItemStatus = "skipped"
	StatusFailed  ItemStatus = "failed"
)

// ReferenceResult is the outcome of reconciling one distinct name.
type ReferenceResult struct {
	Kind      models.ReferenceKind `json:"kind"`
	Name      string               `json:"name"`
	Status    ItemStatus           `json:"status"`
	Reference *models.Reference    `json:"reference,omitempty"`
	Err       error                `json:"-"`
}

// ReconcileReport collects every ReferenceResult of one Reconcile call.
// A report with failures is still a completed reconciliation.
type ReconcileReport struct {
	Results []ReferenceResult `json:"results"`
}

// Count returns how many results have status.
func (r *ReconcileReport) Count(status ItemStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed results, or nil.
func (r *ReconcileReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// MediaResult is the outcome of one image attachment.
type MediaResult struct {
	Field models.MediaField `json:"field"`
	URL   string            `json:"url"`
	Err   error             `json:"-"`
}

// GameResult is the outcome of upserting one catalog product.
type GameResult struct {
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	Status     ItemStatus    `json:"status"`
	Game       *models.Game  `json:"game,omitempty"`
	Unresolved []string      `json:"unresolved,omitempty"`
	Media      []MediaResult `json:"media,omitempty"`
	Err        error         `json:"-"`
}

// MediaFailures returns the number of failed attachments.
func (r *GameResult) MediaFailures() int {
	n := 0
	for _, m := range r.Media {
		if m.Err != nil {
			n++
		}
	}
	return n
}

// UpsertReport collects every GameResult of one UpsertGames call, in input order.
type UpsertReport struct {
	Results []GameResult `json:"results"`
}

// Count returns how many results have status.
func (r *UpsertReport) Count(status ItemStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Err joins the product-level and media errors, or nil.
func (r *UpsertReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		for _, m := range res.Media {
			if m.Err != nil {
				errs = append(errs, m.Err)
			}
		}
	}
	return errors.Join(errs...)
}

// PopulateReport summarises one populate run.
type PopulateReport struct {
	RunID      string             `json:"runId"`
	Options    gog.CatalogOptions `json:"options"`
	Fetched    int                `json:"fetched"`
	Processed  int                `json:"processed"`
	References *ReconcileReport   `json:"references"`
	Games      *UpsertReport      `json:"games"`
	StartedAt  time.Time          `json:"startedAt"`
	Duration   time.Duration      `json:"duration"`
}
