package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/pkg/gog"
)

// PopulateAck is the fixed body returned once a populate run has finished.
const PopulateAck = "FINISHED"

// Populator runs the ingestion pipeline.
type Populator interface {
	Populate(ctx context.Context, opts service.PopulateOptions) (*service.PopulateReport, error)
}

// PopulateHandler exposes the populate trigger.
type PopulateHandler struct {
	populator Populator
}

// NewPopulateHandler constructs a PopulateHandler.
func NewPopulateHandler(populator Populator) *PopulateHandler {
	return &PopulateHandler{populator: populator}
}

// Populate handles GET|POST /v1/games/populate?limit=&order=&page=&take=
// and answers with a plain-text acknowledgment once the run has settled.
// Individual item failures are only visible in logs and metrics.
func (h *PopulateHandler) Populate(c *gin.Context) {
	opts := service.PopulateOptions{
		CatalogOptions: gog.CatalogOptions{
			Limit: positiveQuery(c, "limit"),
			Order: c.Query("order"),
			Page:  positiveQuery(c, "page"),
		},
		Take: positiveQuery(c, "take"),
	}

	// A client hanging up must not abandon a half-written batch.
	ctx := context.WithoutCancel(c.Request.Context())

	report, err := h.populator.Populate(ctx, opts)
	if err != nil {
		if errors.Is(err, utils.ErrRunInProgress) {
			c.String(http.StatusConflict, "ALREADY_RUNNING")
			return
		}
		log.Error().Err(err).Str("request_id", utils.RequestID(c)).Msg("populate failed")
		var (
			fe *utils.FetchError
			pe *utils.ParseError
		)
		switch {
		case errors.Is(err, utils.ErrLockUnavailable):
			c.String(http.StatusServiceUnavailable, "LOCK_UNAVAILABLE")
		case errors.As(err, &fe), errors.As(err, &pe):
			c.String(http.StatusBadGateway, "CATALOG_UNAVAILABLE")
		default:
			c.String(http.StatusInternalServerError, "INTERNAL_ERROR")
		}
		return
	}

	log.Info().
		Str("request_id", utils.RequestID(c)).
		Str("run_id", report.RunID).
		Int("processed", report.Processed).
		Msg("populate request served")
	c.String(http.StatusOK, PopulateAck)
}

// positiveQuery returns the query value as a positive int, or 0.
func positiveQuery(c *gin.Context, key string) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
