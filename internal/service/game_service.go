package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/metrics"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

const (
	// DefaultGalleryLimit caps the screenshots attached per game. Larger
	// configured limits are clamped to it.
	DefaultGalleryLimit = 5
	// DefaultImageFormatter replaces the {formatter} token of screenshot URLs.
	DefaultImageFormatter = "product_card_v2_mobile_slider_639"

	formatterToken = "{formatter}"
)

// releaseDateLayouts are tried in order against CatalogProduct.ReleaseDate.
var releaseDateLayouts = []string{
	"2006.01.02",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// GameServiceConfig tunes GameService.
type GameServiceConfig struct {
	// Concurrency bounds the per-product fan-out; <= 0 is unbounded.
	Concurrency    int
	GalleryLimit   int
	ImageFormatter string
}

// GameService creates game records for catalog products that are not in the
// store yet, then attaches their cover and gallery images.
type GameService struct {
	games    GameStore
	refs     ReferenceStore
	details  DetailFetcher
	media    MediaAttacher
	notifier sse.PopulateNotifier
	cfg      GameServiceConfig
	now      func() time.Time
}

// NewGameService constructs a GameService.
func NewGameService(games GameStore, refs ReferenceStore, details DetailFetcher, media MediaAttacher, cfg GameServiceConfig) *GameService {
	if cfg.GalleryLimit < 0 {
		cfg.GalleryLimit = 0
	}
	if cfg.GalleryLimit > DefaultGalleryLimit {
		cfg.GalleryLimit = DefaultGalleryLimit
	}
	if cfg.ImageFormatter == "" {
		cfg.ImageFormatter = DefaultImageFormatter
	}
	return &GameService{
		games:    games,
		refs:     refs,
		details:  details,
		media:    media,
		notifier: sse.NopNotifier{},
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetNotifier wires a progress notifier.
func (s *GameService) SetNotifier(n sse.PopulateNotifier) {
	if n != nil {
		s.notifier = n
	}
}

// UpsertGames processes every product concurrently and returns once each
// product, media included, has settled. Results keep input order.
func (s *GameService) UpsertGames(ctx context.Context, runID string, products []models.CatalogProduct) *UpsertReport {
	report := &UpsertReport{Results: make([]GameResult, len(products))}

	g := newGroup(s.cfg.Concurrency)
	for i := range products {
		i := i
		p := &products[i]
		g.Go(func() error {
			res := s.upsertGame(ctx, p)
			report.Results[i] = res
			metrics.RecordGame(string(res.Status))
			s.notifier.NotifyGameProcessed(runID, res.Title, string(res.Status), res.Err)
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Str("run_id", runID).
		Int("products", len(products)).
		Int("created", report.Count(StatusCreated)).
		Int("skipped", report.Count(StatusSkipped)).
		Int("failed", report.Count(StatusFailed)).
		Msg("Games upserted")

	return report
}

func (s *GameService) upsertGame(ctx context.Context, p *models.CatalogProduct) GameResult {
	res := GameResult{Title: p.Title, Slug: p.Slug}

	// 1. An existing record with the same title short-circuits everything.
	existing, err := s.games.FindByTitle(ctx, p.Title)
	switch {
	case err == nil:
		res.Status = StatusSkipped
		res.Game = existing
		log.Debug().Str("title", p.Title).Int("game_id", existing.ID).Msg("Game already exists, skipping")
		return res
	case !errors.Is(err, utils.ErrNotFound):
		return s.fail(res, &utils.StoreError{Op: "findByTitle", Kind: "game", Input: p.Title, Err: err})
	}

	// 2. Resolve reference associations; missing names are left out.
	links, unresolved, err := s.resolveReferences(ctx, p)
	if err != nil {
		return s.fail(res, err)
	}
	res.Unresolved = unresolved

	// 3. Scrape the detail page.
	info, err := s.details.FetchDetail(ctx, p.Slug)
	if err != nil {
		return s.fail(res, err)
	}

	// 4. Create the record.
	game, err := s.buildGame(p, info, links)
	if err != nil {
		return s.fail(res, err)
	}
	if err := s.games.Create(ctx, game); err != nil {
		return s.fail(res, &utils.StoreError{Op: "create", Kind: "game", Input: p.Title, Err: err})
	}
	res.Status = StatusCreated
	res.Game = game

	log.Info().
		Str("title", game.Name).
		Int("game_id", game.ID).
		Strs("unresolved", unresolved).
		Msg("Game created")

	// 5-6. Attach media. The record exists now, so failures stay per image.
	res.Media = s.attachMedia(ctx, p, game)
	return res
}

func (s *GameService) fail(res GameResult, err error) GameResult {
	log.Error().Err(err).Str("op", "upsertProducts").Str("title", res.Title).Str("slug", res.Slug).
		Str("class", utils.ErrorClass(err)).Msg("failed to upsert game")
	res.Status = StatusFailed
	res.Err = err
	return res
}

type resolvedLinks map[models.ReferenceKind][]models.Reference

// resolveReferences looks every referenced name up concurrently. Names that
// are not found are reported as "kind:name" and skipped; store errors fail
// the product.
func (s *GameService) resolveReferences(ctx context.Context, p *models.CatalogProduct) (resolvedLinks, []string, error) {
	type lookup struct {
		kind models.ReferenceKind
		name string
		ref  *models.Reference
		err  error
	}

	var lookups []*lookup
	for _, kind := range models.ReferenceKinds {
		for _, name := range p.ReferenceNames(kind) {
			if strings.TrimSpace(name) == "" {
				continue
			}
			lookups = append(lookups, &lookup{kind: kind, name: name})
		}
	}

	g := newGroup(0)
	for _, l := range lookups {
		l := l
		g.Go(func() error {
			l.ref, l.err = s.refs.FindByName(ctx, l.kind, l.name)
			return nil
		})
	}
	_ = g.Wait()

	links := make(resolvedLinks, len(models.ReferenceKinds))
	var unresolved []string
	for _, l := range lookups {
		switch {
		case l.err == nil:
			links[l.kind] = append(links[l.kind], *l.ref)
		case errors.Is(l.err, utils.ErrNotFound):
			unresolved = append(unresolved, fmt.Sprintf("%s:%s", l.kind, l.name))
		default:
			return nil, nil, &utils.StoreError{Op: "findByName", Kind: string(l.kind), Input: l.name, Err: l.err}
		}
	}
	return links, unresolved, nil
}

func (s *GameService) buildGame(p *models.CatalogProduct, info *models.DetailInfo, links resolvedLinks) (*models.Game, error) {
	price := decimal.Zero
	if amount := strings.TrimSpace(p.Price.FinalMoney.Amount); amount != "" {
		var err error
		price, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, &utils.ParseError{Op: "upsertProducts", Input: amount, Err: err}
		}
	}

	now := s.now()
	return &models.Game{
		Name:             p.Title,
		Slug:             p.Slug,
		Price:            price,
		ReleaseDate:      parseReleaseDate(p.ReleaseDate),
		Rating:           info.Rating,
		Description:      info.Description,
		ShortDescription: info.ShortDescription,
		PublishedAt:      &now,
		Categories:       links[models.ReferenceCategory],
		Platforms:        links[models.ReferencePlatform],
		Developers:       links[models.ReferenceDeveloper],
		Publishers:       links[models.ReferencePublisher],
	}, nil
}

// attachMedia uploads the cover, then the gallery images concurrently.
// Result order: cover first, gallery in screenshot order.
func (s *GameService) attachMedia(ctx context.Context, p *models.CatalogProduct, game *models.Game) []MediaResult {
	gallery := GalleryURLs(p.Screenshots, s.cfg.GalleryLimit, s.cfg.ImageFormatter)
	results := make([]MediaResult, 1+len(gallery))

	results[0] = s.attach(ctx, p.CoverHorizontal, game, models.MediaCover)

	g := newGroup(0)
	for i, url := range gallery {
		i, url := i, url
		g.Go(func() error {
			results[1+i] = s.attach(ctx, url, game, models.MediaGallery)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *GameService) attach(ctx context.Context, url string, game *models.Game, field models.MediaField) MediaResult {
	res := MediaResult{Field: field, URL: url}
	if err := s.media.Attach(ctx, url, game, field); err != nil {
		log.Error().Err(err).Str("op", "attachMedia").Str("field", string(field)).
			Str("url", url).Int("game_id", game.ID).Msg("failed to attach media")
		res.Err = err
		metrics.RecordMedia(string(field), string(StatusFailed))
		return res
	}
	metrics.RecordMedia(string(field), string(StatusCreated))
	return res
}

// GalleryURLs returns the first limit screenshots with the {formatter}
// token replaced, in original order.
func GalleryURLs(screenshots []string, limit int, formatter string) []string {
	if limit > len(screenshots) {
		limit = len(screenshots)
	}
	if limit <= 0 {
		return nil
	}
	urls := make([]string, 0, limit)
	for _, shot := range screenshots[:limit] {
		urls = append(urls, strings.Replace(shot, formatterToken, formatter, 1))
	}
	return urls
}

// parseReleaseDate accepts the catalog's date formats; unknown formats
// yield nil rather than failing the product.
func parseReleaseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	log.Debug().Str("release_date", raw).Msg("unrecognised release date")
	return nil
}
