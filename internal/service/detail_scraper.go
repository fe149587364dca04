package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

const (
	// DefaultRating is stored when a detail page carries no age-rating icon.
	DefaultRating = "BR0"
	// ShortDescriptionLength is the rune length of DetailInfo.ShortDescription.
	ShortDescriptionLength = 160

	descriptionSelector = ".description"
	ratingIconSelector  = ".age-restrictions__icon use"
)

// DetailScraper extracts description and age rating from storefront detail pages.
type DetailScraper struct {
	pages DetailPageFetcher
	cache DetailCache
}

// NewDetailScraper constructs a DetailScraper. cache may be nil.
func NewDetailScraper(pages DetailPageFetcher, cache DetailCache) *DetailScraper {
	return &DetailScraper{pages: pages, cache: cache}
}

// FetchDetail scrapes the detail page of slug. It fails with *utils.FetchError
// when the page is unreachable and *utils.ParseError when the description
// block is missing.
func (s *DetailScraper) FetchDetail(ctx context.Context, slug string) (*models.DetailInfo, error) {
	if s.cache != nil {
		info, err := s.cache.Get(ctx, slug)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("slug", slug).Msg("detail cache read failed")
		}
	}

	body, err := s.pages.FetchDetailPage(ctx, slug)
	if err != nil {
		return nil, err
	}

	info, err := ParseDetail(body, s.pages.DetailURL(slug))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, slug, info); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("detail cache write failed")
		}
	}
	return info, nil
}

// ParseDetail extracts DetailInfo from detail page markup. source names the
// page in errors.
func ParseDetail(body []byte, source string) (*models.DetailInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &utils.ParseError{Op: "fetchDetail", Input: source, Err: err}
	}

	desc := doc.Find(descriptionSelector).First()
	if desc.Length() == 0 {
		return nil, &utils.ParseError{Op: "fetchDetail", Input: source, Err: utils.ErrMissingElement}
	}

	inner, err := desc.Html()
	if err != nil {
		return nil, &utils.ParseError{Op: "fetchDetail", Input: source, Err: err}
	}

	short := utils.TruncateRunes(utils.NormalizeWhitespace(desc.Text()), ShortDescriptionLength)

	return &models.DetailInfo{
		Description:      utils.NormalizeWhitespace(inner),
		ShortDescription: strings.TrimSpace(short),
		Rating:           parseRating(doc.Find(ratingIconSelector).First()),
	}, nil
}

// parseRating turns an icon reference such as "#PEGI_16" into "PEGI16".
func parseRating(icon *goquery.Selection) string {
	href := xlinkHref(icon)
	if href == "" {
		return DefaultRating
	}
	rating := strings.Replace(strings.ReplaceAll(href, "_", ""), "#", "", 1)
	if rating == "" {
		return DefaultRating
	}
	return rating
}

// xlinkHref reads the xlink:href of an SVG <use> element. Inside <svg> the
// HTML parser splits the attribute into namespace "xlink" and key "href";
// outside it keeps the literal name. A plain href (SVG 2) is the fallback.
func xlinkHref(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var plain string
	for _, a := range sel.Nodes[0].Attr {
		switch {
		case a.Namespace == "xlink" && a.Key == "href", a.Key == "xlink:href":
			return a.Val
		case a.Namespace == "" && a.Key == "href":
			plain = a.Val
		}
	}
	return plain
}
