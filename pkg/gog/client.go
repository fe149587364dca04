package gog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

const (
	// CatalogURL is the public GOG catalog listing endpoint.
	CatalogURL = "https://catalog.gog.com/v1/catalog"
	// StorefrontURL is the base of the human-facing product pages.
	StorefrontURL = "https://www.gog.com"

	userAgent = "gtd-catalog/1.0 (+https://gtd.co.id)"
	// maxBodySize caps any single response (detail pages, images).
	maxBodySize = 32 << 20
)

// ErrBodyTooLarge is wrapped by the FetchError returned for a response
// larger than the client accepts.
var ErrBodyTooLarge = errors.New("response body too large")

// Config configures a Client. Empty fields use the package defaults.
type Config struct {
	CatalogURL    string
	StorefrontURL string
	DefaultLimit  int
	DefaultOrder  string
	Timeout       time.Duration
	// RateLimit is requests per second across all calls; 0 disables limiting.
	RateLimit  float64
	HTTPClient *http.Client
}

// Client talks to the GOG catalog API, storefront pages and image CDN.
type Client struct {
	httpClient    *http.Client
	catalogURL    string
	storefrontURL string
	defaults      CatalogOptions
	limiter       *rate.Limiter
	maxBody       int64
	debug         bool
}

// NewClient constructs a new GOG client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = CatalogURL
	}
	if cfg.StorefrontURL == "" {
		cfg.StorefrontURL = StorefrontURL
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.DefaultOrder == "" {
		cfg.DefaultOrder = DefaultOrder
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	burst := 0
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = 1
	}

	return &Client{
		httpClient:    hc,
		catalogURL:    cfg.CatalogURL,
		storefrontURL: strings.TrimSuffix(cfg.StorefrontURL, "/"),
		defaults:      CatalogOptions{Limit: cfg.DefaultLimit, Order: cfg.DefaultOrder},
		limiter:       rate.NewLimiter(limit, burst),
		maxBody:       maxBodySize,
		debug:         os.Getenv("ENV") == "development",
	}
}

// FetchCatalogPage retrieves one catalog page. Products keep the API's order.
func (c *Client) FetchCatalogPage(ctx context.Context, opts CatalogOptions) ([]models.CatalogProduct, error) {
	opts = opts.merge(c.defaults)
	endpoint := c.catalogURL + "?" + opts.query().Encode()

	body, _, err := c.get(ctx, "fetchCatalogPage", endpoint, "application/json")
	if err != nil {
		return nil, err
	}

	var resp CatalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &utils.ParseError{Op: "fetchCatalogPage", Input: endpoint, Err: err}
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("products", len(resp.Products)).
		Int("page", resp.CurrentPage).
		Int("pages", resp.Pages).
		Msg("[GOG] Catalog page fetched")

	return resp.Products, nil
}

// DetailPath maps a catalog slug onto the storefront URL convention: only
// the first hyphen becomes an underscore, then the result is lowercased.
//
//	"my-game-name" → "my_game-name"
func DetailPath(slug string) string {
	return strings.ToLower(strings.Replace(slug, "-", "_", 1))
}

// DetailURL returns the storefront page URL for a catalog slug.
func (c *Client) DetailURL(slug string) string {
	return fmt.Sprintf("%s/game/%s", c.storefrontURL, DetailPath(slug))
}

// FetchDetailPage returns the raw HTML of the product detail page.
func (c *Client) FetchDetailPage(ctx context.Context, slug string) ([]byte, error) {
	body, _, err := c.get(ctx, "fetchDetail", c.DetailURL(slug), "text/html")
	return body, err
}

// Download fetches a binary payload such as a cover image and returns it
// with the server-reported content type.
func (c *Client) Download(ctx context.Context, url string) ([]byte, string, error) {
	return c.get(ctx, "download", url, "image/*")
}

// get performs a rate-limited GET and reads the whole body. Non-2xx
// responses and transport failures become *utils.FetchError.
func (c *Client) get(ctx context.Context, op, url, accept string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", &utils.FetchError{Op: op, URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &utils.FetchError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &utils.FetchError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if c.debug {
		log.Debug().
			Str("op", op).
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Dur("latency", time.Since(start)).
			Msg("[GOG] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, "", &utils.FetchError{Op: op, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, "", &utils.FetchError{Op: op, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, "", &utils.FetchError{Op: op, URL: url, Err: fmt.Errorf("%w: response exceeds %d bytes", ErrBodyTooLarge, c.maxBody)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}
