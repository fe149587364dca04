package service

import (
	"context"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/pkg/gog"
)

// CatalogFetcher fetches one storefront catalog page.
type CatalogFetcher interface {
	FetchCatalogPage(ctx context.Context, opts gog.CatalogOptions) ([]models.CatalogProduct, error)
}

// DetailPageFetcher returns raw detail page markup for a catalog slug.
type DetailPageFetcher interface {
	FetchDetailPage(ctx context.Context, slug string) ([]byte, error)
	DetailURL(slug string) string
}

// Downloader fetches binary payloads by URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// ReferenceStore finds and creates reference entities by name.
// FindByName returns utils.ErrNotFound when no entity matches.
type ReferenceStore interface {
	FindByName(ctx context.Context, kind models.ReferenceKind, name string) (*models.Reference, error)
	Create(ctx context.Context, ref *models.Reference) error
}

// GameStore finds and creates game records.
// FindByTitle returns utils.ErrNotFound when no game matches.
type GameStore interface {
	FindByTitle(ctx context.Context, title string) (*models.Game, error)
	Create(ctx context.Context, game *models.Game) error
}

// MediaRecorder persists media rows for backends that own the file storage.
type MediaRecorder interface {
	Create(ctx context.Context, m *models.Media) error
}

// MediaUploader hands a downloaded image to the media backend.
type MediaUploader interface {
	Upload(ctx context.Context, up models.MediaUpload) error
}

// DetailCache caches scraped detail pages by catalog slug.
type DetailCache interface {
	Get(ctx context.Context, slug string) (*models.DetailInfo, error)
	Set(ctx context.Context, slug string, info *models.DetailInfo) error
}

// RunLocker serialises populate runs.
type RunLocker interface {
	Acquire(ctx context.Context, runID string) (func(context.Context) error, error)
}

// DetailFetcher produces DetailInfo for a catalog slug.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, slug string) (*models.DetailInfo, error)
}

// MediaAttacher attaches an image to a created game.
type MediaAttacher interface {
	Attach(ctx context.Context, imageURL string, game *models.Game, field models.MediaField) error
}
