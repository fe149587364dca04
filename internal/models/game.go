package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game is a persisted product record. Games are created once per distinct
// title and never updated by the populate pipeline.
type Game struct {
	ID               int             `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Slug             string          `db:"slug" json:"slug"`
	Price            decimal.Decimal `db:"price" json:"price"`
	ReleaseDate      *time.Time      `db:"release_date" json:"releaseDate,omitempty"`
	Rating           string          `db:"rating" json:"rating"`
	Description      string          `db:"description" json:"description"`
	ShortDescription string          `db:"short_description" json:"shortDescription"`
	PublishedAt      *time.Time      `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"-"`

	// Associations, in catalog order. Loaded only on create.
	Categories []Reference `db:"-" json:"categories,omitempty"`
	Platforms  []Reference `db:"-" json:"platforms,omitempty"`
	Developers []Reference `db:"-" json:"developers,omitempty"`
	Publishers []Reference `db:"-" json:"publishers,omitempty"`
}

// References returns the associations for the given kind.
func (g *Game) References(kind ReferenceKind) []Reference {
	switch kind {
	case ReferenceCategory:
		return g.Categories
	case ReferencePlatform:
		return g.Platforms
	case ReferenceDeveloper:
		return g.Developers
	case ReferencePublisher:
		return g.Publishers
	}
	return nil
}
