package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// referenceTables maps each kind to its table. Table names never come from input.
var referenceTables = map[models.ReferenceKind]string{
	models.ReferenceCategory:  "categories",
	models.ReferenceDeveloper: "developers",
	models.ReferencePlatform:  "platforms",
	models.ReferencePublisher: "publishers",
}

func referenceTable(kind models.ReferenceKind) (string, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
	return t, nil
}

// ReferenceRepository handles data access for categories, developers,
// platforms and publishers.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// FindByName returns the reference of kind with exactly name, or utils.ErrNotFound.
func (r *ReferenceRepository) FindByName(ctx context.Context, kind models.ReferenceKind, name string) (*models.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	q := `SELECT id, name, slug, created_at FROM ` + table + ` WHERE name = $1 LIMIT 1`

	var ref models.Reference
	if err := r.db.GetContext(ctx, &ref, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	ref.Kind = kind
	return &ref, nil
}

// Create inserts ref and fills its ID and CreatedAt.
func (r *ReferenceRepository) Create(ctx context.Context, ref *models.Reference) error {
	table, err := referenceTable(ref.Kind)
	if err != nil {
		return err
	}
	q := `INSERT INTO ` + table + ` (name, slug, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, q, ref.Name, ref.Slug).Scan(&ref.ID, &ref.CreatedAt)
}

// CountByKind returns the number of rows per kind.
func (r *ReferenceRepository) CountByKind(ctx context.Context) (map[models.ReferenceKind]int, error) {
	counts := make(map[models.ReferenceKind]int, len(referenceTables))
	for kind, table := range referenceTables {
		var n int
		if err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM `+table); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, nil
}
