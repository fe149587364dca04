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

// gameLinkTables maps each kind to its join table and foreign key column.
var gameLinkTables = map[models.ReferenceKind][2]string{
	models.ReferenceCategory:  {"game_categories", "category_id"},
	models.ReferenceDeveloper: {"game_developers", "developer_id"},
	models.ReferencePlatform:  {"game_platforms", "platform_id"},
	models.ReferencePublisher: {"game_publishers", "publisher_id"},
}

// GameRepository handles data access for games.
type GameRepository struct {
	db *sqlx.DB
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// FindByTitle returns the game named exactly title, or utils.ErrNotFound.
func (r *GameRepository) FindByTitle(ctx context.Context, title string) (*models.Game, error) {
	const q = `
        SELECT id, name, slug, price, release_date, rating, description,
               short_description, published_at, created_at
        FROM games WHERE name = $1 LIMIT 1`

	var g models.Game
	if err := r.db.GetContext(ctx, &g, q, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts the game and its reference links in one transaction.
// Link order follows the slices on game.
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO games (
            name, slug, price, release_date, rating, description,
            short_description, published_at, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
        RETURNING id, created_at`

	if err := tx.QueryRowxContext(ctx, q,
		game.Name, game.Slug, game.Price, game.ReleaseDate, game.Rating, game.Description,
		game.ShortDescription, game.PublishedAt,
	).Scan(&game.ID, &game.CreatedAt); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for _, kind := range models.ReferenceKinds {
		if err := linkReferences(ctx, tx, game.ID, kind, game.References(kind)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func linkReferences(ctx context.Context, tx *sqlx.Tx, gameID int, kind models.ReferenceKind, refs []models.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	link := gameLinkTables[kind]
	q := `INSERT INTO ` + link[0] + ` (game_id, ` + link[1] + `, position) VALUES ($1, $2, $3)
        ON CONFLICT DO NOTHING`

	stmt, err := tx.PreparexContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare %s link: %w", kind, err)
	}
	defer stmt.Close()

	for i, ref := range refs {
		if _, err := stmt.ExecContext(ctx, gameID, ref.ID, i); err != nil {
			return fmt.Errorf("link %s %q: %w", kind, ref.Name, err)
		}
	}
	return nil
}
