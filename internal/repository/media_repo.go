package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// MediaRepository records images attached to games.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository creates a new MediaRepository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a media row and fills its ID and CreatedAt.
func (r *MediaRepository) Create(ctx context.Context, m *models.Media) error {
	const q = `
        INSERT INTO game_media (game_id, field, filename, url, size, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, q, m.GameID, m.Field, m.Filename, m.URL, m.Size).Scan(&m.ID, &m.CreatedAt)
}

// ListByGame returns the media of a game, cover first then gallery in upload order.
func (r *MediaRepository) ListByGame(ctx context.Context, gameID int) ([]models.Media, error) {
	const q = `
        SELECT id, game_id, field, filename, url, size, created_at
        FROM game_media WHERE game_id = $1
        ORDER BY CASE field WHEN 'cover' THEN 0 ELSE 1 END, id`

	var media []models.Media
	if err := r.db.SelectContext(ctx, &media, q, gameID); err != nil {
		return nil, err
	}
	return media, nil
}
