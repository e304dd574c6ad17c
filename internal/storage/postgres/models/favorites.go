package models

import (
	"context"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/storage/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteModel struct {
	DB *pgxpool.Pool
}

func (m *FavoriteModel) Add(ctx context.Context, userID, movieID uuid.UUID) error {
	_, err := m.DB.Exec(ctx, "INSERT INTO user_favorites (user_id, movie_id) VALUES ($1, $2)", userID, movieID)
	if err != nil {
		return postgres.TranslateError(err)
	}
	return nil
}

func (m *FavoriteModel) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteMovie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT m.id, m.original_title, m.primary_image, m.release_date
		FROM user_favorites f JOIN movies m ON m.id = f.movie_id
		WHERE f.user_id = $1
		ORDER BY f.created_at ASC`,
		userID,
	)
	return collectAll[models.FavoriteMovie](rows)
}

func (m *FavoriteModel) Remove(ctx context.Context, userID, movieID uuid.UUID) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM user_favorites WHERE user_id = $1 AND movie_id = $2", userID, movieID)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
