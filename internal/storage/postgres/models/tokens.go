package models

import (
	"context"
	"mbox/proj/internal/storage/postgres"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BlacklistModel struct {
	DB *pgxpool.Pool
}

func (m *BlacklistModel) Add(ctx context.Context, token string, expiresAt *time.Time) error {
	_, err := m.DB.Exec(
		ctx,
		"INSERT INTO blacklisted_tokens (token, expires_at) VALUES ($1, $2) ON CONFLICT (token) DO NOTHING",
		token,
		expiresAt,
	)
	return postgres.TranslateError(err)
}

func (m *BlacklistModel) Exists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM blacklisted_tokens WHERE token = $1)", token).Scan(&exists)
	if err != nil {
		return false, postgres.TranslateError(err)
	}
	return exists, nil
}
