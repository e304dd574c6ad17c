package models

import (
	"context"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/storage/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, is_verified, verification_token,
	verification_expires_at, created_at, updated_at`

type UserModel struct {
	DB *pgxpool.Pool
}

func (m *UserModel) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (name, email, password_hash, is_verified, verification_token, verification_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.VerificationToken,
		user.VerificationExpiresAt,
	)
	return collectOne[models.User](rows)
}

func (m *UserModel) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return collectOne[models.User](rows)
}

func (m *UserModel) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return collectOne[models.User](rows)
}

func (m *UserModel) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
	return collectOne[models.User](rows)
}

func (m *UserModel) List(ctx context.Context) ([]models.User, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	return collectAll[models.User](rows)
}

func (m *UserModel) Update(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE users SET name = $1, email = $2, password_hash = $3, is_verified = $4,
		verification_token = $5, verification_expires_at = $6, updated_at = now()
		WHERE id = $7 RETURNING `+userColumns,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.VerificationToken,
		user.VerificationExpiresAt,
		user.ID,
	)
	return collectOne[models.User](rows)
}

func (m *UserModel) Delete(ctx context.Context, id uuid.UUID) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
