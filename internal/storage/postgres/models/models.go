package models

import (
	"errors"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
)

type Models struct {
	User      *UserModel
	Movie     *MovieModel
	Review    *ReviewModel
	Favorite  *FavoriteModel
	Blacklist *BlacklistModel
}

func New(db *postgres.PostgresDB) *Models {
	return &Models{
		User:      &UserModel{db.Conn},
		Movie:     &MovieModel{db.Conn},
		Review:    &ReviewModel{db.Conn},
		Favorite:  &FavoriteModel{db.Conn},
		Blacklist: &BlacklistModel{db.Conn},
	}
}

func collectOne[T any](rows pgx.Rows) (*T, error) {
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, postgres.TranslateError(err)
	}
	return &item, nil
}

func collectAll[T any](rows pgx.Rows) ([]T, error) {
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
