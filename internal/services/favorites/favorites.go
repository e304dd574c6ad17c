package favorites

import (
	"context"
	"errors"
	"log/slog"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrMovieNotFound    = errors.New("movie not found in database")
	ErrAlreadyFavorite  = errors.New("movie already in favorites")
	ErrFavoriteNotFound = errors.New("movie not found in favorites")
)

type FavoriteStorage interface {
	Add(ctx context.Context, userID, movieID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteMovie, error)
	Remove(ctx context.Context, userID, movieID uuid.UUID) error
}

type FavoriteService struct {
	log     *slog.Logger
	storage FavoriteStorage
}

func New(log *slog.Logger, storage FavoriteStorage) *FavoriteService {
	return &FavoriteService{log: log, storage: storage}
}

func (s *FavoriteService) Add(ctx context.Context, userID, movieID uuid.UUID) error {
	const op = "favorites.FavoriteService.Add"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	if err := s.storage.Add(ctx, userID, movieID); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("movie already in favorites")
			return ErrAlreadyFavorite
		case errors.Is(err, storage.ErrNotFound):
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error("Error adding favorite", "errMsg", err.Error())
		return err
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteMovie, error) {
	const op = "favorites.FavoriteService.List"
	movies, err := s.storage.List(ctx, userID)
	if err != nil {
		s.log.With("op", op, "user_id", userID).Error("Error listing favorites", "errMsg", err.Error())
		return nil, err
	}
	return movies, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, movieID uuid.UUID) error {
	const op = "favorites.FavoriteService.Remove"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	if err := s.storage.Remove(ctx, userID, movieID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not in favorites")
			return ErrFavoriteNotFound
		}
		log.Error("Error removing favorite", "errMsg", err.Error())
		return err
	}
	return nil
}
