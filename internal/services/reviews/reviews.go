package reviews

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"strings"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type ReviewStorage interface {
	Insert(ctx context.Context, review *models.ReviewComment) (*models.ReviewComment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ReviewComment, error)
	GetRating(ctx context.Context, userID, movieID uuid.UUID) (*models.ReviewComment, error)
	UpdateRating(ctx context.Context, id uuid.UUID, rating int) (*models.ReviewComment, error)
	UpdateComment(ctx context.Context, id uuid.UUID, comment string) (*models.ReviewComment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForMovie(ctx context.Context, movieID uuid.UUID) ([]models.ReviewComment, error)
	ListCommentsForMovie(ctx context.Context, movieID uuid.UUID) ([]models.ReviewComment, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ReviewComment, error)
	RatingDistribution(ctx context.Context, movieID uuid.UUID) (map[int]int, error)
}

type MovieChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type ReviewService struct {
	log     *slog.Logger
	storage ReviewStorage
	movies  MovieChecker
}

func New(log *slog.Logger, storage ReviewStorage, movies MovieChecker) *ReviewService {
	return &ReviewService{
		log:     log,
		storage: storage,
		movies:  movies,
	}
}

func (s *ReviewService) ensureMovie(ctx context.Context, log *slog.Logger, movieID uuid.UUID) error {
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		log.Error("Error checking movie", "errMsg", err.Error())
		return err
	}
	if !exists {
		log.Info("movie not found")
		return ErrMovieNotFound
	}
	return nil
}

// AddRating stores the user's rating for a movie. An existing rating is
// overwritten, in which case created is false.
func (s *ReviewService) AddRating(ctx context.Context, userID, movieID uuid.UUID, rating int) (review *models.ReviewComment, created bool, err error) {
	const op = "reviews.ReviewService.AddRating"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	if rating < MinRating || rating > MaxRating {
		return nil, false, ErrRatingOutOfRange
	}
	if err := s.ensureMovie(ctx, log, movieID); err != nil {
		return nil, false, err
	}

	existing, err := s.storage.GetRating(ctx, userID, movieID)
	switch {
	case err == nil:
		review, err = s.storage.UpdateRating(ctx, existing.ID, rating)
		if err != nil {
			log.Error("Error updating rating", "errMsg", err.Error())
			return nil, false, err
		}
		log.Info("rating updated", "id", review.ID)
		return review, false, nil
	case !errors.Is(err, storage.ErrNotFound):
		log.Error("Error getting rating", "errMsg", err.Error())
		return nil, false, err
	}

	review, err = s.storage.Insert(ctx, &models.ReviewComment{UserID: userID, MovieID: movieID, Rating: &rating})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("concurrent rating rejected")
			return nil, false, ErrAlreadyRated
		case errors.Is(err, storage.ErrNotFound):
			return nil, false, ErrMovieNotFound
		}
		log.Error("Error inserting rating", "errMsg", err.Error())
		return nil, false, err
	}
	log.Info("rating added", "id", review.ID)
	return review, true, nil
}

func (s *ReviewService) AddComment(ctx context.Context, userID, movieID uuid.UUID, comment string) (*models.ReviewComment, error) {
	const op = "reviews.ReviewService.AddComment"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	if err := s.ensureMovie(ctx, log, movieID); err != nil {
		return nil, err
	}
	review, err := s.storage.Insert(ctx, &models.ReviewComment{UserID: userID, MovieID: movieID, Comment: &comment})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		log.Error("Error inserting comment", "errMsg", err.Error())
		return nil, err
	}
	log.Info("comment added", "id", review.ID)
	return review, nil
}

type Group struct {
	Count int                    `json:"count"`
	Data  []models.ReviewComment `json:"data"`
}

// Partition splits a listing into rating-bearing records and comment-only ones.
type Partition struct {
	Ratings  Group `json:"ratings"`
	Comments Group `json:"comments"`
	Total    int   `json:"total"`
}

func partition(items []models.ReviewComment) *Partition {
	p := &Partition{
		Ratings:  Group{Data: []models.ReviewComment{}},
		Comments: Group{Data: []models.ReviewComment{}},
		Total:    len(items),
	}
	for _, item := range items {
		switch {
		case item.HasRating():
			p.Ratings.Data = append(p.Ratings.Data, item)
		case item.HasComment():
			p.Comments.Data = append(p.Comments.Data, item)
		}
	}
	p.Ratings.Count = len(p.Ratings.Data)
	p.Comments.Count = len(p.Comments.Data)
	return p
}

func (s *ReviewService) ListForMovie(ctx context.Context, movieID uuid.UUID) (*Partition, error) {
	const op = "reviews.ReviewService.ListForMovie"
	items, err := s.storage.ListForMovie(ctx, movieID)
	if err != nil {
		s.log.With("op", op, "movie_id", movieID).Error("Error listing reviews", "errMsg", err.Error())
		return nil, err
	}
	return partition(items), nil
}

func (s *ReviewService) CommentsForMovie(ctx context.Context, movieID uuid.UUID) ([]models.ReviewComment, error) {
	const op = "reviews.ReviewService.CommentsForMovie"
	items, err := s.storage.ListCommentsForMovie(ctx, movieID)
	if err != nil {
		s.log.With("op", op, "movie_id", movieID).Error("Error listing comments", "errMsg", err.Error())
		return nil, err
	}
	return items, nil
}

func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID) (*Partition, error) {
	const op = "reviews.ReviewService.ListForUser"
	items, err := s.storage.ListForUser(ctx, userID)
	if err != nil {
		s.log.With("op", op, "user_id", userID).Error("Error listing reviews", "errMsg", err.Error())
		return nil, err
	}
	return partition(items), nil
}

func (s *ReviewService) RatingStats(ctx context.Context, movieID uuid.UUID) (*models.RatingStats, error) {
	const op = "reviews.ReviewService.RatingStats"
	counts, err := s.storage.RatingDistribution(ctx, movieID)
	if err != nil {
		s.log.With("op", op, "movie_id", movieID).Error("Error aggregating ratings", "errMsg", err.Error())
		return nil, err
	}
	return ratingStats(counts), nil
}

func ratingStats(counts map[int]int) *models.RatingStats {
	stats := &models.RatingStats{RatingDistribution: make(map[int]int, MaxRating)}
	var sum int
	for star := MinRating; star <= MaxRating; star++ {
		n := counts[star]
		stats.RatingDistribution[star] = n
		stats.TotalRatings += n
		sum += star * n
	}
	if stats.TotalRatings > 0 {
		avg := float64(sum) / float64(stats.TotalRatings)
		stats.AverageRating = math.Round(avg*10) / 10
	}
	return stats
}

func (s *ReviewService) UpdateComment(ctx context.Context, itemID, userID uuid.UUID, comment string) (*models.ReviewComment, error) {
	const op = "reviews.ReviewService.UpdateComment"
	log := s.log.With("op", op, "id", itemID, "user_id", userID)
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	item, err := s.storage.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return nil, ErrCommentNotFound
		}
		log.Error("Error getting comment", "errMsg", err.Error())
		return nil, err
	}
	if item.UserID != userID {
		log.Warn("attempt to update someone else's comment")
		return nil, ErrForbiddenUpdate
	}
	if item.Kind() == models.KindRating {
		return nil, ErrRatingOnly
	}
	updated, err := s.storage.UpdateComment(ctx, itemID, comment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		log.Error("Error updating comment", "errMsg", err.Error())
		return nil, err
	}
	return updated, nil
}

// Delete removes a rating or comment owned by the user and reports which kind
// of record it was.
func (s *ReviewService) Delete(ctx context.Context, itemID, userID uuid.UUID) (models.ReviewKind, error) {
	const op = "reviews.ReviewService.Delete"
	log := s.log.With("op", op, "id", itemID, "user_id", userID)
	item, err := s.storage.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("item not found")
			return "", ErrItemNotFound
		}
		log.Error("Error getting item", "errMsg", err.Error())
		return "", err
	}
	if item.UserID != userID {
		log.Warn("attempt to delete someone else's item")
		return "", ErrForbiddenDelete
	}
	if err := s.storage.Delete(ctx, itemID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrItemNotFound
		}
		log.Error("Error deleting item", "errMsg", err.Error())
		return "", err
	}
	kind := models.KindComment
	if item.HasRating() {
		kind = models.KindRating
	}
	log.Info("item deleted", "kind", kind)
	return kind, nil
}
