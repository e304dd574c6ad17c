package models

import (
	"context"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/storage/postgres"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewSelect = `SELECT rc.id, rc.user_id, rc.movie_id, rc.rating, rc.comment, rc.created_at, rc.updated_at,
	u.name AS user_name, u.email AS user_email, m.original_title AS movie_title, m.primary_image AS movie_image
	FROM review_comments rc
	JOIN users u ON u.id = rc.user_id
	JOIN movies m ON m.id = rc.movie_id`

type reviewRow struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	MovieID    uuid.UUID `db:"movie_id"`
	Rating     *int      `db:"rating"`
	Comment    *string   `db:"comment"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	UserName   string    `db:"user_name"`
	UserEmail  string    `db:"user_email"`
	MovieTitle string    `db:"movie_title"`
	MovieImage *string   `db:"movie_image"`
}

func (r *reviewRow) toModel() *models.ReviewComment {
	return &models.ReviewComment{
		ID:        r.ID,
		UserID:    r.UserID,
		MovieID:   r.MovieID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		User:      &models.Author{ID: r.UserID, Name: r.UserName, Email: r.UserEmail},
		Movie:     &models.MovieSummary{ID: r.MovieID, OriginalTitle: r.MovieTitle, PrimaryImage: r.MovieImage},
	}
}

type ReviewModel struct {
	DB *pgxpool.Pool
}

func (m *ReviewModel) Insert(ctx context.Context, review *models.ReviewComment) (*models.ReviewComment, error) {
	var id uuid.UUID
	err := m.DB.QueryRow(
		ctx,
		"INSERT INTO review_comments (user_id, movie_id, rating, comment) VALUES ($1, $2, $3, $4) RETURNING id",
		review.UserID,
		review.MovieID,
		review.Rating,
		review.Comment,
	).Scan(&id)
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return m.Get(ctx, id)
}

func (m *ReviewModel) Get(ctx context.Context, id uuid.UUID) (*models.ReviewComment, error) {
	rows, _ := m.DB.Query(ctx, reviewSelect+" WHERE rc.id = $1", id)
	row, err := collectOne[reviewRow](rows)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// GetRating returns the rating-bearing record of the user for the movie.
func (m *ReviewModel) GetRating(ctx context.Context, userID, movieID uuid.UUID) (*models.ReviewComment, error) {
	rows, _ := m.DB.Query(
		ctx,
		reviewSelect+" WHERE rc.user_id = $1 AND rc.movie_id = $2 AND rc.rating IS NOT NULL",
		userID,
		movieID,
	)
	row, err := collectOne[reviewRow](rows)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (m *ReviewModel) UpdateRating(ctx context.Context, id uuid.UUID, rating int) (*models.ReviewComment, error) {
	return m.update(ctx, "UPDATE review_comments SET rating = $1, updated_at = now() WHERE id = $2", rating, id)
}

func (m *ReviewModel) UpdateComment(ctx context.Context, id uuid.UUID, comment string) (*models.ReviewComment, error) {
	return m.update(ctx, "UPDATE review_comments SET comment = $1, updated_at = now() WHERE id = $2", comment, id)
}

func (m *ReviewModel) update(ctx context.Context, query string, value any, id uuid.UUID) (*models.ReviewComment, error) {
	status, err := m.DB.Exec(ctx, query, value, id)
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	if status.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *ReviewModel) Delete(ctx context.Context, id uuid.UUID) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM review_comments WHERE id = $1", id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *ReviewModel) ListForMovie(ctx context.Context, movieID uuid.UUID) ([]models.ReviewComment, error) {
	return m.list(ctx, reviewSelect+" WHERE rc.movie_id = $1 ORDER BY rc.created_at DESC", movieID)
}

func (m *ReviewModel) ListCommentsForMovie(ctx context.Context, movieID uuid.UUID) ([]models.ReviewComment, error) {
	return m.list(
		ctx,
		reviewSelect+" WHERE rc.movie_id = $1 AND coalesce(btrim(rc.comment), '') <> '' ORDER BY rc.created_at DESC",
		movieID,
	)
}

func (m *ReviewModel) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ReviewComment, error) {
	return m.list(ctx, reviewSelect+" WHERE rc.user_id = $1 ORDER BY rc.created_at DESC", userID)
}

func (m *ReviewModel) list(ctx context.Context, query string, id uuid.UUID) ([]models.ReviewComment, error) {
	rows, _ := m.DB.Query(ctx, query, id)
	reviewRows, err := collectAll[reviewRow](rows)
	if err != nil {
		return nil, err
	}
	reviews := make([]models.ReviewComment, 0, len(reviewRows))
	for _, row := range reviewRows {
		reviews = append(reviews, *row.toModel())
	}
	return reviews, nil
}

// RatingDistribution counts rating-bearing records of a movie per star value.
func (m *ReviewModel) RatingDistribution(ctx context.Context, movieID uuid.UUID) (map[int]int, error) {
	rows, err := m.DB.Query(
		ctx,
		`SELECT rating, count(*) FROM review_comments
		WHERE movie_id = $1 AND rating IS NOT NULL
		GROUP BY rating`,
		movieID,
	)
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	defer rows.Close()
	distribution := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		distribution[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.TranslateError(err)
	}
	return distribution, nil
}
