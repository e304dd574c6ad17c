package models

import (
	"context"
	"errors"
	"mbox/proj/internal/domain/fields"
	"mbox/proj/internal/domain/filters"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/storage/postgres"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to the database named by TEST_DB_DSN and applies the
// migrations. Tests using it are skipped when the variable is unset.
func openTestDB(t *testing.T) *Models {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, dsn, 4, time.Minute)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrations must be re-runnable")
	return New(db)
}

func seedRows(t *testing.T, m *Models) (*models.User, *models.Movie) {
	t.Helper()
	ctx := context.Background()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	token := "tok-" + suffix
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Microsecond)
	user, err := m.User.Insert(ctx, &models.User{
		Name:                  "Ann",
		Email:                 "ann-" + suffix + "@example.com",
		PasswordHash:          []byte("hash"),
		VerificationToken:     &token,
		VerificationExpiresAt: &expiresAt,
	})
	require.NoError(t, err)
	t.Cleanup(func() { m.User.Delete(context.Background(), user.ID) })

	released := time.Date(1994, 9, 23, 0, 0, 0, 0, time.UTC)
	movie, err := m.Movie.Insert(ctx, &models.Movie{
		ImbID:               "tt" + suffix,
		OriginalTitle:       "The Shawshank Redemption",
		Description:         "Two imprisoned men bond over a number of years.",
		ReleaseDate:         &released,
		Genres:              []string{"drama"},
		ProductionCompanies: []fields.ProductionCompany{{Name: "Castle Rock"}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { m.Movie.DeleteByImbID(context.Background(), movie.ImbID) })
	return user, movie
}

func TestUserRowMapping(t *testing.T) {
	m := openTestDB(t)
	ctx := context.Background()
	user, _ := seedRows(t, m)

	require.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := m.User.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, []byte("hash"), byEmail.PasswordHash)
	require.NotNil(t, byEmail.VerificationExpiresAt)
	assert.True(t, user.VerificationExpiresAt.Equal(*byEmail.VerificationExpiresAt))

	byToken, err := m.User.GetByVerificationToken(ctx, *user.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byToken.ID)

	_, err = m.User.Insert(ctx, &models.User{Name: "Dup", Email: user.Email, PasswordHash: []byte("x")})
	var conflictErr *storage.ConflictError
	require.True(t, errors.As(err, &conflictErr), "got %v", err)
	assert.Equal(t, "users_email_key", conflictErr.Constraint)

	_, err = m.User.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMovieRowMapping(t *testing.T) {
	m := openTestDB(t)
	ctx := context.Background()
	_, movie := seedRows(t, m)

	got, err := m.Movie.GetByImbID(ctx, movie.ImbID)
	require.NoError(t, err)
	assert.Equal(t, []string{"drama"}, got.Genres)
	assert.Equal(t, []string{}, got.SpokenLanguages)
	assert.Equal(t, []fields.ProductionCompany{{Name: "Castle Rock"}}, got.ProductionCompanies)

	_, err = m.Movie.Insert(ctx, &models.Movie{ImbID: movie.ImbID, OriginalTitle: "x", Description: "y"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = m.Movie.Insert(ctx, &models.Movie{ImbID: "TT-UPPER", OriginalTitle: "x", Description: "y"})
	assert.ErrorIs(t, err, storage.ErrInvalidData)

	found, total, err := m.Movie.Search(ctx, filters.MovieCriteria{Keyword: movie.ImbID}, filters.Filters{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, movie.ID, found[0].ID)
}

func TestOneRatingPerUserAndMovie(t *testing.T) {
	m := openTestDB(t)
	ctx := context.Background()
	user, movie := seedRows(t, m)
	rating := func(v int) *int { return &v }

	review, err := m.Review.Insert(ctx, &models.ReviewComment{UserID: user.ID, MovieID: movie.ID, Rating: rating(4)})
	require.NoError(t, err)
	assert.Equal(t, "Ann", review.User.Name)
	assert.Equal(t, movie.OriginalTitle, review.Movie.OriginalTitle)

	_, err = m.Review.Insert(ctx, &models.ReviewComment{UserID: user.ID, MovieID: movie.ID, Rating: rating(2)})
	var conflictErr *storage.ConflictError
	require.True(t, errors.As(err, &conflictErr), "got %v", err)
	assert.Equal(t, "review_comments_one_rating_idx", conflictErr.Constraint)

	comment := "Great"
	_, err = m.Review.Insert(ctx, &models.ReviewComment{UserID: user.ID, MovieID: movie.ID, Comment: &comment})
	require.NoError(t, err, "comments are not limited")
	_, err = m.Review.Insert(ctx, &models.ReviewComment{UserID: user.ID, MovieID: movie.ID, Comment: &comment})
	require.NoError(t, err)

	_, err = m.Review.Insert(ctx, &models.ReviewComment{UserID: user.ID, MovieID: uuid.New(), Rating: rating(3)})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	dist, err := m.Review.RatingDistribution(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dist[4])
}

func TestFavoritesArePairs(t *testing.T) {
	m := openTestDB(t)
	ctx := context.Background()
	user, movie := seedRows(t, m)

	require.NoError(t, m.Favorite.Add(ctx, user.ID, movie.ID))
	assert.ErrorIs(t, m.Favorite.Add(ctx, user.ID, movie.ID), storage.ErrConflict)

	list, err := m.Favorite.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, m.Favorite.Remove(ctx, user.ID, movie.ID))
	assert.ErrorIs(t, m.Favorite.Remove(ctx, user.ID, movie.ID), storage.ErrNotFound)
}
