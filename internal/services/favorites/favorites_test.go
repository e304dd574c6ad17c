package favorites

import (
	"context"
	"log/slog"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storageMock struct {
	mock.Mock
}

func (m *storageMock) Add(ctx context.Context, userID, movieID uuid.UUID) error {
	return m.Called(ctx, userID, movieID).Error(0)
}

func (m *storageMock) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteMovie, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.FavoriteMovie), args.Error(1)
}

func (m *storageMock) Remove(ctx context.Context, userID, movieID uuid.UUID) error {
	return m.Called(ctx, userID, movieID).Error(0)
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	fresh, dup, missing := uuid.New(), uuid.New(), uuid.New()
	st := &storageMock{}
	st.On("Add", ctx, userID, fresh).Return(nil)
	st.On("Add", ctx, userID, dup).Return(&storage.ConflictError{Constraint: "user_favorites_pkey"})
	st.On("Add", ctx, userID, missing).Return(storage.ErrNotFound)
	svc := New(slog.Default(), st)

	assert.NoError(t, svc.Add(ctx, userID, fresh))
	assert.ErrorIs(t, svc.Add(ctx, userID, dup), ErrAlreadyFavorite)
	assert.ErrorIs(t, svc.Add(ctx, userID, missing), ErrMovieNotFound)
}

func TestListAndRemove(t *testing.T) {
	ctx := context.Background()
	userID, movieID := uuid.New(), uuid.New()
	st := &storageMock{}
	st.On("List", ctx, userID).Return([]models.FavoriteMovie{{ID: movieID, OriginalTitle: "Heat"}}, nil)
	st.On("Remove", ctx, userID, movieID).Return(nil).Once()
	st.On("Remove", ctx, userID, movieID).Return(storage.ErrNotFound)
	svc := New(slog.Default(), st)

	movies, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Heat", movies[0].OriginalTitle)

	assert.NoError(t, svc.Remove(ctx, userID, movieID))
	assert.ErrorIs(t, svc.Remove(ctx, userID, movieID), ErrFavoriteNotFound)
}
