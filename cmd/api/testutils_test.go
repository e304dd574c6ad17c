package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mbox/proj/internal/config"
	"mbox/proj/internal/domain/filters"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/services"
	"mbox/proj/internal/services/auth"
	"mbox/proj/internal/services/favorites"
	"mbox/proj/internal/services/movies"
	"mbox/proj/internal/services/reviews"
	"mbox/proj/internal/services/users"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/uploads"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memStore backs every service with maps so handlers can be exercised
// end to end without a database.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	blacklist map[string]bool
	movies    map[uuid.UUID]*models.Movie
	reviews   []*models.ReviewComment
	favorites map[uuid.UUID]map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]*models.User),
		blacklist: make(map[string]bool),
		movies:    make(map[uuid.UUID]*models.Movie),
		favorites: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

type memUsers struct{ *memStore }

func (s memUsers) Insert(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, &storage.ConflictError{Constraint: "users_email_key"}
		}
	}
	stored := *user
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	s.users[stored.ID] = &stored
	res := stored
	return &res, nil
}

func (s memUsers) find(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			res := *u
			return &res, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s memUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.ID == id })
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s memUsers) GetByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.VerificationToken != nil && *u.VerificationToken == token })
}

func (s memUsers) Update(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	stored := *user
	s.users[user.ID] = &stored
	res := stored
	return &res, nil
}

func (s memUsers) List(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, *u)
	}
	return list, nil
}

func (s memUsers) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type memBlacklist struct{ *memStore }

func (s memBlacklist) Add(_ context.Context, token string, _ *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = true
	return nil
}

func (s memBlacklist) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[token], nil
}

type memMovies struct{ *memStore }

func (s memMovies) Get(_ context.Context, id uuid.UUID) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	res := *m
	return &res, nil
}

func (s memMovies) GetByImbID(_ context.Context, imbID string) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movies {
		if m.ImbID == imbID {
			res := *m
			return &res, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s memMovies) Insert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *movie
	stored.ID = uuid.New()
	s.movies[stored.ID] = &stored
	res := stored
	return &res, nil
}

func (s memMovies) List(context.Context) ([]models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		list = append(list, *m)
	}
	return list, nil
}

func (s memMovies) Update(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *movie
	s.movies[movie.ID] = &stored
	res := stored
	return &res, nil
}

func (s memMovies) DeleteByImbID(_ context.Context, imbID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.movies {
		if m.ImbID == imbID {
			delete(s.movies, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s memMovies) Search(ctx context.Context, _ filters.MovieCriteria, _ filters.Filters) ([]models.Movie, int, error) {
	list, err := s.List(ctx)
	return list, len(list), err
}

func (s memMovies) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.movies[id]
	return ok, nil
}

type memReviews struct{ *memStore }

func (s memReviews) Insert(_ context.Context, review *models.ReviewComment) (*models.ReviewComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *review
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	s.reviews = append(s.reviews, &stored)
	res := stored
	return &res, nil
}

func (s memReviews) filter(match func(*models.ReviewComment) bool) []models.ReviewComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []models.ReviewComment{}
	for _, r := range s.reviews {
		if match(r) {
			res = append(res, *r)
		}
	}
	return res
}

func (s memReviews) first(match func(*models.ReviewComment) bool) (*models.ReviewComment, error) {
	found := s.filter(match)
	if len(found) == 0 {
		return nil, storage.ErrNotFound
	}
	return &found[0], nil
}

func (s memReviews) Get(_ context.Context, id uuid.UUID) (*models.ReviewComment, error) {
	return s.first(func(r *models.ReviewComment) bool { return r.ID == id })
}

func (s memReviews) GetRating(_ context.Context, userID, movieID uuid.UUID) (*models.ReviewComment, error) {
	return s.first(func(r *models.ReviewComment) bool {
		return r.UserID == userID && r.MovieID == movieID && r.HasRating()
	})
}

func (s memReviews) modify(id uuid.UUID, fn func(*models.ReviewComment)) (*models.ReviewComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ID == id {
			fn(r)
			res := *r
			return &res, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s memReviews) UpdateRating(_ context.Context, id uuid.UUID, rating int) (*models.ReviewComment, error) {
	return s.modify(id, func(r *models.ReviewComment) { r.Rating = &rating })
}

func (s memReviews) UpdateComment(_ context.Context, id uuid.UUID, comment string) (*models.ReviewComment, error) {
	return s.modify(id, func(r *models.ReviewComment) { r.Comment = &comment })
}

func (s memReviews) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reviews {
		if r.ID == id {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s memReviews) ListForMovie(_ context.Context, movieID uuid.UUID) ([]models.ReviewComment, error) {
	return s.filter(func(r *models.ReviewComment) bool { return r.MovieID == movieID }), nil
}

func (s memReviews) ListCommentsForMovie(_ context.Context, movieID uuid.UUID) ([]models.ReviewComment, error) {
	return s.filter(func(r *models.ReviewComment) bool { return r.MovieID == movieID && r.HasComment() }), nil
}

func (s memReviews) ListForUser(_ context.Context, userID uuid.UUID) ([]models.ReviewComment, error) {
	return s.filter(func(r *models.ReviewComment) bool { return r.UserID == userID }), nil
}

func (s memReviews) RatingDistribution(_ context.Context, movieID uuid.UUID) (map[int]int, error) {
	counts := make(map[int]int)
	for _, r := range s.filter(func(r *models.ReviewComment) bool { return r.MovieID == movieID && r.HasRating() }) {
		counts[*r.Rating]++
	}
	return counts, nil
}

type memFavorites struct{ *memStore }

func (s memFavorites) Add(_ context.Context, userID, movieID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[movieID]; !ok {
		return storage.ErrNotFound
	}
	if s.favorites[userID] == nil {
		s.favorites[userID] = make(map[uuid.UUID]bool)
	}
	if s.favorites[userID][movieID] {
		return &storage.ConflictError{Constraint: "user_favorites_pkey"}
	}
	s.favorites[userID][movieID] = true
	return nil
}

func (s memFavorites) List(_ context.Context, userID uuid.UUID) ([]models.FavoriteMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []models.FavoriteMovie{}
	for movieID := range s.favorites[userID] {
		m := s.movies[movieID]
		list = append(list, models.FavoriteMovie{
			ID:            m.ID,
			OriginalTitle: m.OriginalTitle,
			PrimaryImage:  m.PrimaryImage,
			ReleaseDate:   m.ReleaseDate,
		})
	}
	return list, nil
}

func (s memFavorites) Remove(_ context.Context, userID, movieID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.favorites[userID][movieID] {
		return storage.ErrNotFound
	}
	delete(s.favorites[userID], movieID)
	return nil
}

type nopMailer struct{}

func (nopMailer) Send(string, string, any) error { return nil }

type syncExecutor struct{}

func (syncExecutor) Add(task func()) error {
	task()
	return nil
}

type nopTasks struct{}

func (nopTasks) Shutdown(context.Context) error { return nil }

type testApp struct {
	*Application
	store   *memStore
	handler http.Handler
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		AppSecret: "test-secret",
		PublicURL: "http://localhost:8000",
		Auth: config.Auth{
			AccessTokenTTL:  time.Hour,
			VerificationTTL: 10 * time.Minute,
			BcryptCost:      bcrypt.MinCost,
		},
		Uploads: config.Uploads{Dir: t.TempDir(), URLPrefix: "/uploads", MaxSize: 1 << 20},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	images, err := uploads.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.MaxSize)
	require.NoError(t, err)

	store := newMemStore()
	authService := auth.New(log, nopMailer{}, syncExecutor{}, memUsers{store}, memBlacklist{store}, auth.Options{
		Secret:          cfg.AppSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		VerificationTTL: cfg.Auth.VerificationTTL,
		BcryptCost:      cfg.Auth.BcryptCost,
		VerificationURL: cfg.PublicURL + "/user/verify/",
	})
	svc := &services.Services{
		Auth:      authService,
		Users:     users.New(log, memUsers{store}, cfg.Auth.BcryptCost, authService),
		Movies:    movies.New(log, memMovies{store}, images),
		Reviews:   reviews.New(log, memReviews{store}, memMovies{store}),
		Favorites: favorites.New(log, memFavorites{store}),
	}
	app := NewApplication(cfg, log, svc, nopTasks{})
	return &testApp{Application: app, store: store, handler: app.routes()}
}

// apiResponse is a decoded envelope. Body holds every top-level key, Data
// is set when the payload is an object.
type apiResponse struct {
	Code    int
	Status  string
	Message string
	Data    map[string]any
	Body    map[string]any
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)

	resp := apiResponse{Code: rec.Code}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp.Body), rec.Body.String())
	resp.Status, _ = resp.Body["status"].(string)
	resp.Message, _ = resp.Body["message"].(string)
	resp.Data, _ = resp.Body["data"].(map[string]any)
	return resp
}

// seedUser stores a verified user directly and returns a signed-in token.
func (ta *testApp) seedUser(t *testing.T, email, password string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := memUsers{ta.store}.Insert(context.Background(), &models.User{
		Name:         "Tester",
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
	})
	require.NoError(t, err)
	token, _, err := ta.services.Auth.SignIn(context.Background(), email, password)
	require.NoError(t, err)
	return user, token.AccessToken
}

func (ta *testApp) seedMovie(t *testing.T, imbID string) *models.Movie {
	t.Helper()
	movie, err := ta.services.Movies.Create(context.Background(), movies.CreateParams{
		ImbID:         imbID,
		OriginalTitle: "Movie " + imbID,
		Description:   "Description",
	})
	require.NoError(t, err)
	return movie
}
