package movies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mbox/proj/internal/domain/fields"
	"mbox/proj/internal/domain/filters"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/lib/taglist"
	"mbox/proj/internal/storage"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MoviesStorage interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	GetByImbID(ctx context.Context, imbID string) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	List(ctx context.Context) ([]models.Movie, error)
	Update(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	DeleteByImbID(ctx context.Context, imbID string) error
	Search(ctx context.Context, criteria filters.MovieCriteria, f filters.Filters) ([]models.Movie, int, error)
}

type ImageStore interface {
	SaveImage(src io.Reader) (string, error)
	RemoveImage(url string) error
}

type MovieService struct {
	log     *slog.Logger
	storage MoviesStorage
	images  ImageStore
}

func New(log *slog.Logger, storage MoviesStorage, images ImageStore) *MovieService {
	return &MovieService{
		log:     log,
		storage: storage,
		images:  images,
	}
}

// CreateParams carries a new movie. Tag fields accept anything taglist.Parse
// understands.
type CreateParams struct {
	ImbID               string
	OriginalTitle       string
	Description         string
	Trailer             *string
	ReleaseDate         *string
	CountriesOfOrigin   any
	SpokenLanguages     any
	FilmingLocations    any
	ProductionCompanies any
	Genres              any
	SubGenres           any
	IsAdult             bool
	AverageRating       *float64
	Image               io.Reader
}

// UpdateParams is a partial update: nil fields keep their stored value.
type UpdateParams struct {
	ImbID               *string
	OriginalTitle       *string
	Description         *string
	Trailer             *string
	ReleaseDate         *string
	CountriesOfOrigin   any
	SpokenLanguages     any
	FilmingLocations    any
	ProductionCompanies any
	Genres              any
	SubGenres           any
	IsAdult             *bool
	AverageRating       *float64
	Image               io.Reader
}

func NormalizeImbID(imbID string) string {
	return strings.ToLower(strings.TrimSpace(imbID))
}

func parseReleaseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidReleaseDate
}

func productionCompanies(v any) []fields.ProductionCompany {
	names := taglist.Parse(v)
	companies := make([]fields.ProductionCompany, 0, len(names))
	for _, name := range names {
		companies = append(companies, fields.ProductionCompany{Name: name})
	}
	return companies
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *MovieService) saveImage(log *slog.Logger, src io.Reader) (*string, error) {
	if src == nil {
		return nil, nil
	}
	url, err := s.images.SaveImage(src)
	if err != nil {
		log.Warn("Error saving image", "errMsg", err.Error())
		return nil, err
	}
	return &url, nil
}

// discardImage removes an image saved for a write that did not go through.
func (s *MovieService) discardImage(log *slog.Logger, url *string) {
	if url == nil {
		return
	}
	if err := s.images.RemoveImage(*url); err != nil {
		log.Warn("Error removing orphaned image", "url", *url, "errMsg", err.Error())
	}
}

func (s *MovieService) translateWriteErr(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, storage.ErrConflict):
		log.Info("movie already exists")
		return ErrMovieAlreadyExists
	case errors.Is(err, storage.ErrNotFound):
		log.Info("movie not found")
		return ErrMovieNotFound
	case errors.Is(err, storage.ErrInvalidData):
		log.Warn("movie rejected by storage", "errMsg", err.Error())
		return ErrInvalidMovieData
	}
	log.Error("Error writing movie", "errMsg", err.Error())
	return err
}

func (s *MovieService) Create(ctx context.Context, params CreateParams) (*models.Movie, error) {
	const op = "movies.MovieService.Create"
	imbID := NormalizeImbID(params.ImbID)
	log := s.log.With("op", op, "imb_id", imbID)

	if _, err := s.storage.GetByImbID(ctx, imbID); err == nil {
		log.Info("movie already exists")
		return nil, ErrMovieAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Error("Error looking up movie", "errMsg", err.Error())
		return nil, err
	}
	releaseDate, err := parseReleaseDate(params.ReleaseDate)
	if err != nil {
		return nil, err
	}
	image, err := s.saveImage(log, params.Image)
	if err != nil {
		return nil, err
	}
	movie, err := s.storage.Insert(ctx, &models.Movie{
		ImbID:               imbID,
		OriginalTitle:       strings.TrimSpace(params.OriginalTitle),
		Description:         strings.TrimSpace(params.Description),
		PrimaryImage:        image,
		Trailer:             emptyToNil(params.Trailer),
		ReleaseDate:         releaseDate,
		CountriesOfOrigin:   taglist.Parse(params.CountriesOfOrigin),
		SpokenLanguages:     taglist.Parse(params.SpokenLanguages),
		FilmingLocations:    taglist.Parse(params.FilmingLocations),
		ProductionCompanies: productionCompanies(params.ProductionCompanies),
		Genres:              taglist.Parse(params.Genres),
		SubGenres:           taglist.Parse(params.SubGenres),
		IsAdult:             params.IsAdult,
		AverageRating:       params.AverageRating,
	})
	if err != nil {
		s.discardImage(log, image)
		return nil, s.translateWriteErr(log, err)
	}
	log.Info("movie created", "id", movie.ID)
	return movie, nil
}

func (s *MovieService) Get(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) List(ctx context.Context) ([]models.Movie, error) {
	const op = "movies.MovieService.List"
	movies, err := s.storage.List(ctx)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, err
	}
	return movies, nil
}

func (s *MovieService) UpdateByImbID(ctx context.Context, imbID string, params UpdateParams) (*models.Movie, error) {
	const op = "movies.MovieService.UpdateByImbID"
	imbID = NormalizeImbID(imbID)
	log := s.log.With("op", op, "imb_id", imbID)
	movie, err := s.storage.GetByImbID(ctx, imbID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error("Error getting movie", "errMsg", err.Error())
		return nil, err
	}

	if params.ImbID != nil {
		newImbID := NormalizeImbID(*params.ImbID)
		if newImbID != movie.ImbID {
			if _, err := s.storage.GetByImbID(ctx, newImbID); err == nil {
				log.Info("movie already exists", "new_imb_id", newImbID)
				return nil, ErrMovieAlreadyExists
			} else if !errors.Is(err, storage.ErrNotFound) {
				log.Error("Error looking up movie", "errMsg", err.Error())
				return nil, err
			}
			movie.ImbID = newImbID
		}
	}
	if params.OriginalTitle != nil {
		movie.OriginalTitle = strings.TrimSpace(*params.OriginalTitle)
	}
	if params.Description != nil {
		movie.Description = strings.TrimSpace(*params.Description)
	}
	if params.Trailer != nil {
		movie.Trailer = emptyToNil(params.Trailer)
	}
	if params.ReleaseDate != nil {
		releaseDate, err := parseReleaseDate(params.ReleaseDate)
		if err != nil {
			return nil, err
		}
		movie.ReleaseDate = releaseDate
	}
	if params.CountriesOfOrigin != nil {
		movie.CountriesOfOrigin = taglist.Parse(params.CountriesOfOrigin)
	}
	if params.SpokenLanguages != nil {
		movie.SpokenLanguages = taglist.Parse(params.SpokenLanguages)
	}
	if params.FilmingLocations != nil {
		movie.FilmingLocations = taglist.Parse(params.FilmingLocations)
	}
	if params.ProductionCompanies != nil {
		movie.ProductionCompanies = productionCompanies(params.ProductionCompanies)
	}
	if params.Genres != nil {
		movie.Genres = taglist.Parse(params.Genres)
	}
	if params.SubGenres != nil {
		movie.SubGenres = taglist.Parse(params.SubGenres)
	}
	if params.IsAdult != nil {
		movie.IsAdult = *params.IsAdult
	}
	if params.AverageRating != nil {
		movie.AverageRating = params.AverageRating
	}
	var newImage *string
	if params.Image != nil {
		newImage, err = s.saveImage(log, params.Image)
		if err != nil {
			return nil, err
		}
		movie.PrimaryImage = newImage
	}

	updatedMovie, err := s.storage.Update(ctx, movie)
	if err != nil {
		s.discardImage(log, newImage)
		return nil, s.translateWriteErr(log, err)
	}
	log.Info("movie updated")
	return updatedMovie, nil
}

func (s *MovieService) DeleteByImbID(ctx context.Context, imbID string) error {
	const op = "movies.MovieService.DeleteByImbID"
	imbID = NormalizeImbID(imbID)
	log := s.log.With("op", op, "imb_id", imbID)
	if err := s.storage.DeleteByImbID(ctx, imbID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error("Error deleting movie", "errMsg", err.Error())
		return err
	}
	log.Info("movie deleted")
	return nil
}

const (
	SortReleaseDate   = "releaseDate"
	SortOriginalTitle = "originalTitle"
	SortAverageRating = "averageRating"
)

var sortSafelist = map[string]filters.SortRule{
	SortReleaseDate:   {Column: "release_date", DefaultDir: filters.DescSort},
	SortOriginalTitle: {Column: "original_title COLLATE title_numeric", DefaultDir: filters.AscSort},
	SortAverageRating: {Column: "average_rating", DefaultDir: filters.DescSort},
}

var sortDescriptions = map[string]string{
	"releaseDate-desc":   "Latest Release (Most recent first: 2024, 2023, 2022...)",
	"releaseDate-asc":    "Oldest Release (Oldest first: 1995, 1998, 2001...)",
	"originalTitle-asc":  "Title A-Z (Alphabetical ascending: A, B, C...)",
	"originalTitle-desc": "Title Z-A (Alphabetical descending: Z, Y, X...)",
	"averageRating-desc": "Highest Rating (Highest first: 9.8, 9.2, 8.5...)",
	"averageRating-asc":  "Lowest Rating (Lowest first: 3.2, 4.0, 5.1...)",
}

func SortDescription(sortBy, sortOrder string) string {
	sortOrder = strings.ToLower(sortOrder)
	if desc, ok := sortDescriptions[sortBy+"-"+sortOrder]; ok {
		return desc
	}
	return sortBy + " " + sortOrder
}

type SearchParams struct {
	Keyword        string
	Genres         string
	ReleaseYearMin *int
	ReleaseYearMax *int
	MinRating      *float64
	MaxRating      *float64
	IsAdult        *bool
	SortBy         string
	SortOrder      string
	Page           int
	Limit          int
}

type SortApplied struct {
	SortBy          string `json:"sortBy"`
	SortOrder       string `json:"sortOrder"`
	SortDescription string `json:"sortDescription"`
}

type SearchResult struct {
	Movies      []models.Movie
	Total       int
	TotalPages  int
	CurrentPage int
	PageSize    int
	Sort        SortApplied
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func normalizeKeyword(keyword string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(keyword), " "))
}

func splitGenres(genres string) []string {
	var list []string
	for _, g := range strings.Split(genres, ",") {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			list = append(list, g)
		}
	}
	return list
}

func (s *MovieService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	const op = "movies.MovieService.Search"
	log := s.log.With("op", op)
	criteria := filters.MovieCriteria{
		Keyword:        normalizeKeyword(params.Keyword),
		Genres:         splitGenres(params.Genres),
		ReleaseYearMin: params.ReleaseYearMin,
		ReleaseYearMax: params.ReleaseYearMax,
		MinRating:      params.MinRating,
		MaxRating:      params.MaxRating,
		IsAdult:        params.IsAdult,
	}
	f := filters.Filters{
		Page:         params.Page,
		PageSize:     params.Limit,
		SortBy:       params.SortBy,
		SortOrder:    params.SortOrder,
		SortSafelist: sortSafelist,
		FallbackSort: SortReleaseDate,
	}
	log.Debug("searching movies", "criteria", criteria, "sort_by", f.SortKey(), "sort_dir", f.SortDirection())
	movies, total, err := s.storage.Search(ctx, criteria, f)
	if err != nil {
		log.Error("Error searching movies", "errMsg", err.Error())
		return nil, err
	}
	sortKey, sortDir := f.SortKey(), strings.ToLower(f.SortDirection())
	return &SearchResult{
		Movies:      movies,
		Total:       total,
		TotalPages:  f.TotalPages(total),
		CurrentPage: f.CurrentPage(),
		PageSize:    f.Limit(),
		Sort: SortApplied{
			SortBy:          sortKey,
			SortOrder:       sortDir,
			SortDescription: SortDescription(sortKey, sortDir),
		},
	}, nil
}
