package main

import (
	"errors"
	"io"
	"mbox/proj/internal/lib/decoder"
	"mbox/proj/internal/services/movies"
	"mbox/proj/internal/uploads"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const primaryImageField = "primaryImage"

// movieInput is the body of the create and update endpoints. Tag fields
// accept lists, JSON-encoded lists or comma separated strings.
type movieInput struct {
	ImbID               *string  `json:"imbId" validate:"omitempty,notblank,max=64"`
	OriginalTitle       *string  `json:"originalTitle" validate:"omitempty,notblank,max=500"`
	Description         *string  `json:"description" validate:"omitempty,notblank"`
	Trailer             *string  `json:"trailer" validate:"omitempty,max=2048"`
	ReleaseDate         *string  `json:"releaseDate"`
	CountriesOfOrigin   any      `json:"countriesOfOrigin"`
	SpokenLanguages     any      `json:"spokenLanguages"`
	FilmingLocations    any      `json:"filmingLocations"`
	ProductionCompanies any      `json:"productionCompanies"`
	Genres              any      `json:"genres"`
	SubGenres           any      `json:"subGenres"`
	IsAdult             *bool    `json:"isAdult"`
	AverageRating       *float64 `json:"averageRating" validate:"omitempty,gte=0,lte=10"`
	image               io.Reader
}

type movieForm struct {
	ImbID               *string  `schema:"imbId"`
	OriginalTitle       *string  `schema:"originalTitle"`
	Description         *string  `schema:"description"`
	Trailer             *string  `schema:"trailer"`
	ReleaseDate         *string  `schema:"releaseDate"`
	CountriesOfOrigin   []string `schema:"countriesOfOrigin"`
	SpokenLanguages     []string `schema:"spokenLanguages"`
	FilmingLocations    []string `schema:"filmingLocations"`
	ProductionCompanies []string `schema:"productionCompanies"`
	Genres              []string `schema:"genres"`
	SubGenres           []string `schema:"subGenres"`
	IsAdult             *bool    `schema:"isAdult"`
	AverageRating       *float64 `schema:"averageRating"`
}

// formTags keeps a single form value as a string so that it still goes
// through JSON and comma splitting.
func formTags(values []string) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readMovieInput decodes either a JSON body or a multipart form carrying an
// optional image file. It answers the request itself and returns false on
// failure.
func (app *Application) readMovieInput(w http.ResponseWriter, r *http.Request) (*movieInput, func(), bool) {
	input := &movieInput{}
	cleanup := func() {}
	if !isMultipart(r) {
		return input, cleanup, app.readJSONOrBadRequest(w, r, input)
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.cfg.Uploads.MaxSize+maxJSONBodyBytes)
	if err := r.ParseMultipartForm(maxJSONBodyBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.Http.RequestEntityTooLarge(w, r, uploads.ErrTooLarge.Error())
			return nil, cleanup, false
		}
		app.Http.BadRequest(w, r, "body contains a malformed multipart form")
		return nil, cleanup, false
	}
	cleanup = func() { r.MultipartForm.RemoveAll() }
	var form movieForm
	if err := app.decoder.Decode(&form, r.MultipartForm.Value); err != nil {
		var paramErr *decoder.ParamError
		if errors.As(err, &paramErr) {
			app.Http.UnprocessableEntity(w, r, map[string]string{paramErr.Key: "This field is invalid"})
		} else {
			app.Http.BadRequest(w, r, err.Error())
		}
		return nil, cleanup, false
	}
	*input = movieInput{
		ImbID:               form.ImbID,
		OriginalTitle:       form.OriginalTitle,
		Description:         form.Description,
		Trailer:             form.Trailer,
		ReleaseDate:         form.ReleaseDate,
		CountriesOfOrigin:   formTags(form.CountriesOfOrigin),
		SpokenLanguages:     formTags(form.SpokenLanguages),
		FilmingLocations:    formTags(form.FilmingLocations),
		ProductionCompanies: formTags(form.ProductionCompanies),
		Genres:              formTags(form.Genres),
		SubGenres:           formTags(form.SubGenres),
		IsAdult:             form.IsAdult,
		AverageRating:       form.AverageRating,
	}
	file, _, err := r.FormFile(primaryImageField)
	switch {
	case err == nil:
		input.image = file
		cleanup = func() {
			file.Close()
			r.MultipartForm.RemoveAll()
		}
	case !errors.Is(err, http.ErrMissingFile):
		app.Http.BadRequest(w, r, "primaryImage must be a file")
		return nil, cleanup, false
	}
	return input, cleanup, true
}

func (app *Application) requireMovieFields(input *movieInput) map[string]string {
	errs := make(map[string]string)
	required := []struct {
		field string
		value *string
	}{
		{"imbId", input.ImbID},
		{"originalTitle", input.OriginalTitle},
		{"description", input.Description},
	}
	for _, f := range required {
		if err := app.validator.Var(f.value, "required"); err != nil {
			errs[f.field] = "This field is required"
		}
	}
	return errs
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	input, cleanup, ok := app.readMovieInput(w, r)
	defer cleanup()
	if !ok {
		return
	}
	if errs := app.requireMovieFields(input); len(errs) > 0 {
		app.Http.UnprocessableEntity(w, r, errs)
		return
	}
	if !app.validateOrUnprocessable(w, r, input) {
		return
	}
	params := movies.CreateParams{
		ImbID:               *input.ImbID,
		OriginalTitle:       *input.OriginalTitle,
		Description:         *input.Description,
		Trailer:             input.Trailer,
		ReleaseDate:         input.ReleaseDate,
		CountriesOfOrigin:   input.CountriesOfOrigin,
		SpokenLanguages:     input.SpokenLanguages,
		FilmingLocations:    input.FilmingLocations,
		ProductionCompanies: input.ProductionCompanies,
		Genres:              input.Genres,
		SubGenres:           input.SubGenres,
		AverageRating:       input.AverageRating,
		Image:               input.image,
	}
	if input.IsAdult != nil {
		params.IsAdult = *input.IsAdult
	}
	movie, err := app.services.Movies.Create(r.Context(), params)
	if err != nil {
		app.handleMovieErr(w, r, err)
		return
	}
	app.Http.Created(w, r, movie, "Movie added successfully")
}

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	list, err := app.services.Movies.List(r.Context())
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.ResponseWithMeta(w, r, list, envelop{"count": len(list)}, "Movies retrieved successfully", http.StatusOK)
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractUUIDParam(w, r, "movieId", "Invalid movie ID format")
	if !ok {
		return
	}
	movie, err := app.services.Movies.Get(r.Context(), id)
	if err != nil {
		app.handleMovieErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, movie, "Movie retrieved successfully")
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	input, cleanup, ok := app.readMovieInput(w, r)
	defer cleanup()
	if !ok {
		return
	}
	if !app.validateOrUnprocessable(w, r, input) {
		return
	}
	movie, err := app.services.Movies.UpdateByImbID(r.Context(), chi.URLParam(r, "movieId"), movies.UpdateParams{
		ImbID:               input.ImbID,
		OriginalTitle:       input.OriginalTitle,
		Description:         input.Description,
		Trailer:             input.Trailer,
		ReleaseDate:         input.ReleaseDate,
		CountriesOfOrigin:   input.CountriesOfOrigin,
		SpokenLanguages:     input.SpokenLanguages,
		FilmingLocations:    input.FilmingLocations,
		ProductionCompanies: input.ProductionCompanies,
		Genres:              input.Genres,
		SubGenres:           input.SubGenres,
		IsAdult:             input.IsAdult,
		AverageRating:       input.AverageRating,
		Image:               input.image,
	})
	if err != nil {
		app.handleMovieErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, movie, "Movie updated successfully")
}

func (app *Application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	if err := app.services.Movies.DeleteByImbID(r.Context(), chi.URLParam(r, "movieId")); err != nil {
		app.handleMovieErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Movie deleted successfully")
}

type searchQuery struct {
	Keyword        string   `json:"keyword" schema:"keyword"`
	Genres         string   `json:"genres" schema:"genres"`
	ReleaseYearMin *int     `json:"releaseYearMin" schema:"releaseYearMin" validate:"omitempty,gte=1800,lte=3000"`
	ReleaseYearMax *int     `json:"releaseYearMax" schema:"releaseYearMax" validate:"omitempty,gte=1800,lte=3000"`
	MinRating      *float64 `json:"minRating" schema:"minRating" validate:"omitempty,gte=0,lte=10"`
	MaxRating      *float64 `json:"maxRating" schema:"maxRating" validate:"omitempty,gte=0,lte=10"`
	IsAdult        *bool    `json:"isAdult" schema:"isAdult"`
	SortBy         string   `json:"sortBy" schema:"sortBy"`
	SortOrder      string   `json:"sortOrder" schema:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page           *int     `json:"page" schema:"page" validate:"omitempty,gte=1"`
	Limit          *int     `json:"limit" schema:"limit" validate:"omitempty,gte=1,lte=100"`
}

// pageBounds returns page and limit with 0 standing for absent, the search
// filters apply their own defaults for those.
func (q *searchQuery) pageBounds() (page, limit int) {
	if q.Page != nil {
		page = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	return page, limit
}

func (app *Application) searchMovies(w http.ResponseWriter, r *http.Request) {
	var query searchQuery
	if err := app.decoder.Decode(&query, r.URL.Query()); err != nil {
		var paramErr *decoder.ParamError
		if errors.As(err, &paramErr) {
			app.Http.UnprocessableEntity(w, r, map[string]string{paramErr.Key: "This field is invalid"})
			return
		}
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if !app.validateOrUnprocessable(w, r, &query) {
		return
	}
	page, limit := query.pageBounds()
	res, err := app.services.Movies.Search(r.Context(), movies.SearchParams{
		Keyword:        query.Keyword,
		Genres:         query.Genres,
		ReleaseYearMin: query.ReleaseYearMin,
		ReleaseYearMax: query.ReleaseYearMax,
		MinRating:      query.MinRating,
		MaxRating:      query.MaxRating,
		IsAdult:        query.IsAdult,
		SortBy:         query.SortBy,
		SortOrder:      query.SortOrder,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		app.Http.ServerError(w, r, err, "Failed to search movies")
		return
	}
	app.Http.ResponseWithMeta(w, r, res.Movies, envelop{
		"count":       len(res.Movies),
		"totalMovies": res.Total,
		"totalPages":  res.TotalPages,
		"currentPage": res.CurrentPage,
		"sortApplied": res.Sort,
		"pagination": envelop{
			"currentPage":   res.CurrentPage,
			"totalPages":    res.TotalPages,
			"moviesPerPage": res.PageSize,
			"totalMovies":   res.Total,
		},
	}, "Movies retrieved successfully", http.StatusOK)
}

func (app *Application) handleMovieErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, movies.ErrMovieNotFound):
		app.Http.NotFound(w, r, "Movie not found in database")
	case errors.Is(err, movies.ErrMovieAlreadyExists):
		app.Http.Conflict(w, r, "Movie with this imbId already exists")
	case errors.Is(err, movies.ErrInvalidReleaseDate):
		app.Http.UnprocessableEntity(w, r, map[string]string{"releaseDate": err.Error()})
	case errors.Is(err, movies.ErrInvalidMovieData):
		app.Http.BadRequest(w, r, "Movie data is invalid")
	case errors.Is(err, uploads.ErrUnsupportedFormat):
		app.Http.UnsupportedMediaType(w, r, err.Error())
	case errors.Is(err, uploads.ErrTooLarge):
		app.Http.RequestEntityTooLarge(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
