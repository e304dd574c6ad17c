package main

import (
	"errors"
	"mbox/proj/internal/services/favorites"
	"net/http"
)

func (app *Application) addFavorite(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MovieID string `json:"movieId" validate:"required"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) || !app.validateOrUnprocessable(w, r, &input) {
		return
	}
	movieID, ok := app.parseMovieID(w, r, input.MovieID)
	if !ok {
		return
	}
	if err := app.services.Favorites.Add(r.Context(), contextGetUser(r).ID, movieID); err != nil {
		app.handleFavoriteErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, map[string]string{"movieId": movieID.String()}, "Movie added to favorites")
}

func (app *Application) listFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := app.services.Favorites.List(r.Context(), contextGetUser(r).ID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.ResponseWithMeta(w, r, list, envelop{"count": len(list)}, "Favorite movies retrieved successfully", http.StatusOK)
}

func (app *Application) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractUUIDParam(w, r, "movieId", "Invalid movieId format")
	if !ok {
		return
	}
	if err := app.services.Favorites.Remove(r.Context(), contextGetUser(r).ID, movieID); err != nil {
		app.handleFavoriteErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Movie removed from favorites")
}

func (app *Application) handleFavoriteErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, favorites.ErrMovieNotFound):
		app.Http.NotFound(w, r, "Movie not found")
	case errors.Is(err, favorites.ErrAlreadyFavorite):
		app.Http.Conflict(w, r, "Movie already in favorites")
	case errors.Is(err, favorites.ErrFavoriteNotFound):
		app.Http.NotFound(w, r, "Movie not found in favorites")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
