package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, fmt.Sprintf("`%s %s` is not a valid endpoint.", r.Method, r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.Http.MethodNotAllowed(w, r, fmt.Sprintf("the %s method is not supported for %s", r.Method, r.URL.Path))
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   app.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)

	uploadsPrefix := "/" + strings.Trim(app.cfg.Uploads.URLPrefix, "/")
	router.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix, http.FileServer(http.Dir(app.cfg.Uploads.Dir))))
	router.Get("/health", app.healthcheck)
	router.Route("/user", func(r chi.Router) {
		r.Post("/signup", app.signup)
		r.Post("/signin", app.signin)
		r.Post("/verifyemail", app.verifyEmail)
		r.Get("/verify/{token}", app.verifyEmailPage)
		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthenticatedUser)
			r.Post("/logout", app.logout)
			r.Get("/", app.listUsers)
			r.Get("/single/{id}", app.getUser)
			r.Patch("/single/{id}", app.updateUser)
			r.Delete("/single/{id}", app.deleteUser)
		})
	})
	router.Route("/movies", func(r chi.Router) {
		r.Get("/", app.listMovies)
		r.Post("/", app.createMovie)
		r.Get("/search", app.searchMovies)
		r.Get("/{movieId}", app.getMovie)
		r.Patch("/{movieId}", app.updateMovie)
		r.Delete("/{movieId}", app.deleteMovie)
	})
	router.Route("/review-comments", func(r chi.Router) {
		r.Get("/movie/{movieId}", app.listMovieReviews)
		r.Get("/movie/{movieId}/comments", app.listMovieComments)
		r.Get("/movie/{movieId}/stats", app.movieRatingStats)
		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthenticatedUser)
			r.Post("/rating", app.addRating)
			r.Post("/comment", app.addComment)
			r.Get("/user", app.listUserReviews)
			r.Patch("/{itemId}", app.updateComment)
			r.Delete("/{itemId}", app.deleteReviewItem)
		})
	})
	router.Route("/favorites", func(r chi.Router) {
		r.Use(app.requireAuthenticatedUser)
		r.Post("/", app.addFavorite)
		r.Get("/", app.listFavorites)
		r.Delete("/{movieId}", app.deleteFavorite)
	})
	return router
}
