package main

import (
	"errors"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/services/reviews"
	"net/http"

	"github.com/google/uuid"
)

func (app *Application) parseMovieID(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		app.Http.BadRequest(w, r, "Invalid movieId format")
		return uuid.Nil, false
	}
	return id, true
}

func (app *Application) addRating(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MovieID string `json:"movieId" validate:"required"`
		Rating  *int   `json:"rating" validate:"required,gte=1,lte=5" errorMsg:"Rating must be between 1 and 5"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) || !app.validateOrUnprocessable(w, r, &input) {
		return
	}
	movieID, ok := app.parseMovieID(w, r, input.MovieID)
	if !ok {
		return
	}
	review, created, err := app.services.Reviews.AddRating(r.Context(), contextGetUser(r).ID, movieID, *input.Rating)
	if err != nil {
		app.handleReviewErr(w, r, err)
		return
	}
	if created {
		app.Http.Created(w, r, review, "Rating added successfully")
		return
	}
	app.Http.Ok(w, r, review, "Rating updated successfully")
}

func (app *Application) addComment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MovieID string `json:"movieId" validate:"required"`
		Comment string `json:"comment"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) || !app.validateOrUnprocessable(w, r, &input) {
		return
	}
	movieID, ok := app.parseMovieID(w, r, input.MovieID)
	if !ok {
		return
	}
	review, err := app.services.Reviews.AddComment(r.Context(), contextGetUser(r).ID, movieID, input.Comment)
	if err != nil {
		app.handleReviewErr(w, r, err)
		return
	}
	app.Http.Created(w, r, review, "Comment added successfully")
}

func (app *Application) listMovieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractUUIDParam(w, r, "movieId", "Invalid movieId format")
	if !ok {
		return
	}
	partition, err := app.services.Reviews.ListForMovie(r.Context(), movieID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, partition, "Reviews and comments retrieved successfully")
}

func (app *Application) listMovieComments(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractUUIDParam(w, r, "movieId", "Invalid movieId format")
	if !ok {
		return
	}
	comments, err := app.services.Reviews.CommentsForMovie(r.Context(), movieID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.ResponseWithMeta(w, r, comments, envelop{"count": len(comments)}, "Comments retrieved successfully", http.StatusOK)
}

func (app *Application) movieRatingStats(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractUUIDParam(w, r, "movieId", "Invalid movieId format")
	if !ok {
		return
	}
	stats, err := app.services.Reviews.RatingStats(r.Context(), movieID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, stats, "Movie rating statistics retrieved successfully")
}

func (app *Application) listUserReviews(w http.ResponseWriter, r *http.Request) {
	partition, err := app.services.Reviews.ListForUser(r.Context(), contextGetUser(r).ID)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, partition, "User reviews and comments retrieved successfully")
}

func (app *Application) updateComment(w http.ResponseWriter, r *http.Request) {
	itemID, ok := app.extractUUIDParam(w, r, "itemId", "Invalid item ID format")
	if !ok {
		return
	}
	var input struct {
		Comment string `json:"comment"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) {
		return
	}
	updated, err := app.services.Reviews.UpdateComment(r.Context(), itemID, contextGetUser(r).ID, input.Comment)
	if err != nil {
		app.handleReviewErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, updated, "Comment updated successfully")
}

func (app *Application) deleteReviewItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := app.extractUUIDParam(w, r, "itemId", "Invalid item ID format")
	if !ok {
		return
	}
	kind, err := app.services.Reviews.Delete(r.Context(), itemID, contextGetUser(r).ID)
	if err != nil {
		app.handleReviewErr(w, r, err)
		return
	}
	msg := "Comment deleted successfully"
	if kind == models.KindRating {
		msg = "Rating deleted successfully"
	}
	app.Http.Ok(w, r, nil, msg)
}

func (app *Application) handleReviewErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrMovieNotFound):
		app.Http.NotFound(w, r, "Movie not found")
	case errors.Is(err, reviews.ErrAlreadyRated):
		app.Http.Conflict(w, r, "You have already rated this movie")
	case errors.Is(err, reviews.ErrRatingOutOfRange):
		app.Http.UnprocessableEntity(w, r, map[string]string{"rating": "Rating must be between 1 and 5"})
	case errors.Is(err, reviews.ErrEmptyComment):
		app.Http.BadRequest(w, r, "Comment cannot be empty")
	case errors.Is(err, reviews.ErrCommentNotFound):
		app.Http.NotFound(w, r, "Comment not found")
	case errors.Is(err, reviews.ErrItemNotFound):
		app.Http.NotFound(w, r, "Item not found")
	case errors.Is(err, reviews.ErrForbiddenUpdate):
		app.Http.Forbidden(w, r, "You can only update your own comments")
	case errors.Is(err, reviews.ErrForbiddenDelete):
		app.Http.Forbidden(w, r, "You can only delete your own items")
	case errors.Is(err, reviews.ErrRatingOnly):
		app.Http.BadRequest(w, r, "Cannot update rating as comment. Use rating endpoint instead.")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
