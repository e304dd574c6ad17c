package reviews

import "errors"

var (
	ErrMovieNotFound    = errors.New("movie not found in database")
	ErrAlreadyRated     = errors.New("you have already rated this movie")
	ErrItemNotFound     = errors.New("item not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrForbiddenUpdate  = errors.New("you can only update your own comments")
	ErrForbiddenDelete  = errors.New("you can only delete your own items")
	ErrRatingOnly       = errors.New("cannot update rating as comment. Use rating endpoint instead")
	ErrEmptyComment     = errors.New("comment cannot be empty")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
)
