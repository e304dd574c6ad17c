package movies

import "errors"

var (
	ErrMovieNotFound      = errors.New("movie not found in database")
	ErrMovieAlreadyExists = errors.New("movie with this imbId already exists")
	ErrInvalidReleaseDate = errors.New("releaseDate must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	ErrInvalidMovieData   = errors.New("movie data violates a storage constraint")
)
