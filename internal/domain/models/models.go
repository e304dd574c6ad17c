package models

import (
	"encoding/json"
	"errors"
	"mbox/proj/internal/domain/fields"
	"mbox/proj/internal/lib/taglist"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	Email                 string     `json:"email" db:"email"`
	PasswordHash          []byte     `json:"-" db:"password_hash"`
	IsVerified            bool       `json:"isVerified" db:"is_verified"`
	VerificationToken     *string    `json:"-" db:"verification_token"`
	VerificationExpiresAt *time.Time `json:"-" db:"verification_expires_at"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == nil || u == AnonymousUser
}

type Movie struct {
	ID                  uuid.UUID                  `db:"id"`                   // Internal identifier assigned by the database
	ImbID               string                     `db:"imb_id"`               // External catalog key, always lowercase
	OriginalTitle       string                     `db:"original_title"`       // Movie title
	Description         string                     `db:"description"`          // Plot summary
	PrimaryImage        *string                    `db:"primary_image"`        // Public URL of the poster
	Trailer             *string                    `db:"trailer"`              // Trailer URL
	ReleaseDate         *time.Time                 `db:"release_date"`         // Release date, if known
	CountriesOfOrigin   []string                   `db:"countries_of_origin"`  // Tag lists below are normalized with taglist
	SpokenLanguages     []string                   `db:"spoken_languages"`     //
	FilmingLocations    []string                   `db:"filming_locations"`    //
	ProductionCompanies []fields.ProductionCompany `db:"production_companies"` // Stored as jsonb
	Genres              []string                   `db:"genres"`               //
	SubGenres           []string                   `db:"sub_genres"`           //
	IsAdult             bool                       `db:"is_adult"`             // Adult content flag
	AverageRating       *float64                   `db:"average_rating"`       // Denormalized, maintained outside of this service
	CreatedAt           time.Time                  `db:"created_at"`           // Timestamp for when the movie is added to our database
	UpdatedAt           time.Time                  `db:"updated_at"`           // Timestamp of the last update
}

func (m Movie) MarshalJSON() ([]byte, error) {
	var avgRating float64
	if m.AverageRating != nil {
		avgRating = *m.AverageRating
	}
	companies := m.ProductionCompanies
	if companies == nil {
		companies = []fields.ProductionCompany{}
	}
	return json.Marshal(struct {
		ID                  uuid.UUID                  `json:"id"`
		ImbID               string                     `json:"imbId"`
		OriginalTitle       string                     `json:"originalTitle"`
		Description         string                     `json:"description"`
		PrimaryImage        *string                    `json:"primaryImage"`
		Trailer             *string                    `json:"trailer"`
		ReleaseDate         *fields.Timestamp          `json:"releaseDate"`
		CountriesOfOrigin   []string                   `json:"countriesOfOrigin"`
		SpokenLanguages     []string                   `json:"spokenLanguages"`
		FilmingLocations    []string                   `json:"filmingLocations"`
		ProductionCompanies []fields.ProductionCompany `json:"productionCompanies"`
		Genres              []string                   `json:"genres"`
		SubGenres           []string                   `json:"subGenres"`
		IsAdult             bool                       `json:"isAdult"`
		AverageRating       float64                    `json:"averageRating"`
		CreatedAt           *fields.Timestamp          `json:"createdAt"`
	}{
		ID:                  m.ID,
		ImbID:               m.ImbID,
		OriginalTitle:       m.OriginalTitle,
		Description:         m.Description,
		PrimaryImage:        m.PrimaryImage,
		Trailer:             m.Trailer,
		ReleaseDate:         fields.NewTimestamp(m.ReleaseDate),
		CountriesOfOrigin:   taglist.Clean(m.CountriesOfOrigin),
		SpokenLanguages:     taglist.Clean(m.SpokenLanguages),
		FilmingLocations:    taglist.Clean(m.FilmingLocations),
		ProductionCompanies: companies,
		Genres:              taglist.Clean(m.Genres),
		SubGenres:           taglist.Clean(m.SubGenres),
		IsAdult:             m.IsAdult,
		AverageRating:       avgRating,
		CreatedAt:           fields.NewTimestamp(&m.CreatedAt),
	})
}

// FavoriteMovie is the reduced projection returned for a user's favorites.
type FavoriteMovie struct {
	ID            uuid.UUID  `db:"id"`
	OriginalTitle string     `db:"original_title"`
	PrimaryImage  *string    `db:"primary_image"`
	ReleaseDate   *time.Time `db:"release_date"`
}

func (f FavoriteMovie) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            uuid.UUID         `json:"id"`
		OriginalTitle string            `json:"originalTitle"`
		PrimaryImage  *string           `json:"primaryImage"`
		ReleaseDate   *fields.Timestamp `json:"releaseDate"`
	}{f.ID, f.OriginalTitle, f.PrimaryImage, fields.NewTimestamp(f.ReleaseDate)})
}

type ReviewKind string

const (
	KindRating  ReviewKind = "rating"
	KindComment ReviewKind = "comment"
	KindReview  ReviewKind = "review" // rating and comment in one record
)

var ErrEmptyReviewComment = errors.New("either rating or comment must be provided")

type Author struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type MovieSummary struct {
	ID            uuid.UUID `json:"id"`
	OriginalTitle string    `json:"originalTitle"`
	PrimaryImage  *string   `json:"primaryImage,omitempty"`
}

// ReviewComment holds a rating facet, a comment facet or both.
type ReviewComment struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	MovieID   uuid.UUID     `json:"movieId"`
	Rating    *int          `json:"rating,omitempty"`
	Comment   *string       `json:"comment,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	User      *Author       `json:"user,omitempty"`
	Movie     *MovieSummary `json:"movie,omitempty"`
}

func (r *ReviewComment) HasRating() bool {
	return r.Rating != nil
}

func (r *ReviewComment) HasComment() bool {
	return r.Comment != nil && strings.TrimSpace(*r.Comment) != ""
}

func (r *ReviewComment) Kind() ReviewKind {
	switch {
	case r.HasRating() && r.HasComment():
		return KindReview
	case r.HasRating():
		return KindRating
	default:
		return KindComment
	}
}

func (r *ReviewComment) Validate() error {
	if !r.HasRating() && !r.HasComment() {
		return ErrEmptyReviewComment
	}
	return nil
}

func (r ReviewComment) MarshalJSON() ([]byte, error) {
	type alias ReviewComment
	return json.Marshal(struct {
		alias
		Kind      ReviewKind        `json:"kind"`
		CreatedAt *fields.Timestamp `json:"createdAt"`
		UpdatedAt *fields.Timestamp `json:"updatedAt"`
	}{
		alias:     alias(r),
		Kind:      r.Kind(),
		CreatedAt: fields.NewTimestamp(&r.CreatedAt),
		UpdatedAt: fields.NewTimestamp(&r.UpdatedAt),
	})
}

type RatingStats struct {
	AverageRating      float64     `json:"averageRating"`
	TotalRatings       int         `json:"totalRatings"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

type AuthToken struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
