package models

import (
	"context"
	"fmt"
	"mbox/proj/internal/domain/fields"
	"mbox/proj/internal/domain/filters"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"mbox/proj/internal/storage/postgres"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const movieColumns = `id, imb_id, original_title, description, primary_image, trailer, release_date,
	countries_of_origin, spoken_languages, filming_locations, production_companies, genres, sub_genres,
	is_adult, average_rating, created_at, updated_at`

type MovieModel struct {
	DB *pgxpool.Pool
}

func (m *MovieModel) Get(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	return collectOne[models.Movie](rows)
}

func (m *MovieModel) GetByImbID(ctx context.Context, imbID string) (*models.Movie, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM movies WHERE imb_id = $1`, imbID)
	return collectOne[models.Movie](rows)
}

func (m *MovieModel) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, postgres.TranslateError(err)
	}
	return exists, nil
}

func (m *MovieModel) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO movies (imb_id, original_title, description, primary_image, trailer, release_date,
		countries_of_origin, spoken_languages, filming_locations, production_companies, genres, sub_genres,
		is_adult, average_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+movieColumns,
		movieArgs(movie)...,
	)
	return collectOne[models.Movie](rows)
}

func (m *MovieModel) List(ctx context.Context) ([]models.Movie, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC, id ASC`)
	return collectAll[models.Movie](rows)
}

func (m *MovieModel) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE movies SET imb_id = $1, original_title = $2, description = $3, primary_image = $4,
		trailer = $5, release_date = $6, countries_of_origin = $7, spoken_languages = $8,
		filming_locations = $9, production_companies = $10, genres = $11, sub_genres = $12,
		is_adult = $13, average_rating = $14, updated_at = now()
		WHERE id = $15 RETURNING `+movieColumns,
		append(movieArgs(movie), movie.ID)...,
	)
	return collectOne[models.Movie](rows)
}

func (m *MovieModel) DeleteByImbID(ctx context.Context, imbID string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM movies WHERE imb_id = $1", imbID)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *MovieModel) Search(ctx context.Context, criteria filters.MovieCriteria, f filters.Filters) ([]models.Movie, int, error) {
	where, args := movieSearchWhere(criteria)
	var total int
	if err := m.DB.QueryRow(ctx, "SELECT count(*) FROM movies"+where, args...).Scan(&total); err != nil {
		return nil, 0, postgres.TranslateError(err)
	}
	query, args := movieSearchQuery(where, args, f)
	rows, _ := m.DB.Query(ctx, query, args...)
	movies, err := collectAll[models.Movie](rows)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func movieArgs(movie *models.Movie) []any {
	companies := movie.ProductionCompanies
	if companies == nil {
		companies = []fields.ProductionCompany{}
	}
	return []any{
		movie.ImbID,
		movie.OriginalTitle,
		movie.Description,
		movie.PrimaryImage,
		movie.Trailer,
		movie.ReleaseDate,
		nonNil(movie.CountriesOfOrigin),
		nonNil(movie.SpokenLanguages),
		nonNil(movie.FilmingLocations),
		companies,
		nonNil(movie.Genres),
		nonNil(movie.SubGenres),
		movie.IsAdult,
		movie.AverageRating,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type queryArgs struct {
	args []any
}

func (q *queryArgs) add(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func movieSearchWhere(c filters.MovieCriteria) (string, []any) {
	var (
		conds []string
		q     queryArgs
	)
	if c.Keyword != "" {
		p := q.add("%" + likeEscaper.Replace(c.Keyword) + "%")
		conds = append(conds, fmt.Sprintf(
			"(original_title ILIKE %[1]s OR imb_id ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE g ILIKE %[1]s))",
			p,
		))
	}
	if len(c.Genres) > 0 {
		quoted := make([]string, 0, len(c.Genres))
		for _, g := range c.Genres {
			quoted = append(quoted, regexp.QuoteMeta(g))
		}
		set := q.add(c.Genres)
		pattern := q.add(strings.Join(quoted, "|"))
		conds = append(conds, fmt.Sprintf(
			`(genres && %[1]s::text[] OR sub_genres && %[1]s::text[]
			OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE g ~* %[2]s)
			OR EXISTS (SELECT 1 FROM unnest(sub_genres) AS g WHERE g ~* %[2]s))`,
			set, pattern,
		))
	}
	if c.ReleaseYearMin != nil {
		from := time.Date(*c.ReleaseYearMin, time.January, 1, 0, 0, 0, 0, time.UTC)
		conds = append(conds, "release_date >= "+q.add(from))
	}
	if c.ReleaseYearMax != nil {
		to := time.Date(*c.ReleaseYearMax, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
		conds = append(conds, "release_date <= "+q.add(to))
	}
	if c.MinRating != nil {
		conds = append(conds, "average_rating >= "+q.add(*c.MinRating))
	}
	if c.MaxRating != nil {
		conds = append(conds, "average_rating <= "+q.add(*c.MaxRating))
	}
	if c.IsAdult != nil {
		conds = append(conds, "is_adult = "+q.add(*c.IsAdult))
	}
	if len(conds) == 0 {
		return "", q.args
	}
	return " WHERE " + strings.Join(conds, " AND "), q.args
}

func movieSearchQuery(where string, args []any, f filters.Filters) (string, []any) {
	q := queryArgs{args: args}
	query := fmt.Sprintf(
		`SELECT %s FROM movies%s ORDER BY %s %s NULLS LAST, id ASC LIMIT %s OFFSET %s`,
		movieColumns, where, f.SortColumn(), f.SortDirection(), q.add(f.Limit()), q.add(f.Offset()),
	)
	return query, q.args
}
