package filters

import (
	"fmt"
	"math"
	"strings"
)

const (
	AscSort  = "ASC"
	DescSort = "DESC"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 25
)

// SortRule describes how a safelisted sort key maps to a column and which
// direction is used when the client does not pick one.
type SortRule struct {
	Column     string
	DefaultDir string
}

type Filters struct {
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
	SortSafelist map[string]SortRule
	// FallbackSort is applied when SortBy is empty or not in the safelist.
	FallbackSort string
}

func (f *Filters) resolvedKey() (string, bool) {
	if rule, ok := f.SortSafelist[f.SortBy]; ok && rule.Column != "" {
		return f.SortBy, true
	}
	return f.FallbackSort, false
}

// SortKey is the safelisted key actually used for ordering.
func (f *Filters) SortKey() string {
	key, _ := f.resolvedKey()
	return key
}

func (f *Filters) SortColumn() string {
	key, _ := f.resolvedKey()
	rule, ok := f.SortSafelist[key]
	if !ok {
		panic(fmt.Errorf("fallback sort %q is not in the safelist", key))
	}
	return rule.Column
}

func (f *Filters) SortDirection() string {
	key, known := f.resolvedKey()
	if known {
		switch strings.ToLower(f.SortOrder) {
		case "asc":
			return AscSort
		case "desc":
			return DescSort
		}
	}
	return f.SortSafelist[key].DefaultDir
}

func (f *Filters) Limit() int {
	if f.PageSize < 1 {
		return DefaultPageSize
	}
	return f.PageSize
}

func (f *Filters) CurrentPage() int {
	if f.Page < 1 {
		return DefaultPage
	}
	return f.Page
}

func (f *Filters) Offset() int {
	return (f.CurrentPage() - 1) * f.Limit()
}

func (f *Filters) TotalPages(totalRecords int) int {
	if totalRecords == 0 {
		return 0
	}
	return int(math.Ceil(float64(totalRecords) / float64(f.Limit())))
}

// MovieCriteria narrows a movie search. Nil pointers and empty values mean
// the criterion is not applied.
type MovieCriteria struct {
	Keyword        string
	Genres         []string
	ReleaseYearMin *int
	ReleaseYearMax *int
	MinRating      *float64
	MaxRating      *float64
	IsAdult        *bool
}
