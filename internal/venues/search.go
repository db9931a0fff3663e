package venues

import (
	"context"
	"strings"

	"holidaze/internal/api"
	"holidaze/internal/models"

	"github.com/rs/zerolog"
)

// Lister pages through the public venue list.
type Lister interface {
	ListVenues(ctx context.Context, opts api.ListOptions) (*api.VenuePage, error)
}

// Searcher finds venues by free text. The API has no search over every field, so
// pages are fetched newest first and filtered locally.
type Searcher struct {
	lister   Lister
	pageSize int
	maxPages int
	logger   zerolog.Logger
}

func NewSearcher(lister Lister, pageSize, maxPages int, logger *zerolog.Logger) *Searcher {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPages <= 0 {
		maxPages = 15
	}
	return &Searcher{
		lister:   lister,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger.With().Str("component", "search").Logger(),
	}
}

// Search returns the venues matching query. It stops after the first page that
// yields a match, after a short page, or after the page limit.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.Venue, error) {
	q := normalizeQuery(query)
	if q == "" {
		return nil, nil
	}

	var seen []models.Venue
	pages := 0
	for page := 1; page <= s.maxPages; page++ {
		res, err := s.lister.ListVenues(ctx, api.ListOptions{
			Page:      page,
			Limit:     s.pageSize,
			Sort:      "created",
			SortOrder: "desc",
		})
		if err != nil {
			return nil, err
		}
		pages++
		seen = append(seen, res.Venues...)

		if matches := filter(seen, q); len(matches) > 0 {
			s.logger.Debug().Str("query", q).Int("pages", pages).Int("matches", len(matches)).Msg("search done")
			return matches, nil
		}
		if len(res.Venues) < s.pageSize || res.Meta.IsLastPage {
			break
		}
	}
	s.logger.Debug().Str("query", q).Int("pages", pages).Msg("search found nothing")
	return []models.Venue{}, nil
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func filter(venues []models.Venue, q string) []models.Venue {
	var out []models.Venue
	for _, v := range venues {
		if Matches(v, q) {
			out = append(out, v)
		}
	}
	return out
}

// Matches reports whether the lower-cased query occurs in the venue name,
// description and address fields joined by spaces, so a query may span fields.
func Matches(v models.Venue, q string) bool {
	q = normalizeQuery(q)
	if q == "" {
		return false
	}
	fields := []string{
		v.Name,
		v.Description,
		v.Location.Address,
		v.Location.City,
		v.Location.Zip,
		v.Location.Country,
		v.Location.Continent,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Contains(strings.ToLower(strings.Join(parts, " ")), q)
}
