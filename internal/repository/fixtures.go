package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/grand-theater/internal/model"
)

func strPtr(s string) *string { return &s }

// FixtureMovies is the catalog loaded at startup when seeding is enabled.
var FixtureMovies = []model.NewMovie{
	{
		Title:       "One of Them Days",
		Description: "A thrilling new movie coming to theaters",
		PosterURL:   "https://example.com/poster1.jpg",
		TrailerURL:  strPtr("https://youtube.com/watch?v=123"),
		Rating:      "PG-13",
		Duration:    120,
	},
	{
		Title:       "Captain America",
		Description: "The latest Marvel adventure",
		PosterURL:   "https://example.com/poster2.jpg",
		TrailerURL:  strPtr("https://youtube.com/watch?v=456"),
		Rating:      "PG-13",
		Duration:    150,
	},
	{
		Title:        "Paddington in Peru",
		Description:  "Paddington returns to Peru to visit his beloved Aunt Lucy",
		PosterURL:    "https://example.com/poster3.jpg",
		Rating:       "PG",
		Duration:     106,
		IsComingSoon: true,
	},
}

// fixtureSlots are the local screening times, as hour and minute, seeded
// for each now-showing movie on the seed day and the day after.
var fixtureSlots = [][2]int{{14, 0}, {19, 30}}

// fixturePrice is the ticket price of every seeded showtime.
const fixturePrice = 12.99

// Seed loads FixtureMovies into s and schedules showtimes for every movie
// that is not coming soon, on day and the following day. Only the date part
// of day is used. A store that already holds movies is left alone, so a
// restart against MySQL does not duplicate the catalog. seeded reports
// whether the fixtures were loaded.
func Seed(ctx context.Context, s Storage, day time.Time) (seeded bool, err error) {
	existing, err := s.ListMovies(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: list movies: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	y, mo, d := day.Date()
	for _, in := range FixtureMovies {
		m, err := s.CreateMovie(ctx, in)
		if err != nil {
			return false, fmt.Errorf("seed movie %q: %w", in.Title, err)
		}
		if m.IsComingSoon {
			continue
		}
		for offset := 0; offset < 2; offset++ {
			for _, slot := range fixtureSlots {
				at := time.Date(y, mo, d+offset, slot[0], slot[1], 0, 0, day.Location()).UTC()
				if _, err := s.CreateShowtime(ctx, model.NewShowtime{MovieID: m.ID, Showtime: &at, Price: fixturePrice}); err != nil {
					return false, fmt.Errorf("seed showtime for %q: %w", in.Title, err)
				}
			}
		}
	}
	return true, nil
}
