package model

import (
	"math"
	"time"
)

// Showtime is a scheduled screening of a movie.  MovieID is expected to
// reference an existing Movie but nothing enforces it, so readers must
// tolerate dangling references.
type Showtime struct {
	ID       uint64    `json:"id"`       // showtimes.id
	MovieID  uint64    `json:"movieId"`  // showtimes.movie_id
	Showtime time.Time `json:"showtime"` // showtimes.showtime
	Price    float64   `json:"price"`    // showtimes.price
}

// NewShowtime is the request schema for showtime creation.  Showtime is a
// pointer so that a missing timestamp is rejected instead of silently
// becoming the zero time.
type NewShowtime struct {
	MovieID  uint64     `json:"movieId" validate:"gt=0"`
	Showtime *time.Time `json:"showtime" validate:"required"`
	Price    float64    `json:"price" validate:"gte=0"`
}

// Record combines the allocated id with the input fields. The price is
// rounded to cents and the time truncated to whole seconds, which is the
// precision the showtimes table keeps.
func (n NewShowtime) Record(id uint64) Showtime {
	s := Showtime{ID: id, MovieID: n.MovieID, Price: roundCents(n.Price)}
	if n.Showtime != nil {
		s.Showtime = n.Showtime.Truncate(time.Second)
	}
	return s
}

func roundCents(p float64) float64 {
	return math.Round(p*100) / 100
}

// ShowtimePatch is a partial update.  A nil field leaves the stored value
// untouched.  The id is never part of a patch.
type ShowtimePatch struct {
	MovieID  *uint64    `json:"movieId" validate:"omitempty,gt=0"`
	Showtime *time.Time `json:"showtime"`
	Price    *float64   `json:"price" validate:"omitempty,gte=0"`
}

// Empty reports whether the patch sets no field.
func (p ShowtimePatch) Empty() bool {
	return p.MovieID == nil && p.Showtime == nil && p.Price == nil
}

// Apply merges the patch over cur field by field and returns the result.
// cur.ID is always preserved. Values are normalized the same way as
// NewShowtime.Record.
func (p ShowtimePatch) Apply(cur Showtime) Showtime {
	if p.MovieID != nil {
		cur.MovieID = *p.MovieID
	}
	if p.Showtime != nil {
		cur.Showtime = p.Showtime.Truncate(time.Second)
	}
	if p.Price != nil {
		cur.Price = roundCents(*p.Price)
	}
	return cur
}
