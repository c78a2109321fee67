package repository

import (
	"context"

	"github.com/iliyamo/grand-theater/internal/model"
)

// Storage is the single owner of movie, showtime and contact state. Every
// read and write of entity state goes through it.
//
// Each entity kind has its own id sequence starting at 1; ids are never
// reused, even after a delete. Lists are returned in insertion order.
//
// The error result of reads and creates is reserved for backend failures
// (a lost database connection, for instance). The in-memory backend never
// returns one.
type Storage interface {
	ListMovies(ctx context.Context) ([]model.Movie, error)
	// GetMovie reports found=false with a nil error when id is unknown.
	GetMovie(ctx context.Context, id uint64) (model.Movie, bool, error)
	CreateMovie(ctx context.Context, m model.NewMovie) (model.Movie, error)

	ListShowtimes(ctx context.Context) ([]model.Showtime, error)
	// ListShowtimesByMovie returns an empty slice when nothing matches,
	// including when movieID names no movie.
	ListShowtimesByMovie(ctx context.Context, movieID uint64) ([]model.Showtime, error)
	CreateShowtime(ctx context.Context, s model.NewShowtime) (model.Showtime, error)
	// UpdateShowtime merges patch over the stored record. It returns
	// ErrShowtimeNotFound, leaving state untouched, when id is unknown.
	UpdateShowtime(ctx context.Context, id uint64, patch model.ShowtimePatch) (model.Showtime, error)
	// DeleteShowtime returns ErrShowtimeNotFound when id is unknown.
	DeleteShowtime(ctx context.Context, id uint64) error

	// CreateContact stamps CreatedAt with the current time.
	CreateContact(ctx context.Context, c model.NewContact) (model.Contact, error)
}
