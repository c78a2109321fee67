// Package repository defines error types that are reused across the storage
// backends. These sentinel values allow handlers to distinguish "the record
// you asked to change does not exist" from backend failures. Point lookups
// never use them: a missing movie is reported through the found flag, not
// an error.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is the root of every not-found condition raised by a
// mutation on an unknown id. Handlers should translate it into a 404.
var ErrNotFound = errors.New("not found")

// ErrShowtimeNotFound is returned by UpdateShowtime and DeleteShowtime when
// the id does not exist. errors.Is(err, ErrNotFound) holds for it.
var ErrShowtimeNotFound = fmt.Errorf("showtime %w", ErrNotFound)
