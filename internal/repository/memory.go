package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/grand-theater/internal/model"
)

// Compile-time check that MemStorage satisfies Storage.
var _ Storage = (*MemStorage)(nil)

// MemStorage keeps all state in process memory. A restart discards every
// mutation. Each table is a map keyed by id plus an order slice recording
// insertion order; ids come from per-kind counters that only move forward.
//
// All methods are safe for concurrent use: every counter-increment and
// read-modify-write sequence runs under the mutex.
type MemStorage struct {
	mu sync.RWMutex

	movies     map[uint64]model.Movie
	movieOrder []uint64
	nextMovie  uint64

	showtimes     map[uint64]model.Showtime
	showtimeOrder []uint64
	nextShowtime  uint64

	contacts    map[uint64]model.Contact
	nextContact uint64

	now func() time.Time
}

// NewMemStorage returns an empty store whose id sequences all start at 1.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		movies:       make(map[uint64]model.Movie),
		nextMovie:    1,
		showtimes:    make(map[uint64]model.Showtime),
		nextShowtime: 1,
		contacts:     make(map[uint64]model.Contact),
		nextContact:  1,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListMovies returns every movie in insertion order.
func (s *MemStorage) ListMovies(_ context.Context) ([]model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Movie, 0, len(s.movieOrder))
	for _, id := range s.movieOrder {
		out = append(out, s.movies[id])
	}
	return out, nil
}

// GetMovie looks up a movie by id.
func (s *MemStorage) GetMovie(_ context.Context, id uint64) (model.Movie, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	return m, ok, nil
}

// CreateMovie allocates the next movie id and stores the record.
func (s *MemStorage) CreateMovie(_ context.Context, in model.NewMovie) (model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextMovie
	s.nextMovie++
	m := in.Movie(id)
	s.movies[id] = m
	s.movieOrder = append(s.movieOrder, id)
	return m, nil
}

// ListShowtimes returns every showtime across all movies in insertion order.
func (s *MemStorage) ListShowtimes(_ context.Context) ([]model.Showtime, error) {
	return s.filterShowtimes(func(model.Showtime) bool { return true }), nil
}

// ListShowtimesByMovie is a linear scan keeping showtimes whose MovieID
// equals movieID.
func (s *MemStorage) ListShowtimesByMovie(_ context.Context, movieID uint64) ([]model.Showtime, error) {
	return s.filterShowtimes(func(st model.Showtime) bool { return st.MovieID == movieID }), nil
}

func (s *MemStorage) filterShowtimes(keep func(model.Showtime) bool) []model.Showtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Showtime, 0, len(s.showtimeOrder))
	for _, id := range s.showtimeOrder {
		if st := s.showtimes[id]; keep(st) {
			out = append(out, st)
		}
	}
	return out
}

// CreateShowtime allocates the next showtime id and stores the record.
func (s *MemStorage) CreateShowtime(_ context.Context, in model.NewShowtime) (model.Showtime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextShowtime
	s.nextShowtime++
	st := in.Record(id)
	s.showtimes[id] = st
	s.showtimeOrder = append(s.showtimeOrder, id)
	return st, nil
}

// UpdateShowtime merges patch over the stored showtime.
func (s *MemStorage) UpdateShowtime(_ context.Context, id uint64, patch model.ShowtimePatch) (model.Showtime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.showtimes[id]
	if !ok {
		return model.Showtime{}, ErrShowtimeNotFound
	}
	merged := patch.Apply(cur)
	s.showtimes[id] = merged
	return merged, nil
}

// DeleteShowtime removes a showtime. Its id is not handed out again.
func (s *MemStorage) DeleteShowtime(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.showtimes[id]; !ok {
		return ErrShowtimeNotFound
	}
	delete(s.showtimes, id)
	for i, v := range s.showtimeOrder {
		if v == id {
			s.showtimeOrder = append(s.showtimeOrder[:i], s.showtimeOrder[i+1:]...)
			break
		}
	}
	return nil
}

// CreateContact allocates the next contact id and stamps CreatedAt.
func (s *MemStorage) CreateContact(_ context.Context, in model.NewContact) (model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextContact
	s.nextContact++
	c := in.Contact(id, s.now())
	s.contacts[id] = c
	return c, nil
}
