package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons
	"time"

	"github.com/iliyamo/grand-theater/internal/model"
)

// Compile-time check that MySQLStorage satisfies Storage.
var _ Storage = (*MySQLStorage)(nil)

const (
	qListMovies = `SELECT id, title, description, poster_url, trailer_url, rating, duration, is_coming_soon
               FROM movies ORDER BY id ASC`
	qGetMovie = `SELECT id, title, description, poster_url, trailer_url, rating, duration, is_coming_soon
               FROM movies WHERE id = ?`
	qInsertMovie = `INSERT INTO movies (title, description, poster_url, trailer_url, rating, duration, is_coming_soon)
               VALUES (?, ?, ?, ?, ?, ?, ?)`

	qListShowtimes        = `SELECT id, movie_id, showtime, price FROM showtimes ORDER BY id ASC`
	qListShowtimesByMovie = `SELECT id, movie_id, showtime, price FROM showtimes WHERE movie_id = ? ORDER BY id ASC`
	qLockShowtime         = `SELECT id, movie_id, showtime, price FROM showtimes WHERE id = ? FOR UPDATE`
	qInsertShowtime       = `INSERT INTO showtimes (movie_id, showtime, price) VALUES (?, ?, ?)`
	qUpdateShowtime       = `UPDATE showtimes SET movie_id = ?, showtime = ?, price = ? WHERE id = ?`
	qDeleteShowtime       = `DELETE FROM showtimes WHERE id = ?`

	qInsertContact = `INSERT INTO contacts (name, email, message, created_at) VALUES (?, ?, ?, ?)`
)

// MySQLStorage is the durable Storage backend. It keeps the same contract
// as MemStorage: AUTO_INCREMENT gives every table its own never-reused id
// sequence, lists are ordered by id, and mutations of unknown showtimes
// return ErrShowtimeNotFound.
type MySQLStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewMySQLStorage constructs a MySQLStorage with the given DB handle. The
// schema is expected to exist; see database.EnsureSchema.
func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying sql.DB so callers can close it on shutdown.
func (r *MySQLStorage) DB() *sql.DB {
	return r.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (model.Movie, error) {
	var (
		m       model.Movie
		trailer sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.PosterURL, &trailer, &m.Rating, &m.Duration, &m.IsComingSoon); err != nil {
		return model.Movie{}, err
	}
	if trailer.Valid {
		m.TrailerURL = &trailer.String
	}
	return m, nil
}

func scanShowtime(row rowScanner) (model.Showtime, error) {
	var s model.Showtime
	if err := row.Scan(&s.ID, &s.MovieID, &s.Showtime, &s.Price); err != nil {
		return model.Showtime{}, err
	}
	return s, nil
}

// ListMovies returns all movies ordered by id.
func (r *MySQLStorage) ListMovies(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, qListMovies)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetMovie retrieves a movie by its id. A missing row is reported as
// found=false, not as an error.
func (r *MySQLStorage) GetMovie(ctx context.Context, id uint64) (model.Movie, bool, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, qGetMovie, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movie{}, false, nil
		}
		return model.Movie{}, false, err
	}
	return m, true, nil
}

// CreateMovie inserts a movie and returns it with the generated id.
func (r *MySQLStorage) CreateMovie(ctx context.Context, in model.NewMovie) (model.Movie, error) {
	var trailer sql.NullString
	if in.TrailerURL != nil {
		trailer = sql.NullString{String: *in.TrailerURL, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, qInsertMovie,
		in.Title, in.Description, in.PosterURL, trailer, in.Rating, in.Duration, in.IsComingSoon)
	if err != nil {
		return model.Movie{}, err
	}
	id, err := res.LastInsertId() // obtain the auto-incremented ID
	if err != nil {
		return model.Movie{}, err
	}
	return in.Movie(uint64(id)), nil
}

// ListShowtimes returns all showtimes ordered by id.
func (r *MySQLStorage) ListShowtimes(ctx context.Context) ([]model.Showtime, error) {
	return r.queryShowtimes(ctx, qListShowtimes)
}

// ListShowtimesByMovie returns the showtimes of one movie ordered by id.
func (r *MySQLStorage) ListShowtimesByMovie(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	return r.queryShowtimes(ctx, qListShowtimesByMovie, movieID)
}

func (r *MySQLStorage) queryShowtimes(ctx context.Context, q string, args ...any) ([]model.Showtime, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Showtime{}
	for rows.Next() {
		s, err := scanShowtime(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateShowtime inserts a showtime and returns it with the generated id.
// The movie reference is not checked.
func (r *MySQLStorage) CreateShowtime(ctx context.Context, in model.NewShowtime) (model.Showtime, error) {
	st := in.Record(0)
	res, err := r.db.ExecContext(ctx, qInsertShowtime, st.MovieID, st.Showtime.UTC(), st.Price)
	if err != nil {
		return model.Showtime{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Showtime{}, err
	}
	st.ID = uint64(id)
	return st, nil
}

// UpdateShowtime locks the row, merges the patch in Go and writes every
// column back inside one transaction, so concurrent patches cannot lose
// each other's fields.
func (r *MySQLStorage) UpdateShowtime(ctx context.Context, id uint64, patch model.ShowtimePatch) (model.Showtime, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Showtime{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cur, err := scanShowtime(tx.QueryRowContext(ctx, qLockShowtime, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Showtime{}, ErrShowtimeNotFound
		}
		return model.Showtime{}, err
	}
	merged := patch.Apply(cur)
	if _, err := tx.ExecContext(ctx, qUpdateShowtime, merged.MovieID, merged.Showtime.UTC(), merged.Price, id); err != nil {
		return model.Showtime{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Showtime{}, err
	}
	committed = true
	return merged, nil
}

// DeleteShowtime removes a showtime by id.
func (r *MySQLStorage) DeleteShowtime(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, qDeleteShowtime, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}

// CreateContact inserts a contact message stamped with the current time.
func (r *MySQLStorage) CreateContact(ctx context.Context, in model.NewContact) (model.Contact, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx, qInsertContact, in.Name, in.Email, in.Message, now)
	if err != nil {
		return model.Contact{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Contact{}, err
	}
	return in.Contact(uint64(id), now), nil
}
