package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/grand-theater/internal/model"
	"github.com/iliyamo/grand-theater/internal/queue"
	"github.com/iliyamo/grand-theater/internal/repository"
)

// AdminHandler manages the catalog. Admin routes carry no authentication.
type AdminHandler struct {
	Store  repository.Storage
	Events queue.Publisher
	Now    func() time.Time
}

// NewAdminHandler panics if store is nil. A nil publisher drops events.
func NewAdminHandler(store repository.Storage, events queue.Publisher) *AdminHandler {
	if store == nil {
		panic("nil storage passed to NewAdminHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &AdminHandler{Store: store, Events: events, Now: time.Now}
}

// Stats is the dashboard summary returned by GET /api/admin/stats.
type Stats struct {
	TotalMovies       int `json:"totalMovies"`
	NowShowing        int `json:"nowShowing"`
	ComingSoon        int `json:"comingSoon"`
	TotalShowtimes    int `json:"totalShowtimes"`
	UpcomingShowtimes int `json:"upcomingShowtimes"`
}

// CreateMovie handles POST /api/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var in model.NewMovie
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	m, err := h.Store.CreateMovie(c.Request().Context(), in)
	if err != nil {
		return storageError(c, "create movie", err)
	}
	return c.JSON(http.StatusCreated, m)
}

// CreateShowtime handles POST /api/admin/showtimes. The movie id is stored
// as given; it is not checked against the catalog.
func (h *AdminHandler) CreateShowtime(c echo.Context) error {
	var in model.NewShowtime
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	s, err := h.Store.CreateShowtime(c.Request().Context(), in)
	if err != nil {
		return storageError(c, "create showtime", err)
	}
	h.publish(c, queue.NewShowtimeChangedEvent(queue.ActionCreated, s, h.Now()))
	return c.JSON(http.StatusCreated, s)
}

// UpdateShowtime handles PATCH and PUT /api/admin/showtimes/:id. Only the
// fields present in the body change.
func (h *AdminHandler) UpdateShowtime(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var patch model.ShowtimePatch
	if ok, err := bindValid(c, &patch); !ok {
		return err
	}
	s, err := h.Store.UpdateShowtime(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return storageError(c, "update showtime", err)
	}
	if !patch.Empty() {
		h.publish(c, queue.NewShowtimeChangedEvent(queue.ActionUpdated, s, h.Now()))
	}
	return c.JSON(http.StatusOK, s)
}

// DeleteShowtime handles DELETE /api/admin/showtimes/:id.
func (h *AdminHandler) DeleteShowtime(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Store.DeleteShowtime(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return storageError(c, "delete showtime", err)
	}
	h.publish(c, queue.NewShowtimeDeletedEvent(id, h.Now()))
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	movies, err := h.Store.ListMovies(ctx)
	if err != nil {
		return storageError(c, "stats movies", err)
	}
	showtimes, err := h.Store.ListShowtimes(ctx)
	if err != nil {
		return storageError(c, "stats showtimes", err)
	}

	out := Stats{TotalMovies: len(movies), TotalShowtimes: len(showtimes)}
	for _, m := range movies {
		if m.IsComingSoon {
			out.ComingSoon++
		} else {
			out.NowShowing++
		}
	}
	now := h.Now()
	for _, s := range showtimes {
		if s.Showtime.After(now) {
			out.UpcomingShowtimes++
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) publish(c echo.Context, ev queue.ShowtimeChangedEvent) {
	if err := h.Events.PublishShowtimeChanged(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("publish showtime %s %d: %v", ev.Action, ev.ShowtimeID, err)
	}
}
