package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/grand-theater/internal/model"
	"github.com/iliyamo/grand-theater/internal/queue"
	"github.com/iliyamo/grand-theater/internal/repository"
)

// PublicHandler serves the unauthenticated catalog and the contact form.
type PublicHandler struct {
	Store  repository.Storage
	Events queue.Publisher
}

// NewPublicHandler panics if store is nil. A nil publisher drops events.
func NewPublicHandler(store repository.Storage, events queue.Publisher) *PublicHandler {
	if store == nil {
		panic("nil storage passed to NewPublicHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &PublicHandler{Store: store, Events: events}
}

// ListMovies handles GET /api/movies. The optional comingSoon query
// parameter keeps only movies whose isComingSoon flag matches it.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	var (
		filter     bool
		comingSoon bool
	)
	if raw := c.QueryParam("comingSoon"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "comingSoon must be true or false"})
		}
		filter, comingSoon = true, v
	}

	movies, err := h.Store.ListMovies(c.Request().Context())
	if err != nil {
		return storageError(c, "list movies", err)
	}
	if filter {
		out := make([]model.Movie, 0, len(movies))
		for _, m := range movies {
			if m.IsComingSoon == comingSoon {
				out = append(out, m)
			}
		}
		movies = out
	}
	return c.JSON(http.StatusOK, movies)
}

// GetMovie handles GET /api/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, found, err := h.Store.GetMovie(c.Request().Context(), id)
	if err != nil {
		return storageError(c, "get movie", err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListShowtimesByMovie handles GET /api/movies/:id/showtimes. An unknown
// movie yields an empty list, not a 404.
func (h *PublicHandler) ListShowtimesByMovie(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.Store.ListShowtimesByMovie(c.Request().Context(), id)
	if err != nil {
		return storageError(c, "list showtimes by movie", err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListShowtimes handles GET /api/showtimes.
func (h *PublicHandler) ListShowtimes(c echo.Context) error {
	items, err := h.Store.ListShowtimes(c.Request().Context())
	if err != nil {
		return storageError(c, "list showtimes", err)
	}
	return c.JSON(http.StatusOK, items)
}

// SubmitContact handles POST /api/contact. The stored message is returned
// with its id and creation time, then announced on the contact queue.
func (h *PublicHandler) SubmitContact(c echo.Context) error {
	var in model.NewContact
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx := c.Request().Context()
	contact, err := h.Store.CreateContact(ctx, in)
	if err != nil {
		return storageError(c, "create contact", err)
	}
	if err := h.Events.PublishContactSubmitted(ctx, queue.NewContactSubmittedEvent(contact)); err != nil {
		c.Logger().Warnf("publish contact %d: %v", contact.ID, err)
	}
	return c.JSON(http.StatusCreated, contact)
}
