// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/grand-theater/internal/handler"
)

// RegisterRoutes registers the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the catalog and the contact form under /api.
// cache wraps the catalog reads; limit guards the contact form. Either may
// be a pass-through middleware.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/api")

	// ---- Catalog ----
	g.GET("/movies", p.ListMovies, cache)
	g.GET("/movies/:id", p.GetMovie, cache)
	g.GET("/movies/:id/showtimes", p.ListShowtimesByMovie, cache)
	g.GET("/showtimes", p.ListShowtimes, cache)

	// ---- Contact ----
	g.POST("/contact", p.SubmitContact, limit)
}

// RegisterAdmin registers the admin console endpoints under /api/admin.
// These routes are not authenticated. purge wraps the write routes so that
// a successful write empties the response cache; reads leave it alone.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, purge echo.MiddlewareFunc) {
	g := e.Group("/api/admin")

	g.GET("/stats", a.Stats)

	// ---- Movies ----
	g.POST("/movies", a.CreateMovie, purge)

	// ---- Showtimes ----
	g.POST("/showtimes", a.CreateShowtime, purge)
	g.PATCH("/showtimes/:id", a.UpdateShowtime, purge)
	g.PUT("/showtimes/:id", a.UpdateShowtime, purge) // alias for clients that use PUT
	g.DELETE("/showtimes/:id", a.DeleteShowtime, purge)
}
