package model

// Movie is a title in the theater's catalog.  Movies are append-only:
// once created they are never updated or removed.
//
// Fields:
//
//	ID           – positive identifier, assigned on creation.
//	Title        – display title.
//	Description  – synopsis shown on the movie card.
//	PosterURL    – poster image location.
//	TrailerURL   – optional trailer link (nil when unknown).
//	Rating       – age classification code such as "PG-13".
//	Duration     – runtime in minutes.
//	IsComingSoon – true for titles announced but not yet screening.
type Movie struct {
	ID           uint64  `json:"id"`           // movies.id
	Title        string  `json:"title"`        // movies.title
	Description  string  `json:"description"`  // movies.description
	PosterURL    string  `json:"posterUrl"`    // movies.poster_url
	TrailerURL   *string `json:"trailerUrl"`   // movies.trailer_url (nullable)
	Rating       string  `json:"rating"`       // movies.rating
	Duration     int     `json:"duration"`     // movies.duration
	IsComingSoon bool    `json:"isComingSoon"` // movies.is_coming_soon
}

// NewMovie carries the caller-supplied fields of a movie.  It is the
// request schema for movie creation; the id is allocated by storage.
type NewMovie struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description" validate:"required"`
	PosterURL    string  `json:"posterUrl" validate:"required"`
	TrailerURL   *string `json:"trailerUrl" validate:"omitempty,url"`
	Rating       string  `json:"rating" validate:"required,max=16"`
	Duration     int     `json:"duration" validate:"gt=0"`
	IsComingSoon bool    `json:"isComingSoon"`
}

// Movie combines the allocated id with the input fields.
func (n NewMovie) Movie(id uint64) Movie {
	return Movie{
		ID:           id,
		Title:        n.Title,
		Description:  n.Description,
		PosterURL:    n.PosterURL,
		TrailerURL:   n.TrailerURL,
		Rating:       n.Rating,
		Duration:     n.Duration,
		IsComingSoon: n.IsComingSoon,
	}
}
