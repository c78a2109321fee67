// Package queue defines the message payloads exchanged over RabbitMQ, the
// publisher used by the HTTP handlers and the background consumer for
// contact submissions.
package queue

import (
	"time"

	"github.com/iliyamo/grand-theater/internal/model"
)

// Queue names. Both are declared durable.
const (
	ContactQueue  = "contact.submitted"
	ShowtimeQueue = "showtime.changed"
)

// ContactSubmittedEvent is published after a contact form message is
// stored. It carries the whole message so consumers never need to query
// storage.
type ContactSubmittedEvent struct {
	ContactID uint64 `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// NewContactSubmittedEvent builds the event for a stored contact.
func NewContactSubmittedEvent(c model.Contact) ContactSubmittedEvent {
	return ContactSubmittedEvent{
		ContactID: c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Message:   c.Message,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Showtime change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ShowtimeChangedEvent is published after an admin creates, patches or
// deletes a showtime. For deletions only ShowtimeID is meaningful; Price is
// a pointer so a free screening still carries "price":0.
type ShowtimeChangedEvent struct {
	Action     string   `json:"action"`
	ShowtimeID uint64   `json:"showtime_id"`
	MovieID    uint64   `json:"movie_id,omitempty"`
	Showtime   string   `json:"showtime,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	ChangedAt  string   `json:"changed_at"`
}

// NewShowtimeChangedEvent builds the event for a created or updated showtime.
func NewShowtimeChangedEvent(action string, s model.Showtime, at time.Time) ShowtimeChangedEvent {
	return ShowtimeChangedEvent{
		Action:     action,
		ShowtimeID: s.ID,
		MovieID:    s.MovieID,
		Showtime:   s.Showtime.UTC().Format(time.RFC3339),
		Price:      &s.Price,
		ChangedAt:  at.UTC().Format(time.RFC3339),
	}
}

// NewShowtimeDeletedEvent builds the event for a deleted showtime.
func NewShowtimeDeletedEvent(id uint64, at time.Time) ShowtimeChangedEvent {
	return ShowtimeChangedEvent{
		Action:     ActionDeleted,
		ShowtimeID: id,
		ChangedAt:  at.UTC().Format(time.RFC3339),
	}
}
