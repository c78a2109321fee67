package model

import "time"

// Contact is a message submitted through the public contact form.
// CreatedAt is stamped by storage at creation and never changes.
type Contact struct {
	ID        uint64    `json:"id"`        // contacts.id
	Name      string    `json:"name"`      // contacts.name
	Email     string    `json:"email"`     // contacts.email
	Message   string    `json:"message"`   // contacts.message
	CreatedAt time.Time `json:"createdAt"` // contacts.created_at
}

// NewContact is the contact form schema.  There is deliberately no
// CreatedAt field: callers cannot supply it.
type NewContact struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Contact combines the allocated id and creation time with the input fields.
func (n NewContact) Contact(id uint64, createdAt time.Time) Contact {
	return Contact{
		ID:        id,
		Name:      n.Name,
		Email:     n.Email,
		Message:   n.Message,
		CreatedAt: createdAt,
	}
}
