package models

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry. Fields carry validate tags so the service can
// re-check an entity after a partial update has been applied to it.
type Book struct {
	Versioned
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title" validate:"required,max=255"`
	Author        string     `json:"author" validate:"required,max=255"`
	ISBN          string     `json:"isbn,omitempty" validate:"omitempty,isbn"`
	PublishedYear *int       `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

func (b *Book) GetID() string { return b.ID.String() }
