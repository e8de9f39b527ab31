package dtos

import "github.com/poofware/mono-repo/backend/shared/go-models"

type CreateBookRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Author        string `json:"author" validate:"required,max=255"`
	ISBN          string `json:"isbn,omitempty" validate:"omitempty,isbn"`
	PublishedYear *int   `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
}

type ListBooksResponse struct {
	Books  []*models.Book `json:"books"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type HealthCheckResponse struct {
	Status string `json:"status"`
}
