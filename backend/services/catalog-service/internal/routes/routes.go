package routes

const (
	// Health
	Health = "/health"

	// Book endpoints
	Books     = "/api/v1/books"
	Book      = "/api/v1/books/{id}"
	BookTouch = "/api/v1/books/{id}/touch"
)
