package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/services"
	"github.com/poofware/mono-repo/backend/shared/go-optlock"
	"github.com/poofware/mono-repo/backend/shared/go-utils"
)

type BookController struct {
	svc services.BookService
}

func NewBookController(s services.BookService) *BookController {
	return &BookController{svc: s}
}

// -----------------------------------------------------------------------------
// POST /api/v1/books
// -----------------------------------------------------------------------------
func (c *BookController) CreateBookHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	book, err := c.svc.CreateBook(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, book)
}

// -----------------------------------------------------------------------------
// GET /api/v1/books?limit=&offset=
// -----------------------------------------------------------------------------
func (c *BookController) ListBooksHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "limit must be an integer", nil, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "offset must be an integer", nil, err)
		return
	}

	books, err := c.svc.ListBooks(r.Context(), limit, offset)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ListBooksResponse{Books: books, Limit: limit, Offset: offset})
}

// -----------------------------------------------------------------------------
// GET /api/v1/books/{id}
// -----------------------------------------------------------------------------
func (c *BookController) GetBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, err := c.svc.GetBook(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, book)
}

// -----------------------------------------------------------------------------
// PATCH /api/v1/books/{id}
//
// Body is a partial book plus the row version the client last saw, e.g.
// {"row_version": 3, "title": "new title"}.
// -----------------------------------------------------------------------------
func (c *BookController) UpdateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	var attrs optlock.Attributes
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil || attrs == nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Body must be a JSON object", nil, err)
		return
	}

	book, err := c.svc.UpdateBook(r.Context(), id, attrs)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, book)
}

// -----------------------------------------------------------------------------
// POST /api/v1/books/{id}/touch
// -----------------------------------------------------------------------------
func (c *BookController) TouchBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, err := c.svc.TouchBook(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, book)
}

// -----------------------------------------------------------------------------
// DELETE /api/v1/books/{id}
// -----------------------------------------------------------------------------
func (c *BookController) DeleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	if err := c.svc.DeleteBook(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// shared helpers
// -----------------------------------------------------------------------------
func bookID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid book id", nil, err)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
