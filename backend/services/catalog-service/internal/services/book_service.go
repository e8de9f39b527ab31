package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/shared/go-models"
	"github.com/poofware/mono-repo/backend/shared/go-optlock"
	"github.com/poofware/mono-repo/backend/shared/go-repositories"
	"github.com/poofware/mono-repo/backend/shared/go-utils"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200

	msgStaleBook = "The book has changed, please refresh"
)

type BookService interface {
	CreateBook(ctx context.Context, req dtos.CreateBookRequest) (*models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context, limit, offset int) ([]*models.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, attrs optlock.Attributes) (*models.Book, error)
	TouchBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

type bookService struct {
	repo     repositories.BookRepository
	guard    optlock.Guard
	validate *validator.Validate
}

func NewBookService(repo repositories.BookRepository, guard optlock.Guard) BookService {
	return &bookService{
		repo:     repo,
		guard:    guard,
		validate: validator.New(),
	}
}

func (s *bookService) CreateBook(ctx context.Context, req dtos.CreateBookRequest) (*models.Book, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "Invalid book", Err: err}
	}

	b := &models.Book{
		ID:            uuid.New(),
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create book", Err: err}
	}
	utils.Logger.WithField("book_id", b.ID).Info("Book created")
	return b, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.load(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, limit, offset int) ([]*models.Book, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	books, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list books", Err: err}
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}

/*
UpdateBook applies a partial update keyed on the caller's row version.

  - the guard rejects a missing, malformed or stale version before any
    field is touched
  - the write itself is conditional on the same version, so a writer
    that commits between the check and the write still yields a 409
*/
func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, attrs optlock.Attributes) (*models.Book, error) {
	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	remaining, err := s.guard.Check(book, attrs)
	if err != nil {
		return nil, s.guardError(err, book)
	}
	expected := book.RowVersion

	if err := applyBookAttributes(book, remaining); err != nil {
		code := utils.ErrCodeInvalidPayload
		var fe *fieldError
		if errors.As(err, &fe) && fe.Unknown {
			code = utils.ErrCodeUnknownField
		}
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: code, Message: err.Error(), Err: err}
	}
	if err := s.validate.Struct(book); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "Invalid book", Err: err}
	}

	tag, err := s.repo.UpdateIfVersion(ctx, book, expected)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update book", Err: err}
	}
	if tag.RowsAffected() == 0 {
		utils.Logger.WithField("book_id", id).Debug("Conditional update lost the race")
		latest, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, s.conflict(utils.ErrRowVersionConflict, latest)
	}

	utils.Logger.WithFields(logrus.Fields{
		"book_id":     id,
		"row_version": expected + 1,
	}).Info("Book updated")
	return s.load(ctx, id)
}

// TouchBook bumps updated_at and row_version server-side. No client version
// is involved, so the write goes through the retry loop instead of the guard.
func (s *bookService) TouchBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	err := s.repo.UpdateWithRetry(ctx, id, func(*models.Book) error { return nil })
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, notFound(err)
	case errors.Is(err, utils.ErrRowVersionConflict):
		return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeRowVersionConflict, Message: "Another update occurred, please retry", Err: err}
	case err != nil:
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to touch book", Err: err}
	}
	return s.load(ctx, id)
}

func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(err)
	}
	if err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to delete book", Err: err}
	}
	utils.Logger.WithField("book_id", id).Info("Book deleted")
	return nil
}

// ------------------------------------------------------------------
// internals
// ------------------------------------------------------------------

func (s *bookService) load(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load book", Err: err}
	}
	if book == nil {
		return nil, notFound(utils.ErrNotFound)
	}
	return book, nil
}

func (s *bookService) guardError(err error, current *models.Book) error {
	switch {
	case errors.Is(err, optlock.ErrMissingVersion):
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeMissingRowVersion, Message: err.Error(), Err: err}
	case errors.Is(err, optlock.ErrInvalidVersion):
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidRowVersion, Message: err.Error(), Err: err}
	case errors.Is(err, optlock.ErrStaleRecord):
		return s.conflict(err, current)
	}
	return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Version check failed", Err: err}
}

func (s *bookService) conflict(err error, current *models.Book) error {
	return &utils.AppError{
		StatusCode: http.StatusConflict,
		Code:       utils.ErrCodeRowVersionConflict,
		Message:    msgStaleBook,
		Details:    current,
		Err:        err,
	}
}

func notFound(err error) error {
	return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Book not found", Err: err}
}
