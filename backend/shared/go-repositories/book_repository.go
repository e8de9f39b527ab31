package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/mono-repo/backend/shared/go-models"
)

/* ───────────── public interface ───────────── */

type BookRepository interface {
	Create(ctx context.Context, b *models.Book) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context, limit, offset int) ([]*models.Book, error)

	UpdateIfVersion(ctx context.Context, b *models.Book, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Book) error) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type bookRepo struct {
	*BaseVersionedRepo[*models.Book]
	db DB
}

func NewBookRepository(db DB, maxRetries int) BookRepository {
	r := &bookRepo{db: db}
	selectStmt := baseSelectBook() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanBook, maxRetries)
	return r
}

/* ---------- create ---------- */

func (r *bookRepo) Create(ctx context.Context, b *models.Book) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO books (
			id, title, author, isbn, published_year,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`, b.ID, b.Title, b.Author, b.ISBN, b.PublishedYear).Scan(&b.CreatedAt, &b.UpdatedAt, &b.RowVersion)
	return err
}

/* ---------- reads ---------- */

func (r *bookRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *bookRepo) List(ctx context.Context, limit, offset int) ([]*models.Book, error) {
	rows, err := r.db.Query(ctx, baseSelectBook()+`
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Book
	for rows.Next() {
		b, err := r.scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

/* ---------- update / delete ---------- */

// UpdateIfVersion is the compare-and-swap the version guard relies on.
// The row is only written when row_version still equals expected.
func (r *bookRepo) UpdateIfVersion(ctx context.Context, b *models.Book, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE books
		SET title=$1, author=$2, isbn=$3, published_year=$4,
		    updated_at=NOW(), row_version=row_version+1
		WHERE id=$5 AND row_version=$6 AND deleted_at IS NULL
	`, b.Title, b.Author, b.ISBN, b.PublishedYear, b.ID, expected)
}

func (r *bookRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Book) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *bookRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE books SET deleted_at=NOW(), row_version=row_version+1
		WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectBook() string {
	return `
		SELECT id, title, author, isbn, published_year,
		       created_at, updated_at, row_version, deleted_at
		FROM books`
}

func (r *bookRepo) scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	var year pgtype.Int4
	var deletedAt pgtype.Timestamptz
	if err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &year,
		&b.CreatedAt, &b.UpdatedAt, &b.RowVersion, &deletedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if year.Status == pgtype.Present {
		y := int(year.Int)
		b.PublishedYear = &y
	}
	if deletedAt.Status == pgtype.Present {
		b.DeletedAt = &deletedAt.Time
	}
	return &b, nil
}
