package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/mono-repo/backend/shared/go-models"
)

/*
MemoryBookRepository keeps books in a map behind a mutex. UpdateIfVersion
has the same compare-and-swap semantics as the SQL version, so services
behave identically against either store. Entities are copied on the way
in and out; callers never share memory with the store.
*/
type MemoryBookRepository struct {
	mu         sync.Mutex
	books      map[uuid.UUID]*models.Book
	maxRetries int
	now        func() time.Time
}

func NewMemoryBookRepository(maxRetries int) *MemoryBookRepository {
	return &MemoryBookRepository{
		books:      make(map[uuid.UUID]*models.Book),
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func (r *MemoryBookRepository) Create(_ context.Context, b *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books[b.ID]; exists {
		return fmt.Errorf("book %s already exists", b.ID)
	}
	now := r.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	b.RowVersion = 1
	r.books[b.ID] = cloneBook(b)
	return nil
}

func (r *MemoryBookRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	return cloneBook(b), nil
}

func (r *MemoryBookRepository) List(_ context.Context, limit, offset int) ([]*models.Book, error) {
	r.mu.Lock()
	live := make([]*models.Book, 0, len(r.books))
	for _, b := range r.books {
		if b.DeletedAt == nil {
			live = append(live, cloneBook(b))
		}
	}
	r.mu.Unlock()

	sort.Slice(live, func(i, j int) bool {
		if live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].ID.String() < live[j].ID.String()
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})
	if offset >= len(live) {
		return nil, nil
	}
	live = live[offset:]
	if limit > 0 && limit < len(live) {
		live = live[:limit]
	}
	return live, nil
}

func (r *MemoryBookRepository) UpdateIfVersion(_ context.Context, b *models.Book, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.books[b.ID]
	if !ok || stored.DeletedAt != nil || stored.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := cloneBook(b)
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = r.now().UTC()
	next.DeletedAt = nil
	next.RowVersion = expected + 1
	r.books[b.ID] = next
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *MemoryBookRepository) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Book) error) error {
	get := func(ctx context.Context, id string) (*models.Book, error) {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		return r.GetByID(ctx, parsed)
	}
	return WithRetry(ctx, r.maxRetries, id.String(), get, r.UpdateIfVersion, mutate)
}

func (r *MemoryBookRepository) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok || b.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := r.now().UTC()
	b.DeletedAt = &now
	b.RowVersion++
	return nil
}

func cloneBook(b *models.Book) *models.Book {
	c := *b
	if b.PublishedYear != nil {
		y := *b.PublishedYear
		c.PublishedYear = &y
	}
	if b.DeletedAt != nil {
		d := *b.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

var _ BookRepository = (*MemoryBookRepository)(nil)
