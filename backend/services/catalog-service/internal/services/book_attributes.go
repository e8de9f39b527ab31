package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/poofware/mono-repo/backend/shared/go-models"
	"github.com/poofware/mono-repo/backend/shared/go-optlock"
)

// fieldError reports a change-set entry that cannot be applied to a book.
type fieldError struct {
	Field   string
	Unknown bool
	Reason  string
}

func (e *fieldError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("field %q cannot be updated", e.Field)
	}
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

type bookSetter func(b *models.Book, v any) error

var bookSetters = map[string]bookSetter{
	"title":  stringSetter(func(b *models.Book, s string) { b.Title = s }),
	"author": stringSetter(func(b *models.Book, s string) { b.Author = s }),
	"isbn":   stringSetter(func(b *models.Book, s string) { b.ISBN = s }),
	"published_year": func(b *models.Book, v any) error {
		if v == nil {
			b.PublishedYear = nil
			return nil
		}
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		b.PublishedYear = &n
		return nil
	},
}

// applyBookAttributes copies the remaining change set onto b. Keys are
// applied in sorted order so the first error reported is stable.
func applyBookAttributes(b *models.Book, attrs optlock.Attributes) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := bookSetters[k]
		if !ok {
			return &fieldError{Field: k, Unknown: true}
		}
		if err := set(b, attrs[k]); err != nil {
			return &fieldError{Field: k, Reason: err.Error()}
		}
	}
	return nil
}

func stringSetter(assign func(*models.Book, string)) bookSetter {
	return func(b *models.Book, v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		assign(b, s)
		return nil
	}
}

func wholeNumber(v any) (int, error) {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(n), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(x), nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	}
	return 0, fmt.Errorf("must be an integer")
}
