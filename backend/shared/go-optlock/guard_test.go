package optlock

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	id      string
	version int64
}

func (r fakeRecord) GetID() string        { return r.id }
func (r fakeRecord) GetRowVersion() int64 { return r.version }

func TestValidate_MatchingVersionStripsLockField(t *testing.T) {
	rec := fakeRecord{id: "book-1", version: 3}
	attrs := Attributes{"version": 3, "title": "A"}

	ok, err := Validate(rec, attrs)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Attributes{"title": "A"}, attrs)
}

func TestValidate_MissingVersion(t *testing.T) {
	rec := fakeRecord{id: "book-1", version: 3}
	attrs := Attributes{"title": "A"}

	ok, err := Validate(rec, attrs)
	require.False(t, ok)

	var missing *MissingVersionError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "version", missing.Field)
	require.ErrorIs(t, err, ErrMissingVersion)
	require.EqualError(t, err, "Attribute 'version' is required.")
	require.Equal(t, Attributes{"title": "A"}, attrs)
}

func TestValidate_BlankValuesCountAsMissing(t *testing.T) {
	var nilPtr *int64
	for name, v := range map[string]any{
		"nil":         nil,
		"empty":       "",
		"whitespace":  "   ",
		"nil pointer": nilPtr,
		"empty bytes": []byte{},
	} {
		t.Run(name, func(t *testing.T) {
			attrs := Attributes{"version": v, "title": "A"}
			_, err := Validate(fakeRecord{id: "b", version: 3}, attrs)
			require.ErrorIs(t, err, ErrMissingVersion)
			require.Equal(t, Attributes{"title": "A"}, attrs)
		})
	}
}

func TestValidate_StaleVersion(t *testing.T) {
	rec := fakeRecord{id: "book-1", version: 3}
	attrs := Attributes{"version": 2, "title": "A"}

	ok, err := Validate(rec, attrs)
	require.False(t, ok)

	var stale *StaleRecordError
	require.ErrorAs(t, err, &stale)
	require.Equal(t, "book-1", stale.RecordID)
	require.Equal(t, OperationUpdate, stale.Operation)
	require.Equal(t, int64(2), stale.Expected)
	require.Equal(t, int64(3), stale.Actual)
	require.True(t, errors.Is(err, ErrStaleRecord))

	// lock field is removed even though the check failed
	require.Equal(t, Attributes{"title": "A"}, attrs)
}

func TestValidate_TextIsCoerced(t *testing.T) {
	rec := fakeRecord{id: "book-7", version: 7}
	attrs := Attributes{"version": "7", "title": "B"}

	ok, err := Validate(rec, attrs)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Attributes{"title": "B"}, attrs)
}

func TestValidate_EquivalentRepresentations(t *testing.T) {
	v := int64(5)
	cases := map[string]any{
		"int":          5,
		"int32":        int32(5),
		"uint64":       uint64(5),
		"float64":      float64(5),
		"json number":  json.Number("5"),
		"string":       "5",
		"padded":       " 5 ",
		"float string": "5.0",
		"bytes":        []byte("5"),
		"pointer":      &v,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			attrs := Attributes{"version": raw, "isbn": "x"}
			ok, err := Validate(fakeRecord{id: "b", version: 5}, attrs)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, Attributes{"isbn": "x"}, attrs)
		})
	}
}

func TestValidate_NonNumericIsRejected(t *testing.T) {
	cases := map[string]any{
		"letters":    "abc",
		"suffix":     "7abc",
		"fraction":   7.5,
		"frac text":  "7.5",
		"bool":       true,
		"too big":    uint64(1 << 63),
		"struct":     struct{}{},
		"nan string": "NaN",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			attrs := Attributes{"version": raw}
			_, err := Validate(fakeRecord{id: "b", version: 7}, attrs)

			var invalid *InvalidVersionError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, "version", invalid.Field)
			require.ErrorIs(t, err, ErrInvalidVersion)
			require.NotContains(t, attrs, "version")
		})
	}
}

func TestValidate_CustomLockField(t *testing.T) {
	rec := fakeRecord{id: "b", version: 2}
	attrs := Attributes{"row_version": 2, "version": "v2 of the text"}

	ok, err := Validate(rec, attrs, "row_version")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Attributes{"version": "v2 of the text"}, attrs)

	_, err = Validate(rec, Attributes{"version": 2}, "row_version")
	var missing *MissingVersionError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "row_version", missing.Field)
}

func TestGuard_Optional(t *testing.T) {
	g := Guard{Optional: true}

	attrs := Attributes{"title": "A"}
	require.NoError(t, g.Validate(fakeRecord{id: "b", version: 9}, attrs))
	require.Equal(t, Attributes{"title": "A"}, attrs)

	// a supplied value is still checked
	err := g.Validate(fakeRecord{id: "b", version: 9}, Attributes{"version": 8})
	require.ErrorIs(t, err, ErrStaleRecord)
}

func TestGuard_CheckLeavesInputUntouched(t *testing.T) {
	g := NewGuard("row_version")
	rec := fakeRecord{id: "b", version: 4}
	attrs := Attributes{"row_version": 4, "title": "A"}

	remaining, err := g.Check(rec, attrs)
	require.NoError(t, err)
	require.Equal(t, Attributes{"title": "A"}, remaining)
	require.Equal(t, Attributes{"row_version": 4, "title": "A"}, attrs)

	attrs["row_version"] = 3
	remaining, err = g.Check(rec, attrs)
	require.ErrorIs(t, err, ErrStaleRecord)
	require.Equal(t, Attributes{"title": "A"}, remaining)
	require.Contains(t, attrs, "row_version")

	remaining, err = g.Check(rec, nil)
	require.ErrorIs(t, err, ErrMissingVersion)
	require.NotNil(t, remaining)
	require.Empty(t, remaining)
}

func TestGuard_Expected(t *testing.T) {
	g := Guard{}

	v, ok, err := g.Expected(Attributes{"version": "12"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12), v)

	_, ok, err = g.Expected(Attributes{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = g.Expected(Attributes{"version": "twelve"})
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestGuard_StatelessAcrossCalls(t *testing.T) {
	g := Guard{}
	rec := fakeRecord{id: "b", version: 1}

	const n = 32
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- g.Validate(rec, Attributes{"version": 1, "title": "same"})
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
}
