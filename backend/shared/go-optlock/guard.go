// Package optlock checks a caller-supplied row version against the version
// a record currently holds, before an update is handed to storage.
//
// The guard is a fast-fail pre-flight check. It does not make the
// check-then-write sequence atomic: the storage layer still has to key its
// UPDATE on the same version (see repositories.UpdateIfVersion).
package optlock

import "maps"

const (
	// DefaultLockField is used when a Guard has no LockField set.
	DefaultLockField = "version"

	OperationUpdate = "update"
)

// Record is anything that exposes an identity and the integer version
// the storage layer bumps on every committed write.
type Record interface {
	GetID() string
	GetRowVersion() int64
}

// Attributes is a proposed change set, field name -> proposed value.
type Attributes map[string]any

/*
Guard holds the lock-field configuration. The zero value is ready to use:
lock field "version", and the field is required.

A Guard holds no state between calls and is safe for concurrent use as
long as each call gets its own Attributes value.
*/
type Guard struct {
	LockField string

	// Optional lets a change set without the lock field through unchecked.
	Optional bool
}

// NewGuard returns a required guard keyed on field.
func NewGuard(field string) Guard {
	return Guard{LockField: field}
}

func (g Guard) Field() string {
	if g.LockField == "" {
		return DefaultLockField
	}
	return g.LockField
}

/*
Validate removes the lock field from attrs and compares it with the
record's current version.

The removal happens before the comparison, so attrs never contains the
lock field afterwards, whatever the outcome. On success attrs holds
only ordinary fields and can go straight to the write path.
*/
func (g Guard) Validate(record Record, attrs Attributes) error {
	field := g.Field()
	raw, ok := attrs[field]
	delete(attrs, field)

	var (
		expected int64
		present  bool
	)
	if ok {
		var err error
		expected, present, err = coerceVersion(raw)
		if err != nil {
			return &InvalidVersionError{Field: field, Value: raw, Err: err}
		}
	}
	if !present {
		if g.Optional {
			return nil
		}
		return &MissingVersionError{Field: field}
	}

	if actual := record.GetRowVersion(); actual != expected {
		return &StaleRecordError{
			RecordID:  record.GetID(),
			Operation: OperationUpdate,
			Expected:  expected,
			Actual:    actual,
		}
	}
	return nil
}

// Check is Validate without touching the caller's map. It returns a copy
// of attrs without the lock field, on failure as well as on success.
func (g Guard) Check(record Record, attrs Attributes) (Attributes, error) {
	remaining := maps.Clone(attrs)
	if remaining == nil {
		remaining = Attributes{}
	}
	return remaining, g.Validate(record, remaining)
}

// Expected reads the lock field from attrs without removing it. The bool
// reports whether a non-blank value was present.
func (g Guard) Expected(attrs Attributes) (int64, bool, error) {
	field := g.Field()
	raw, ok := attrs[field]
	if !ok {
		return 0, false, nil
	}
	v, present, err := coerceVersion(raw)
	if err != nil {
		return 0, false, &InvalidVersionError{Field: field, Value: raw, Err: err}
	}
	return v, present, nil
}

// Validate runs a required guard keyed on lockField, or DefaultLockField
// when none is given. It reports true on success.
func Validate(record Record, attrs Attributes, lockField ...string) (bool, error) {
	var g Guard
	if len(lockField) > 0 {
		g.LockField = lockField[0]
	}
	if err := g.Validate(record, attrs); err != nil {
		return false, err
	}
	return true, nil
}
