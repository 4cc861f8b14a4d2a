package model

import (
	"errors"
	"fmt"
)

// Sentinel errors. Decode failures match ErrSchema; internal-consistency
// failures match ErrInvariant together with their specific sentinel.
var (
	// ErrSchema is matched by every recoverable decode failure.
	ErrSchema = errors.New("schema mismatch")

	// ErrMissingField is returned when a mandatory key is absent or null.
	ErrMissingField = errors.New("missing field")

	// ErrIncompleteTier is returned when only some keys of a field tier are present.
	ErrIncompleteTier = errors.New("incomplete field tier")

	// ErrKindMismatch is returned when the type discriminant names another entity kind.
	ErrKindMismatch = errors.New("unexpected entity type")

	// ErrOutOfRange is returned when a numeric field falls outside its documented range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvariant is matched by every internal-consistency violation.
	ErrInvariant = errors.New("internal consistency violation")

	// ErrInvalidTierCombination is returned when full fields arrive without the non-local fields.
	ErrInvalidTierCombination = errors.New("invalid tier combination")

	// ErrUnsupportedNarrowing is returned when a value lacks the tiers its target variant needs.
	ErrUnsupportedNarrowing = errors.New("unsupported narrowing")
)

// SchemaError reports a payload whose mandatory fields could not be extracted.
type SchemaError struct {
	Kind  Kind
	Field string // dotted path, empty when the whole payload is unusable
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decoding %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decoding %s field %q: %v", e.Kind, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// TierError reports the one tier combination the service contract rules out:
// full fields present while the non-local fields are absent.
type TierError struct {
	Kind     Kind
	NonLocal bool
	Full     bool
}

func (e *TierError) Error() string {
	return fmt.Sprintf("%s: %v (non-local fields %s, full fields %s)",
		e.Kind, ErrInvalidTierCombination, presence(e.NonLocal), presence(e.Full))
}

// Is reports whether target is ErrInvalidTierCombination or ErrInvariant.
func (e *TierError) Is(target error) bool {
	return target == ErrInvalidTierCombination || target == ErrInvariant
}

// NarrowingError reports a conversion into a variant whose tiers the source does not hold.
type NarrowingError struct {
	Kind Kind
	From Variant
	To   Variant
}

func (e *NarrowingError) Error() string {
	return fmt.Sprintf("%s: %v from %s to %s", e.Kind, ErrUnsupportedNarrowing, e.From, e.To)
}

// Is reports whether target is ErrUnsupportedNarrowing or ErrInvariant.
func (e *NarrowingError) Is(target error) bool {
	return target == ErrUnsupportedNarrowing || target == ErrInvariant
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "absent"
}

// nestedError re-roots an error raised while decoding a nested entity under the
// parent's field path. Invariant violations keep their type.
func nestedError(kind Kind, field string, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		path := field
		if se.Field != "" {
			path = field + "." + se.Field
		}
		return &SchemaError{Kind: kind, Field: path, Err: se.Err}
	}
	return fmt.Errorf("decoding %s field %q: %w", kind, field, err)
}
