package repository

import (
	"errors"
	"fmt"
)

// Common repository errors that can be checked with errors.Is()
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when attempting to create an entity that already exists
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity or query fails validation
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInUse is returned when deleting an entity that other rows still reference
	ErrInUse = errors.New("entity in use")
)

// EntityError ties one of the sentinels above to a concrete row.
type EntityError struct {
	Kind   error
	Entity string
	ID     int64
	Detail string
}

func (e *EntityError) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
	case ErrDuplicate:
		return fmt.Sprintf("%s with ID %d already exists", e.Entity, e.ID)
	case ErrInUse:
		return fmt.Sprintf("%s with ID %d is still referenced by %s", e.Entity, e.ID, e.Detail)
	default:
		return fmt.Sprintf("%s with ID %d: %s", e.Entity, e.ID, e.Detail)
	}
}

func (e *EntityError) Unwrap() error { return e.Kind }

func notFound(entity string, id int64) error {
	return &EntityError{Kind: ErrNotFound, Entity: entity, ID: id}
}

func duplicate(entity string, id int64) error {
	return &EntityError{Kind: ErrDuplicate, Entity: entity, ID: id}
}

func inUse(entity string, id int64, by string) error {
	return &EntityError{Kind: ErrInUse, Entity: entity, ID: id, Detail: by}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntity, fmt.Sprintf(format, args...))
}
