package association

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an owner or related entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a link request clashes with the current links.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument is returned for malformed input, before any store access.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Conflict reasons.
const (
	ReasonAlreadyLinked = "already linked"
	ReasonNotLinked     = "not linked"
)

// NotFoundError names the entity kind and the exact ids that did not resolve.
type NotFoundError struct {
	Entity string
	IDs    []int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, formatIDs(e.IDs))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError names the owner and the related ids that caused the conflict.
type ConflictError struct {
	Owner   string
	OwnerID int64
	Related string
	IDs     []int64
	Reason  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with ID %d %s %s with ID %s", e.Owner, e.OwnerID, e.Reason, e.Related, formatIDs(e.IDs))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InvalidArgumentError describes a rejected input field.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

func formatIDs(ids []int64) string {
	if len(ids) == 1 {
		return fmt.Sprintf("%d", ids[0])
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
