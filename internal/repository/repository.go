package repository

import "context"

// Repository defines the basic CRUD operations for any entity type.
type Repository[T any, ID comparable] interface {
	// Save creates the entity when its ID is zero and updates it otherwise
	Save(ctx context.Context, entity T) (T, error)

	// Create inserts the entity. A non-zero ID that already exists returns ErrDuplicate
	Create(ctx context.Context, entity T) (T, error)

	// Update overwrites an existing entity
	// Returns ErrNotFound if the entity doesn't exist
	Update(ctx context.Context, entity T) (T, error)

	// FindByID retrieves an entity by its ID
	// Returns ErrNotFound if the entity doesn't exist
	FindByID(ctx context.Context, id ID) (T, error)

	// FindAll retrieves all entities
	FindAll(ctx context.Context) ([]T, error)

	// DeleteByID deletes an entity by its ID
	// Returns ErrNotFound if the entity doesn't exist and ErrInUse if it is referenced
	DeleteByID(ctx context.Context, id ID) error

	// ExistsByID checks if an entity exists by its ID
	ExistsByID(ctx context.Context, id ID) (bool, error)
}

const (
	// DefaultPageSize is used when a request does not set a size
	DefaultPageSize = 20
	// MaxPageSize caps the size of a single page
	MaxPageSize = 100
)

// PageRequest selects one page of a sorted listing. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort string // field name as exposed in JSON
	Desc bool
}

// Normalized clamps the request to valid bounds.
func (p PageRequest) Normalized() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of results plus totals.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

func newPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}
