package association

import "context"

// Relation names one direction of a many-to-many relationship.
type Relation struct {
	Name    string // e.g. "actor-films"
	Owner   string // entity kind on the initiating side, e.g. "Actor"
	Related string // entity kind on the linked side, e.g. "Film"
}

// Store is the storage contract the service reads and writes links through.
// Implementations are scoped to a single Relation.
type Store interface {
	// OwnerExists reports whether the owner row exists.
	OwnerExists(ctx context.Context, ownerID int64) (bool, error)

	// ResolveRelated returns the subset of ids that exist. Missing ids are
	// inferred by the caller.
	ResolveRelated(ctx context.Context, ids []int64) ([]int64, error)

	// LinkExists reports whether the pair is linked.
	LinkExists(ctx context.Context, ownerID, relatedID int64) (bool, error)

	// LinkedIDs returns the related ids currently linked to ownerID.
	LinkedIDs(ctx context.Context, ownerID int64) ([]int64, error)

	// InsertLinks writes one link per related id.
	InsertLinks(ctx context.Context, ownerID int64, relatedIDs []int64) error

	// DeleteLinks removes the links to the given related ids.
	DeleteLinks(ctx context.Context, ownerID int64, relatedIDs []int64) error
}

// Transactor runs fn against a Store bound to one storage transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
