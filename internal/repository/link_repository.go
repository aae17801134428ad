package repository

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"

	"github.com/jbweber/homelab/catalog/internal/association"
	"github.com/jbweber/homelab/catalog/internal/datastore"
)

// LinkTable maps one direction of a many-to-many relation onto its join table.
type LinkTable struct {
	Relation      association.Relation
	JoinTable     string
	OwnerColumn   string
	RelatedColumn string
	OwnerTable    string
	OwnerID       string
	RelatedTable  string
	RelatedID     string
}

// The link directions served by the catalog.
var (
	ActorFilms = LinkTable{
		Relation:      association.Relation{Name: "actor-films", Owner: "Actor", Related: "Film"},
		JoinTable:     "film_actor",
		OwnerColumn:   "actor_id",
		RelatedColumn: "film_id",
		OwnerTable:    "actor",
		OwnerID:       "actor_id",
		RelatedTable:  "film",
		RelatedID:     "film_id",
	}
	FilmActors = LinkTable{
		Relation:      association.Relation{Name: "film-actors", Owner: "Film", Related: "Actor"},
		JoinTable:     "film_actor",
		OwnerColumn:   "film_id",
		RelatedColumn: "actor_id",
		OwnerTable:    "film",
		OwnerID:       "film_id",
		RelatedTable:  "actor",
		RelatedID:     "actor_id",
	}
	FilmCategories = LinkTable{
		Relation:      association.Relation{Name: "film-categories", Owner: "Film", Related: "Category"},
		JoinTable:     "film_category",
		OwnerColumn:   "film_id",
		RelatedColumn: "category_id",
		OwnerTable:    "film",
		OwnerID:       "film_id",
		RelatedTable:  "category",
		RelatedID:     "category_id",
	}
)

// LinkTables lists every link direction by relation name.
var LinkTables = map[string]LinkTable{
	ActorFilms.Relation.Name:     ActorFilms,
	FilmActors.Relation.Name:     FilmActors,
	FilmCategories.Relation.Name: FilmCategories,
}

// LinkRepository implements association.Store and association.Transactor on
// top of the datastore. Outside InTx each call runs on its own connection.
type LinkRepository struct {
	ds    *datastore.Datastore
	table LinkTable
}

var (
	_ association.Store      = (*LinkRepository)(nil)
	_ association.Transactor = (*LinkRepository)(nil)
)

// NewLinkRepository creates a link repository for one relation direction
func NewLinkRepository(ds *datastore.Datastore, table LinkTable) *LinkRepository {
	return &LinkRepository{ds: ds, table: table}
}

// Table returns the mapping this repository serves
func (r *LinkRepository) Table() LinkTable {
	return r.table
}

// InTx runs fn inside one immediate transaction with r as the store.
func (r *LinkRepository) InTx(ctx context.Context, fn func(ctx context.Context, store association.Store) error) error {
	return r.ds.InTx(ctx, func(ctx context.Context) error {
		return fn(ctx, r)
	})
}

// OwnerExists reports whether the owner row exists
func (r *LinkRepository) OwnerExists(ctx context.Context, ownerID int64) (bool, error) {
	n, err := countWhere(ctx, r.ds.Q(ctx), r.table.OwnerTable, r.table.OwnerID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", r.table.OwnerTable, ownerID, err)
	}
	return n > 0, nil
}

// ResolveRelated returns the ids that exist in the related table
func (r *LinkRepository) ResolveRelated(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(r.table.RelatedID)
	sb.From(r.table.RelatedTable)
	sb.Where(sb.In(r.table.RelatedID, sqlbuilder.Flatten(ids)...))
	query, args := sb.Build()

	found := []int64{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to resolve %s ids: %w", r.table.RelatedTable, err)
	}
	return found, nil
}

// LinkExists reports whether the pair is linked
func (r *LinkRepository) LinkExists(ctx context.Context, ownerID, relatedID int64) (bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(r.table.JoinTable)
	sb.Where(
		sb.Equal(r.table.OwnerColumn, ownerID),
		sb.Equal(r.table.RelatedColumn, relatedID),
	)
	query, args := sb.Build()

	var n int64
	if err := r.ds.Q(ctx).GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("failed to check %s link: %w", r.table.JoinTable, err)
	}
	return n > 0, nil
}

// LinkedIDs returns the related ids linked to ownerID
func (r *LinkRepository) LinkedIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(r.table.RelatedColumn)
	sb.From(r.table.JoinTable)
	sb.Where(sb.Equal(r.table.OwnerColumn, ownerID))
	sb.OrderBy(r.table.RelatedColumn)
	query, args := sb.Build()

	ids := []int64{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s links: %w", r.table.JoinTable, err)
	}
	return ids, nil
}

// InsertLinks writes one join row per related id
func (r *LinkRepository) InsertLinks(ctx context.Context, ownerID int64, relatedIDs []int64) error {
	if len(relatedIDs) == 0 {
		return nil
	}
	stamp := timestamp()
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(r.table.JoinTable)
	ib.Cols(r.table.OwnerColumn, r.table.RelatedColumn, "last_update")
	for _, id := range relatedIDs {
		ib.Values(ownerID, id, stamp)
	}
	query, args := ib.Build()

	if _, err := r.ds.Q(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s links: %w", r.table.JoinTable, err)
	}
	return nil
}

// DeleteLinks removes the join rows for the given related ids
func (r *LinkRepository) DeleteLinks(ctx context.Context, ownerID int64, relatedIDs []int64) error {
	if len(relatedIDs) == 0 {
		return nil
	}
	db := sqlbuilder.SQLite.NewDeleteBuilder()
	db.DeleteFrom(r.table.JoinTable)
	db.Where(
		db.Equal(r.table.OwnerColumn, ownerID),
		db.In(r.table.RelatedColumn, sqlbuilder.Flatten(relatedIDs)...),
	)
	query, args := db.Build()

	if _, err := r.ds.Q(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s links: %w", r.table.JoinTable, err)
	}
	return nil
}
