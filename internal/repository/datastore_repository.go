package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/jbweber/homelab/catalog/internal/datastore"
)

// Filter narrows a listing query. Filters are applied to both the row query
// and the count query, so they must only add WHERE conditions.
type Filter func(sb *sqlbuilder.SelectBuilder)

// reference is a table whose rows point at an entity and block its deletion.
type reference struct {
	table  string
	column string
	label  string
}

// tableMapping describes how an entity type maps onto its table.
type tableMapping[T any] struct {
	table       string
	entity      string
	idColumn    string
	columns     []string
	sortable    map[string]string
	defaultSort string
	references  []reference

	id         func(*T) int64
	setUpdated func(*T, string)
	// fields returns the writable columns, excluding the id and last_update.
	fields func(*T) ([]string, []any)
	// beforeWrite runs inside the write transaction before insert or update.
	beforeWrite func(ctx context.Context, entity *T) error
}

// DatastoreRepository provides a generic implementation of Repository over
// one catalog table
type DatastoreRepository[T any] struct {
	ds *datastore.Datastore
	m  tableMapping[T]
}

func newDatastoreRepository[T any](ds *datastore.Datastore, m tableMapping[T]) *DatastoreRepository[T] {
	return &DatastoreRepository[T]{ds: ds, m: m}
}

// GetDatastore returns the underlying datastore
func (r *DatastoreRepository[T]) GetDatastore() *datastore.Datastore {
	return r.ds
}

func (r *DatastoreRepository[T]) selectBuilder() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(r.m.columns...)
	sb.From(r.m.table)
	return sb
}

// Save creates or updates an entity
func (r *DatastoreRepository[T]) Save(ctx context.Context, entity T) (T, error) {
	if r.m.id(&entity) == 0 {
		return r.Create(ctx, entity)
	}
	return r.Update(ctx, entity)
}

// FindByID retrieves an entity by its ID
func (r *DatastoreRepository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	sb := r.selectBuilder()
	sb.Where(sb.Equal(r.m.idColumn, id))
	query, args := sb.Build()

	var entity T
	if err := r.ds.Q(ctx).GetContext(ctx, &entity, query, args...); err != nil {
		if isNotFoundError(err) {
			return entity, notFound(r.m.entity, id)
		}
		return entity, fmt.Errorf("failed to find %s %d: %w", r.m.table, id, err)
	}
	return entity, nil
}

// FindAll retrieves all entities ordered by ID
func (r *DatastoreRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	sb := r.selectBuilder()
	sb.OrderBy(r.m.idColumn)
	query, args := sb.Build()

	items := []T{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.m.table, err)
	}
	return items, nil
}

// FindPage returns one sorted page of entities matching every filter.
func (r *DatastoreRepository[T]) FindPage(ctx context.Context, req PageRequest, filters ...Filter) (Page[T], error) {
	req = req.Normalized()
	order, err := r.orderBy(req)
	if err != nil {
		return Page[T]{}, err
	}

	cb := sqlbuilder.SQLite.NewSelectBuilder()
	cb.Select("COUNT(*)")
	cb.From(r.m.table)
	for _, f := range filters {
		f(cb)
	}
	countQuery, countArgs := cb.Build()

	var total int64
	if err := r.ds.Q(ctx).GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return Page[T]{}, fmt.Errorf("failed to count %s: %w", r.m.table, err)
	}

	sb := r.selectBuilder()
	for _, f := range filters {
		f(sb)
	}
	sb.OrderBy(order, r.m.idColumn+" ASC")
	sb.Limit(req.Size)
	sb.Offset(req.Offset())
	query, args := sb.Build()

	items := []T{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		return Page[T]{}, fmt.Errorf("failed to list %s: %w", r.m.table, err)
	}
	return newPage(items, req, total), nil
}

func (r *DatastoreRepository[T]) orderBy(req PageRequest) (string, error) {
	column := r.m.defaultSort
	if req.Sort != "" {
		c, ok := r.m.sortable[req.Sort]
		if !ok {
			return "", invalid("unknown sort field %q for %s", req.Sort, r.m.table)
		}
		column = c
	}
	if req.Desc {
		return column + " DESC", nil
	}
	return column + " ASC", nil
}

// ExistsByID checks if an entity exists by its ID
func (r *DatastoreRepository[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := countWhere(ctx, r.ds.Q(ctx), r.m.table, r.m.idColumn, id)
	if err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", r.m.table, id, err)
	}
	return n > 0, nil
}

// Create inserts the entity and returns it as stored
func (r *DatastoreRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	var created T
	err := r.ds.InTx(ctx, func(ctx context.Context) error {
		id := r.m.id(&entity)
		if id != 0 {
			exists, err := r.ExistsByID(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				return duplicate(r.m.entity, id)
			}
		}
		if r.m.beforeWrite != nil {
			if err := r.m.beforeWrite(ctx, &entity); err != nil {
				return err
			}
		}

		stamp := timestamp()
		r.m.setUpdated(&entity, stamp)
		cols, vals := r.m.fields(&entity)
		if id != 0 {
			cols = append([]string{r.m.idColumn}, cols...)
			vals = append([]any{id}, vals...)
		}
		cols = append(cols, "last_update")
		vals = append(vals, stamp)

		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto(r.m.table)
		ib.Cols(cols...)
		ib.Values(vals...)
		query, args := ib.Build()

		res, err := r.ds.Q(ctx).ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", r.m.table, err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get %s ID: %w", r.m.table, err)
		}

		created, err = r.FindByID(ctx, newID)
		return err
	})
	return created, err
}

// Update overwrites every writable column of an existing entity
func (r *DatastoreRepository[T]) Update(ctx context.Context, entity T) (T, error) {
	var updated T
	id := r.m.id(&entity)
	err := r.ds.InTx(ctx, func(ctx context.Context) error {
		exists, err := r.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return notFound(r.m.entity, id)
		}
		if r.m.beforeWrite != nil {
			if err := r.m.beforeWrite(ctx, &entity); err != nil {
				return err
			}
		}

		cols, vals := r.m.fields(&entity)
		ub := sqlbuilder.SQLite.NewUpdateBuilder()
		ub.Update(r.m.table)
		assignments := make([]string, 0, len(cols)+1)
		for i, col := range cols {
			assignments = append(assignments, ub.Assign(col, vals[i]))
		}
		assignments = append(assignments, ub.Assign("last_update", timestamp()))
		ub.Set(assignments...)
		ub.Where(ub.Equal(r.m.idColumn, id))
		query, args := ub.Build()

		if _, err := r.ds.Q(ctx).ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update %s %d: %w", r.m.table, id, err)
		}

		updated, err = r.FindByID(ctx, id)
		return err
	})
	return updated, err
}

// DeleteByID deletes an entity by its ID. Rows in referencing tables block the delete.
func (r *DatastoreRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	return r.ds.InTx(ctx, func(ctx context.Context) error {
		exists, err := r.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return notFound(r.m.entity, id)
		}

		for _, ref := range r.m.references {
			n, err := countWhere(ctx, r.ds.Q(ctx), ref.table, ref.column, id)
			if err != nil {
				return fmt.Errorf("failed to check references to %s %d: %w", r.m.table, id, err)
			}
			if n > 0 {
				return inUse(r.m.entity, id, ref.label)
			}
		}

		db := sqlbuilder.SQLite.NewDeleteBuilder()
		db.DeleteFrom(r.m.table)
		db.Where(db.Equal(r.m.idColumn, id))
		query, args := db.Build()

		if _, err := r.ds.Q(ctx).ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete %s %d: %w", r.m.table, id, err)
		}
		return nil
	})
}

// likeAny matches value as a substring of any of the columns. SQLite LIKE is
// case-insensitive for ASCII.
func likeAny(value string, columns ...string) Filter {
	return func(sb *sqlbuilder.SelectBuilder) {
		pattern := "%" + value + "%"
		conds := make([]string, len(columns))
		for i, col := range columns {
			conds[i] = sb.Like(col, pattern)
		}
		sb.Where(sb.Or(conds...))
	}
}

// equals matches column = value.
func equals(column string, value any) Filter {
	return func(sb *sqlbuilder.SelectBuilder) {
		sb.Where(sb.Equal(column, value))
	}
}

// linkedTo keeps rows whose idColumn appears in joinTable next to ownerColumn = ownerID.
func linkedTo(idColumn, joinTable, joinColumn, ownerColumn string, ownerID int64) Filter {
	return func(sb *sqlbuilder.SelectBuilder) {
		sub := sqlbuilder.SQLite.NewSelectBuilder()
		sub.Select(joinColumn)
		sub.From(joinTable)
		sub.Where(sub.Equal(ownerColumn, ownerID))
		sb.Where(sb.In(idColumn, sub))
	}
}

func countWhere(ctx context.Context, q datastore.Querier, table, column string, value any) (int64, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)
	sb.Where(sb.Equal(column, value))
	query, args := sb.Build()

	var n int64
	if err := q.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// requireRow returns a not-found error for entity when table has no row with id.
func requireRow(ctx context.Context, ds *datastore.Datastore, entity, table, idColumn string, id int64) error {
	n, err := countWhere(ctx, ds.Q(ctx), table, idColumn, id)
	if err != nil {
		return fmt.Errorf("failed to check %s %d: %w", table, id, err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Helper function to check if an error is a "not found" error from the database
func isNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
