package repository

import (
	"context"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
)

// CategoryRepository defines domain-specific operations for categories
type CategoryRepository interface {
	Repository[domain.Category, int64]
	Search(ctx context.Context, name string, page PageRequest) (Page[domain.Category], error)
}

type categoryRepositoryImpl struct {
	*DatastoreRepository[domain.Category]
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(ds *datastore.Datastore) CategoryRepository {
	return &categoryRepositoryImpl{
		DatastoreRepository: newDatastoreRepository(ds, tableMapping[domain.Category]{
			table:       "category",
			entity:      "Category",
			idColumn:    "category_id",
			columns:     []string{"category_id", "name", "last_update"},
			sortable:    map[string]string{"id": "category_id", "name": "name", "lastUpdate": "last_update"},
			defaultSort: "name",
			references:  []reference{{table: "film_category", column: "category_id", label: "films"}},
			id:          func(c *domain.Category) int64 { return c.ID },
			setUpdated:  func(c *domain.Category, s string) { c.LastUpdate = s },
			fields: func(c *domain.Category) ([]string, []any) {
				return []string{"name"}, []any{c.Name}
			},
		}),
	}
}

// Search lists categories whose name contains name
func (r *categoryRepositoryImpl) Search(ctx context.Context, name string, page PageRequest) (Page[domain.Category], error) {
	if name == "" {
		return r.FindPage(ctx, page)
	}
	return r.FindPage(ctx, page, likeAny(name, "name"))
}
