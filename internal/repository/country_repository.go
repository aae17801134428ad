package repository

import (
	"context"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
)

// CountryRepository defines domain-specific operations for countries
type CountryRepository interface {
	Repository[domain.Country, int64]
	Search(ctx context.Context, name string, page PageRequest) (Page[domain.Country], error)
}

type countryRepositoryImpl struct {
	*DatastoreRepository[domain.Country]
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(ds *datastore.Datastore) CountryRepository {
	return &countryRepositoryImpl{
		DatastoreRepository: newDatastoreRepository(ds, tableMapping[domain.Country]{
			table:       "country",
			entity:      "Country",
			idColumn:    "country_id",
			columns:     []string{"country_id", "country", "last_update"},
			sortable:    map[string]string{"id": "country_id", "name": "country", "lastUpdate": "last_update"},
			defaultSort: "country",
			references:  []reference{{table: "city", column: "country_id", label: "cities"}},
			id:          func(c *domain.Country) int64 { return c.ID },
			setUpdated:  func(c *domain.Country, s string) { c.LastUpdate = s },
			fields: func(c *domain.Country) ([]string, []any) {
				return []string{"country"}, []any{c.Name}
			},
		}),
	}
}

// Search lists countries whose name contains name
func (r *countryRepositoryImpl) Search(ctx context.Context, name string, page PageRequest) (Page[domain.Country], error) {
	if name == "" {
		return r.FindPage(ctx, page)
	}
	return r.FindPage(ctx, page, likeAny(name, "country"))
}
