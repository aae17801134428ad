package repository

import (
	"context"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
)

// CityQuery filters city listings. Zero values are ignored.
type CityQuery struct {
	Name      string
	CountryID int64
}

// CityRepository defines domain-specific operations for cities
type CityRepository interface {
	Repository[domain.City, int64]
	Search(ctx context.Context, q CityQuery, page PageRequest) (Page[domain.City], error)
}

type cityRepositoryImpl struct {
	*DatastoreRepository[domain.City]
}

// NewCityRepository creates a new city repository
func NewCityRepository(ds *datastore.Datastore) CityRepository {
	r := &cityRepositoryImpl{}
	r.DatastoreRepository = newDatastoreRepository(ds, tableMapping[domain.City]{
		table:    "city",
		entity:   "City",
		idColumn: "city_id",
		columns:  []string{"city_id", "city", "country_id", "last_update"},
		sortable: map[string]string{
			"id":         "city_id",
			"name":       "city",
			"countryId":  "country_id",
			"lastUpdate": "last_update",
		},
		defaultSort: "city",
		id:          func(c *domain.City) int64 { return c.ID },
		setUpdated:  func(c *domain.City, s string) { c.LastUpdate = s },
		fields: func(c *domain.City) ([]string, []any) {
			return []string{"city", "country_id"}, []any{c.Name, c.CountryID}
		},
		beforeWrite: func(ctx context.Context, c *domain.City) error {
			return requireRow(ctx, r.ds, "Country", "country", "country_id", c.CountryID)
		},
	})
	return r
}

// Search lists cities by name substring and country. A missing country is ErrNotFound.
func (r *cityRepositoryImpl) Search(ctx context.Context, q CityQuery, page PageRequest) (Page[domain.City], error) {
	var filters []Filter
	if q.Name != "" {
		filters = append(filters, likeAny(q.Name, "city"))
	}
	if q.CountryID != 0 {
		if err := requireRow(ctx, r.ds, "Country", "country", "country_id", q.CountryID); err != nil {
			return Page[domain.City]{}, err
		}
		filters = append(filters, equals("country_id", q.CountryID))
	}
	return r.FindPage(ctx, page, filters...)
}
