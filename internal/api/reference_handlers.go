package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/domain"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

func NewCategories(repo repository.CategoryRepository, logger *zap.Logger) *Resource[domain.Category] {
	return &Resource[domain.Category]{
		name:   "Category",
		path:   "/categories",
		repo:   repo,
		id:     func(c *domain.Category) int64 { return c.ID },
		logger: logger,
		search: func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[domain.Category], error) {
			name, err := queryName(r, "name", 25)
			if err != nil {
				return repository.Page[domain.Category]{}, err
			}
			return repo.Search(ctx, name, page)
		},
	}
}

func NewCountries(repo repository.CountryRepository, logger *zap.Logger) *Resource[domain.Country] {
	return &Resource[domain.Country]{
		name:   "Country",
		path:   "/countries",
		repo:   repo,
		id:     func(c *domain.Country) int64 { return c.ID },
		logger: logger,
		search: func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[domain.Country], error) {
			name, err := queryName(r, "name", 50)
			if err != nil {
				return repository.Page[domain.Country]{}, err
			}
			return repo.Search(ctx, name, page)
		},
	}
}

// NewLanguages serves languages through the cache so writes evict stale names.
func NewLanguages(repo *repository.CachedLanguageRepository, logger *zap.Logger) *Resource[domain.Language] {
	return &Resource[domain.Language]{
		name:   "Language",
		path:   "/languages",
		repo:   repo,
		id:     func(l *domain.Language) int64 { return l.ID },
		logger: logger,
		search: func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[domain.Language], error) {
			name, err := queryName(r, "name", 20)
			if err != nil {
				return repository.Page[domain.Language]{}, err
			}
			return repo.Search(ctx, name, page)
		},
	}
}

func NewCities(repo repository.CityRepository, logger *zap.Logger) *Resource[domain.City] {
	return &Resource[domain.City]{
		name:   "City",
		path:   "/cities",
		repo:   repo,
		id:     func(c *domain.City) int64 { return c.ID },
		logger: logger,
		search: func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[domain.City], error) {
			var q repository.CityQuery
			var err error
			if q.Name, err = queryName(r, "name", 50); err != nil {
				return repository.Page[domain.City]{}, err
			}
			if q.CountryID, err = queryID(r, "countryId"); err != nil {
				return repository.Page[domain.City]{}, err
			}
			return repo.Search(ctx, q, page)
		},
	}
}
