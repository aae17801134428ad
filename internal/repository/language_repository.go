package repository

import (
	"context"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
)

// LanguageRepository defines domain-specific operations for languages
type LanguageRepository interface {
	Repository[domain.Language, int64]
	Search(ctx context.Context, name string, page PageRequest) (Page[domain.Language], error)
}

type languageRepositoryImpl struct {
	*DatastoreRepository[domain.Language]
}

// NewLanguageRepository creates a new language repository
func NewLanguageRepository(ds *datastore.Datastore) LanguageRepository {
	return &languageRepositoryImpl{
		DatastoreRepository: newDatastoreRepository(ds, tableMapping[domain.Language]{
			table:       "language",
			entity:      "Language",
			idColumn:    "language_id",
			columns:     []string{"language_id", "name", "last_update"},
			sortable:    map[string]string{"id": "language_id", "name": "name", "lastUpdate": "last_update"},
			defaultSort: "name",
			references: []reference{
				{table: "film", column: "language_id", label: "films"},
				{table: "film", column: "original_language_id", label: "films"},
			},
			id:         func(l *domain.Language) int64 { return l.ID },
			setUpdated: func(l *domain.Language, s string) { l.LastUpdate = s },
			fields: func(l *domain.Language) ([]string, []any) {
				return []string{"name"}, []any{l.Name}
			},
		}),
	}
}

// Search lists languages whose name contains name
func (r *languageRepositoryImpl) Search(ctx context.Context, name string, page PageRequest) (Page[domain.Language], error) {
	if name == "" {
		return r.FindPage(ctx, page)
	}
	return r.FindPage(ctx, page, likeAny(name, "name"))
}
