package repository

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
)

// ActorQuery filters actor listings. Zero values are ignored.
type ActorQuery struct {
	Name   string
	FilmID int64
}

// ActorRepository defines domain-specific operations for actors
type ActorRepository interface {
	Repository[domain.Actor, int64]
	Search(ctx context.Context, q ActorQuery, page PageRequest) (Page[domain.Actor], error)
	FilmsOf(ctx context.Context, actorID int64) ([]domain.FilmSummary, error)
}

type actorRepositoryImpl struct {
	*DatastoreRepository[domain.Actor]
}

// NewActorRepository creates a new actor repository
func NewActorRepository(ds *datastore.Datastore) ActorRepository {
	return &actorRepositoryImpl{
		DatastoreRepository: newDatastoreRepository(ds, tableMapping[domain.Actor]{
			table:    "actor",
			entity:   "Actor",
			idColumn: "actor_id",
			columns:  []string{"actor_id", "first_name", "last_name", "last_update"},
			sortable: map[string]string{
				"id":         "actor_id",
				"firstName":  "first_name",
				"lastName":   "last_name",
				"lastUpdate": "last_update",
			},
			defaultSort: "first_name",
			references:  []reference{{table: "film_actor", column: "actor_id", label: "films"}},
			id:          func(a *domain.Actor) int64 { return a.ID },
			setUpdated:  func(a *domain.Actor, s string) { a.LastUpdate = s },
			fields: func(a *domain.Actor) ([]string, []any) {
				return []string{"first_name", "last_name"}, []any{a.FirstName, a.LastName}
			},
		}),
	}
}

// Search lists actors by name substring and/or film. A missing film is ErrNotFound.
func (r *actorRepositoryImpl) Search(ctx context.Context, q ActorQuery, page PageRequest) (Page[domain.Actor], error) {
	var filters []Filter
	if q.Name != "" {
		filters = append(filters, likeAny(q.Name, "first_name", "last_name"))
	}
	if q.FilmID != 0 {
		if err := requireRow(ctx, r.ds, "Film", "film", "film_id", q.FilmID); err != nil {
			return Page[domain.Actor]{}, err
		}
		filters = append(filters, linkedTo("actor_id", "film_actor", "actor_id", "film_id", q.FilmID))
	}
	return r.FindPage(ctx, page, filters...)
}

// FilmsOf returns summaries of the films the actor appears in, ordered by title
func (r *actorRepositoryImpl) FilmsOf(ctx context.Context, actorID int64) ([]domain.FilmSummary, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("f.film_id", "f.title", "f.release_year", "f.rating")
	sb.From("film f")
	sb.Join("film_actor fa", "fa.film_id = f.film_id")
	sb.Where(sb.Equal("fa.actor_id", actorID))
	sb.OrderBy("f.title", "f.film_id")
	query, args := sb.Build()

	films := []domain.FilmSummary{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &films, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list films for actor %d: %w", actorID, err)
	}
	return films, nil
}
