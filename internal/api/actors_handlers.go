package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/domain"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

// NewActors builds the actor resource. ?name= matches first or last name,
// ?filmId= lists the cast of a film, and ?includeFilms=true on get embeds
// film summaries.
func NewActors(repo repository.ActorRepository, logger *zap.Logger) *Resource[domain.Actor] {
	return &Resource[domain.Actor]{
		name:   "Actor",
		path:   "/actors",
		repo:   repo,
		id:     func(a *domain.Actor) int64 { return a.ID },
		logger: logger,
		search: func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[domain.Actor], error) {
			var q repository.ActorQuery
			var err error
			if q.Name, err = queryName(r, "name", 45); err != nil {
				return repository.Page[domain.Actor]{}, err
			}
			if q.FilmID, err = queryID(r, "filmId"); err != nil {
				return repository.Page[domain.Actor]{}, err
			}
			return repo.Search(ctx, q, page)
		},
		expand: func(ctx context.Context, r *http.Request, a *domain.Actor) error {
			include, err := queryBool(r, "includeFilms")
			if err != nil || !include {
				return err
			}
			a.Films, err = repo.FilmsOf(ctx, a.ID)
			return err
		},
	}
}
