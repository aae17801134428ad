package api

import (
	"context"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/domain"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

// NewFilms builds the film resource. Every get embeds the language name, read
// through the language cache. ?includeActors=true also embeds the cast.
func NewFilms(repo repository.FilmRepository, languages *repository.CachedLanguageRepository, logger *zap.Logger) *Resource[domain.Film] {
	return &Resource[domain.Film]{
		name:   "Film",
		path:   "/films",
		repo:   repo,
		id:     func(f *domain.Film) int64 { return f.ID },
		logger: logger,
		search: func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[domain.Film], error) {
			q, err := filmQuery(r)
			if err != nil {
				return repository.Page[domain.Film]{}, err
			}
			return repo.Search(ctx, q, page)
		},
		expand: func(ctx context.Context, r *http.Request, f *domain.Film) error {
			name, err := languages.Name(ctx, f.LanguageID)
			if err != nil {
				return err
			}
			f.Language = name

			include, err := queryBool(r, "includeActors")
			if err != nil || !include {
				return err
			}
			f.Actors, err = repo.ActorsOf(ctx, f.ID)
			return err
		},
	}
}

func filmQuery(r *http.Request) (repository.FilmQuery, error) {
	var q repository.FilmQuery
	var err error
	if q.Title, err = queryName(r, "title", 128); err != nil {
		return q, err
	}
	if q.ActorID, err = queryID(r, "actorId"); err != nil {
		return q, err
	}
	if q.CategoryID, err = queryID(r, "categoryId"); err != nil {
		return q, err
	}
	q.Rating = r.URL.Query().Get("rating")
	if q.Rating != "" && !slices.Contains(domain.Ratings, q.Rating) {
		return q, badRequest("rating", "invalid rating %q", q.Rating)
	}
	return q, nil
}
