package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/huandu/go-sqlbuilder"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
)

// FilmQuery filters film listings. Zero values are ignored.
type FilmQuery struct {
	Title      string
	ActorID    int64
	CategoryID int64
	Rating     string
}

// FilmRepository defines domain-specific operations for films
type FilmRepository interface {
	Repository[domain.Film, int64]
	Search(ctx context.Context, q FilmQuery, page PageRequest) (Page[domain.Film], error)
	ActorsOf(ctx context.Context, filmID int64) ([]domain.Actor, error)
	CategoriesOf(ctx context.Context, filmID int64) ([]domain.Category, error)
}

type filmRepositoryImpl struct {
	*DatastoreRepository[domain.Film]
}

var filmColumns = []string{
	"film_id", "title", "description", "release_year", "language_id", "original_language_id",
	"rental_duration", "rental_rate", "length", "replacement_cost", "rating", "last_update",
}

// NewFilmRepository creates a new film repository
func NewFilmRepository(ds *datastore.Datastore) FilmRepository {
	r := &filmRepositoryImpl{}
	r.DatastoreRepository = newDatastoreRepository(ds, tableMapping[domain.Film]{
		table:    "film",
		entity:   "Film",
		idColumn: "film_id",
		columns:  filmColumns,
		sortable: map[string]string{
			"id":          "film_id",
			"title":       "title",
			"releaseYear": "release_year",
			"length":      "length",
			"rating":      "rating",
			"rentalRate":  "rental_rate",
			"lastUpdate":  "last_update",
		},
		defaultSort: "title",
		references: []reference{
			{table: "film_actor", column: "film_id", label: "actors"},
			{table: "film_category", column: "film_id", label: "categories"},
		},
		id:          func(f *domain.Film) int64 { return f.ID },
		setUpdated:  func(f *domain.Film, s string) { f.LastUpdate = s },
		fields:      filmFields,
		beforeWrite: r.checkFilm,
	})
	return r
}

func filmFields(f *domain.Film) ([]string, []any) {
	cols := []string{
		"title", "description", "release_year", "language_id", "original_language_id",
		"rental_duration", "rental_rate", "length", "replacement_cost", "rating",
	}
	vals := []any{
		f.Title, f.Description, f.ReleaseYear, f.LanguageID, f.OriginalLanguageID,
		f.RentalDuration, f.RentalRate, f.Length, f.ReplacementCost, f.Rating,
	}
	return cols, vals
}

// checkFilm fills defaults and verifies the referenced languages exist
func (r *filmRepositoryImpl) checkFilm(ctx context.Context, f *domain.Film) error {
	if f.Rating == "" {
		f.Rating = domain.RatingG
	}
	if f.RentalDuration == 0 {
		f.RentalDuration = domain.DefaultRentalDuration
	}
	if f.RentalRate == 0 {
		f.RentalRate = domain.DefaultRentalRate
	}
	if f.ReplacementCost == 0 {
		f.ReplacementCost = domain.DefaultReplacementCost
	}
	if !slices.Contains(domain.Ratings, f.Rating) {
		return invalid("unknown rating %q", f.Rating)
	}
	if err := requireRow(ctx, r.ds, "Language", "language", "language_id", f.LanguageID); err != nil {
		return err
	}
	if f.OriginalLanguageID != nil {
		if err := requireRow(ctx, r.ds, "Language", "language", "language_id", *f.OriginalLanguageID); err != nil {
			return err
		}
	}
	return nil
}

// Search lists films by title substring, actor, category and rating
func (r *filmRepositoryImpl) Search(ctx context.Context, q FilmQuery, page PageRequest) (Page[domain.Film], error) {
	var filters []Filter
	if q.Title != "" {
		filters = append(filters, likeAny(q.Title, "title"))
	}
	if q.Rating != "" {
		if !slices.Contains(domain.Ratings, q.Rating) {
			return Page[domain.Film]{}, invalid("unknown rating %q", q.Rating)
		}
		filters = append(filters, equals("rating", q.Rating))
	}
	if q.ActorID != 0 {
		if err := requireRow(ctx, r.ds, "Actor", "actor", "actor_id", q.ActorID); err != nil {
			return Page[domain.Film]{}, err
		}
		filters = append(filters, linkedTo("film_id", "film_actor", "film_id", "actor_id", q.ActorID))
	}
	if q.CategoryID != 0 {
		if err := requireRow(ctx, r.ds, "Category", "category", "category_id", q.CategoryID); err != nil {
			return Page[domain.Film]{}, err
		}
		filters = append(filters, linkedTo("film_id", "film_category", "film_id", "category_id", q.CategoryID))
	}
	return r.FindPage(ctx, page, filters...)
}

// ActorsOf returns the actors appearing in a film, ordered by name
func (r *filmRepositoryImpl) ActorsOf(ctx context.Context, filmID int64) ([]domain.Actor, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("a.actor_id", "a.first_name", "a.last_name", "a.last_update")
	sb.From("actor a")
	sb.Join("film_actor fa", "fa.actor_id = a.actor_id")
	sb.Where(sb.Equal("fa.film_id", filmID))
	sb.OrderBy("a.last_name", "a.first_name", "a.actor_id")
	query, args := sb.Build()

	actors := []domain.Actor{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &actors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list actors for film %d: %w", filmID, err)
	}
	return actors, nil
}

// CategoriesOf returns the categories of a film, ordered by name
func (r *filmRepositoryImpl) CategoriesOf(ctx context.Context, filmID int64) ([]domain.Category, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("c.category_id", "c.name", "c.last_update")
	sb.From("category c")
	sb.Join("film_category fc", "fc.category_id = c.category_id")
	sb.Where(sb.Equal("fc.film_id", filmID))
	sb.OrderBy("c.name", "c.category_id")
	query, args := sb.Build()

	categories := []domain.Category{}
	if err := r.ds.Q(ctx).SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list categories for film %d: %w", filmID, err)
	}
	return categories, nil
}
