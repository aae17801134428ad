package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/association"
	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

// API holds repository dependencies and relationship services
type API struct {
	ds        *datastore.Datastore
	logger    *zap.Logger
	actors    repository.ActorRepository
	films     repository.FilmRepository
	languages *repository.CachedLanguageRepository
	links     map[string]*association.Service
}

// NewAPI creates a new API instance with repositories initialized from the datastore.
// Language lookups are cached for cacheTTL.
func NewAPI(ds *datastore.Datastore, logger *zap.Logger, cacheTTL time.Duration) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &API{
		ds:        ds,
		logger:    logger,
		actors:    repository.NewActorRepository(ds),
		films:     repository.NewFilmRepository(ds),
		languages: repository.NewCachedLanguageRepository(repository.NewLanguageRepository(ds), cacheTTL),
		links:     make(map[string]*association.Service),
	}
	for name, table := range repository.LinkTables {
		a.links[name] = association.NewService(table.Relation, repository.NewLinkRepository(ds, table), logger)
	}
	return a
}

// Links returns the relationship service for a relation name such as "actor-films".
func (a *API) Links(relation string) (*association.Service, bool) {
	svc, ok := a.links[relation]
	return svc, ok
}

// Handler returns a router with the standard middleware stack and every route registered.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/", a.bannerHandler)
	r.Get("/healthz", a.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v0", func(r chi.Router) {
		NewActors(a.actors, a.logger).Routes(r,
			NewLinks(a.links[repository.ActorFilms.Relation.Name], a.logger).Routes("films"),
		)
		NewFilms(a.films, a.languages, a.logger).Routes(r,
			NewLinks(a.links[repository.FilmActors.Relation.Name], a.logger).Routes("actors"),
			NewLinks(a.links[repository.FilmCategories.Relation.Name], a.logger).Routes("categories"),
		)
		NewCategories(repository.NewCategoryRepository(a.ds), a.logger).Routes(r)
		NewCountries(repository.NewCountryRepository(a.ds), a.logger).Routes(r)
		NewCities(repository.NewCityRepository(a.ds), a.logger).Routes(r)
		NewLanguages(a.languages, a.logger).Routes(r)
	})
}

func (a *API) bannerHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := fmt.Fprintln(w, "Catalog web service is running!"); err != nil {
		a.logger.Warn("failed to write response", zap.Error(err))
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	SchemaVersion int64  `json:"schemaVersion"`
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.ds.Ping(r.Context()); err != nil {
		a.logger.Error("health check failed", zap.Error(err))
		writeJSON(w, a.logger, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	version, err := a.ds.SchemaVersion()
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, a.logger, http.StatusOK, HealthResponse{Status: "ok", SchemaVersion: version})
}
