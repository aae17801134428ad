package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/repository"
)

// Resource serves list, get, create, patch and delete for one entity type.
type Resource[T any] struct {
	name   string
	path   string
	repo   repository.Repository[T, int64]
	id     func(*T) int64
	search func(ctx context.Context, r *http.Request, page repository.PageRequest) (repository.Page[T], error)
	expand func(ctx context.Context, r *http.Request, entity *T) error
	logger *zap.Logger
}

// Routes mounts the handlers on r at the resource path.
func (res *Resource[T]) Routes(r chi.Router, extra ...func(chi.Router)) {
	r.Route(res.path, func(r chi.Router) {
		r.Get("/", res.ListHandler)
		r.Post("/", res.CreateHandler)
		r.Get("/{id}", res.GetHandler)
		r.Patch("/{id}", res.PatchHandler)
		r.Delete("/{id}", res.DeleteHandler)
		for _, fn := range extra {
			fn(r)
		}
	})
}

// ListHandler handles GET /{resource} with paging and filters.
func (res *Resource[T]) ListHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	result, err := res.search(r.Context(), r, page)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	writeJSON(w, res.logger, http.StatusOK, result)
}

// GetHandler handles GET /{resource}/{id}.
func (res *Resource[T]) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	entity, err := res.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	if res.expand != nil {
		if err := res.expand(r.Context(), r, &entity); err != nil {
			writeError(w, r, res.logger, err)
			return
		}
	}
	writeJSON(w, res.logger, http.StatusOK, entity)
}

// CreateHandler handles POST /{resource}. An explicit id that already exists is 409.
func (res *Resource[T]) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var entity T
	if err := decodeJSON(r, &entity); err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	if res.id(&entity) < 0 {
		writeError(w, r, res.logger, badRequest("id", "invalid id %d", res.id(&entity)))
		return
	}
	if err := validate.Struct(entity); err != nil {
		writeError(w, r, res.logger, err)
		return
	}

	created, err := res.repo.Create(r.Context(), entity)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	res.logger.Info("created", zap.String("entity", res.name), zap.Int64("id", res.id(&created)))
	w.Header().Set("Location", fmt.Sprintf("/api/v0%s/%d", res.path, res.id(&created)))
	writeJSON(w, res.logger, http.StatusCreated, created)
}

// PatchHandler handles PATCH /{resource}/{id}. Fields absent from the body keep
// their stored values. A body id different from the path id is 400.
func (res *Resource[T]) PatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	entity, err := res.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	if err := decodeJSON(r, &entity); err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	if bodyID := res.id(&entity); bodyID != id {
		writeError(w, r, res.logger, badRequest("id", "body id %d does not match path id %d", bodyID, id))
		return
	}
	if err := validate.Struct(entity); err != nil {
		writeError(w, r, res.logger, err)
		return
	}

	updated, err := res.repo.Update(r.Context(), entity)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	writeJSON(w, res.logger, http.StatusOK, updated)
}

// DeleteHandler handles DELETE /{resource}/{id}.
func (res *Resource[T]) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	if err := res.repo.DeleteByID(r.Context(), id); err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	res.logger.Info("deleted", zap.String("entity", res.name), zap.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}
