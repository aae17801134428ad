package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jbweber/homelab/catalog/internal/association"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  repository.PageRequest
		err   bool
	}{
		{"", repository.PageRequest{Size: repository.DefaultPageSize}, false},
		{"page=2&size=5", repository.PageRequest{Page: 2, Size: 5}, false},
		{"size=500", repository.PageRequest{Size: repository.MaxPageSize}, false},
		{"sort=title", repository.PageRequest{Size: 20, Sort: "title"}, false},
		{"sort=title,DESC", repository.PageRequest{Size: 20, Sort: "title", Desc: true}, false},
		{"sort=title,asc", repository.PageRequest{Size: 20, Sort: "title"}, false},
		{"sort=title,up", repository.PageRequest{}, true},
		{"page=one", repository.PageRequest{}, true},
		{"size=0", repository.PageRequest{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/x?"+tt.query, nil)
			got, err := parsePage(r)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		ids    []int64
	}{
		{"association not found", &association.NotFoundError{Entity: "Film", IDs: []int64{4, 5}}, http.StatusNotFound, []int64{4, 5}},
		{"association conflict", &association.ConflictError{Owner: "Actor", OwnerID: 1, Related: "Film", IDs: []int64{3}, Reason: association.ReasonAlreadyLinked}, http.StatusConflict, []int64{3}},
		{"association invalid", &association.InvalidArgumentError{Field: "mode", Reason: "bad"}, http.StatusBadRequest, nil},
		{"repository not found", fmt.Errorf("lookup: %w", &repository.EntityError{Kind: repository.ErrNotFound, Entity: "City", ID: 8}), http.StatusNotFound, []int64{8}},
		{"repository duplicate", &repository.EntityError{Kind: repository.ErrDuplicate, Entity: "City", ID: 8}, http.StatusConflict, []int64{8}},
		{"repository invalid", fmt.Errorf("%w: unknown sort field", repository.ErrInvalidEntity), http.StatusBadRequest, nil},
		{"request", badRequest("page", "invalid page"), http.StatusBadRequest, nil},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.ids, body.IDs)
			assert.Equal(t, http.StatusText(tt.status), body.Title)
		})
	}

	_, body := errorResponse(errors.New("secret driver detail"))
	assert.Equal(t, "internal server error", body.Error)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(zap.New(core)))
	r.Get("/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/teapot", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/teapot", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(len("short and stout")), fields["bytes"])
	assert.NotEmpty(t, fields["request_id"])
}
