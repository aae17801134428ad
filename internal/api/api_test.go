package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/catalog/internal/datastore"
	"github.com/jbweber/homelab/catalog/internal/domain"
	"github.com/jbweber/homelab/catalog/internal/repository"
	"github.com/jbweber/homelab/catalog/internal/testutil"
)

func setupTestAPI(t *testing.T) (http.Handler, *datastore.Datastore) {
	t.Helper()
	ds := testutil.SetupTestDB(t)
	return NewAPI(ds, nil, time.Minute).Handler(), ds
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), "body: %s", w.Body.String())
	return v
}

func TestBannerHealthAndMetrics(t *testing.T) {
	h, _ := setupTestAPI(t)

	w := do(t, h, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Catalog web service is running!")
	assert.NotEmpty(t, w.Header().Get("Content-Type"))

	w = do(t, h, "GET", "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, int64(10), health.SchemaVersion)

	w = do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog_http_requests_total")
}

func TestActors_CRUD(t *testing.T) {
	h, _ := setupTestAPI(t)

	w := do(t, h, "POST", "/api/v0/actors", map[string]any{"firstName": "PENELOPE", "lastName": "GUINESS"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.Actor](t, w)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.LastUpdate)
	assert.Equal(t, "/api/v0/actors/1", w.Header().Get("Location"))

	w = do(t, h, "GET", "/api/v0/actors/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GUINESS", decode[domain.Actor](t, w).LastName)

	w = do(t, h, "PATCH", "/api/v0/actors/1", map[string]any{"lastName": "CRUZ"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[domain.Actor](t, w)
	assert.Equal(t, "PENELOPE", patched.FirstName, "absent fields keep their values")
	assert.Equal(t, "CRUZ", patched.LastName)

	w = do(t, h, "DELETE", "/api/v0/actors/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/api/v0/actors/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "Actor with ID 1 not found", resp.Error)
	assert.Equal(t, []int64{1}, resp.IDs)
}

func TestActors_CreateErrors(t *testing.T) {
	h, _ := setupTestAPI(t)

	w := do(t, h, "POST", "/api/v0/actors", map[string]any{"id": 7, "firstName": "NICK", "lastName": "WAHLBERG"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(7), decode[domain.Actor](t, w).ID)

	tests := []struct {
		name   string
		body   any
		status int
		field  string
	}{
		{"existing id", map[string]any{"id": 7, "firstName": "ED", "lastName": "CHASE"}, http.StatusConflict, ""},
		{"missing last name", map[string]any{"firstName": "ED"}, http.StatusBadRequest, "lastName"},
		{"name too long", map[string]any{"firstName": strings.Repeat("X", 46), "lastName": "CHASE"}, http.StatusBadRequest, "firstName"},
		{"negative id", map[string]any{"id": -1, "firstName": "ED", "lastName": "CHASE"}, http.StatusBadRequest, "id"},
		{"unknown field", map[string]any{"firstName": "ED", "lastName": "CHASE", "age": 40}, http.StatusBadRequest, ""},
		{"malformed json", `{"firstName":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/api/v0/actors", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode[ErrorResponse](t, w)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, http.StatusText(tt.status), resp.Title)
			if tt.field != "" {
				assert.Contains(t, resp.Fields, tt.field)
			}
		})
	}
}

func TestActors_PatchIDMismatch(t *testing.T) {
	h, ds := setupTestAPI(t)
	id := testutil.SeedActor(t, ds, "ED", "CHASE")

	w := do(t, h, "PATCH", "/api/v0/actors/1", map[string]any{"id": id + 1, "lastName": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PATCH", "/api/v0/actors/99", map[string]any{"lastName": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "PATCH", "/api/v0/actors/abc", map[string]any{"lastName": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActors_ListAndSearch(t *testing.T) {
	h, ds := setupTestAPI(t)
	lang := testutil.SeedLanguage(t, ds, "English")
	film := testutil.SeedFilm(t, ds, "ACADEMY DINOSAUR", lang, "PG")
	penelope := testutil.SeedActor(t, ds, "PENELOPE", "GUINESS")
	testutil.SeedActor(t, ds, "NICK", "WAHLBERG")
	testutil.SeedActor(t, ds, "ED", "CHASE")
	testutil.LinkActorFilm(t, ds, penelope, film)

	w := do(t, h, "GET", "/api/v0/actors?size=2&sort=lastName,desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[repository.Page[domain.Actor]](t, w)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "WAHLBERG", page.Items[0].LastName)

	w = do(t, h, "GET", "/api/v0/actors?name=guin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[repository.Page[domain.Actor]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, penelope, page.Items[0].ID)

	w = do(t, h, "GET", "/api/v0/actors?filmId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[repository.Page[domain.Actor]](t, w).Items, 1)

	for _, query := range []string{"filmId=404"} {
		w = do(t, h, "GET", "/api/v0/actors?"+query, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, query)
	}
	for _, query := range []string{"sort=password", "sort=lastName,sideways", "page=-1", "size=x", "filmId=0", "name=" + strings.Repeat("a", 46)} {
		w = do(t, h, "GET", "/api/v0/actors?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestActors_IncludeFilms(t *testing.T) {
	h, ds := setupTestAPI(t)
	lang := testutil.SeedLanguage(t, ds, "English")
	film := testutil.SeedFilm(t, ds, "ACADEMY DINOSAUR", lang, "PG")
	actor := testutil.SeedActor(t, ds, "PENELOPE", "GUINESS")
	testutil.LinkActorFilm(t, ds, actor, film)

	w := do(t, h, "GET", "/api/v0/actors/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "films")

	w = do(t, h, "GET", "/api/v0/actors/1?includeFilms=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[domain.Actor](t, w)
	require.Len(t, got.Films, 1)
	assert.Equal(t, "ACADEMY DINOSAUR", got.Films[0].Title)

	w = do(t, h, "DELETE", "/api/v0/actors/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []int64{actor}, decode[ErrorResponse](t, w).IDs)
}

func TestFilms_CreateAndGet(t *testing.T) {
	h, ds := setupTestAPI(t)
	lang := testutil.SeedLanguage(t, ds, "English")

	w := do(t, h, "POST", "/api/v0/films", map[string]any{"title": "ACADEMY DINOSAUR", "languageId": lang, "releaseYear": 2006})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.Film](t, w)
	assert.Equal(t, domain.RatingG, created.Rating)
	assert.Equal(t, domain.DefaultRentalDuration, created.RentalDuration)

	w = do(t, h, "GET", "/api/v0/films/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[domain.Film](t, w)
	assert.Equal(t, "English", got.Language)
	assert.Empty(t, got.Actors)

	actor := testutil.SeedActor(t, ds, "PENELOPE", "GUINESS")
	testutil.LinkActorFilm(t, ds, actor, created.ID)
	w = do(t, h, "GET", "/api/v0/films/1?includeActors=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[domain.Film](t, w)
	require.Len(t, got.Actors, 1)
	assert.Equal(t, "GUINESS", got.Actors[0].LastName)

	w = do(t, h, "GET", "/api/v0/films/1?includeActors=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilms_CreateErrors(t *testing.T) {
	h, ds := setupTestAPI(t)
	lang := testutil.SeedLanguage(t, ds, "English")

	w := do(t, h, "POST", "/api/v0/films", map[string]any{"title": "NOWHERE", "languageId": 42})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Language with ID 42 not found", decode[ErrorResponse](t, w).Error)

	w = do(t, h, "POST", "/api/v0/films", map[string]any{"title": "X", "languageId": lang, "rating": "PG-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "rating")

	w = do(t, h, "POST", "/api/v0/films", map[string]any{"languageId": lang})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "title")
}

func TestFilms_Search(t *testing.T) {
	h, ds := setupTestAPI(t)
	lang := testutil.SeedLanguage(t, ds, "English")
	testutil.SeedFilm(t, ds, "ACADEMY DINOSAUR", lang, "PG")
	ace := testutil.SeedFilm(t, ds, "ACE GOLDFINGER", lang, "G")
	horror := testutil.SeedCategory(t, ds, "Horror")
	testutil.LinkFilmCategory(t, ds, ace, horror)

	w := do(t, h, "GET", "/api/v0/films?title=gold", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[repository.Page[domain.Film]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ace, page.Items[0].ID)

	w = do(t, h, "GET", "/api/v0/films?categoryId=1&rating=G", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[repository.Page[domain.Film]](t, w).Items, 1)

	w = do(t, h, "GET", "/api/v0/films?rating=PG-15", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/api/v0/films?actorId=9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReferenceResources(t *testing.T) {
	h, _ := setupTestAPI(t)

	w := do(t, h, "POST", "/api/v0/countries", map[string]any{"name": "Canada"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	canada := decode[domain.Country](t, w)

	w = do(t, h, "POST", "/api/v0/cities", map[string]any{"name": "Atlantis", "countryId": 99})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/api/v0/cities", map[string]any{"name": "Halifax", "countryId": canada.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, "GET", "/api/v0/cities?countryId=1&name=hali", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[repository.Page[domain.City]](t, w).Items, 1)

	w = do(t, h, "DELETE", "/api/v0/countries/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "cities")

	w = do(t, h, "POST", "/api/v0/categories", map[string]any{"name": "Horror"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, "GET", "/api/v0/categories?name=orr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[repository.Page[domain.Category]](t, w).Items, 1)

	w = do(t, h, "POST", "/api/v0/languages", map[string]any{"name": "Japanese"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, "PATCH", "/api/v0/languages/1", map[string]any{"name": "Nihongo"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, "GET", "/api/v0/languages/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nihongo", decode[domain.Language](t, w).Name)
}

func TestFilms_LanguageNameFollowsLanguageUpdates(t *testing.T) {
	h, ds := setupTestAPI(t)
	lang := testutil.SeedLanguage(t, ds, "English")
	testutil.SeedFilm(t, ds, "ACADEMY DINOSAUR", lang, "PG")

	w := do(t, h, "GET", "/api/v0/films/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "English", decode[domain.Film](t, w).Language)

	w = do(t, h, "PATCH", "/api/v0/languages/1", map[string]any{"name": "British English"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/api/v0/films/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "British English", decode[domain.Film](t, w).Language)
}
