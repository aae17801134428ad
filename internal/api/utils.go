package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/association"
	"github.com/jbweber/homelab/catalog/internal/repository"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so error bodies match the request.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Title  string   `json:"title"`
	IDs    []int64  `json:"ids,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// requestError is a client error detected by the handler itself.
type requestError struct {
	msg   string
	field string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(field, format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...), field: field}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps err onto a status code and error body.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, logger, status, body)
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		reqErr      *requestError
		notFound    *association.NotFoundError
		conflict    *association.ConflictError
		invalidArg  *association.InvalidArgumentError
		validation  validator.ValidationErrors
		entityError *repository.EntityError
	)

	switch {
	case errors.As(err, &reqErr):
		resp := ErrorResponse{Error: reqErr.msg, Title: http.StatusText(http.StatusBadRequest)}
		if reqErr.field != "" {
			resp.Fields = []string{reqErr.field}
		}
		return http.StatusBadRequest, resp
	case errors.As(err, &validation):
		fields := make([]string, 0, len(validation))
		msgs := make([]string, 0, len(validation))
		for _, fe := range validation {
			fields = append(fields, fe.Field())
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed: " + strings.Join(msgs, "; "),
			Title:  http.StatusText(http.StatusBadRequest),
			Fields: fields,
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorResponse{Error: notFound.Error(), Title: http.StatusText(http.StatusNotFound), IDs: notFound.IDs}
	case errors.As(err, &conflict):
		return http.StatusConflict, ErrorResponse{Error: conflict.Error(), Title: http.StatusText(http.StatusConflict), IDs: conflict.IDs}
	case errors.As(err, &invalidArg):
		return http.StatusBadRequest, ErrorResponse{Error: invalidArg.Error(), Title: http.StatusText(http.StatusBadRequest), Fields: []string{invalidArg.Field}}
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrInUse):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrInvalidEntity):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		return status, ErrorResponse{Error: "internal server error", Title: http.StatusText(status)}
	}

	resp := ErrorResponse{Error: err.Error(), Title: http.StatusText(status)}
	if errors.As(err, &entityError) {
		resp.IDs = []int64{entityError.ID}
	}
	return status, resp
}

// parseID reads a positive int64 path parameter.
func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(param, "invalid %s %q", param, raw)
	}
	return id, nil
}

// queryID reads an optional positive int64 query parameter. Absent means zero.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(name, "invalid %s %q", name, raw)
	}
	return id, nil
}

// queryBool reads an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest(name, "invalid %s %q", name, raw)
	}
	return b, nil
}

// queryName reads an optional search term of at most max characters.
func queryName(r *http.Request, name string, max int) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", nil
	}
	if err := validate.Var(raw, fmt.Sprintf("max=%d", max)); err != nil {
		return "", badRequest(name, "%s must be at most %d characters", name, max)
	}
	return raw, nil
}

// parsePage reads page, size and sort=field[,asc|desc].
func parsePage(r *http.Request) (repository.PageRequest, error) {
	var req repository.PageRequest
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return req, badRequest("page", "invalid page %q", raw)
		}
		req.Page = page
	}
	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return req, badRequest("size", "invalid size %q", raw)
		}
		req.Size = size
	}
	if raw := q.Get("sort"); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		req.Sort = strings.TrimSpace(field)
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			req.Desc = true
		default:
			return req, badRequest("sort", "invalid sort direction %q", dir)
		}
	}
	return req.Normalized(), nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("", "invalid JSON: %v", err)
	}
	return nil
}
