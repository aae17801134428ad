package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/association"
)

// SyncLinksRequest is the body of POST /{owner}/{id}/{related}.
type SyncLinksRequest struct {
	IDs            []int64 `json:"ids"`
	Mode           string  `json:"mode"`
	ConflictPolicy string  `json:"conflictPolicy"`
}

// SyncLinksResponse reports the applied delta and the resulting link set.
type SyncLinksResponse struct {
	OwnerID int64   `json:"ownerId"`
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
	Linked  []int64 `json:"linked"`
}

// LinksResponse lists the related ids of one owner.
type LinksResponse struct {
	OwnerID int64   `json:"ownerId"`
	IDs     []int64 `json:"ids"`
}

// Links groups the relationship handlers of one relation direction.
type Links struct {
	svc    *association.Service
	logger *zap.Logger
}

func NewLinks(svc *association.Service, logger *zap.Logger) *Links {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Links{svc: svc, logger: logger}
}

// Routes mounts the link handlers under segment, inside an owner route that
// already carries the {id} parameter.
func (l *Links) Routes(segment string) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/{id}/"+segment, l.ListHandler)
		r.Post("/{id}/"+segment, l.SyncHandler)
		r.Put("/{id}/"+segment+"/{relatedId}", l.LinkHandler)
		r.Delete("/{id}/"+segment+"/{relatedId}", l.UnlinkHandler)
	}
}

// ListHandler returns the ids linked to the owner.
func (l *Links) ListHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	ids, err := l.svc.LinkedIDs(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, l.logger, http.StatusOK, LinksResponse{OwnerID: ownerID, IDs: ids})
}

// LinkHandler links one pair. An existing link is 409.
func (l *Links) LinkHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, relatedID, err := parsePair(r)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	if err := l.svc.LinkOne(r.Context(), ownerID, relatedID); err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlinkHandler removes one pair. A missing link is 409.
func (l *Links) UnlinkHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, relatedID, err := parsePair(r)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	if err := l.svc.UnlinkOne(r.Context(), ownerID, relatedID); err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncHandler reconciles the owner's links with the requested ids.
func (l *Links) SyncHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}

	var req SyncLinksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	mode, err := association.ParseMode(req.Mode)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	policy, err := association.ParseConflictPolicy(req.ConflictPolicy)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}

	delta, err := l.svc.SyncMany(r.Context(), ownerID, req.IDs, mode, policy)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}
	linked, err := l.svc.LinkedIDs(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, l.logger, err)
		return
	}

	writeJSON(w, l.logger, http.StatusOK, SyncLinksResponse{
		OwnerID: ownerID,
		Added:   nonNil(delta.Added),
		Removed: nonNil(delta.Removed),
		Linked:  nonNil(linked),
	})
}

func parsePair(r *http.Request) (int64, int64, error) {
	ownerID, err := parseID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	relatedID, err := parseID(r, "relatedId")
	if err != nil {
		return 0, 0, err
	}
	return ownerID, relatedID, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
