package association

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/metrics"
)

// Service validates link requests, resolves ids through a Store and applies
// the reconciled delta. Each public call is one transaction against one owner.
type Service struct {
	rel    Relation
	tx     Transactor
	logger *zap.Logger
}

// NewService creates a relationship service for rel.
func NewService(rel Relation, tx Transactor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		rel:    rel,
		tx:     tx,
		logger: logger.With(zap.String("relation", rel.Name)),
	}
}

// Relation returns the relation this service manages.
func (s *Service) Relation() Relation {
	return s.rel
}

// LinkOne links a single pair. It fails with ErrConflict if the pair is already linked.
func (s *Service) LinkOne(ctx context.Context, ownerID, relatedID int64) error {
	if err := validateIDs(ownerID, []int64{relatedID}); err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(ctx context.Context, store Store) error {
		if err := s.resolvePair(ctx, store, ownerID, relatedID); err != nil {
			return err
		}
		linked, err := store.LinkExists(ctx, ownerID, relatedID)
		if err != nil {
			return fmt.Errorf("failed to check link: %w", err)
		}
		if linked {
			return s.conflict(ownerID, []int64{relatedID}, ReasonAlreadyLinked)
		}
		return s.apply(ctx, store, ownerID, nil, "link", Delta{Added: []int64{relatedID}})
	})
}

// UnlinkOne removes a single pair. It fails with ErrConflict if the pair is not linked.
func (s *Service) UnlinkOne(ctx context.Context, ownerID, relatedID int64) error {
	if err := validateIDs(ownerID, []int64{relatedID}); err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(ctx context.Context, store Store) error {
		if err := s.resolvePair(ctx, store, ownerID, relatedID); err != nil {
			return err
		}
		linked, err := store.LinkExists(ctx, ownerID, relatedID)
		if err != nil {
			return fmt.Errorf("failed to check link: %w", err)
		}
		if !linked {
			return s.conflict(ownerID, []int64{relatedID}, ReasonNotLinked)
		}
		return s.apply(ctx, store, ownerID, []int64{relatedID}, "unlink", Delta{Removed: []int64{relatedID}})
	})
}

// SyncMany reconciles the owner's links against relatedIDs according to mode.
// Validation runs to completion before anything is written, so a failed call
// leaves the links untouched.
func (s *Service) SyncMany(ctx context.Context, ownerID int64, relatedIDs []int64, mode Mode, policy ConflictPolicy) (Delta, error) {
	if err := validateIDs(ownerID, relatedIDs); err != nil {
		return Delta{}, err
	}
	if mode != Replace && mode != AddOnly && mode != RemoveOnly {
		return Delta{}, &InvalidArgumentError{Field: "mode", Reason: fmt.Sprintf("unsupported mode %s", mode)}
	}
	if policy != IgnoreExisting && policy != RejectExisting {
		return Delta{}, &InvalidArgumentError{Field: "conflictPolicy", Reason: fmt.Sprintf("unsupported policy %s", policy)}
	}
	if mode != Replace && len(relatedIDs) == 0 {
		return Delta{}, &InvalidArgumentError{Field: "ids", Reason: fmt.Sprintf("at least one id is required for %s", mode)}
	}

	requested := NewIDSet(relatedIDs...)
	var delta Delta
	err := s.tx.InTx(ctx, func(ctx context.Context, store Store) error {
		if err := s.requireOwner(ctx, store, ownerID); err != nil {
			return err
		}
		if err := s.requireRelated(ctx, store, requested); err != nil {
			return err
		}

		current, err := store.LinkedIDs(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to load links for %s %d: %w", s.rel.Owner, ownerID, err)
		}
		currentSet := NewIDSet(current...)

		if policy == RejectExisting {
			if overlap := currentSet.Intersect(requested); overlap.Len() > 0 {
				return s.conflict(ownerID, overlap.Sorted(), ReasonAlreadyLinked)
			}
		}

		delta = Plan(mode, currentSet, requested)
		return s.apply(ctx, store, ownerID, current, mode.String(), delta)
	})
	if err != nil {
		metrics.LinkSyncs.WithLabelValues(s.rel.Name, mode.String(), outcome(err)).Inc()
		return Delta{}, err
	}
	metrics.LinkSyncs.WithLabelValues(s.rel.Name, mode.String(), "ok").Inc()
	return delta, nil
}

// LinkedIDs returns the related ids linked to ownerID in ascending order.
func (s *Service) LinkedIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	if err := validateIDs(ownerID, nil); err != nil {
		return nil, err
	}

	var ids []int64
	err := s.tx.InTx(ctx, func(ctx context.Context, store Store) error {
		if err := s.requireOwner(ctx, store, ownerID); err != nil {
			return err
		}
		linked, err := store.LinkedIDs(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to load links for %s %d: %w", s.rel.Owner, ownerID, err)
		}
		ids = NewIDSet(linked...).Sorted()
		return nil
	})
	return ids, err
}

// apply runs the delta against an in-memory join table seeded with the
// owner's known links, then persists the difference between the table and
// what was loaded.
func (s *Service) apply(ctx context.Context, store Store, ownerID int64, current []int64, op string, delta Delta) error {
	table := NewJoinTable()
	table.LoadOwner(ownerID, current)
	Apply(table, ownerID, delta)

	before := NewIDSet(current...)
	after := table.RelatedOf(ownerID)
	added := Additions(before, after).Sorted()
	removed := Removals(before, after).Sorted()

	if len(added) == 0 && len(removed) == 0 {
		s.logger.Debug("links unchanged", zap.String("op", op), zap.Int64("owner_id", ownerID))
		return nil
	}

	if len(added) > 0 {
		if err := store.InsertLinks(ctx, ownerID, added); err != nil {
			return fmt.Errorf("failed to insert links for %s %d: %w", s.rel.Owner, ownerID, err)
		}
	}
	if len(removed) > 0 {
		if err := store.DeleteLinks(ctx, ownerID, removed); err != nil {
			return fmt.Errorf("failed to delete links for %s %d: %w", s.rel.Owner, ownerID, err)
		}
	}

	metrics.LinksAdded.WithLabelValues(s.rel.Name).Add(float64(len(added)))
	metrics.LinksRemoved.WithLabelValues(s.rel.Name).Add(float64(len(removed)))
	s.logger.Info("links updated",
		zap.String("op", op),
		zap.Int64("owner_id", ownerID),
		zap.Int64s("added", added),
		zap.Int64s("removed", removed),
		zap.Int("linked", after.Len()),
	)
	return nil
}

func (s *Service) resolvePair(ctx context.Context, store Store, ownerID, relatedID int64) error {
	if err := s.requireOwner(ctx, store, ownerID); err != nil {
		return err
	}
	return s.requireRelated(ctx, store, NewIDSet(relatedID))
}

func (s *Service) requireOwner(ctx context.Context, store Store, ownerID int64) error {
	ok, err := store.OwnerExists(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to look up %s %d: %w", s.rel.Owner, ownerID, err)
	}
	if !ok {
		return &NotFoundError{Entity: s.rel.Owner, IDs: []int64{ownerID}}
	}
	return nil
}

func (s *Service) requireRelated(ctx context.Context, store Store, requested IDSet) error {
	if requested.Len() == 0 {
		return nil
	}
	resolved, err := store.ResolveRelated(ctx, requested.Sorted())
	if err != nil {
		return fmt.Errorf("failed to resolve %s ids: %w", s.rel.Related, err)
	}
	if missing := requested.Difference(NewIDSet(resolved...)); missing.Len() > 0 {
		s.logger.Debug("unresolved ids", zap.Int64s("missing", missing.Sorted()))
		return &NotFoundError{Entity: s.rel.Related, IDs: missing.Sorted()}
	}
	return nil
}

func (s *Service) conflict(ownerID int64, ids []int64, reason string) error {
	s.logger.Debug("link conflict", zap.Int64("owner_id", ownerID), zap.Int64s("ids", ids), zap.String("reason", reason))
	return &ConflictError{
		Owner:   s.rel.Owner,
		OwnerID: ownerID,
		Related: s.rel.Related,
		IDs:     ids,
		Reason:  reason,
	}
}

func validateIDs(ownerID int64, relatedIDs []int64) error {
	if ownerID <= 0 {
		return &InvalidArgumentError{Field: "ownerId", Reason: fmt.Sprintf("must be positive, got %d", ownerID)}
	}
	for _, id := range relatedIDs {
		if id <= 0 {
			return &InvalidArgumentError{Field: "ids", Reason: fmt.Sprintf("must be positive, got %d", id)}
		}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
