package association

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a transactional in-memory Store. InTx works on a copy of the
// links and only publishes it when fn succeeds.
type memStore struct {
	owners  IDSet
	related IDSet
	links   *JoinTable

	failInsert error
	failDelete error
	commits    int
}

func newMemStore(owners, related []int64) *memStore {
	return &memStore{
		owners:  NewIDSet(owners...),
		related: NewIDSet(related...),
		links:   NewJoinTable(),
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	work := NewJoinTable()
	for _, l := range m.links.Links() {
		work.Link(l.OwnerID, l.RelatedID)
	}
	tx := &memTx{parent: m, links: work}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.links = work
	m.commits++
	return nil
}

type memTx struct {
	parent *memStore
	links  *JoinTable
}

func (t *memTx) OwnerExists(_ context.Context, ownerID int64) (bool, error) {
	return t.parent.owners.Has(ownerID), nil
}

func (t *memTx) ResolveRelated(_ context.Context, ids []int64) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if t.parent.related.Has(id) {
			found = append(found, id)
		}
	}
	return found, nil
}

func (t *memTx) LinkExists(_ context.Context, ownerID, relatedID int64) (bool, error) {
	return t.links.Has(ownerID, relatedID), nil
}

func (t *memTx) LinkedIDs(_ context.Context, ownerID int64) ([]int64, error) {
	return t.links.RelatedOf(ownerID).Sorted(), nil
}

func (t *memTx) InsertLinks(_ context.Context, ownerID int64, relatedIDs []int64) error {
	for _, id := range relatedIDs {
		if !t.links.Link(ownerID, id) {
			return errors.New("duplicate link")
		}
	}
	return t.parent.failInsert
}

func (t *memTx) DeleteLinks(_ context.Context, ownerID int64, relatedIDs []int64) error {
	if t.parent.failDelete != nil {
		return t.parent.failDelete
	}
	for _, id := range relatedIDs {
		t.links.Unlink(ownerID, id)
	}
	return nil
}

var actorFilms = Relation{Name: "actor-films", Owner: "Actor", Related: "Film"}

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	return NewService(actorFilms, store, zap.NewNop())
}

func TestService_SyncMany_Replace(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{10, 20, 30})
	store.links.LoadOwner(1, []int64{10, 20})
	svc := newTestService(t, store)

	delta, err := svc.SyncMany(context.Background(), 1, []int64{20, 30}, Replace, IgnoreExisting)
	require.NoError(t, err)
	assert.Equal(t, []int64{30}, delta.Added)
	assert.Equal(t, []int64{10}, delta.Removed)
	assert.Equal(t, []int64{20, 30}, store.links.RelatedOf(1).Sorted())

	// Same request again changes nothing.
	delta, err = svc.SyncMany(context.Background(), 1, []int64{20, 30}, Replace, IgnoreExisting)
	require.NoError(t, err)
	assert.True(t, delta.Empty())
	assert.Equal(t, []int64{20, 30}, store.links.RelatedOf(1).Sorted())
}

func TestService_SyncMany_ReplaceWithEmptyClears(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{10, 20})
	store.links.LoadOwner(1, []int64{10, 20})
	svc := newTestService(t, store)

	delta, err := svc.SyncMany(context.Background(), 1, nil, Replace, IgnoreExisting)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, delta.Removed)
	assert.Zero(t, store.links.Len())
}

func TestService_SyncMany_AddOnly(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{5, 6, 7})
	store.links.LoadOwner(1, []int64{5})
	svc := newTestService(t, store)

	delta, err := svc.SyncMany(context.Background(), 1, []int64{5, 6}, AddOnly, IgnoreExisting)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, delta.Added)
	assert.Empty(t, delta.Removed)
	assert.Equal(t, []int64{5, 6}, store.links.RelatedOf(1).Sorted())
}

func TestService_SyncMany_RemoveOnly(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{5, 6, 7})
	store.links.LoadOwner(1, []int64{5, 6, 7})
	svc := newTestService(t, store)

	delta, err := svc.SyncMany(context.Background(), 1, []int64{6}, RemoveOnly, IgnoreExisting)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, delta.Removed)
	assert.Equal(t, []int64{5, 7}, store.links.RelatedOf(1).Sorted())
}

func TestService_SyncMany_MissingIDs(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{1, 2})
	store.links.LoadOwner(1, []int64{2})
	svc := newTestService(t, store)

	_, err := svc.SyncMany(context.Background(), 1, []int64{1, 2, 999}, AddOnly, IgnoreExisting)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Film", nf.Entity)
	assert.Equal(t, []int64{999}, nf.IDs)

	assert.Equal(t, []int64{2}, store.links.RelatedOf(1).Sorted())
	assert.Zero(t, store.commits)
}

func TestService_SyncMany_ReportsEveryMissingID(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{1})
	svc := newTestService(t, store)

	_, err := svc.SyncMany(context.Background(), 1, []int64{1, 8, 4}, Replace, IgnoreExisting)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []int64{4, 8}, nf.IDs)
}

func TestService_SyncMany_MissingOwner(t *testing.T) {
	store := newMemStore(nil, []int64{1})
	svc := newTestService(t, store)

	_, err := svc.SyncMany(context.Background(), 42, []int64{1}, AddOnly, IgnoreExisting)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Actor", nf.Entity)
	assert.Equal(t, []int64{42}, nf.IDs)
}

func TestService_SyncMany_RejectExisting(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{5, 6})
	store.links.LoadOwner(1, []int64{5})
	svc := newTestService(t, store)

	_, err := svc.SyncMany(context.Background(), 1, []int64{5, 6}, AddOnly, RejectExisting)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var c *ConflictError
	require.ErrorAs(t, err, &c)
	assert.Equal(t, []int64{5}, c.IDs)
	assert.Equal(t, ReasonAlreadyLinked, c.Reason)

	assert.Equal(t, []int64{5}, store.links.RelatedOf(1).Sorted(), "6 must not be linked")
}

func TestService_SyncMany_RejectExistingWithoutOverlap(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{5, 6})
	store.links.LoadOwner(1, []int64{5})
	svc := newTestService(t, store)

	delta, err := svc.SyncMany(context.Background(), 1, []int64{6}, AddOnly, RejectExisting)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, delta.Added)
}

func TestService_SyncMany_InvalidArguments(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{1})
	svc := newTestService(t, store)
	ctx := context.Background()

	tests := []struct {
		name   string
		owner  int64
		ids    []int64
		mode   Mode
		policy ConflictPolicy
	}{
		{name: "zero owner", owner: 0, ids: []int64{1}, mode: AddOnly},
		{name: "negative related id", owner: 1, ids: []int64{-3}, mode: AddOnly},
		{name: "empty add", owner: 1, ids: nil, mode: AddOnly},
		{name: "empty remove", owner: 1, ids: []int64{}, mode: RemoveOnly},
		{name: "unknown mode", owner: 1, ids: []int64{1}, mode: Mode(7)},
		{name: "unknown policy", owner: 1, ids: []int64{1}, mode: AddOnly, policy: ConflictPolicy(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SyncMany(ctx, tt.owner, tt.ids, tt.mode, tt.policy)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Zero(t, store.commits)
}

func TestService_SyncMany_StorageFailureLeavesLinks(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{10, 20, 30})
	store.links.LoadOwner(1, []int64{10})
	store.failDelete = errors.New("disk full")
	svc := newTestService(t, store)

	_, err := svc.SyncMany(context.Background(), 1, []int64{20, 30}, Replace, IgnoreExisting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []int64{10}, store.links.RelatedOf(1).Sorted())
}

func TestService_LinkOne(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{10})
	svc := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.LinkOne(ctx, 1, 10))
	assert.True(t, store.links.Has(1, 10))

	err := svc.LinkOne(ctx, 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Actor with ID 1 already linked Film with ID 10", err.Error())
	assert.Equal(t, 1, store.links.Len())
}

func TestService_LinkOne_NotFound(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{10})
	svc := newTestService(t, store)
	ctx := context.Background()

	err := svc.LinkOne(ctx, 2, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.LinkOne(ctx, 1, 11)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Film", nf.Entity)
	assert.Equal(t, []int64{11}, nf.IDs)
}

func TestService_UnlinkOne(t *testing.T) {
	store := newMemStore([]int64{1}, []int64{10, 20})
	store.links.LoadOwner(1, []int64{10, 20})
	svc := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.UnlinkOne(ctx, 1, 10))
	assert.Equal(t, []int64{20}, store.links.RelatedOf(1).Sorted())

	err := svc.UnlinkOne(ctx, 1, 10)
	var c *ConflictError
	require.ErrorAs(t, err, &c)
	assert.Equal(t, ReasonNotLinked, c.Reason)
	assert.Equal(t, []int64{20}, store.links.RelatedOf(1).Sorted())
}

func TestService_LinkedIDs(t *testing.T) {
	store := newMemStore([]int64{1, 2}, []int64{3, 4})
	store.links.LoadOwner(1, []int64{4, 3})
	svc := newTestService(t, store)
	ctx := context.Background()

	ids, err := svc.LinkedIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids)

	ids, err = svc.LinkedIDs(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = svc.LinkedIDs(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Relation(t *testing.T) {
	svc := NewService(actorFilms, newMemStore(nil, nil), nil)
	assert.Equal(t, actorFilms, svc.Relation())
}
