package association

// Link is one edge of a many-to-many relation.
type Link struct {
	OwnerID   int64
	RelatedID int64
}

// JoinTable holds links indexed from both sides. Every mutation updates the
// owner index and the related index together, so OwnersOf and RelatedOf never
// disagree and a pair can be stored at most once.
type JoinTable struct {
	byOwner   map[int64]IDSet
	byRelated map[int64]IDSet
	size      int
}

// NewJoinTable returns an empty join table.
func NewJoinTable() *JoinTable {
	return &JoinTable{
		byOwner:   make(map[int64]IDSet),
		byRelated: make(map[int64]IDSet),
	}
}

// LoadOwner seeds the table with the links an owner currently holds.
func (t *JoinTable) LoadOwner(ownerID int64, relatedIDs []int64) {
	for _, id := range relatedIDs {
		t.Link(ownerID, id)
	}
}

// Link records the pair and reports whether it was new.
func (t *JoinTable) Link(ownerID, relatedID int64) bool {
	owners, ok := t.byRelated[relatedID]
	if !ok {
		owners = make(IDSet)
		t.byRelated[relatedID] = owners
	}
	if !owners.Add(ownerID) {
		return false
	}

	related, ok := t.byOwner[ownerID]
	if !ok {
		related = make(IDSet)
		t.byOwner[ownerID] = related
	}
	related.Add(relatedID)
	t.size++
	return true
}

// Unlink erases the pair and reports whether it existed.
func (t *JoinTable) Unlink(ownerID, relatedID int64) bool {
	owners, ok := t.byRelated[relatedID]
	if !ok || !owners.Remove(ownerID) {
		return false
	}
	if owners.Len() == 0 {
		delete(t.byRelated, relatedID)
	}

	related := t.byOwner[ownerID]
	related.Remove(relatedID)
	if related.Len() == 0 {
		delete(t.byOwner, ownerID)
	}
	t.size--
	return true
}

// Has reports whether the pair is linked.
func (t *JoinTable) Has(ownerID, relatedID int64) bool {
	return t.byOwner[ownerID].Has(relatedID)
}

// RelatedOf returns a copy of the ids linked to ownerID.
func (t *JoinTable) RelatedOf(ownerID int64) IDSet {
	return t.byOwner[ownerID].Clone()
}

// OwnersOf returns a copy of the owner ids linked to relatedID.
func (t *JoinTable) OwnersOf(relatedID int64) IDSet {
	return t.byRelated[relatedID].Clone()
}

// Links returns every stored pair, ordered by owner then related id.
func (t *JoinTable) Links() []Link {
	links := make([]Link, 0, t.size)
	owners := make(IDSet, len(t.byOwner))
	for id := range t.byOwner {
		owners.Add(id)
	}
	for _, ownerID := range owners.Sorted() {
		for _, relatedID := range t.byOwner[ownerID].Sorted() {
			links = append(links, Link{OwnerID: ownerID, RelatedID: relatedID})
		}
	}
	return links
}

// Len returns the number of stored links.
func (t *JoinTable) Len() int {
	return t.size
}
