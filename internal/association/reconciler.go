package association

import (
	"fmt"
	"strings"
)

// Mode selects how a requested id set is combined with the current links.
type Mode int

const (
	// Replace makes the linked set exactly equal to the requested set.
	Replace Mode = iota
	// AddOnly links every requested id and keeps existing links.
	AddOnly
	// RemoveOnly unlinks every requested id and keeps the rest.
	RemoveOnly
)

func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case AddOnly:
		return "add"
	case RemoveOnly:
		return "remove"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "replace", "add" or "remove". An empty string means Replace.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return Replace, nil
	case "add", "add_only", "addonly":
		return AddOnly, nil
	case "remove", "remove_only", "removeonly":
		return RemoveOnly, nil
	}
	return 0, &InvalidArgumentError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
}

// ConflictPolicy decides what happens when requested ids are already linked.
type ConflictPolicy int

const (
	// IgnoreExisting tolerates requested ids that are already linked.
	IgnoreExisting ConflictPolicy = iota
	// RejectExisting fails the call if any requested id is already linked.
	RejectExisting
)

func (p ConflictPolicy) String() string {
	switch p {
	case IgnoreExisting:
		return "ignore"
	case RejectExisting:
		return "reject"
	default:
		return fmt.Sprintf("ConflictPolicy(%d)", int(p))
	}
}

// ParseConflictPolicy accepts "ignore" or "reject". An empty string means IgnoreExisting.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore", "ignore_existing":
		return IgnoreExisting, nil
	case "reject", "reject_existing":
		return RejectExisting, nil
	}
	return 0, &InvalidArgumentError{Field: "conflictPolicy", Reason: fmt.Sprintf("unknown conflict policy %q", s)}
}

// Delta is the change applied to one owner's links.
type Delta struct {
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Additions returns target − current.
func Additions(current, target IDSet) IDSet {
	return target.Difference(current)
}

// Removals returns current − target.
func Removals(current, target IDSet) IDSet {
	return current.Difference(target)
}

// Desired returns the linked set an owner must end up with.
func Desired(mode Mode, current, requested IDSet) IDSet {
	switch mode {
	case AddOnly:
		return current.Union(requested)
	case RemoveOnly:
		return current.Difference(requested)
	default:
		return requested.Clone()
	}
}

// Plan computes the minimal delta that moves current to the desired set for mode.
// Added and Removed are disjoint and sorted.
func Plan(mode Mode, current, requested IDSet) Delta {
	desired := Desired(mode, current, requested)
	return Delta{
		Added:   Additions(current, desired).Sorted(),
		Removed: Removals(current, desired).Sorted(),
	}
}

// Apply mutates table so ownerID gains every added id and loses every removed id.
func Apply(table *JoinTable, ownerID int64, delta Delta) {
	for _, id := range delta.Added {
		table.Link(ownerID, id)
	}
	for _, id := range delta.Removed {
		table.Unlink(ownerID, id)
	}
}
