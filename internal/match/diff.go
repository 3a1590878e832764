package match

import "time"

// Snapshot is the set of matches seen on a previous run
type Snapshot struct {
	Matches   map[string]*Match `json:"matches"` // keyed by Match.Fingerprint
	UpdatedAt string            `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{Matches: make(map[string]*Match)}
}

// CreateSnapshot creates a snapshot from a list of matches
func CreateSnapshot(matches []*Match, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	for _, m := range matches {
		snap.Matches[m.Fingerprint()] = m
	}
	return snap
}

// DiffResult contains the results of comparing a run against a snapshot
type DiffResult struct {
	New     []*Match `json:"new"`
	Changed []*Match `json:"changed"` // confirmation state or cross-assignment note moved
	Removed []*Match `json:"removed"` // upcoming matches no longer listed
}

// Count returns the number of differences
func (d *DiffResult) Count() int {
	return len(d.New) + len(d.Changed) + len(d.Removed)
}

// Diff compares current matches against a previous snapshot. Matches that
// disappeared only count as removed while their kickoff is not before now;
// past matches drop out of the listing on their own.
func Diff(previous *Snapshot, current []*Match, now time.Time) *DiffResult {
	result := &DiffResult{
		New:     make([]*Match, 0),
		Changed: make([]*Match, 0),
		Removed: make([]*Match, 0),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	seen := make(map[string]bool, len(current))
	for _, m := range current {
		key := m.Fingerprint()
		seen[key] = true

		old, exists := previous.Matches[key]
		switch {
		case !exists:
			result.New = append(result.New, m)
		case statusChanged(old, m):
			result.Changed = append(result.Changed, m)
		}
	}

	for key, m := range previous.Matches {
		if !seen[key] && !m.Kickoff.Before(now) {
			result.Removed = append(result.Removed, m)
		}
	}

	SortByKickoff(result.New)
	SortByKickoff(result.Changed)
	SortByKickoff(result.Removed)

	return result
}

// statusChanged reports whether two matches with equal fingerprints differ
// in presentation fields of their team
func statusChanged(old, current *Match) bool {
	if len(old.Officials) != len(current.Officials) {
		return true
	}
	for i := range current.Officials {
		if old.Officials[i].Status != current.Officials[i].Status ||
			old.Officials[i].External != current.Officials[i].External {
			return true
		}
	}
	return false
}

