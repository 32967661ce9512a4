// Package rundata holds the values that flow through a recipe: the identity of
// a run, a reference to its data at one stage, and the per-run working set
// steps read from and write to.
package rundata

import "strings"

// RunID identifies a run. ID is the current identifier, which steps may
// rewrite; OriginalID is the identifier given by the instrument.
type RunID struct {
	ID         string `json:"id"`
	OriginalID string `json:"original_id"`
}

// NewRunID creates a run id whose current and original identifiers are both id.
func NewRunID(id string) RunID {
	id = strings.TrimSpace(id)
	return RunID{ID: id, OriginalID: id}
}

// Original returns OriginalID, or ID when no original identifier is known.
func (r RunID) Original() string {
	if r.OriginalID == "" {
		return r.ID
	}
	return r.OriginalID
}

// WithID returns a copy of r with a new current identifier. The original
// identifier is preserved.
func (r RunID) WithID(id string) RunID {
	return RunID{ID: id, OriginalID: r.Original()}
}

func (r RunID) IsZero() bool { return r.ID == "" && r.OriginalID == "" }

func (r RunID) String() string {
	if r.OriginalID == "" || r.OriginalID == r.ID {
		return r.ID
	}
	return r.ID + " (" + r.OriginalID + ")"
}
