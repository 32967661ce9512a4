package rundata

import (
	"errors"
	"fmt"

	"github.com/GenomiqueENS/aozan-sub001/datatype"
)

var (
	ErrNoRunData        = errors.New("no run data")
	ErrNotSingleRunData = errors.New("input does not hold exactly one run data")
)

// InputData is the working set of a run: at most one RunData per category.
// Adding run data of a category already present replaces the previous entry.
type InputData struct {
	entries map[datatype.Category]RunData
}

// NewInputData creates a working set holding runData.
func NewInputData(runData ...RunData) *InputData {
	in := &InputData{entries: make(map[datatype.Category]RunData)}
	in.Add(runData...)
	return in
}

// Add stores every runData under its category, last one wins. Zero values are
// ignored.
func (in *InputData) Add(runData ...RunData) {
	if in.entries == nil {
		in.entries = make(map[datatype.Category]RunData)
	}
	for _, r := range runData {
		if r.IsZero() {
			continue
		}
		in.entries[r.Category()] = r
	}
}

// Merge adds every entry of other, overwriting categories other holds.
func (in *InputData) Merge(other *InputData) {
	if other == nil {
		return
	}
	in.Add(other.Entries()...)
}

// Entries returns the run data in category precedence order.
func (in *InputData) Entries() []RunData {
	result := make([]RunData, 0, len(in.entries))
	for _, c := range datatype.CategoryPrecedence {
		if r, ok := in.entries[c]; ok {
			result = append(result, r)
		}
	}
	return result
}

// Filter returns a new working set with the entries whose type f accepts.
func (in *InputData) Filter(f datatype.Filter) *InputData {
	result := NewInputData()
	for _, r := range in.entries {
		if f.Accept(r.Type) {
			result.Add(r)
		}
	}
	return result
}

func (in *InputData) Len() int { return len(in.entries) }

func (in *InputData) IsEmpty() bool { return len(in.entries) == 0 }

// Get returns the run data of category c.
func (in *InputData) Get(c datatype.Category) (RunData, bool) {
	r, ok := in.entries[c]
	return r, ok
}

// GetType returns the run data whose type equals t.
func (in *InputData) GetType(t datatype.DataType) (RunData, bool) {
	for _, r := range in.entries {
		if r.Type == t {
			return r, true
		}
	}
	return RunData{}, false
}

// TheOnlyElement returns the single entry of the set.
func (in *InputData) TheOnlyElement() (RunData, error) {
	if len(in.entries) != 1 {
		return RunData{}, fmt.Errorf("%w: found %d", ErrNotSingleRunData, len(in.entries))
	}
	for _, r := range in.entries {
		return r, nil
	}
	panic("unreachable")
}

// LastRunData returns the entry of the most advanced category, scanning
// datatype.CategoryPrecedence from the end.
func (in *InputData) LastRunData() (RunData, error) {
	for i := len(datatype.CategoryPrecedence) - 1; i >= 0; i-- {
		if r, ok := in.entries[datatype.CategoryPrecedence[i]]; ok {
			return r, nil
		}
	}
	return RunData{}, ErrNoRunData
}
