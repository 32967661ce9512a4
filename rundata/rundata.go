package rundata

import (
	"fmt"

	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// RunData references the data of one run at one pipeline stage. It is a value:
// the With* methods return modified copies and never touch the receiver.
type RunData struct {
	RunID    RunID
	Type     datatype.DataType
	Location storage.DataLocation
	// Source describes where the data comes from, usually the instrument name.
	Source string
}

// New creates run data. An empty source is recorded as "unknown".
func New(id RunID, t datatype.DataType, location storage.DataLocation, source string) RunData {
	if source == "" {
		source = "unknown"
	}
	return RunData{RunID: id, Type: t, Location: location, Source: source}
}

// IsZero reports whether r lacks a run id or a data type.
func (r RunData) IsZero() bool {
	return r.RunID.IsZero() || r.Type.IsZero()
}

func (r RunData) Category() datatype.Category { return r.Type.Category() }

func (r RunData) WithRunID(id RunID) RunData {
	r.RunID = id
	return r
}

func (r RunData) WithType(t datatype.DataType) RunData {
	r.Type = t
	return r
}

func (r RunData) WithLocation(location storage.DataLocation) RunData {
	r.Location = location
	return r
}

func (r RunData) WithPartial(partial bool) RunData {
	r.Type = r.Type.WithPartial(partial)
	return r
}

func (r RunData) String() string {
	return fmt.Sprintf("RunData[runId=%s, type=%s, location=%s, source=%s]",
		r.RunID, r.Type, r.Location, r.Source)
}
