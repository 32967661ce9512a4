package provider

import (
	"context"
	"slices"

	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// Static serves fixed lists of runs.
type Static struct {
	name       string
	storage    storage.DataStorage
	completed  []rundata.RunData
	inProgress []rundata.RunData
}

var _ RunDataProvider = &Static{}

func NewStatic(name string, s storage.DataStorage, completed, inProgress []rundata.RunData) *Static {
	return &Static{
		name:       name,
		storage:    s,
		completed:  slices.Clone(completed),
		inProgress: slices.Clone(inProgress),
	}
}

func (p *Static) Name() string                 { return p.name }
func (p *Static) Storage() storage.DataStorage { return p.storage }

func (p *Static) ListInProgress(context.Context) ([]rundata.RunData, error) {
	return slices.Clone(p.inProgress), nil
}

func (p *Static) ListCompleted(context.Context) ([]rundata.RunData, error) {
	return slices.Clone(p.completed), nil
}
