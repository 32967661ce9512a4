// Package provider defines where a recipe finds its runs and their per-run
// configuration.
package provider

import (
	"context"
	"log/slog"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// RunDataProvider lists the runs available on a storage.
type RunDataProvider interface {
	Name() string
	Storage() storage.DataStorage
	// ListInProgress returns the runs still being produced.
	ListInProgress(ctx context.Context) ([]rundata.RunData, error)
	// ListCompleted returns the runs whose production is over.
	ListCompleted(ctx context.Context) ([]rundata.RunData, error)
}

// Factory creates a run data provider reading s.
type Factory func(s storage.DataStorage, conf *config.Configuration, logger *slog.Logger) (RunDataProvider, error)

// RunConfigurationProvider computes the configuration specific to a run, for
// instance from its sample sheet.
type RunConfigurationProvider interface {
	RunConfiguration(ctx context.Context, runData rundata.RunData) (*config.RunConfiguration, error)
}

// RunConfigurationFactory creates a run configuration provider.
type RunConfigurationFactory func(conf *config.Configuration, logger *slog.Logger) (RunConfigurationProvider, error)

// EmptyRunConfigurationProvider returns an empty configuration for every run.
type EmptyRunConfigurationProvider struct{}

var _ RunConfigurationProvider = EmptyRunConfigurationProvider{}

func (EmptyRunConfigurationProvider) RunConfiguration(context.Context, rundata.RunData) (*config.RunConfiguration, error) {
	return config.NewRunConfiguration(nil), nil
}

// List returns the in-progress or the completed runs of p.
func List(ctx context.Context, p RunDataProvider, inProgress bool) ([]rundata.RunData, error) {
	if inProgress {
		return p.ListInProgress(ctx)
	}
	return p.ListCompleted(ctx)
}
