// Package processor defines the unit of work a recipe step wraps, and the
// registry steps look processors up in.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// Keys injected by the recipe in the configuration handed to a Factory.
const (
	KeyStepName      = "step.name"
	KeyOutputStorage = "output.storage"
)

// DataProcessor is one unit of work of a recipe.
type DataProcessor interface {
	// Name identifies the processor in logs and in the registry.
	Name() string

	// InputRequirements lists the required input slots. Each filter must
	// match exactly one entry of the run working set for the processor to
	// run. The result must not depend on call-time state.
	InputRequirements() []datatype.Filter

	// Process runs the processor on input. Preconditions on input and
	// output locations are checked here, not only at construction.
	Process(ctx context.Context, input *rundata.InputData, runConf *config.RunConfiguration) (*Result, error)
}

// Factory creates a processor bound to its step configuration. It is called
// exactly once per step.
type Factory func(conf *config.Configuration, logger *slog.Logger) (DataProcessor, error)

// OutputStorage decodes the sink storage the recipe injected in conf.
func OutputStorage(conf *config.Configuration) (storage.DataStorage, error) {
	data, err := conf.Require(KeyOutputStorage)
	if err != nil {
		return storage.DataStorage{}, err
	}
	s, err := storage.FromJSON(data)
	if err != nil {
		return storage.DataStorage{}, fmt.Errorf("%s: %w", KeyOutputStorage, err)
	}
	return s, nil
}

// WritableOutputStorage is OutputStorage for processors that write to their
// sink.
func WritableOutputStorage(conf *config.Configuration) (storage.DataStorage, error) {
	s, err := OutputStorage(conf)
	if err != nil {
		return storage.DataStorage{}, err
	}
	if !s.IsWritable() {
		return storage.DataStorage{}, fmt.Errorf("output storage is not writable: %s", s)
	}
	return s, nil
}
