package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/logging"
	"github.com/GenomiqueENS/aozan-sub001/processor"
	"github.com/GenomiqueENS/aozan-sub001/provider"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/runid"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// StepSpec declares a step. It is bound to a processor when the recipe is
// initialized.
type StepSpec struct {
	Name          string
	ProcessorName string
	// SinkName is the name of the storage the processor writes to.
	SinkName string
	// Conf overlays the recipe configuration for this step. May be nil.
	Conf *config.Configuration
	// RunConfProvider defaults to provider.EmptyRunConfigurationProvider.
	RunConfProvider provider.RunConfigurationProvider
	// RunIDGenerator defaults to runid.Default().
	RunIDGenerator runid.Generator
}

func (s StepSpec) validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: missing step name", ErrInvalidStep)
	case strings.TrimSpace(s.ProcessorName) == "":
		return fmt.Errorf("%w: step %s has no processor", ErrInvalidStep, s.Name)
	case strings.TrimSpace(s.SinkName) == "":
		return fmt.Errorf("%w: step %s has no sink storage", ErrInvalidStep, s.Name)
	}
	return nil
}

// Step is a step bound to its processor and sink storage.
type Step struct {
	name          string
	processorName string
	sink          storage.DataStorage
	conf          *config.Configuration
	overrides     *config.Configuration

	processor       processor.DataProcessor
	runConfProvider provider.RunConfigurationProvider
	runIDGenerator  runid.Generator
	logger          *slog.Logger
}

type bindContext struct {
	recipeConf *config.Configuration
	overrides  *config.Configuration
	storages   *storage.Registry
	processors *processor.Registry
	logger     *slog.Logger
}

func bindStep(spec StepSpec, bc bindContext) (*Step, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	sink, err := bc.storages.Get(spec.SinkName)
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", spec.Name, err)
	}
	sinkJSON, err := sink.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", spec.Name, err)
	}

	stepConf := config.New(bc.recipeConf)
	stepConf.Merge(spec.Conf)

	processorConf := config.New(stepConf)
	processorConf.Set(processor.KeyStepName, spec.Name)
	processorConf.Set(processor.KeyOutputStorage, sinkJSON)

	logger := bc.logger.With("step", spec.Name)
	logger.Debug("looking for processor", "processor", spec.ProcessorName)
	p, err := bc.processors.New(spec.ProcessorName, processorConf, logger)
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", spec.Name, err)
	}
	logger.Debug("processor initialized", "processor", p.Name())

	s := &Step{
		name:            spec.Name,
		processorName:   spec.ProcessorName,
		sink:            sink,
		conf:            stepConf,
		overrides:       bc.overrides,
		processor:       p,
		runConfProvider: spec.RunConfProvider,
		runIDGenerator:  spec.RunIDGenerator,
		logger:          logger,
	}
	if s.runConfProvider == nil {
		s.runConfProvider = provider.EmptyRunConfigurationProvider{}
	}
	if s.runIDGenerator == nil {
		s.runIDGenerator = runid.Default()
	}
	return s, nil
}

func (s *Step) Name() string                         { return s.name }
func (s *Step) ProcessorName() string                { return s.processorName }
func (s *Step) Sink() storage.DataStorage            { return s.sink }
func (s *Step) Configuration() *config.Configuration { return s.conf.Copy() }

// InputRequirements returns the non-nil input filters of the processor.
func (s *Step) InputRequirements() []datatype.Filter {
	var result []datatype.Filter
	for _, f := range s.processor.InputRequirements() {
		if f != nil {
			result = append(result, f)
		}
	}
	return result
}

// Process runs the processor on input and rewrites the run ids of its output.
// The run configuration handed to the processor layers the step
// configuration, the configuration of the run and the recipe overrides.
func (s *Step) Process(ctx context.Context, input *rundata.InputData) (*processor.Result, error) {
	driving, err := input.LastRunData()
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", s.name, ErrEmptyStepInput)
	}
	logger := logging.ForRun(s.logger, driving.RunID)

	logger.Debug("getting run configuration")
	providerConf, err := s.runConfProvider.RunConfiguration(ctx, driving)
	if err != nil {
		return nil, rundata.WrapRunError(driving.RunID,
			fmt.Errorf("step %s: failed to get run configuration: %w", s.name, err))
	}

	runConf := config.NewRunConfiguration(s.conf)
	if providerConf != nil {
		runConf.Merge(providerConf.Configuration)
	}
	runConf.Merge(s.overrides)

	logger.Info("launching processor", "processor", s.processorName)
	result, err := s.processor.Process(ctx, input, runConf)
	if err != nil {
		return nil, rundata.WrapRunError(driving.RunID, fmt.Errorf("step %s: %w", s.name, err))
	}
	if result == nil {
		return nil, fmt.Errorf("step %s: %w: %s", s.name, ErrNilResult, s.processorName)
	}
	logger.Info("end of processor", "processor", s.processorName)

	out, err := s.rewriteRunIDs(result, runConf)
	if err != nil {
		return nil, rundata.WrapRunError(driving.RunID, fmt.Errorf("step %s: %w", s.name, err))
	}
	return out, nil
}

func (s *Step) rewriteRunIDs(result *processor.Result, runConf *config.RunConfiguration) (*processor.Result, error) {
	constants := s.conf.ToMap()
	maps.Copy(constants, runConf.ToMap())

	produced := result.RunData()
	for i, r := range produced {
		id, err := s.runIDGenerator.NewRunID(r.RunID, constants)
		if err != nil {
			return nil, err
		}
		produced[i] = r.WithRunID(id)
	}
	return processor.NewResult(result.Message(), produced...)
}

func (s *Step) String() string {
	return s.name + " [" + s.processorName + "]"
}
