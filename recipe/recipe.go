// Package recipe runs an ordered list of steps over the runs found by a set
// of providers. A Builder collects storages, providers and steps; Init binds
// the steps to their processors and returns an executable Recipe.
package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/logging"
	"github.com/GenomiqueENS/aozan-sub001/mail"
	"github.com/GenomiqueENS/aozan-sub001/processor"
	"github.com/GenomiqueENS/aozan-sub001/provider"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// Options tunes a recipe. Zero fields take their defaults.
type Options struct {
	Logger *slog.Logger
	// Sender receives step notifications. Defaults to mail.NopSender.
	Sender mail.Sender
	// Processors defaults to processor.DefaultRegistry.
	Processors *processor.Registry
	// Providers defaults to provider.DefaultRegistry.
	Providers *provider.Registry
	Now       func() time.Time
}

type source struct {
	provider   provider.RunDataProvider
	inProgress bool
}

// Builder assembles a recipe. It can be initialized once.
type Builder struct {
	name        string
	description string
	conf        *config.Configuration
	overrides   *config.Configuration
	storages    *storage.Registry
	sources     []source
	steps       []StepSpec
	initialized bool
	opts        Options
}

// New creates a builder. conf is copied and becomes the recipe configuration.
// Only the first options value is used.
func New(name, description string, conf *config.Configuration, options ...Options) *Builder {
	var o Options
	if len(options) > 0 {
		o = options[0]
	}
	if o.Sender == nil {
		o.Sender = mail.NopSender{}
	}
	if o.Processors == nil {
		o.Processors = processor.DefaultRegistry
	}
	if o.Providers == nil {
		o.Providers = provider.DefaultRegistry
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Logger = logging.OrDiscard(o.Logger).With("recipe", name)

	recipeConf := config.New(nil)
	recipeConf.Merge(conf)

	return &Builder{
		name:        name,
		description: description,
		conf:        recipeConf,
		storages:    storage.NewRegistry(),
		opts:        o,
	}
}

func (b *Builder) Name() string        { return b.name }
func (b *Builder) Description() string { return b.description }

// Configuration returns a copy of the recipe configuration.
func (b *Builder) Configuration() *config.Configuration {
	return b.conf.Copy()
}

func (b *Builder) checkNotInitialized() error {
	if b.initialized {
		return ErrAlreadyInitialized
	}
	return nil
}

// AddStorage registers a storage under name.
func (b *Builder) AddStorage(name string, s storage.DataStorage) error {
	if err := b.checkNotInitialized(); err != nil {
		return err
	}
	return b.storages.Add(name, s)
}

// AddDataProvider creates the provider registered as providerName on the
// storage storageName. The provider sees the recipe configuration overlaid
// by conf, which may be nil.
func (b *Builder) AddDataProvider(providerName, storageName string, inProgress bool, conf *config.Configuration) error {
	if err := b.checkNotInitialized(); err != nil {
		return err
	}
	s, err := b.storages.Get(storageName)
	if err != nil {
		return fmt.Errorf("provider %s: %w", providerName, err)
	}

	providerConf := b.conf.Copy()
	providerConf.Merge(conf)

	p, err := b.opts.Providers.NewDataProvider(providerName, s, providerConf, b.opts.Logger)
	if err != nil {
		return err
	}
	return b.AddProvider(p, inProgress)
}

// AddProvider adds a provider. inProgress selects whether it is asked for
// in-progress or for completed runs.
func (b *Builder) AddProvider(p provider.RunDataProvider, inProgress bool) error {
	if err := b.checkNotInitialized(); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: nil provider", ErrContractViolation)
	}
	b.sources = append(b.sources, source{provider: p, inProgress: inProgress})
	return nil
}

// AddStep appends a step. Step names must be unique.
func (b *Builder) AddStep(spec StepSpec) error {
	if err := b.checkNotInitialized(); err != nil {
		return err
	}
	if err := spec.validate(); err != nil {
		return err
	}
	for _, s := range b.steps {
		if strings.EqualFold(s.Name, spec.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateStep, spec.Name)
		}
	}
	b.steps = append(b.steps, spec)
	return nil
}

func (b *Builder) AddSteps(specs ...StepSpec) error {
	for _, spec := range specs {
		if err := b.AddStep(spec); err != nil {
			return err
		}
	}
	return nil
}

// SetOverrides sets the configuration applied on top of every run
// configuration, typically command line settings.
func (b *Builder) SetOverrides(conf *config.Configuration) error {
	if err := b.checkNotInitialized(); err != nil {
		return err
	}
	if conf == nil {
		b.overrides = nil
		return nil
	}
	b.overrides = conf.Copy()
	return nil
}

// Init binds every step in declaration order and returns the executable
// recipe.
func (b *Builder) Init() (*Recipe, error) {
	if err := b.checkNotInitialized(); err != nil {
		return nil, err
	}
	if len(b.sources) == 0 {
		return nil, ErrNoProvider
	}

	logger := b.opts.Logger
	names := make([]string, 0, len(b.steps))
	for _, s := range b.steps {
		names = append(names, s.Name+" ["+s.ProcessorName+"]")
	}
	logger.Debug("recipe steps", "steps", strings.Join(names, ", "))

	bc := bindContext{
		recipeConf: b.conf,
		overrides:  b.overrides,
		storages:   b.storages,
		processors: b.opts.Processors,
		logger:     logger,
	}
	steps := make([]*Step, 0, len(b.steps))
	for _, spec := range b.steps {
		s, err := bindStep(spec, bc)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	logger.Debug("steps initialized", "count", len(steps))

	b.initialized = true
	return &Recipe{
		name:        b.name,
		description: b.description,
		conf:        b.conf,
		steps:       steps,
		sources:     b.sources,
		sender:      b.opts.Sender,
		logger:      logger,
		now:         b.opts.Now,
	}, nil
}

// Recipe is an initialized recipe. Its structure cannot change.
type Recipe struct {
	name        string
	description string
	conf        *config.Configuration
	steps       []*Step
	sources     []source
	sender      mail.Sender
	logger      *slog.Logger
	now         func() time.Time
}

func (r *Recipe) Name() string        { return r.name }
func (r *Recipe) Description() string { return r.description }

// Configuration returns a copy of the recipe configuration.
func (r *Recipe) Configuration() *config.Configuration {
	return r.conf.Copy()
}

// Steps returns the bound steps in execution order.
func (r *Recipe) Steps() []*Step {
	return append([]*Step(nil), r.steps...)
}

// AvailableRuns returns the ids of the runs the providers currently list.
func (r *Recipe) AvailableRuns(ctx context.Context) ([]string, error) {
	runs, err := r.listRuns(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(runs.order), nil
}

// Execute processes every available run.
func (r *Recipe) Execute(ctx context.Context) (*Report, error) {
	report := newReport(r.name, r.now())

	runs, err := r.listRuns(ctx)
	if err != nil {
		report.finish(err, r.now())
		return report, err
	}
	if len(runs.order) == 0 {
		r.logger.Info("no run to process found")
	} else {
		r.logger.Info("found runs to process", "count", len(runs.order))
	}

	inputs := make([]*rundata.InputData, 0, len(runs.order))
	for _, id := range runs.order {
		inputs = append(inputs, runs.byID[id])
	}
	err = r.process(ctx, inputs, report)
	report.finish(err, r.now())
	return report, err
}

// ExecuteRuns processes the runs named by ids, in order. Every id is resolved
// before any run is processed: an unknown id fails the whole call. Empty and
// repeated ids are ignored.
func (r *Recipe) ExecuteRuns(ctx context.Context, ids []string) (*Report, error) {
	report := newReport(r.name, r.now())

	runs, err := r.listRuns(ctx)
	if err != nil {
		report.finish(err, r.now())
		return report, err
	}

	seen := make(map[string]struct{}, len(ids))
	var inputs []*rundata.InputData
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		in, ok := runs.byID[id]
		if !ok {
			err := &UnknownRunError{ID: id}
			report.finish(err, r.now())
			return report, err
		}
		inputs = append(inputs, in)
	}

	err = r.process(ctx, inputs, report)
	report.finish(err, r.now())
	return report, err
}

type runListing struct {
	order []string
	byID  map[string]*rundata.InputData
}

// listRuns groups the run data of every provider by run id, in the order
// the ids are first seen.
func (r *Recipe) listRuns(ctx context.Context) (*runListing, error) {
	runs := &runListing{byID: make(map[string]*rundata.InputData)}
	for _, src := range r.sources {
		r.logger.Debug("looking for runs", "provider", src.provider.Name(),
			"storage", src.provider.Storage(), "in_progress", src.inProgress)

		list, err := provider.List(ctx, src.provider, src.inProgress)
		if err != nil {
			return nil, fmt.Errorf("provider %s: failed to list runs: %w", src.provider.Name(), err)
		}
		for _, rd := range list {
			id := rd.RunID.ID
			in, ok := runs.byID[id]
			if !ok {
				in = rundata.NewInputData()
				runs.byID[id] = in
				runs.order = append(runs.order, id)
			}
			in.Add(rd)
		}
	}
	return runs, nil
}

// process runs every input in order and stops at the first failure.
func (r *Recipe) process(ctx context.Context, inputs []*rundata.InputData, report *Report) error {
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.processRun(ctx, in, report); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recipe) processRun(ctx context.Context, data *rundata.InputData, report *Report) error {
	last, err := data.LastRunData()
	if err != nil {
		return fmt.Errorf("%w: run without data", ErrContractViolation)
	}
	runID := last.RunID
	logger := logging.ForRun(r.logger, runID)
	state := report.startRun(runID.ID, r.now())

	for _, step := range r.steps {
		stepState := StepState{Name: step.Name(), Processor: step.ProcessorName(), Status: StatusSkipped}

		input := selectStepInput(data, step.InputRequirements())
		if input.IsEmpty() {
			logger.Debug("step skipped, input requirements not satisfied", "step", step.Name())
			state.Steps = append(state.Steps, stepState)
			continue
		}

		logger.Info("start step", "step", step.Name())
		started := r.now()
		stepState.StartedAt = &started

		result, err := step.Process(ctx, input)
		ended := r.now()
		stepState.CompletedAt = &ended
		if err != nil {
			stepState.Status = StatusFailed
			stepState.Error = err.Error()
			state.Steps = append(state.Steps, stepState)
			state.Status = StatusFailed
			logger.Error("step failed", "step", step.Name(), "error", err)
			return rundata.WrapRunError(runID, err)
		}

		data.Merge(result.InputData())
		if msg := result.Message(); !msg.IsNoMessage() {
			r.sender.Send(msg)
		}

		stepState.Status = StatusCompleted
		for _, out := range result.RunData() {
			stepState.OutputRunIDs = append(stepState.OutputRunIDs, out.RunID.ID)
		}
		state.Steps = append(state.Steps, stepState)
		logger.Info("end of step", "step", step.Name(), "duration", ended.Sub(started))
	}

	state.Status = StatusCompleted
	if !state.Processed() {
		state.Status = StatusSkipped
	}
	return nil
}
