package recipe

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/mail"
	"github.com/GenomiqueENS/aozan-sub001/processor"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

var (
	rawRun     = datatype.New(datatype.Raw, datatype.Illumina, "run_directory")
	sequencer  = storage.New("seq01", "/data/sequencer")
	rawStorage = storage.New("", "/data/raw")
)

type mockProcessor struct {
	name         string
	requirements []datatype.Filter
	conf         *config.Configuration
	calls        int
	inputs       []*rundata.InputData
	runConfs     []*config.RunConfiguration
	process      func(ctx context.Context, in *rundata.InputData, runConf *config.RunConfiguration) (*processor.Result, error)
}

func (m *mockProcessor) Name() string                         { return m.name }
func (m *mockProcessor) InputRequirements() []datatype.Filter { return m.requirements }

func (m *mockProcessor) Process(ctx context.Context, in *rundata.InputData, runConf *config.RunConfiguration) (*processor.Result, error) {
	m.calls++
	m.inputs = append(m.inputs, in)
	m.runConfs = append(m.runConfs, runConf)
	if m.process != nil {
		return m.process(ctx, in, runConf)
	}
	return processor.NewResult(mail.NoMessage())
}

// register adds m to r under its name. The factory records the configuration
// the recipe built for the processor.
func (m *mockProcessor) register(t *testing.T, r *processor.Registry) {
	t.Helper()
	require.NoError(t, r.Register(m.name, func(conf *config.Configuration, _ *slog.Logger) (processor.DataProcessor, error) {
		m.conf = conf
		return m, nil
	}))
}

type recordingSender struct {
	messages []mail.Message
	errs     []error
}

func (s *recordingSender) Send(m mail.Message) { s.messages = append(s.messages, m) }
func (s *recordingSender) SendError(err error) { s.errs = append(s.errs, err) }

func newRunData(id string, t datatype.DataType, s storage.DataStorage) rundata.RunData {
	return rundata.New(rundata.NewRunID(id), t, s.NewLocation(id), s.Machine)
}

// relocate returns a process function moving the only input to s with type t.
func relocate(s storage.DataStorage, t datatype.DataType, msg mail.Message) func(context.Context, *rundata.InputData, *config.RunConfiguration) (*processor.Result, error) {
	return func(_ context.Context, in *rundata.InputData, _ *config.RunConfiguration) (*processor.Result, error) {
		r, err := in.TheOnlyElement()
		if err != nil {
			return nil, err
		}
		return processor.NewResult(msg, r.WithLocation(s.NewLocation(r.RunID.ID)).WithType(t))
	}
}

func newBuilder(t *testing.T, procs *processor.Registry, sender mail.Sender, conf map[string]string) *Builder {
	t.Helper()
	b := New("test", "test recipe", config.FromMap(conf), Options{Processors: procs, Sender: sender})
	require.NoError(t, b.AddStorage("sequencer", sequencer))
	require.NoError(t, b.AddStorage("raw", rawStorage))
	return b
}
