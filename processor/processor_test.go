package processor

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/mail"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

type stubProcessor struct {
	name string
}

func (s *stubProcessor) Name() string                         { return s.name }
func (s *stubProcessor) InputRequirements() []datatype.Filter { return nil }
func (s *stubProcessor) Process(context.Context, *rundata.InputData, *config.RunConfiguration) (*Result, error) {
	return NewResult(mail.NoMessage())
}

func stubFactory(name string) Factory {
	return func(*config.Configuration, *slog.Logger) (DataProcessor, error) {
		return &stubProcessor{name: name}, nil
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Sync", stubFactory("sync")))
	require.NoError(t, r.Register("demux", stubFactory("demux")))

	assert.ErrorIs(t, r.Register(" sync ", stubFactory("x")), ErrProcessorAlreadyExists)
	assert.ErrorIs(t, r.Register("", stubFactory("x")), ErrEmptyProcessorName)
	assert.Error(t, r.Register("nil", nil))

	p, err := r.New("SYNC", config.New(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "sync", p.Name())

	_, err = r.New("qc", config.New(nil), nil)
	assert.ErrorIs(t, err, ErrUnknownProcessor)
	assert.Contains(t, err.Error(), "qc")

	assert.Equal(t, []string{"demux", "sync"}, r.Names())
}

func TestRegistry_FactoryErrors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("output storage is not writable")
	require.NoError(t, r.Register("failing", func(*config.Configuration, *slog.Logger) (DataProcessor, error) {
		return nil, boom
	}))
	require.NoError(t, r.Register("nil", func(*config.Configuration, *slog.Logger) (DataProcessor, error) {
		return nil, nil
	}))

	_, err := r.New("failing", config.New(nil), nil)
	assert.ErrorIs(t, err, boom)

	_, err = r.New("nil", config.New(nil), nil)
	assert.Error(t, err)
}

func TestNewResult(t *testing.T) {
	r := rundata.New(rundata.NewRunID("run1"), datatype.BCL, storage.New("", "/data").NewLocation("run1"), "")
	msg := mail.NewMessage("done", "ok")

	res, err := NewResult(msg, r)
	require.NoError(t, err)
	assert.Equal(t, []rundata.RunData{r}, res.RunData())
	assert.Equal(t, msg, res.Message())
	assert.Equal(t, 1, res.InputData().Len())

	out := res.RunData()
	out[0] = rundata.RunData{}
	assert.Equal(t, r, res.RunData()[0], "result must not share its slice")

	_, err = NewResult(msg, r, rundata.RunData{})
	assert.ErrorIs(t, err, ErrInvalidResult)

	res, err = NewResult(mail.Message{}, r)
	require.NoError(t, err)
	assert.True(t, res.Message().IsNoMessage(), "zero message must not be sent")
}

func TestOutputStorage(t *testing.T) {
	s := storage.New("seq01", "/data/fastq")
	data, err := s.ToJSON()
	require.NoError(t, err)

	conf := config.FromMap(map[string]string{KeyOutputStorage: data})
	got, err := WritableOutputStorage(conf)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = OutputStorage(config.New(nil))
	assert.ErrorIs(t, err, config.ErrMissingKey)

	s.ReadOnly = true
	data, err = s.ToJSON()
	require.NoError(t, err)
	_, err = WritableOutputStorage(config.FromMap(map[string]string{KeyOutputStorage: data}))
	assert.Error(t, err)

	_, err = OutputStorage(config.FromMap(map[string]string{KeyOutputStorage: "{"}))
	assert.Error(t, err)
}
