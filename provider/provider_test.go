package provider

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

func testRun(s storage.DataStorage, id string) rundata.RunData {
	return rundata.New(rundata.NewRunID(id), datatype.BCL, s.NewLocation(id), "seq01")
}

func TestStatic(t *testing.T) {
	s := storage.New("seq01", "/data/raw")
	completed := []rundata.RunData{testRun(s, "run1")}
	inProgress := []rundata.RunData{testRun(s, "run2")}
	p := NewStatic("static", s, completed, inProgress)

	assert.Equal(t, "static", p.Name())
	assert.Equal(t, s, p.Storage())

	got, err := List(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, completed, got)

	got, err = List(context.Background(), p, true)
	require.NoError(t, err)
	assert.Equal(t, inProgress, got)

	completed[0] = rundata.RunData{}
	got, _ = p.ListCompleted(context.Background())
	assert.Equal(t, "run1", got[0].RunID.ID, "provider must own its lists")
}

func TestEmptyRunConfigurationProvider(t *testing.T) {
	runConf, err := EmptyRunConfigurationProvider{}.RunConfiguration(context.Background(), rundata.RunData{})
	require.NoError(t, err)
	assert.Equal(t, 0, runConf.Len())
}

func TestFileRunConfigurationProvider(t *testing.T) {
	s := storage.New("", t.TempDir())
	withFile := testRun(s, "run1")
	without := testRun(s, "run2")
	require.NoError(t, os.MkdirAll(withFile.Location.Path, 0755))
	require.NoError(t, os.MkdirAll(without.Location.Path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(withFile.Location.Path, "run.conf"),
		[]byte("# flowcell settings\nrun.flowcell=H3LKJ\n"), 0644))

	p, err := NewFileRunConfigurationProvider(config.FromMap(map[string]string{KeyRunConfFile: "run.conf"}), nil)
	require.NoError(t, err)

	runConf, err := p.RunConfiguration(context.Background(), withFile)
	require.NoError(t, err)
	assert.Equal(t, "H3LKJ", runConf.GetString("run.flowcell", ""))

	runConf, err = p.RunConfiguration(context.Background(), without)
	require.NoError(t, err)
	assert.Equal(t, 0, runConf.Len())

	require.NoError(t, os.WriteFile(filepath.Join(without.Location.Path, "run.conf"), []byte("garbage\n"), 0644))
	_, err = p.RunConfiguration(context.Background(), without)
	var runErr *rundata.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "run2", runErr.RunID.ID)

	_, err = NewFileRunConfigurationProvider(config.FromMap(map[string]string{KeyRunConfFile: "/etc/run.conf"}), nil)
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestRegistry_DataProviders(t *testing.T) {
	r := NewRegistry()
	factory := func(s storage.DataStorage, conf *config.Configuration, logger *slog.Logger) (RunDataProvider, error) {
		return NewStatic(conf.GetString("provider.name", "static"), s, nil, nil), nil
	}

	require.NoError(t, r.RegisterDataProvider("Static", factory))
	assert.ErrorIs(t, r.RegisterDataProvider("static", factory), ErrProviderAlreadyExists)
	assert.ErrorIs(t, r.RegisterDataProvider(" ", factory), ErrEmptyProviderName)
	assert.Error(t, r.RegisterDataProvider("nil", nil))

	s := storage.New("", "/data/raw")
	p, err := r.NewDataProvider("STATIC", s, config.FromMap(map[string]string{"provider.name": "raw"}), nil)
	require.NoError(t, err)
	assert.Equal(t, "raw", p.Name())
	assert.Equal(t, s, p.Storage())

	_, err = r.NewDataProvider("illumina_bcl", s, config.New(nil), nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	assert.Equal(t, []string{"static"}, r.DataProviderNames())
}

func TestRegistry_RunConfigurationProviders(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{EmptyRunConfigurationName}, r.RunConfigurationProviderNames())

	p, err := r.NewRunConfigurationProvider("empty", config.New(nil), nil)
	require.NoError(t, err)
	assert.IsType(t, EmptyRunConfigurationProvider{}, p)

	require.NoError(t, r.RegisterRunConfigurationProvider("file", NewFileRunConfigurationProvider))
	assert.ErrorIs(t, r.RegisterRunConfigurationProvider("file", NewFileRunConfigurationProvider), ErrProviderAlreadyExists)

	_, err = r.NewRunConfigurationProvider("file", config.FromMap(map[string]string{KeyRunConfFile: ""}), nil)
	assert.Error(t, err)

	_, err = r.NewRunConfigurationProvider("samplesheet", config.New(nil), nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
