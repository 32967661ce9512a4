package directory

import (
	"context"
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

func makeRun(t *testing.T, root, name string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
	}
}

func ids(runs []rundata.RunData) []string {
	var result []string
	for _, r := range runs {
		result = append(result, r.RunID.ID)
	}
	return result
}

func TestProvider_ListsByCompletion(t *testing.T) {
	root := t.TempDir()
	makeRun(t, root, "250101_A00001_0001_AHXXXX", DefaultRequiredFile, DefaultCompletionMarker)
	makeRun(t, root, "250102_A00001_0002_AHYYYY", DefaultRequiredFile)
	makeRun(t, root, "250103_A00001_0003_AHZZZZ.tmp", DefaultRequiredFile, DefaultCompletionMarker)
	makeRun(t, root, "not_a_run")
	makeRun(t, root, ".hidden", DefaultRequiredFile, DefaultCompletionMarker)
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), nil, 0644))

	s := storage.New("seq01", root)
	p, err := New(s, config.New(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, Name, p.Name())
	assert.Equal(t, s, p.Storage())

	completed, err := p.ListCompleted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"250101_A00001_0001_AHXXXX"}, ids(completed))
	assert.Equal(t, datatype.BCL, completed[0].Type)
	assert.Equal(t, "seq01", completed[0].Source)
	assert.Equal(t, filepath.Join(root, "250101_A00001_0001_AHXXXX"), completed[0].Location.Path)

	inProgress, err := p.ListInProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"250102_A00001_0002_AHYYYY", "250103_A00001_0003_AHZZZZ"}, ids(inProgress))
	for _, r := range inProgress {
		assert.True(t, r.Type.IsPartial())
	}
}

func TestProvider_SkipsTemporaryTwin(t *testing.T) {
	root := t.TempDir()
	makeRun(t, root, "RUN1", DefaultRequiredFile)
	makeRun(t, root, "RUN1.tmp", DefaultRequiredFile)
	makeRun(t, root, "RUN2.tmp", DefaultRequiredFile)

	p, err := New(storage.New("seq01", root), config.New(nil), nil)
	require.NoError(t, err)

	inProgress, err := p.ListInProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"RUN1", "RUN2"}, ids(inProgress))
	assert.Equal(t, filepath.Join(root, "RUN1"), inProgress[0].Location.Path)
	assert.Equal(t, filepath.Join(root, "RUN2.tmp"), inProgress[1].Location.Path)
}

func TestProvider_Configuration(t *testing.T) {
	root := t.TempDir()
	makeRun(t, root, "20250101_1200_MN12345_FAB12345_abcdef", "final_summary.txt")
	makeRun(t, root, "other", "final_summary.txt")

	conf := config.FromMap(map[string]string{
		KeyName:             "minion",
		KeyCompletionMarker: "final_summary.txt",
		KeyRequiredFile:     "",
		KeyRunPattern:       `^\d{8}_\d{4}_`,
		KeyTechnology:       "nanopore",
		KeyTypeName:         "fast5",
	})
	p, err := New(storage.New("", root), conf, nil)
	require.NoError(t, err)
	assert.Equal(t, "minion", p.Name())

	completed, err := p.ListCompleted(context.Background())
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, datatype.Fast5, completed[0].Type)
}

func TestNew_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := New(storage.New("", filepath.Join(root, "missing")), config.New(nil), nil)
	var cerr *storage.CheckError
	assert.ErrorAs(t, err, &cerr)

	tests := []struct {
		name   string
		values map[string]string
	}{
		{"bad category", map[string]string{KeyCategory: "cooked"}},
		{"empty marker", map[string]string{KeyCompletionMarker: " "}},
		{"bad pattern", map[string]string{KeyRunPattern: "("}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(storage.New("", root), config.FromMap(tt.values), nil)
			assert.ErrorIs(t, err, config.ErrInvalidValue)
		})
	}
}

func TestProvider_CanceledContext(t *testing.T) {
	root := t.TempDir()
	makeRun(t, root, "run1", DefaultRequiredFile, DefaultCompletionMarker)

	p, err := New(storage.New("", root), config.New(nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ListCompleted(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
