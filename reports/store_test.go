package reports

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/recipe"
)

func newReport(id string) *recipe.Report {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return &recipe.Report{
		ID:     id,
		Recipe: "sync",
		Status: recipe.StatusCompleted,
		Runs: []recipe.RunState{{
			RunID:  "run1",
			Status: recipe.StatusCompleted,
			Steps:  []recipe.StepState{{Name: "sync", Processor: "local_sync", Status: recipe.StatusCompleted}},
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s, err := NewStore(Config{Directory: dir}, nil)
	require.NoError(t, err)

	path, err := s.Save(newReport("a"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, newReport("a"), got)
	assert.Equal(t, []string{"run1"}, got.ProcessedRuns())

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStore_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(Config{Directory: dir, MaxFiles: 2}, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC) }

	var paths []string
	for _, id := range []string{"a", "b", "c"} {
		p, err := s.Save(newReport(id))
		require.NoError(t, err)
		paths = append(paths, p)
	}

	listed, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, paths[1:], listed)
	assert.NoFileExists(t, paths[0])
}

func TestStore_ConcurrentStoresDoNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC) }

	first, err := NewStore(Config{Directory: dir}, nil)
	require.NoError(t, err)
	first.now = clock
	second, err := NewStore(Config{Directory: dir}, nil)
	require.NoError(t, err)
	second.now = clock

	p1, err := first.Save(newReport("a"))
	require.NoError(t, err)
	p2, err := second.Save(newReport("b"))
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	got, err := Load(p1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	got, err = Load(p2)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
}

func TestStore_Retention(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "report-20200101000000.001.json")
	require.NoError(t, os.WriteFile(old, []byte("{}"), 0644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0644))
	require.NoError(t, os.Chtimes(unrelated, past, past))

	s, err := NewStore(Config{Directory: dir, Retention: 24 * time.Hour}, nil)
	require.NoError(t, err)
	path, err := s.Save(newReport("a"))
	require.NoError(t, err)

	assert.NoFileExists(t, old)
	assert.FileExists(t, unrelated)
	assert.FileExists(t, path)
}

func TestConfigFrom(t *testing.T) {
	cfg, err := ConfigFrom(config.FromMap(map[string]string{KeyDirectory: "/var/lib/aozan/reports/"}))
	require.NoError(t, err)
	assert.Equal(t, Config{Directory: "/var/lib/aozan/reports", Retention: DefaultRetention, MaxFiles: DefaultMaxFiles}, cfg)

	cfg, err = ConfigFrom(config.New(nil))
	require.NoError(t, err)
	assert.Empty(t, cfg.Directory)

	_, err = ConfigFrom(config.FromMap(map[string]string{KeyRetention: "a month"}))
	assert.ErrorIs(t, err, config.ErrInvalidValue)

	_, err = NewStore(Config{}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}
