// Package reports keeps the execution reports of a recipe in a directory,
// pruning old ones by age and count.
package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/logging"
	"github.com/GenomiqueENS/aozan-sub001/recipe"
)

const (
	KeyDirectory = "aozan.report.dir"
	KeyRetention = "aozan.report.retention"
	KeyMaxFiles  = "aozan.report.max.files"

	DefaultRetention = 30 * 24 * time.Hour
	DefaultMaxFiles  = 100

	filePrefix        = "report-"
	maxCreateAttempts = 1000
	fileSuffix        = ".json"
)

type Config struct {
	Directory string
	// Retention removes reports older than this. Zero keeps them forever.
	Retention time.Duration
	// MaxFiles keeps at most this many reports. Zero means no limit.
	MaxFiles int
}

// ConfigFrom reads the report settings from conf. An empty directory
// disables the store.
func ConfigFrom(conf *config.Configuration) (Config, error) {
	dir, err := conf.Path(KeyDirectory, "")
	if err != nil {
		return Config{}, err
	}
	retention, err := conf.Duration(KeyRetention, DefaultRetention)
	if err != nil {
		return Config{}, err
	}
	maxFiles, err := conf.Int(KeyMaxFiles, DefaultMaxFiles)
	if err != nil {
		return Config{}, err
	}
	return Config{Directory: dir, Retention: retention, MaxFiles: maxFiles}, nil
}

type Store struct {
	config  Config
	counter int64
	logger  *slog.Logger
	now     func() time.Time
}

func NewStore(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Directory == "" {
		return nil, fmt.Errorf("%w: report directory is empty", config.ErrInvalidValue)
	}
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Store{config: cfg, logger: logging.OrDiscard(logger), now: time.Now}, nil
}

// Save writes report to a new timestamped file, prunes old reports and
// returns the path written.
func (s *Store) Save(report *recipe.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path, err := s.create(data)
	if err != nil {
		return "", err
	}
	s.cleanup(path)
	return path, nil
}

// create writes data to a report file that did not exist before. Another
// process saving in the same second takes the next counter value.
func (s *Store) create(data []byte) (string, error) {
	stamp := s.now().Format("20060102150405")
	for range maxCreateAttempts {
		counter := atomic.AddInt64(&s.counter, 1)
		path := filepath.Join(s.config.Directory, fmt.Sprintf("%s%s.%03d%s", filePrefix, stamp, counter, fileSuffix))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create report: %w", err)
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("failed to create report: no free file name for %s", stamp)
}

// List returns the stored report files, oldest first.
func (s *Store) List() ([]string, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.path)
	}
	return paths, nil
}

// Load reads a report written by Save.
func Load(path string) (*recipe.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r recipe.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &r, nil
}

type reportFile struct {
	path    string
	modTime time.Time
}

func (s *Store) files() ([]reportFile, error) {
	entries, err := os.ReadDir(s.config.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var files []reportFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, reportFile{path: filepath.Join(s.config.Directory, entry.Name()), modTime: info.ModTime()})
	}
	slices.SortFunc(files, func(a, b reportFile) int {
		if c := a.modTime.Compare(b.modTime); c != 0 {
			return c
		}
		return strings.Compare(a.path, b.path)
	})
	return files, nil
}

// cleanup never removes keep, the report just written.
func (s *Store) cleanup(keep string) {
	files, err := s.files()
	if err != nil {
		s.logger.Error("failed to list reports", "error", err)
		return
	}

	var kept []reportFile
	cutoff := s.now().Add(-s.config.Retention)
	for _, f := range files {
		if s.config.Retention > 0 && f.path != keep && f.modTime.Before(cutoff) {
			s.remove(f.path, "expired")
			continue
		}
		kept = append(kept, f)
	}

	if s.config.MaxFiles > 0 && len(kept) > s.config.MaxFiles {
		for _, f := range kept[:len(kept)-s.config.MaxFiles] {
			if f.path != keep {
				s.remove(f.path, "excess")
			}
		}
	}
}

func (s *Store) remove(path, reason string) {
	if err := os.Remove(path); err != nil {
		s.logger.Error("failed to remove report", "file", path, "error", err)
		return
	}
	s.logger.Debug("removed report", "file", filepath.Base(path), "reason", reason)
}
