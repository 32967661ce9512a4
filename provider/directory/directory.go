// Package directory provides runs stored as sub-directories of a storage, the
// way sequencers write them.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/provider"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// Name is the registry name of the provider.
const Name = "directory"

const (
	KeyName             = "provider.name"
	KeyCompletionMarker = "provider.completion.marker"
	KeyRequiredFile     = "provider.required.file"
	KeyRunPattern       = "provider.run.pattern"
	KeyCategory         = "provider.data.category"
	KeyTechnology       = "provider.data.technology"
	KeyTypeName         = "provider.data.type"

	DefaultCompletionMarker = "RunCompletionStatus.xml"
	DefaultRequiredFile     = "RunInfo.xml"

	tmpSuffix = ".tmp"
)

// Provider lists the run directories of a storage. A run is completed once
// its completion marker exists and its directory name has no ".tmp" suffix.
type Provider struct {
	name         string
	storage      storage.DataStorage
	dataType     datatype.DataType
	marker       string
	requiredFile string
	pattern      *regexp.Regexp
	logger       *slog.Logger
}

var _ provider.RunDataProvider = &Provider{}

// New is a provider.Factory.
func New(s storage.DataStorage, conf *config.Configuration, logger *slog.Logger) (provider.RunDataProvider, error) {
	if err := s.NewLocation("").CheckReadableDirectory("provider storage"); err != nil {
		return nil, err
	}

	dataType, err := datatype.Parse(
		conf.GetString(KeyCategory, string(datatype.Raw)),
		conf.GetString(KeyTechnology, string(datatype.Illumina)),
		conf.GetString(KeyTypeName, "bcl"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}

	p := &Provider{
		name:         conf.GetString(KeyName, Name),
		storage:      s,
		dataType:     dataType,
		marker:       strings.TrimSpace(conf.GetString(KeyCompletionMarker, DefaultCompletionMarker)),
		requiredFile: strings.TrimSpace(conf.GetString(KeyRequiredFile, DefaultRequiredFile)),
		logger:       logger,
	}
	if p.marker == "" {
		return nil, fmt.Errorf("%w: %s cannot be empty", config.ErrInvalidValue, KeyCompletionMarker)
	}
	if expr := strings.TrimSpace(conf.GetString(KeyRunPattern, "")); expr != "" {
		if p.pattern, err = regexp.Compile(expr); err != nil {
			return nil, &config.ParseError{Key: KeyRunPattern, Value: expr, Kind: "regular expression", Err: err}
		}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p, nil
}

func (p *Provider) Name() string                 { return p.name }
func (p *Provider) Storage() storage.DataStorage { return p.storage }

func (p *Provider) ListInProgress(ctx context.Context) ([]rundata.RunData, error) {
	return p.list(ctx, false)
}

func (p *Provider) ListCompleted(ctx context.Context) ([]rundata.RunData, error) {
	return p.list(ctx, true)
}

func (p *Provider) list(ctx context.Context, completed bool) ([]rundata.RunData, error) {
	entries, err := os.ReadDir(p.storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs of %s: %w", p.storage, err)
	}

	var result []rundata.RunData
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		id := strings.TrimSuffix(e.Name(), tmpSuffix)
		if p.pattern != nil && !p.pattern.MatchString(id) {
			continue
		}
		if id != e.Name() && isDir(filepath.Join(p.storage.Path, id)) {
			p.logger.Warn("skipping temporary directory of an existing run", "run", id, "dir", e.Name())
			continue
		}
		dir := filepath.Join(p.storage.Path, e.Name())
		if p.requiredFile != "" && !isFile(filepath.Join(dir, p.requiredFile)) {
			p.logger.Debug("skipping directory without required file", "dir", dir, "file", p.requiredFile)
			continue
		}

		done := isFile(filepath.Join(dir, p.marker)) && !strings.HasSuffix(e.Name(), tmpSuffix)
		if done != completed {
			continue
		}

		t := p.dataType
		if !done {
			t = t.WithPartial(true)
		}
		location := storage.DataLocation{Storage: p.storage, Path: dir}
		result = append(result, rundata.New(rundata.NewRunID(id), t, location, p.storage.Machine))
	}
	return result, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
