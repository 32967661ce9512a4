package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

// FileRunConfigurationName is the registry name of
// FileRunConfigurationProvider.
const FileRunConfigurationName = "file"

const (
	// KeyRunConfFile names the per-run configuration file, relative to the run
	// directory.
	KeyRunConfFile     = "run.conf.file"
	DefaultRunConfFile = "aozan-run.conf"
)

// FileRunConfigurationProvider reads a key=value file stored inside the run
// directory. A run without the file gets an empty configuration.
type FileRunConfigurationProvider struct {
	filename string
	logger   *slog.Logger
}

var _ RunConfigurationProvider = &FileRunConfigurationProvider{}

// NewFileRunConfigurationProvider is a RunConfigurationFactory.
func NewFileRunConfigurationProvider(conf *config.Configuration, logger *slog.Logger) (RunConfigurationProvider, error) {
	name := strings.TrimSpace(conf.GetString(KeyRunConfFile, DefaultRunConfFile))
	if name == "" || filepath.IsAbs(name) {
		return nil, fmt.Errorf("%w: %s must be a relative file name", config.ErrInvalidValue, KeyRunConfFile)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileRunConfigurationProvider{filename: name, logger: logger}, nil
}

func (p *FileRunConfigurationProvider) RunConfiguration(_ context.Context, runData rundata.RunData) (*config.RunConfiguration, error) {
	runConf := config.NewRunConfiguration(nil)

	path := filepath.Join(runData.Location.Path, p.filename)
	loaded, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Debug("no run configuration file", "run", runData.RunID.ID, "path", path)
			return runConf, nil
		}
		return nil, rundata.WrapRunError(runData.RunID, err)
	}
	runConf.Merge(loaded)
	return runConf, nil
}

// emptyFactory is the RunConfigurationFactory of EmptyRunConfigurationProvider.
func emptyFactory(*config.Configuration, *slog.Logger) (RunConfigurationProvider, error) {
	return EmptyRunConfigurationProvider{}, nil
}
