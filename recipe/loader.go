package recipe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/runid"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// StorageDefinition declares a storage in a recipe file.
type StorageDefinition struct {
	Path         string `yaml:"path"`
	Machine      string `yaml:"machine"`
	MinimalSpace string `yaml:"minimal_space"`
	ReadOnly     bool   `yaml:"read_only"`
}

// ProviderDefinition declares a run data provider in a recipe file.
type ProviderDefinition struct {
	Type          string            `yaml:"type"`
	Storage       string            `yaml:"storage"`
	InProgress    bool              `yaml:"in_progress"`
	Configuration map[string]string `yaml:"configuration"`
}

// StepDefinition declares a step in a recipe file.
type StepDefinition struct {
	Name             string            `yaml:"name"`
	Processor        string            `yaml:"processor"`
	Sink             string            `yaml:"sink"`
	RunID            string            `yaml:"run_id"`
	RunConfiguration string            `yaml:"run_configuration"`
	Configuration    map[string]string `yaml:"configuration"`
}

// Definition is the YAML form of a recipe.
type Definition struct {
	Name          string                       `yaml:"name"`
	Description   string                       `yaml:"description"`
	Configuration map[string]string            `yaml:"configuration"`
	Storages      map[string]StorageDefinition `yaml:"storages"`
	Providers     []ProviderDefinition         `yaml:"providers"`
	Steps         []StepDefinition             `yaml:"steps"`
}

// LoadFile reads a recipe definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Decode reads a recipe definition. Unknown fields are rejected.
func Decode(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, err
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("recipe has no name"))
	}
	for name, s := range d.Storages {
		if strings.TrimSpace(s.Path) == "" {
			errs = append(errs, fmt.Errorf("storage %s has no path", name))
		}
	}
	if len(d.Providers) == 0 {
		errs = append(errs, ErrNoProvider)
	}
	for i, p := range d.Providers {
		if p.Type == "" || p.Storage == "" {
			errs = append(errs, fmt.Errorf("provider #%d needs a type and a storage", i+1))
		}
	}
	names := make(map[string]struct{})
	for i, s := range d.Steps {
		if s.Name == "" || s.Processor == "" || s.Sink == "" {
			errs = append(errs, fmt.Errorf("%w: step #%d needs a name, a processor and a sink", ErrInvalidStep, i+1))
			continue
		}
		if _, ok := names[s.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateStep, s.Name))
		}
		names[s.Name] = struct{}{}
	}
	return errors.Join(errs...)
}

// Build creates the builder described by d. The recipe configuration is conf
// overlaid by the configuration section of the definition.
func (d *Definition) Build(conf *config.Configuration, options ...Options) (*Builder, error) {
	recipeConf := config.New(nil)
	recipeConf.Merge(conf)
	recipeConf.Merge(config.FromMap(d.Configuration))

	b := New(d.Name, d.Description, recipeConf, options...)

	storageNames := make([]string, 0, len(d.Storages))
	for name := range d.Storages {
		storageNames = append(storageNames, name)
	}
	slices.Sort(storageNames)
	for _, name := range storageNames {
		s, err := d.Storages[name].storage()
		if err != nil {
			return nil, fmt.Errorf("storage %s: %w", name, err)
		}
		if err := b.AddStorage(name, s); err != nil {
			return nil, err
		}
	}

	for _, p := range d.Providers {
		if err := b.AddDataProvider(p.Type, p.Storage, p.InProgress, config.FromMap(p.Configuration)); err != nil {
			return nil, err
		}
	}

	for _, s := range d.Steps {
		spec, err := s.spec(b)
		if err != nil {
			return nil, err
		}
		if err := b.AddStep(spec); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s StorageDefinition) storage() (storage.DataStorage, error) {
	ds := storage.New(s.Machine, s.Path)
	ds.ReadOnly = s.ReadOnly
	if v := strings.TrimSpace(s.MinimalSpace); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return storage.DataStorage{}, &config.ParseError{Key: "minimal_space", Value: v, Kind: "size", Err: err}
		}
		ds.MinimalSpace = n
	}
	return ds, nil
}

func (s StepDefinition) spec(b *Builder) (StepSpec, error) {
	spec := StepSpec{
		Name:          s.Name,
		ProcessorName: s.Processor,
		SinkName:      s.Sink,
		Conf:          config.FromMap(s.Configuration),
	}

	if s.RunID != "" {
		g, err := runid.NewTemplate(s.RunID)
		if err != nil {
			return StepSpec{}, fmt.Errorf("step %s: %w", s.Name, err)
		}
		spec.RunIDGenerator = g
	}

	if s.RunConfiguration != "" {
		providerConf := b.Configuration()
		providerConf.Merge(spec.Conf)
		p, err := b.opts.Providers.NewRunConfigurationProvider(s.RunConfiguration, providerConf, b.opts.Logger)
		if err != nil {
			return StepSpec{}, fmt.Errorf("step %s: %w", s.Name, err)
		}
		spec.RunConfProvider = p
	}
	return spec, nil
}
