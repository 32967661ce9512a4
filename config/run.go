package config

// RunConfiguration holds the settings that apply to a single run, such as
// values derived from its sample sheet.
type RunConfiguration struct {
	*Configuration
}

// NewRunConfiguration creates an empty run configuration reading through to
// parent, which may be nil.
func NewRunConfiguration(parent *Configuration) *RunConfiguration {
	return &RunConfiguration{Configuration: New(parent)}
}
