package main

import (
	"github.com/GenomiqueENS/aozan-sub001/processor"
	"github.com/GenomiqueENS/aozan-sub001/processor/localsync"
	"github.com/GenomiqueENS/aozan-sub001/provider"
	"github.com/GenomiqueENS/aozan-sub001/provider/directory"
)

var processors = []struct {
	Name    string
	Factory processor.Factory
}{
	{Name: localsync.Name, Factory: localsync.New},
}

var dataProviders = []struct {
	Name    string
	Factory provider.Factory
}{
	{Name: directory.Name, Factory: directory.New},
}

var runConfigurationProviders = []struct {
	Name    string
	Factory provider.RunConfigurationFactory
}{
	{Name: provider.FileRunConfigurationName, Factory: provider.NewFileRunConfigurationProvider},
}

func registerBuiltins(procs *processor.Registry, providers *provider.Registry) error {
	for _, p := range processors {
		if err := procs.Register(p.Name, p.Factory); err != nil {
			return err
		}
	}
	for _, p := range dataProviders {
		if err := providers.RegisterDataProvider(p.Name, p.Factory); err != nil {
			return err
		}
	}
	for _, p := range runConfigurationProviders {
		if err := providers.RegisterRunConfigurationProvider(p.Name, p.Factory); err != nil {
			return err
		}
	}
	return nil
}
