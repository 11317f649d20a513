package cli

import (
	"os"

	"github.com/ksyq12/certbot-runner/internal/config"
	"github.com/ksyq12/certbot-runner/internal/executor"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader ConfigLoader
	Executor     executor.CommandExecutor
	SelfLocator  SelfLocator
}

// ConfigLoader handles configuration loading
type ConfigLoader interface {
	Load() (*config.Config, error)
}

// SelfLocator finds the running binary, used to build the renewal post-hook
type SelfLocator interface {
	Executable() (string, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader: &realConfigLoader{},
	Executor:     executor.NewSystemExecutor(),
	SelfLocator:  &realSelfLocator{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

type realSelfLocator struct{}

func (r *realSelfLocator) Executable() (string, error) {
	return os.Executable()
}
