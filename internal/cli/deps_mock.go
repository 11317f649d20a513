package cli

import (
	"github.com/ksyq12/certbot-runner/internal/config"
	"github.com/ksyq12/certbot-runner/internal/executor"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	LoadCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	m.LoadCalls++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

// MockSelfLocator is a test double for SelfLocator
type MockSelfLocator struct {
	Path string
	Err  error
}

func (m *MockSelfLocator) Executable() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Path == "" {
		return "/usr/local/bin/certbot-runner", nil
	}
	return m.Path, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader: &MockConfigLoader{Cfg: config.New()},
			Executor:     &executor.MockExecutor{},
			SelfLocator:  &MockSelfLocator{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithSelfLocator sets the binary locator
func (b *MockDependenciesBuilder) WithSelfLocator(loc SelfLocator) *MockDependenciesBuilder {
	b.deps.SelfLocator = loc
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
