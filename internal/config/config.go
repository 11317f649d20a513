package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	certerrors "github.com/ksyq12/certbot-runner/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Email           string `yaml:"email" env:"CERTBOT_EMAIL"`
	Domains         string `yaml:"domains" env:"CERTBOT_DOMAINS"`
	OutputDirectory string `yaml:"output_directory" env:"CERTBOT_OUTPUT_DIRECTORY"`
	TouchFile       string `yaml:"touch_file" env:"CERTBOT_TOUCH_FILE"`
	Disabled        Toggle `yaml:"disabled" env:"CERTBOT_DISABLED"`
	DHParamBits     int    `yaml:"dhparam_bits" env:"CERTBOT_DHPARAM_BITS"`
	ACMEServer      string `yaml:"acme_server" env:"CERTBOT_ACME_SERVER"`
	LiveDirectory   string `yaml:"live_directory" env:"CERTBOT_LIVE_DIRECTORY"`
	RenewAt         string `yaml:"renew_at" env:"CERTBOT_RENEW_AT"`
	PostHook        string `yaml:"post_hook" env:"CERTBOT_POST_HOOK"`
	LockFile        string `yaml:"lock_file" env:"CERTBOT_LOCK_FILE"`
	Verbose         bool   `yaml:"verbose" env:"CERTBOT_VERBOSE"`
}

// Toggle is a switch that is on only when set to exactly "1". Any other
// value, including "true" or "yes", leaves it off.
type Toggle bool

// UnmarshalText implements encoding.TextUnmarshaler for environment values
func (t *Toggle) UnmarshalText(text []byte) error {
	*t = string(text) == "1"
	return nil
}

// UnmarshalYAML applies the same rule to the config file
func (t *Toggle) UnmarshalYAML(node *yaml.Node) error {
	return t.UnmarshalText([]byte(node.Value))
}

const (
	// FileEnv names the variable pointing at an optional YAML config file
	FileEnv = "CERTBOT_CONFIG_FILE"

	// DotEnvFile is read from the working directory when present
	DotEnvFile = ".env"

	DefaultACMEServer      = "https://acme-v02.api.letsencrypt.org/directory"
	DefaultLiveDirectory   = "/etc/letsencrypt/live"
	DefaultOutputDirectory = "/certs"
	DefaultDHParamBits     = 2048
	DefaultRenewAt         = "03:00"
)

// New creates a new Config with default values
func New() *Config {
	return &Config{
		OutputDirectory: DefaultOutputDirectory,
		DHParamBits:     DefaultDHParamBits,
		ACMEServer:      DefaultACMEServer,
		LiveDirectory:   DefaultLiveDirectory,
		RenewAt:         DefaultRenewAt,
		LockFile:        filepath.Join(os.TempDir(), "certbot-runner.lock"),
	}
}

// Load builds the configuration from defaults, the optional YAML file,
// the optional .env file and the process environment, in that order of
// increasing precedence. The result is validated.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !os.IsNotExist(err) {
		return nil, certerrors.Wrap(certerrors.ErrCodeConfig, "failed to read "+DotEnvFile, err)
	}

	cfg := New()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, certerrors.Wrap(certerrors.ErrCodeConfig, "failed to parse environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file over the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return certerrors.Wrap(certerrors.ErrCodeConfig, "failed to read config", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return certerrors.Wrap(certerrors.ErrCodeConfig, "failed to parse config", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late, e.g. at 3 am.
// Domains are checked separately by ValidateIssuance since publishing
// bundles does not need them.
func (c *Config) Validate() error {
	if c.OutputDirectory == "" {
		return certerrors.Config("CERTBOT_OUTPUT_DIRECTORY cannot be empty")
	}
	if c.LiveDirectory == "" {
		return certerrors.Config("CERTBOT_LIVE_DIRECTORY cannot be empty")
	}
	if c.DHParamBits <= 0 {
		return certerrors.Config(fmt.Sprintf("CERTBOT_DHPARAM_BITS must be positive, got %d", c.DHParamBits))
	}
	if _, _, err := c.RenewTime(); err != nil {
		return err
	}
	return nil
}

// ValidateIssuance checks what requesting certificates needs
func (c *Config) ValidateIssuance() error {
	if !c.Disabled && len(c.DomainList()) == 0 {
		return certerrors.Config("CERTBOT_DOMAINS is required unless CERTBOT_DISABLED is 1")
	}
	return nil
}

// DomainList splits the whitespace-separated domain setting, keeping order
func (c *Config) DomainList() []string {
	return strings.Fields(c.Domains)
}

// RenewTime returns the daily renewal wall-clock time as hour and minute
func (c *Config) RenewTime() (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(c.RenewAt))
	if err != nil {
		return 0, 0, certerrors.Wrap(certerrors.ErrCodeConfig, "CERTBOT_RENEW_AT must be HH:MM", err)
	}
	return t.Hour(), t.Minute(), nil
}
