package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/psantana5/pidwait/internal/outcome"
	"github.com/psantana5/pidwait/internal/report"
)

// EnvPrefix namespaces environment overrides, e.g. PIDWAIT_EXIT_CODES.
const EnvPrefix = "PIDWAIT"

// Config holds everything that tunes a wait besides the pid itself.
// The zero-configuration defaults reproduce the plain "<tool> <pid>" contract.
type Config struct {
	ExitCodes    outcome.ExitMode `mapstructure:"exit_codes"`
	Output       string           `mapstructure:"output"`
	LogLevel     string           `mapstructure:"log_level"`
	LogFormat    string           `mapstructure:"log_format"`
	MetricsFile  string           `mapstructure:"metrics_file"`
	StatusAddr   string           `mapstructure:"status_addr"`
	PollInterval time.Duration    `mapstructure:"poll_interval"`
	Quiet        bool             `mapstructure:"quiet"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("exit_codes", string(outcome.ExitCollapsed))
	v.SetDefault("output", report.FormatText)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_file", "")
	v.SetDefault("status_addr", "")
	v.SetDefault("poll_interval", 250*time.Millisecond)
	v.SetDefault("quiet", false)
}

// Load reads the config file (explicit path, or $HOME/.pidwait/config.yaml
// when present) and environment overrides into v, then decodes it.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".pidwait"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields
func (c *Config) Validate() error {
	mode, err := outcome.ParseExitMode(string(c.ExitCodes))
	if err != nil {
		return err
	}
	c.ExitCodes = mode

	if !report.ValidFormat(c.Output) {
		return fmt.Errorf("invalid output format %q (want text, json, yaml or table)", c.Output)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// JSONLogs reports whether diagnostics should be JSON lines
func (c *Config) JSONLogs() bool {
	return c.LogFormat == "json"
}

// ExampleConfig documents every key
const ExampleConfig = `# pidwait configuration ($HOME/.pidwait/config.yaml)

# collapsed: 0 = terminated, 1 = anything else
# distinct:  0 terminated, 1 usage, 2 not found, 3 unsupported, 4 OS failure
exit_codes: collapsed

# Final report on stdout: text (none), json, yaml or table
output: text

log_level: info
log_format: text      # text or json

# Prometheus textfile written after the wait (empty = disabled)
metrics_file: ""

# Serve /healthz, /status and /metrics while waiting (empty = disabled)
status_addr: ""

# Only used where no process lifetime handle exists
poll_interval: 250ms

quiet: false
`
