// Package config handles configuration for the requester CLI.
package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/configx"
	"github.com/dmitrijs2005/quickauth/internal/flagx"
	"github.com/dmitrijs2005/quickauth/internal/timex"
)

// Config holds runtime settings for the requester.
//
// Fields:
//   - HolderAddress: host:port of the identity holder's gRPC endpoint.
//   - PingTimeout: deadline for the "status" health probe.
type Config struct {
	HolderAddress string
	PingTimeout   time.Duration
	LogLevel      string
	LogFormat     string
}

// FileConfig is the on-disk shape of the requester config (JSON or YAML).
type FileConfig struct {
	HolderAddress string         `json:"holder_address" yaml:"holder_address"`
	PingTimeout   timex.Duration `json:"ping_timeout" yaml:"ping_timeout"`
	LogLevel      string         `json:"log_level" yaml:"log_level"`
	LogFormat     string         `json:"log_format" yaml:"log_format"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.HolderAddress = "127.0.0.1:50551"
	c.PingTimeout = 3 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Load constructs a Config, applies defaults, then overlays the dotenv file
// and environment, the config file and finally command-line flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := configx.LoadEnvFile(flagx.EnvFileFlag(args, ".env")); err != nil {
		return nil, err
	}
	e := configx.NewEnv()
	e.String("HOLDER_ADDRESS", &cfg.HolderAddress)
	e.Duration("PING_TIMEOUT", &cfg.PingTimeout)
	e.String("LOG_LEVEL", &cfg.LogLevel)
	e.String("LOG_FORMAT", &cfg.LogFormat)
	if e.Err != nil {
		return nil, e.Err
	}

	if path := flagx.ConfigFileFlag(args); path != "" {
		fc := &FileConfig{}
		if err := configx.ReadFile(path, fc); err != nil {
			return nil, err
		}
		configx.SetString(&cfg.HolderAddress, fc.HolderAddress)
		configx.SetDuration(&cfg.PingTimeout, fc.PingTimeout.Duration)
		configx.SetString(&cfg.LogLevel, fc.LogLevel)
		configx.SetString(&cfg.LogFormat, fc.LogFormat)
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the identity holder
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-l"})

	fs := flag.NewFlagSet("requester", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HolderAddress, "a", cfg.HolderAddress, "address and port of the identity holder")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
