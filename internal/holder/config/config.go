// Package config handles configuration for the identity holder: built-in
// defaults, then a dotenv file and QUICKAUTH_* variables, then an optional
// JSON or YAML file, then command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/quickauth/internal/flagx"
)

// Config holds runtime settings for the identity holder.
//
// Fields:
//   - GRPCAddress: bind address of the authorization endpoint.
//   - DatabaseDSN: "sqlite:<path>" or a postgres:// URL.
//   - Credentials: "plain" or "argon2id".
//   - SeedAdmin: create admin/123456 on startup when absent.
//   - MetricsAddress: bind address of /metrics and /healthz; empty disables it.
//   - InboxCapacity: authorization requests that may queue for the console.
//   - S3*: avatar storage; an empty bucket disables avatars.
type Config struct {
	GRPCAddress    string
	DatabaseDSN    string
	Credentials    string
	SeedAdmin      bool
	MetricsAddress string
	LogLevel       string
	LogFormat      string
	InboxCapacity  int
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3User         string
	S3Password     string
	AvatarURLTTL   time.Duration
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.GRPCAddress = "127.0.0.1:50551"
	c.DatabaseDSN = "sqlite:data/holder.db"
	c.Credentials = "plain"
	c.SeedAdmin = true
	c.MetricsAddress = "127.0.0.1:9464"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.InboxCapacity = 8
	c.S3Region = "us-east-1"
	c.AvatarURLTTL = 15 * time.Minute
}

// Load builds a Config from defaults and the layers selected by args
// (normally os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, flagx.EnvFileFlag(args, ".env")); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, flagx.ConfigFileFlag(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
