package config

import (
	"github.com/dmitrijs2005/quickauth/internal/configx"
	"github.com/dmitrijs2005/quickauth/internal/timex"
)

// FileConfig is the on-disk shape of the holder config (JSON or YAML).
// Only the keys present in the file override earlier layers.
type FileConfig struct {
	GRPCAddress    string         `json:"grpc_address" yaml:"grpc_address"`
	DatabaseDSN    string         `json:"database_dsn" yaml:"database_dsn"`
	Credentials    string         `json:"credentials" yaml:"credentials"`
	SeedAdmin      *bool          `json:"seed_admin" yaml:"seed_admin"`
	MetricsAddress string         `json:"metrics_address" yaml:"metrics_address"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	LogFormat      string         `json:"log_format" yaml:"log_format"`
	InboxCapacity  int            `json:"inbox_capacity" yaml:"inbox_capacity"`
	S3Bucket       string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string         `json:"s3_region" yaml:"s3_region"`
	S3Endpoint     string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3User         string         `json:"s3_user" yaml:"s3_user"`
	S3Password     string         `json:"s3_password" yaml:"s3_password"`
	AvatarURLTTL   timex.Duration `json:"avatar_url_ttl" yaml:"avatar_url_ttl"`
}

// parseFile overlays the config file at path. An empty path loads nothing.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	c := &FileConfig{}
	if err := configx.ReadFile(path, c); err != nil {
		return err
	}

	configx.SetString(&config.GRPCAddress, c.GRPCAddress)
	configx.SetString(&config.DatabaseDSN, c.DatabaseDSN)
	configx.SetString(&config.Credentials, c.Credentials)
	configx.SetBool(&config.SeedAdmin, c.SeedAdmin)
	configx.SetString(&config.MetricsAddress, c.MetricsAddress)
	configx.SetString(&config.LogLevel, c.LogLevel)
	configx.SetString(&config.LogFormat, c.LogFormat)
	configx.SetInt(&config.InboxCapacity, c.InboxCapacity)
	configx.SetString(&config.S3Bucket, c.S3Bucket)
	configx.SetString(&config.S3Region, c.S3Region)
	configx.SetString(&config.S3Endpoint, c.S3Endpoint)
	configx.SetString(&config.S3User, c.S3User)
	configx.SetString(&config.S3Password, c.S3Password)
	configx.SetDuration(&config.AvatarURLTTL, c.AvatarURLTTL.Duration)
	return nil
}
