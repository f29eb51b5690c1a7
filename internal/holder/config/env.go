package config

import "github.com/dmitrijs2005/quickauth/internal/configx"

// parseEnv overlays QUICKAUTH_* variables, after loading envFile into the
// environment.
func parseEnv(config *Config, envFile string) error {
	if err := configx.LoadEnvFile(envFile); err != nil {
		return err
	}

	e := configx.NewEnv()
	e.String("GRPC_ADDRESS", &config.GRPCAddress)
	e.String("DATABASE_DSN", &config.DatabaseDSN)
	e.String("CREDENTIALS", &config.Credentials)
	e.Bool("SEED_ADMIN", &config.SeedAdmin)
	e.String("METRICS_ADDRESS", &config.MetricsAddress)
	e.String("LOG_LEVEL", &config.LogLevel)
	e.String("LOG_FORMAT", &config.LogFormat)
	e.Int("INBOX_CAPACITY", &config.InboxCapacity)
	e.String("S3_BUCKET", &config.S3Bucket)
	e.String("S3_REGION", &config.S3Region)
	e.String("S3_ENDPOINT", &config.S3Endpoint)
	e.String("S3_USER", &config.S3User)
	e.String("S3_PASSWORD", &config.S3Password)
	e.Duration("AVATAR_URL_TTL", &config.AvatarURLTTL)
	return e.Err
}
