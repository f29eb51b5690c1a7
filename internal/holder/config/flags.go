package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/quickauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., "127.0.0.1:50551")
//	-d string   database DSN ("sqlite:<path>" or "postgres://...")
//	-k string   credentials mode ("plain" or "argon2id")
//	-s bool     seed admin/123456 (use -s=false to disable)
//	-m string   metrics bind address, empty disables
//	-l string   log level (debug, info, warn, error)
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 endpoint (e.g., "http://127.0.0.1:9000")
//
// Args are filtered with flagx.FilterArgs first, so -c and -env-file are
// left to their own layers.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-k", "-s", "-m", "-l", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("holder", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.GRPCAddress, "a", config.GRPCAddress, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Credentials, "k", config.Credentials, "credentials mode")
	fs.BoolVar(&config.SeedAdmin, "s", config.SeedAdmin, "seed admin account")
	fs.StringVar(&config.MetricsAddress, "m", config.MetricsAddress, "metrics address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.S3User, "u", config.S3User, "S3 user")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
