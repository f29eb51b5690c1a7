// Package configx has the loading steps shared by the holder and requester
// configs: a dotenv file, QUICKAUTH_* environment variables and a JSON or
// YAML config file.
package configx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "QUICKAUTH_"

// LoadEnvFile loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes a config file into v. Files ending in .yaml or .yml are
// read as YAML, anything else as JSON.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Env reads QUICKAUTH_<name> variables into typed destinations. The first
// parse failure is kept in Err.
type Env struct {
	lookup func(string) (string, bool)
	Err    error
}

func NewEnv() *Env {
	return &Env{lookup: os.LookupEnv}
}

func (e *Env) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *Env) fail(name string, err error) {
	if e.Err == nil {
		e.Err = fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
}

func (e *Env) String(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *Env) Bool(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = b
	}
}

func (e *Env) Int(name string, dst *int) {
	if v, ok := e.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *Env) Duration(name string, dst *time.Duration) {
	if v, ok := e.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = d
	}
}

// Set helpers overlay a file value only when the file provided one.

func SetString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func SetBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func SetInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func SetDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
