package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. Nested keys use a double underscore,
// e.g. DIAMOND_SERVER__ADDR or DIAMOND_MODEL__PATH.
const EnvPrefix = "DIAMOND_"

// MaxSampleSize bounds dataset.sample_size, the insights scatter sample.
const MaxSampleSize = 500

// DefaultPaths are searched in order when Load is called without a path.
var DefaultPaths = []string{"configs/diamond.yaml", "diamond.yaml"}

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Model   ModelConfig   `koanf:"model"`
	Dataset DatasetConfig `koanf:"dataset"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr"` // HTTP Listen Address (e.g. :8000)
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type ModelConfig struct {
	Path string `koanf:"path"`
}

type DatasetConfig struct {
	Path       string `koanf:"path"`     // cleaned CSV used by insights and training
	RawPath    string `koanf:"raw_path"` // labelled Kaggle CSV
	SampleSize int    `koanf:"sample_size"`
	DBPath     string `koanf:"db_path"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8000",
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Model: ModelConfig{
			Path: "model/model_5.bin",
		},
		Dataset: DatasetConfig{
			Path:       "data/processed/diamonds_clean.csv",
			RawPath:    "data/raw/diamonds.csv",
			SampleSize: MaxSampleSize,
			DBPath:     ":memory:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load layers defaults, a YAML file and the environment. With an empty
// configPath the DefaultPaths are tried and a missing file is not an error;
// an explicit configPath must exist.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	def := defaults()

	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return &def, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		for _, p := range DefaultPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	} else if _, err := os.Stat(configPath); err != nil {
		return &def, fmt.Errorf("config file: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return &def, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return &def, fmt.Errorf("load env: %w", err)
	}
	if err := splitList(k, "server.cors_origins"); err != nil {
		return &def, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return &def, fmt.Errorf("unmarshal config: %w", err)
	}

	// PORT is the conventional platform override and wins over everything.
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// envKey maps DIAMOND_SERVER__SHUTDOWN_TIMEOUT to server.shutdown_timeout.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// splitList turns a comma separated env value into a string slice.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := defaults()
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Server.RateLimitWindow <= 0 {
		cfg.Server.RateLimitWindow = def.Server.RateLimitWindow
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = def.Server.CORSOrigins
	}
	if cfg.Dataset.SampleSize <= 0 {
		cfg.Dataset.SampleSize = def.Dataset.SampleSize
	}
	if cfg.Dataset.DBPath == "" {
		cfg.Dataset.DBPath = def.Dataset.DBPath
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RateLimitRequests < 0 {
		errs = append(errs, errors.New("server.rate_limit_requests must not be negative"))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("model.path is required"))
	}
	if c.Dataset.SampleSize > MaxSampleSize {
		errs = append(errs, fmt.Errorf("dataset.sample_size must be at most %d", MaxSampleSize))
	}
	if c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.path is required"))
	}
	return errors.Join(errs...)
}
