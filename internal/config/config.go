// Package config loads layered configuration: built-in defaults, an optional
// YAML config file, then TLAV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/report"
)

// EnvPrefix prefixes every environment override, e.g. TLAV_STORE_BACKEND.
const EnvPrefix = "TLAV"

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Tracer   TracerConfig   `mapstructure:"tracer"`
	Report   report.Config  `mapstructure:"report"`
	Taxonomy TaxonomyConfig `mapstructure:"taxonomy"`
	Server   ServerConfig   `mapstructure:"server"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// DB is the SQLite path. Empty resolves to the default data path.
	DB string `mapstructure:"db"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`
}

// TracerConfig holds the knowledge tracer's base parameters.
type TracerConfig struct {
	Slip  float64 `mapstructure:"slip"`
	Guess float64 `mapstructure:"guess"`
}

// TaxonomyConfig points at an optional taxonomy file.
type TaxonomyConfig struct {
	File string `mapstructure:"file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store:  StoreConfig{Backend: BackendSQLite},
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "tlav:"},
		Log:    LogConfig{Level: "info", Format: "console"},
		Tracer: TracerConfig{Slip: mastery.DefaultSlip, Guess: mastery.DefaultGuess},
		Report: report.DefaultConfig(),
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads configuration. When file is empty, tlav.yaml is looked up in
// the working directory and then the user config directory; a missing file
// is not an error. An explicitly named file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("tlav")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := userConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.db", d.Store.DB)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("tracer.slip", d.Tracer.Slip)
	v.SetDefault("tracer.guess", d.Tracer.Guess)

	scale := make([]map[string]any, len(d.Report.GradingScale))
	for i, g := range d.Report.GradingScale {
		scale[i] = map[string]any{"letter": g.Letter, "threshold": g.Threshold}
	}
	v.SetDefault("report.grading_scale", scale)
	v.SetDefault("report.mastery_threshold", d.Report.MasteryThreshold)
	v.SetDefault("report.max_recommendations", d.Report.MaxRecommendations)

	v.SetDefault("taxonomy.file", d.Taxonomy.File)
	v.SetDefault("server.addr", d.Server.Addr)
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tlav")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tlav")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("store.backend must be one of sqlite, redis, memory; got %q", c.Store.Backend))
	}
	if c.Store.Backend == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required for the redis backend")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be console or json; got %q", c.Log.Format))
	}

	if c.Tracer.Slip < mastery.MinParam || c.Tracer.Slip > mastery.MaxParam {
		errs = append(errs, fmt.Sprintf("tracer.slip must be in [%g, %g]; got %g", mastery.MinParam, mastery.MaxParam, c.Tracer.Slip))
	}
	if c.Tracer.Guess < mastery.MinParam || c.Tracer.Guess > mastery.MaxParam {
		errs = append(errs, fmt.Sprintf("tracer.guess must be in [%g, %g]; got %g", mastery.MinParam, mastery.MaxParam, c.Tracer.Guess))
	}

	if err := c.Report.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
