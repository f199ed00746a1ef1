package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshu3933/tlav/internal/report"
)

// isolate keeps the test away from any tlav.yaml on the developer machine.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.Store, cfg.Store)
	assert.Equal(t, want.Redis, cfg.Redis)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Equal(t, want.Tracer, cfg.Tracer)
	assert.Equal(t, want.Server, cfg.Server)
	assert.Equal(t, report.DefaultGradingScale(), cfg.Report.GradingScale)
	assert.Equal(t, 0.8, cfg.Report.MasteryThreshold)
	assert.Equal(t, 3, cfg.Report.MaxRecommendations)
	assert.Empty(t, cfg.Source)
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "tlav.yaml"), "store:\n  backend: memory\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "tlav.yaml", filepath.Base(cfg.Source))
}

func TestLoad_DiscoversFileInUserConfigDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "tlav", "tlav.yaml"), "server:\n  addr: 127.0.0.1:9999\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
store:
  backend: redis
redis:
  addr: cache:6379
  db: 2
log:
  level: debug
  format: json
tracer:
  slip: 0.15
report:
  mastery_threshold: 0.7
  max_recommendations: 5
  grading_scale:
    - letter: Pass
      threshold: 0.5
    - letter: Fail
      threshold: 0
taxonomy:
  file: taxonomy.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "tlav:", cfg.Redis.Prefix)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, 0.15, cfg.Tracer.Slip)
	assert.Equal(t, 0.2, cfg.Tracer.Guess)
	assert.Equal(t, 0.7, cfg.Report.MasteryThreshold)
	assert.Equal(t, 5, cfg.Report.MaxRecommendations)
	assert.Equal(t, []report.Grade{{Letter: "Pass", Threshold: 0.5}, {Letter: "Fail", Threshold: 0}}, cfg.Report.GradingScale)
	assert.Equal(t, "taxonomy.yaml", cfg.Taxonomy.File)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "tlav.yaml"), "tracer:\n  guess: 0.3\nstore:\n  db: from-file.db\n")
	t.Setenv("TLAV_TRACER_GUESS", "0.25")
	t.Setenv("TLAV_STORE_BACKEND", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Tracer.Guess)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "from-file.db", cfg.Store.DB)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "tlav.yaml"), "tracer:\n  slip: 1.5\n")

	_, err := Load("")
	assert.ErrorContains(t, err, "tracer.slip must be in [0.01, 0.5]")
}

func TestLoad_RejectsOutOfRangeEnvSlip(t *testing.T) {
	isolate(t)
	t.Setenv("TLAV_TRACER_SLIP", "0.9")

	_, err := Load("")
	assert.ErrorContains(t, err, "tracer.slip must be in [0.01, 0.5]; got 0.9")
}

func TestValidate_AcceptsParameterBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracer.Slip = 0.5
	cfg.Tracer.Guess = 0.01
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, "store.backend"},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Redis.Addr = "" }, "redis.addr"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero slip", func(c *Config) { c.Tracer.Slip = 0 }, "tracer.slip"},
		{"guess of one", func(c *Config) { c.Tracer.Guess = 1 }, "tracer.guess"},
		{"slip above half", func(c *Config) { c.Tracer.Slip = 0.51 }, "tracer.slip must be in [0.01, 0.5]"},
		{"guess below floor", func(c *Config) { c.Tracer.Guess = 0.005 }, "tracer.guess must be in [0.01, 0.5]"},
		{"threshold above one", func(c *Config) { c.Report.MasteryThreshold = 1.2 }, "mastery threshold"},
		{"empty scale", func(c *Config) { c.Report.GradingScale = nil }, "grading scale is empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}
