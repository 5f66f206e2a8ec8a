package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Float32, cfg.Precision)
	assert.Equal(t, "auto", cfg.Kernel)
	assert.Negative(t, cfg.Tolerance)
	assert.Len(t, cfg.QROptions(), 4)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	for _, k := range []string{EnvWorkers, EnvKernel, EnvLogLevel, EnvAddr} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	for _, k := range []string{EnvWorkers, EnvKernel, EnvLogLevel, EnvAddr} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "batchqr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers: 6
kernel: lanes
lanes: 4
tolerance: 1e-9
rank_policy: nan
precision: float64
log:
  level: debug
  format: json
server:
  addr: ":9090"
  request_timeout: 2s
  rate_limit: 5
  burst: 10
  max_matrices: 128
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "lanes", cfg.Kernel)
	assert.Equal(t, 4, cfg.Lanes)
	assert.InDelta(t, 1e-9, cfg.Tolerance, 1e-20)
	assert.Equal(t, "nan", cfg.RankPolicy)
	assert.Equal(t, Float64, cfg.Precision)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 128, cfg.Server.MaxMatrices)
	// Unset fields keep their defaults.
	assert.Equal(t, Default().Server.ReadTimeout, cfg.Server.ReadTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvKernel, "sequential")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvAddr, "0.0.0.0:1234")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "sequential", cfg.Kernel)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:1234", cfg.Server.Addr)
}

func TestEnvBadWorkers(t *testing.T) {
	env := map[string]string{EnvWorkers: "many"}
	err := Default().ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("wokers: 3\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative lanes", func(c *Config) { c.Lanes = -2 }},
		{"kernel", func(c *Config) { c.Kernel = "householder" }},
		{"rank policy", func(c *Config) { c.RankPolicy = "ignore" }},
		{"precision", func(c *Config) { c.Precision = "float16" }},
		{"log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"addr", func(c *Config) { c.Server.Addr = "" }},
		{"burst", func(c *Config) { c.Server.Burst = 0 }},
		{"max matrices", func(c *Config) { c.Server.MaxMatrices = 0 }},
		{"timeouts", func(c *Config) { c.Server.RequestTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := Default()
	cfg.Server.RateLimit = 0
	cfg.Server.Burst = 0
	assert.NoError(t, cfg.Validate(), "burst is unused without a rate limit")
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Workers = -1
	cfg.Precision = "int8"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "precision")
}

func TestApplyEnvWithoutVariables(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(noEnv))
	assert.Equal(t, Default(), cfg)
}
