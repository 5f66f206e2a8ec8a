// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the batchqr configuration from YAML with defaults and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
	"github.com/ajroetker/go-batchqr/internal/logging"
)

// Environment variables that override the file.
const (
	EnvWorkers  = "BATCHQR_WORKERS"
	EnvKernel   = qr.KernelEnv
	EnvLogLevel = "BATCHQR_LOG_LEVEL"
	EnvAddr     = "BATCHQR_ADDR"
)

// Precisions.
const (
	Float32 = "float32"
	Float64 = "float64"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the full batchqr configuration.
type Config struct {
	// Workers is the size of the worker pool. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Kernel is auto, sequential or lanes.
	Kernel string `yaml:"kernel"`

	// Lanes per group for the lanes kernel. Zero picks a default.
	Lanes int `yaml:"lanes"`

	// Tolerance is the relative rank tolerance. Negative means the
	// precision's default.
	Tolerance float64 `yaml:"tolerance"`

	// RankPolicy is zero or nan.
	RankPolicy string `yaml:"rank_policy"`

	// Precision is float32 or float64.
	Precision string `yaml:"precision"`

	Log    logging.Options `yaml:"log"`
	Server ServerConfig    `yaml:"server"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RateLimit is the sustained number of decompose requests per second.
	// Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`

	MaxMatrices  int   `yaml:"max_matrices"`
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Kernel:     qr.KernelAuto.String(),
		Tolerance:  -1,
		RankPolicy: qr.RankZero.String(),
		Precision:  Float32,
		Log: logging.Options{
			Level:  "info",
			Format: logging.FormatAuto,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			RequestTimeout: 20 * time.Second,
			RateLimit:      50,
			Burst:          100,
			MaxMatrices:    1 << 16,
			MaxBodyBytes:   64 << 20,
		},
	}
}

// Load reads path on top of the defaults, applies the environment overrides
// and validates the result. A missing file (or an empty path) yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer f.Close()
			if err := cfg.decode(f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of the defaults and validates it. The
// environment is not consulted.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from the environment, as returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvWorkers, v, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvKernel); ok && v != "" {
		c.Kernel = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Workers < 0 {
		invalid("workers must be >= 0, got %d", c.Workers)
	}
	if c.Lanes < 0 {
		invalid("lanes must be >= 0, got %d", c.Lanes)
	}
	if _, err := qr.ParseKernel(c.Kernel); err != nil {
		invalid("kernel: %v", err)
	}
	if _, err := qr.ParseRankPolicy(c.RankPolicy); err != nil {
		invalid("rank_policy: %v", err)
	}
	if c.Precision != Float32 && c.Precision != Float64 {
		invalid("precision must be %s or %s, got %q", Float32, Float64, c.Precision)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatAuto, logging.FormatConsole, logging.FormatJSON:
	default:
		invalid("log.format %q", c.Log.Format)
	}

	s := c.Server
	if s.Addr == "" {
		invalid("server.addr is empty")
	}
	if s.RateLimit < 0 {
		invalid("server.rate_limit must be >= 0, got %g", s.RateLimit)
	}
	if s.RateLimit > 0 && s.Burst < 1 {
		invalid("server.burst must be >= 1 when rate limiting, got %d", s.Burst)
	}
	if s.MaxMatrices < 1 {
		invalid("server.max_matrices must be >= 1, got %d", s.MaxMatrices)
	}
	if s.MaxBodyBytes < 1 {
		invalid("server.max_body_bytes must be >= 1, got %d", s.MaxBodyBytes)
	}
	if s.RequestTimeout < 0 || s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.IdleTimeout < 0 {
		invalid("server timeouts must be >= 0")
	}
	return errors.Join(errs...)
}

// QROptions converts the numeric settings into decomposition options. The
// configuration must have been validated.
func (c *Config) QROptions() []qr.Option {
	kernel, _ := qr.ParseKernel(c.Kernel)
	policy, _ := qr.ParseRankPolicy(c.RankPolicy)
	return []qr.Option{
		qr.WithKernel(kernel),
		qr.WithLanes(c.Lanes),
		qr.WithTolerance(c.Tolerance),
		qr.WithRankPolicy(policy),
	}
}
