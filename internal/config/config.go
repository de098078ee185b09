// Package config loads the process-level configuration THE CORE needs
// to start: where to bind, how big the arena and receive buffers are,
// and where to expose metrics. It is an external collaborator per
// spec.md §1 — nothing under redis/ or internal/command ever imports
// it; only cmd/ does.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nanokv/nanokv/lib/logger"
)

// Config carries the same yaml-tag style the teacher's tcp.Config used
// (address, max_connect, timeout), extended with the fields THE CORE's
// single-threaded listener and arena need.
type Config struct {
	Address            string        `yaml:"address"`
	Port               int           `yaml:"port"`
	MaxConnect         int           `yaml:"max_connect"`
	Timeout            time.Duration `yaml:"timeout"`
	ReusePort          bool          `yaml:"reuse_port"`
	ArenaCapacityBytes int           `yaml:"arena_capacity_bytes"`
	RXBufferBytes      int           `yaml:"rx_buffer_bytes"`
	MaxArrayElements   int64         `yaml:"max_array_elements"`
	MaxBulkBytes       int64         `yaml:"max_bulk_bytes"`
	MetricsAddr        string        `yaml:"metrics_addr"`
	Logging            logger.Settings `yaml:"logging"`
}

// Default returns the built-in defaults a process falls back to when no
// config file is given and no flag overrides a field.
func Default() Config {
	return Config{
		Address:            "",
		Port:               6379,
		MaxConnect:         10000,
		Timeout:            0,
		ReusePort:          false,
		ArenaCapacityBytes: 256 << 20,
		RXBufferBytes:      4096,
		MaxArrayElements:   1 << 20,
		MaxBulkBytes:       512 << 20,
		MetricsAddr:        "127.0.0.1:9399",
		Logging: logger.Settings{
			Path:    ".",
			Name:    "nanokv",
			Ext:     "log",
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads path and unmarshals it onto the defaults: only fields
// present in the file override Default(). An empty path is not an
// error — it just returns the defaults, so `nanokv serve` with no
// `--config` still starts.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
