package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"symenc/internal/batch"
	"symenc/internal/ctxlog"
	"symenc/internal/history"
	"symenc/internal/server"
	"symenc/internal/session"
)

type Config struct {
	Log     ctxlog.Config  `yaml:"log"`
	Session session.Config `yaml:"session"`
	History history.Config `yaml:"history"`
	Batch   batch.Config   `yaml:"batch"`
	Server  server.Config  `yaml:"server"`
}

// DefaultConfig writes nothing to disk: logs are discarded and no history
// is kept unless a log dir or history file is configured.
func DefaultConfig() Config {
	return Config{
		Log: ctxlog.Config{
			Level: "info",
		},
		Batch: batch.Config{
			Workers: 4,
		},
		Server: server.Config{
			Host:            "127.0.0.1",
			Port:            8080,
			AntidosBuckets:  16,
			AntidosPeriod:   5 * time.Millisecond,
			MaxBodyBytes:    1 << 16,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// LoadConfig reads filename on top of DefaultConfig.
func LoadConfig(ctx context.Context, filename string) (Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Config{}, fmt.Errorf("open %q: %w", filename, err)
	}
	defer ctxlog.Close(ctx, "config file", file)

	dec := yaml.NewDecoder(file, yaml.Strict())

	config := DefaultConfig()
	err = dec.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("yaml: %w", err)
	}

	if _, err := ctxlog.ParseLevel(config.Log.Level); err != nil {
		return Config{}, fmt.Errorf("log: %w", err)
	}

	return config, nil
}
