// Package ctxlog provides context-aware structured logging utilities.
package ctxlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Dir    string `yaml:"dir"`
	Stderr bool   `yaml:"stderr"`
	Level  string `yaml:"level"`
}

var setup = false

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the default logger described by config and stores it in ctx.
// Logs go to a timestamped file under config.Dir and, if requested, to stderr.
// With neither sink configured, logs are discarded.
// The returned closer releases the log file.
func Setup(ctx context.Context, name string, config Config) (context.Context, io.Closer) {
	if setup {
		return Store(ctx, slog.Default()), nopCloser{}
	}

	level, err := ParseLevel(config.Level)
	if err != nil {
		panic(err)
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if config.Dir != "" {
		err := os.MkdirAll(config.Dir, 0755)
		if err != nil {
			panic(fmt.Errorf("create log dir: %w", err))
		}

		logFile, err := os.Create(filepath.Join(config.Dir, name+"-"+time.Now().Format("2006-01-02-15-04-05.log")))
		if err != nil {
			panic(fmt.Errorf("create log file: %w", err))
		}
		writers = append(writers, logFile)
		closer = logFile
	}
	if config.Stderr {
		writers = append(writers, os.Stderr)
	}

	var w io.Writer = io.Discard
	if len(writers) > 0 {
		w = io.MultiWriter(writers...)
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	setup = true

	return Store(ctx, logger), closer
}

// ParseLevel parses a slog level name such as "debug" or "warn+2".
// An empty name is slog.LevelInfo.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

type ctxKey struct{}

var key ctxKey

func Store(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, key, log)
}

func Get(ctx context.Context) *slog.Logger {
	log, ok := ctx.Value(key).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return log
}

func Close(ctx context.Context, name string, closer io.Closer) error {
	logger := Get(ctx)
	err := closer.Close()
	if err != nil {
		logger.Error("failed to close", "closer", name, "error", err)
		return err
	}
	return nil
}

func With(ctx context.Context, kv ...any) context.Context {
	return Store(ctx, Get(ctx).With(kv...))
}
