// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package logger builds the process-wide structured [slog.Logger].
//
// Output is JSON on stdout. When a log file is configured, every record is
// also written to a size-rotated file managed by lumberjack.
package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/taibuivan/yomira-media/internal/platform/config"
	"github.com/taibuivan/yomira-media/internal/platform/constants"
)

// Options controls logger construction.
type Options struct {
	Debug bool

	// File, when non-empty, enables the rotating file sink.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FromConfig derives [Options] from the loaded configuration.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Debug:      cfg.Debug,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompression,
	}
}

// New returns a JSON logger tagged with the application name, plus a closer
// for the file sink (a no-op when no file is configured).
func New(stdout io.Writer, opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var closer io.Closer = nopCloser{}
	writer := stdout
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB, // megabytes
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays, // days
			Compress:   opts.Compress,
		}
		writer = io.MultiWriter(stdout, rotating)
		closer = rotating
	}

	log := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
	return log.With(slog.String("app", constants.AppName)), closer
}

// Default builds a stdout logger. Used before configuration is available.
func Default() *slog.Logger {
	log, _ := New(os.Stdout, Options{})
	return log
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
