// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command mediactl inspects and maintains the storage root offline.
//
// It reads the same environment as the API server, so paths and the
// extension allow-list always agree with what the server would do.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/yomira-media/internal/platform/config"
	"github.com/taibuivan/yomira-media/internal/platform/logger"
	"github.com/taibuivan/yomira-media/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Default()
	open := func() (*storage.Store, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return storage.New(storage.Options{
			Root:       cfg.StorageRoot,
			StagingDir: cfg.StagingDir,
			Extensions: cfg.AllowedExtensions,
			Logger:     log,
		})
	}

	if err := newRootCommand(open, log).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
