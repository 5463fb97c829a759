// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-media/internal/platform/metrics"
	"github.com/taibuivan/yomira-media/internal/storage"
	"github.com/taibuivan/yomira-media/pkg/filename"
	"github.com/taibuivan/yomira-media/pkg/uuid"
)

// SourceArchive labels pages written by extraction.
const SourceArchive = "archive"

// # Archive Extraction

// Extractor unpacks staged zip archives into chapter directories.
type Extractor struct {
	store   *storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewExtractor constructs an [Extractor]. metrics may be nil.
func NewExtractor(store *storage.Store, m *metrics.Metrics, logger *slog.Logger) *Extractor {
	return &Extractor{store: store, metrics: m, logger: logger}
}

/*
Extract replaces the pages of dir with the entries of the staged archive.

Description: The archive is opened first so an unreadable upload never wipes
the previous chapter. Then every regular file directly inside dir is deleted
(dir is created when missing) and the entries are written one after another
in archive order under generated names. Entries whose extension is not
allowed are skipped and consume no order.

Parameters:
  - ctx: context.Context (checked between entries)
  - stagedZip: string (absolute path inside the staging area)
  - dir: string (absolute chapter directory)

Returns:
  - []Page: Pages in archive order, orders 1..n
  - error: storage.ErrArchive on any failure; pages already written stay on
    disk and the staged archive is kept for inspection
*/
func (extractor *Extractor) Extract(ctx context.Context, stagedZip, dir string) ([]Page, error) {
	logger := ctxutil.LoggerOr(ctx, extractor.logger)
	fsys := extractor.store.Fs()

	file, err := fsys.Open(stagedZip)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", storage.ErrArchive, stagedZip, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", storage.ErrArchive, stagedZip, err)
	}

	reader, err := zip.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", storage.ErrArchive, stagedZip, err)
	}

	// 1. Prepare an empty chapter directory
	if err := extractor.store.Ensure(dir); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrArchive, err)
	}
	cleared, err := extractor.store.Clear(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrArchive, err)
	}
	extractor.metrics.FilesRemoved("archive_clear", cleared)

	// 2. Stream entries sequentially
	pages := make([]Page, 0, len(reader.File))
	for name, open := range entries(reader) {
		if err := ctx.Err(); err != nil {
			extractor.metrics.PagesWritten(SourceArchive, len(pages))
			return nil, fmt.Errorf("%w: aborted after %d pages: %w", storage.ErrArchive, len(pages), err)
		}

		ext := filename.Ext(name)
		if !extractor.store.Allowed(ext) {
			logger.WarnContext(ctx, "chapter_entry_skipped",
				slog.String("entry", name),
				slog.String("extension", ext),
			)
			continue
		}

		page, err := extractor.writeEntry(ctx, dir, name, ext, open, len(pages)+1)
		if err != nil {
			extractor.metrics.PagesWritten(SourceArchive, len(pages))
			return nil, err
		}
		pages = append(pages, page)
	}

	extractor.metrics.PagesWritten(SourceArchive, len(pages))

	// 3. The archive is consumed; release and discard it
	_ = file.Close()
	extractor.store.Discard(ctx, stagedZip)

	logger.InfoContext(ctx, "chapter_archive_extracted",
		slog.String("dir", dir),
		slog.Int("pages", len(pages)),
		slog.Int("replaced", cleared),
	)

	return pages, nil
}

// writeEntry copies one entry to a generated file and describes the result.
func (extractor *Extractor) writeEntry(ctx context.Context, dir, name, ext string, open Opener, order int) (Page, error) {
	reader, err := open()
	if err != nil {
		return Page{}, fmt.Errorf("%w: open entry %q: %w", storage.ErrArchive, name, err)
	}
	defer reader.Close()

	generated := uuid.FileName(ext)
	path, written, err := extractor.store.WriteStream(dir, generated, reader)
	if err != nil {
		return Page{}, fmt.Errorf("%w: entry %q: %w", storage.ErrArchive, name, err)
	}

	page := Page{ImageURL: generated, Order: order, FileSize: written}

	if storage.IsRaster(ext) {
		dims, probeErr := extractor.store.Probe(path)
		if probeErr != nil {
			ctxutil.LoggerOr(ctx, extractor.logger).WarnContext(ctx, "chapter_probe_failed",
				slog.String("entry", name),
				slog.String("path", path),
				slog.Any("error", probeErr),
			)
		} else {
			page.Width, page.Height = &dims.Width, &dims.Height
		}
	}

	return page, nil
}
