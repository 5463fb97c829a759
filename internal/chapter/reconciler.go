// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-media/internal/platform/metrics"
	"github.com/taibuivan/yomira-media/internal/storage"
	"github.com/taibuivan/yomira-media/pkg/filename"
	"github.com/taibuivan/yomira-media/pkg/uuid"
)

// SourceInline labels pages written from data URIs.
const SourceInline = "inline"

// # Page Set Reconciliation

// Reconciler synchronises a chapter directory to a declared page list.
type Reconciler struct {
	store   *storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewReconciler constructs a [Reconciler]. metrics may be nil.
func NewReconciler(store *storage.Store, m *metrics.Metrics, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, metrics: m, logger: logger}
}

// plannedPage is a declared page after validation.
type plannedPage struct {
	input  PageInput
	ref    string // stored file name, for reference pages
	inline *inlineImage
}

/*
Reconcile makes dir hold exactly the declared pages.

Description: Inline payloads are decoded and every reference is checked
before the disk is touched. Then every regular file in dir that no
reference page names is deleted, inline pages are written under fresh names,
and reference pages are described from disk. A reference to a file that no
longer exists yields size 0 and no dimensions.

Repeating a call with reference pages only changes nothing. Inline pages get
new names on every call.

Parameters:
  - ctx: context.Context (checked between pages)
  - dir: string (absolute chapter directory)
  - declared: []PageInput

Returns:
  - []Page: All pages sorted by Order (stable)
  - error: storage.ErrInvalidPayload before any mutation, or a storage error
*/
func (reconciler *Reconciler) Reconcile(ctx context.Context, dir string, declared []PageInput) ([]Page, error) {
	logger := ctxutil.LoggerOr(ctx, reconciler.logger)

	// 1. Validate everything up front
	plan, err := reconciler.plan(declared)
	if err != nil {
		return nil, err
	}

	// 2. Directory
	if err := reconciler.store.Ensure(dir); err != nil {
		return nil, err
	}

	// 3. Purge files nobody references
	keep := make(map[string]struct{}, len(plan))
	for _, planned := range plan {
		if planned.inline == nil {
			keep[planned.ref] = struct{}{}
		}
	}

	removed, err := reconciler.purge(ctx, dir, keep)
	reconciler.metrics.FilesRemoved("reconcile", removed)
	if err != nil {
		return nil, err
	}

	// 4. Write or describe each page
	pages := make([]Page, 0, len(plan))
	written := 0
	for _, planned := range plan {
		if err := ctx.Err(); err != nil {
			reconciler.metrics.PagesWritten(SourceInline, written)
			return nil, err
		}

		page := Page{ID: planned.input.ID, Order: planned.input.Order}

		var path string
		if planned.inline != nil {
			page.ImageURL = uuid.FileName(planned.inline.ext)
			path, err = reconciler.store.WriteFile(dir, page.ImageURL, planned.inline.data)
			if err != nil {
				reconciler.metrics.PagesWritten(SourceInline, written)
				return nil, err
			}
			written++
		} else {
			page.ImageURL = planned.ref
			path = filepath.Join(dir, planned.ref)
		}

		size, dims, exists, probeErr := reconciler.store.Describe(path)
		if probeErr != nil {
			logger.WarnContext(ctx, "chapter_probe_failed", slog.String("path", path), slog.Any("error", probeErr))
		}
		if !exists {
			logger.DebugContext(ctx, "chapter_reference_missing", slog.String("image_url", planned.input.ImageURL))
		}
		page.FileSize = size
		if dims != nil {
			page.Width, page.Height = &dims.Width, &dims.Height
		}

		pages = append(pages, page)
	}

	reconciler.metrics.PagesWritten(SourceInline, written)

	slices.SortStableFunc(pages, func(a, b Page) int { return cmp.Compare(a.Order, b.Order) })

	logger.InfoContext(ctx, "chapter_pages_reconciled",
		slog.String("dir", dir),
		slog.Int("pages", len(pages)),
		slog.Int("written", written),
		slog.Int("removed", removed),
	)

	return pages, nil
}

// plan decodes inline data and validates references without side effects.
func (reconciler *Reconciler) plan(declared []PageInput) ([]plannedPage, error) {
	plan := make([]plannedPage, 0, len(declared))

	for i, input := range declared {
		planned := plannedPage{input: input}

		switch {
		case input.ImageData != "":
			image, err := decodeDataURI(input.ImageData)
			if err != nil {
				return nil, fmt.Errorf("%w: page %d: %w", storage.ErrInvalidPayload, i+1, err)
			}
			if !reconciler.store.Allowed(image.ext) {
				return nil, fmt.Errorf("%w: page %d: format %s is not allowed", storage.ErrInvalidPayload, i+1, image.ext)
			}
			planned.inline = &image

		case input.ImageURL != "":
			ref := filename.Normalize(filename.Base(input.ImageURL))
			if !filename.IsSegment(ref) {
				return nil, fmt.Errorf("%w: page %d: imageURL %q names no file", storage.ErrInvalidPayload, i+1, input.ImageURL)
			}
			planned.ref = ref

		default:
			return nil, fmt.Errorf("%w: page %d: imageURL or imageData is required", storage.ErrInvalidPayload, i+1)
		}

		plan = append(plan, planned)
	}

	return plan, nil
}

// purge deletes every regular file in dir whose name is not in keep.
func (reconciler *Reconciler) purge(ctx context.Context, dir string, keep map[string]struct{}) (int, error) {
	names, err := reconciler.store.FileNames(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if _, ok := keep[filename.Normalize(name)]; ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err := reconciler.store.Fs().Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("%w: remove %s: %w", storage.ErrIO, path, err)
		}
		removed++
		ctxutil.LoggerOr(ctx, reconciler.logger).DebugContext(ctx, "chapter_page_purged", slog.String("path", path))
	}

	return removed, nil
}
