// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-media/internal/platform/metrics"
	"github.com/taibuivan/yomira-media/internal/storage"
	"github.com/taibuivan/yomira-media/pkg/filename"
)

// archiveExtension is the only container format accepted for chapter uploads.
const archiveExtension = ".zip"

// Address identifies one chapter directory.
type Address struct {
	SeriesID string
	Volume   string
	Index    string
}

// Key returns the chapter directory name.
func (a Address) Key() string {
	return storage.ChapterKey(strings.TrimSpace(a.Volume), strings.TrimSpace(a.Index))
}

// # Service Layer

// Service orchestrates chapter extraction and reconciliation.
type Service struct {
	store      *storage.Store
	extractor  *Extractor
	reconciler *Reconciler
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService constructs a new [Service] over store. m may be nil.
func NewService(store *storage.Store, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		extractor:  NewExtractor(store, m, logger),
		reconciler: NewReconciler(store, m, logger),
		metrics:    m,
		logger:     logger,
	}
}

/*
Dir resolves the directory of a chapter.

Returns:
  - string: Absolute chapter directory
  - error: storage.ErrMissingID, storage.ErrMissingChapterKey or storage.ErrPathEscape
*/
func (service *Service) Dir(address Address) (string, error) {
	if strings.TrimSpace(address.Volume) == "" || strings.TrimSpace(address.Index) == "" {
		return "", storage.ErrMissingChapterKey
	}
	return service.store.Dir(storage.Descriptor{
		Kind:       storage.KindSeriesChapter,
		ID:         address.SeriesID,
		ChapterKey: address.Key(),
	})
}

/*
UploadArchive stages a zip stream and extracts it into the chapter.

Parameters:
  - ctx: context.Context
  - address: Address (series, volume, index)
  - archive: io.Reader (zip bytes)
  - originalName: string (client file name; must be empty or end in .zip)

Returns:
  - []Page: Extracted pages in archive order
  - error: Validation errors before staging, storage.ErrArchive afterwards
*/
func (service *Service) UploadArchive(ctx context.Context, address Address, archive io.Reader, originalName string) ([]Page, error) {
	dir, err := service.Dir(address)
	if err != nil {
		return nil, err
	}

	if ext := filename.Ext(originalName); ext != "" && ext != archiveExtension {
		return nil, fmt.Errorf("%w: %q is not a zip archive", storage.ErrUnsupportedType, originalName)
	}

	staged, err := service.store.Stage(ctx, archive, originalName)
	if err != nil {
		service.metrics.Upload(string(storage.KindSeriesChapter), "failed")
		return nil, err
	}

	unlock := service.store.Lock(dir)
	defer unlock()

	pages, err := service.extractor.Extract(ctx, staged, dir)
	if err != nil {
		service.metrics.Upload(string(storage.KindSeriesChapter), "failed")
		ctxutil.LoggerOr(ctx, service.logger).ErrorContext(ctx, "chapter_extract_failed",
			slog.String("chapter", address.Key()),
			slog.String("series_id", address.SeriesID),
			slog.String("staged", staged),
			slog.Any("error", err),
		)
		return nil, err
	}

	service.metrics.Upload(string(storage.KindSeriesChapter), "ok")
	return pages, nil
}

/*
AnalyzePages synchronises the chapter directory to the declared page list.

Parameters:
  - ctx: context.Context
  - address: Address
  - pages: []PageInput

Returns:
  - []Page: Pages sorted by order
  - error: storage.ErrInvalidPayload or a storage error
*/
func (service *Service) AnalyzePages(ctx context.Context, address Address, pages []PageInput) ([]Page, error) {
	dir, err := service.Dir(address)
	if err != nil {
		return nil, err
	}

	unlock := service.store.Lock(dir)
	defer unlock()

	return service.reconciler.Reconcile(ctx, dir, pages)
}
