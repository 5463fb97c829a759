// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package media serves single files stored under a logical name.

A logical name is a file name without its extension ("cover"). Clients upload,
fetch and delete files by logical name; the extension of the current variant
is an implementation detail resolved against the allow-list.
*/
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-media/internal/platform/metrics"
	"github.com/taibuivan/yomira-media/internal/storage"
	"github.com/taibuivan/yomira-media/pkg/filename"
)

// imageDir is the root-relative directory behind GET /image/{name}.
const imageDir = "image"

// # Domain Types

// Target addresses one logical file.
type Target struct {
	Kind       storage.Kind
	ID         string
	ChapterKey string // series-chapter only
	Name       string
}

// Upload is a single inbound file.
type Upload struct {
	Target
	OriginalName string
	Body         io.Reader
}

// # Service Layer

// Service orchestrates single-file storage.
type Service struct {
	store   *storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService constructs a new [Service]. m may be nil.
func NewService(store *storage.Store, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: store, metrics: m, logger: logger}
}

/*
Upload stores a file under its logical name, replacing any other variant.

Description: Everything that can be checked from the request alone (kind,
id, logical name, declared extension) is checked before the body is staged.
An extension-less upload is typed by content after staging.

Parameters:
  - ctx: context.Context
  - upload: Upload

Returns:
  - string: Public path of the stored file ("/series/7/cover.jpg")
  - error: Validation errors, storage.ErrMove or storage.ErrIO
*/
func (service *Service) Upload(ctx context.Context, upload Upload) (string, error) {
	dir, name, err := service.locate(upload.Target, true)
	if err != nil {
		service.metrics.Upload(string(upload.Kind), "rejected")
		return "", err
	}

	if ext := filename.Ext(upload.OriginalName); ext != "" && !service.store.Allowed(ext) {
		service.metrics.Upload(string(upload.Kind), "rejected")
		return "", fmt.Errorf("%w: %q", storage.ErrUnsupportedType, ext)
	}

	staged, err := service.store.Stage(ctx, upload.Body, upload.OriginalName)
	if err != nil {
		service.metrics.Upload(string(upload.Kind), "failed")
		return "", err
	}

	final, err := service.store.Replace(ctx, staged, upload.OriginalName, dir, name)
	if err != nil {
		// A failed move keeps the staged file for manual recovery.
		if !errors.Is(err, storage.ErrMove) {
			service.store.Discard(ctx, staged)
		}
		service.metrics.Upload(string(upload.Kind), "failed")
		return "", err
	}

	service.metrics.Upload(string(upload.Kind), "ok")
	return service.publicPath(final)
}

/*
Remove deletes the current variant of a logical file.

Returns:
  - string: Public path of the removed file
  - error: storage.ErrNotFound when no variant exists (nothing changes)
*/
func (service *Service) Remove(ctx context.Context, target Target) (string, error) {
	dir, name, err := service.locate(target, true)
	if err != nil {
		return "", err
	}

	removed, err := service.store.Remove(ctx, dir, name)
	if err != nil {
		return "", err
	}

	service.metrics.FilesRemoved("remove", 1)
	return service.publicPath(removed)
}

/*
Locate returns the absolute path of the file a GET request names.

Description: name may be a logical name or an exact stored file name.
*/
func (service *Service) Locate(target Target) (string, error) {
	dir, name, err := service.locate(target, false)
	if err != nil {
		return "", err
	}
	return service.store.Lookup(dir, name)
}

// LocateImage resolves a file from the shared image directory.
func (service *Service) LocateImage(name string) (string, error) {
	dir, err := service.store.Resolver().Resolve(imageDir)
	if err != nil {
		return "", err
	}
	return service.store.Lookup(dir, name)
}

/*
List enumerates the files stored for a kind and id.

Returns:
  - []storage.StoredFile: Empty when nothing was uploaded yet
  - error: Descriptor errors
*/
func (service *Service) List(ctx context.Context, kind storage.Kind, id string) ([]storage.StoredFile, error) {
	dir, err := service.store.Dir(storage.Descriptor{Kind: kind, ID: id})
	if err != nil {
		return nil, err
	}

	files, err := service.store.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(ctx, service.logger).DebugContext(ctx, "media_dir_listed",
		slog.String("kind", string(kind)),
		slog.Int("files", len(files)),
	)
	return files, nil
}

// locate validates a target and resolves its directory and normalized name.
// Mutating callers are limited to the upload kinds.
func (service *Service) locate(target Target, mutating bool) (string, string, error) {
	if _, err := storage.ParseKind(string(target.Kind)); err != nil {
		return "", "", err
	}
	if mutating && !slices.Contains(storage.UploadKinds, string(target.Kind)) {
		return "", "", fmt.Errorf("%w: %q is read-only", storage.ErrInvalidKind, target.Kind)
	}

	name := filename.Normalize(target.Name)
	if !filename.IsSegment(name) {
		return "", "", fmt.Errorf("%w: %q", storage.ErrInvalidName, target.Name)
	}

	dir, err := service.store.Dir(storage.Descriptor{Kind: target.Kind, ID: target.ID, ChapterKey: target.ChapterKey})
	if err != nil {
		return "", "", err
	}
	return dir, name, nil
}

// publicPath turns an absolute stored path into the URL path serving it.
func (service *Service) publicPath(abs string) (string, error) {
	rel, err := service.store.Resolver().Rel(abs)
	if err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(rel), nil
}
