// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storeerr provides a bridge between low-level storage errors and
// higher-level application errors.
package storeerr

import (
	"errors"
	"net/http"

	"github.com/taibuivan/yomira-media/internal/platform/apperr"
	"github.com/taibuivan/yomira-media/internal/storage"
)

// Wrap inspects a storage error and wraps it into a meaningful [apperr.AppError].
// It hides absolute paths from the client while classifying the error type.
//
// resource names the thing a NOT_FOUND refers to (e.g. "File").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// Body over the configured cap
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge(tooLarge.Limit).WithCause(err)
	}

	switch {
	case errors.Is(err, storage.ErrPathEscape):
		return apperr.PathEscape(err)

	case errors.Is(err, storage.ErrMissingChapterKey):
		return apperr.ValidationError("Chapter volume and index are required").WithCause(err)

	case errors.Is(err, storage.ErrMissingID):
		return apperr.ValidationError("Resource id is required",
			apperr.FieldError{Field: "id", Message: "is required for this type"},
		).WithCause(err)

	case errors.Is(err, storage.ErrInvalidKind):
		return apperr.ValidationError("Unknown resource type",
			apperr.FieldError{Field: "type", Message: "is not a known resource type"},
		).WithCause(err)

	case errors.Is(err, storage.ErrInvalidName):
		return apperr.ValidationError("Invalid file name",
			apperr.FieldError{Field: "name", Message: "must be a single path segment"},
		).WithCause(err)

	case errors.Is(err, storage.ErrUnsupportedType):
		return apperr.ValidationError("File type is not allowed",
			apperr.FieldError{Field: "file", Message: "extension is not in the allow-list"},
		).WithCause(err)

	case errors.Is(err, storage.ErrInvalidPayload):
		return apperr.ValidationError("Invalid inline image data",
			apperr.FieldError{Field: "pages", Message: err.Error()},
		).WithCause(err)

	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(resource).WithCause(err)

	case errors.Is(err, storage.ErrArchive):
		return apperr.Archive(err)
	}

	// Move, IO and anything unknown become Internal Server Errors
	return apperr.Internal(err)
}
