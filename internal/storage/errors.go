// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"errors"
	"fmt"
)

// # Error Taxonomy
//
// Every error returned by this package wraps exactly one of these sentinels,
// so callers classify with [errors.Is] and map to transport codes.
var (
	// ErrPathEscape reports an input that would resolve outside the storage root.
	ErrPathEscape = errors.New("storage: path escapes storage root")

	// ErrInvalidKind reports an unknown resource kind.
	ErrInvalidKind = errors.New("storage: invalid resource kind")

	// ErrMissingID reports a kind that requires an id (or chapter key) without one.
	ErrMissingID = errors.New("storage: missing resource id")

	// ErrMissingChapterKey is the chapter-key flavour of [ErrMissingID].
	ErrMissingChapterKey = fmt.Errorf("%w: chapter key required", ErrMissingID)

	// ErrInvalidName reports a logical name that is not a single path segment.
	ErrInvalidName = errors.New("storage: invalid logical name")

	// ErrUnsupportedType reports an extension outside the allow-list.
	ErrUnsupportedType = errors.New("storage: unsupported file type")

	// ErrNotFound reports a missing file on read or remove.
	ErrNotFound = errors.New("storage: file not found")

	// ErrArchive reports an archive that could not be opened or extracted.
	ErrArchive = errors.New("storage: archive extraction failed")

	// ErrInvalidPayload reports inline page data that cannot be decoded.
	ErrInvalidPayload = errors.New("storage: invalid inline payload")

	// ErrMove reports a staged file that could not reach its final location.
	ErrMove = errors.New("storage: move failed")

	// ErrIO reports any other filesystem failure.
	ErrIO = errors.New("storage: filesystem failure")
)

// ioError wraps err under [ErrIO] with an operation and path for the logs.
func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
