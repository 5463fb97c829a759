// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/gabriel-vasile/mimetype"

	"github.com/taibuivan/yomira-media/pkg/filename"
)

// # Single File Replacement

/*
Replace moves a staged upload to dir/logicalName+ext, removing every other
variant of logicalName first.

Steps:
 1. ext comes from originalName; an extension-less name is typed by sniffing
    the staged bytes. An ext outside the allow-list fails with
    [ErrUnsupportedType] before anything is touched. So does a symlinked
    ancestor of dir ([ErrPathEscape]).
 2. Every allowed variant dir/logicalName+* is deleted. Failures are logged
    and skipped; the upload still proceeds.
 3. dir is created through [Store.Ensure].
 4. The staged file is renamed into place, falling back to copy+delete when
    staging and dir are on different devices.

On [ErrMove] the staged file is left in the staging area.
*/
func (s *Store) Replace(ctx context.Context, stagedPath, originalName, dir, logicalName string) (string, error) {
	logger := s.log(ctx)

	logicalName = filename.Normalize(logicalName)
	if !filename.IsSegment(logicalName) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, logicalName)
	}
	if err := s.verifyAncestors(dir); err != nil {
		return "", err
	}

	ext, err := s.uploadExtension(stagedPath, originalName)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(dir, logicalName+ext)

	unlock := s.Lock(filepath.Join(dir, logicalName))
	defer unlock()

	// Purge siblings under any allowed extension (best effort).
	for _, candidateExt := range s.extensions {
		candidate := filepath.Join(dir, logicalName+candidateExt)
		if _, statErr := s.lstat(candidate); statErr != nil {
			continue
		}
		if removeErr := s.fs.Remove(candidate); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			logger.WarnContext(ctx, "storage_purge_failed",
				slog.String("path", candidate),
				slog.Any("error", removeErr),
			)
			continue
		}
		logger.DebugContext(ctx, "storage_variant_purged", slog.String("path", candidate))
	}

	if err := s.Ensure(dir); err != nil {
		return "", err
	}

	if err := s.move(ctx, stagedPath, finalPath); err != nil {
		logger.ErrorContext(ctx, "storage_move_failed",
			slog.String("staged", stagedPath),
			slog.String("target", finalPath),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%w: %s -> %s: %w", ErrMove, stagedPath, finalPath, err)
	}

	logger.InfoContext(ctx, "storage_file_replaced",
		slog.String("path", finalPath),
		slog.String("logical_name", logicalName),
	)

	return finalPath, nil
}

// uploadExtension picks the final extension of an upload.
func (s *Store) uploadExtension(stagedPath, originalName string) (string, error) {
	ext := filename.Ext(originalName)

	if ext == "" {
		sniffed, err := s.sniff(stagedPath)
		if err != nil {
			return "", err
		}
		ext = sniffed
	}

	if !s.Allowed(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return ext, nil
}

// sniff detects the extension of a file from its leading bytes.
func (s *Store) sniff(path string) (string, error) {
	file, err := s.fs.Open(path)
	if err != nil {
		return "", ioError("open", path, err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", ioError("sniff", path, err)
	}
	return detected.Extension(), nil
}

// move renames src to dst, copying across devices when rename cannot.
func (s *Store) move(ctx context.Context, src, dst string) error {
	err := s.fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	s.log(ctx).DebugContext(ctx, "storage_cross_device_move", slog.String("src", src), slog.String("dst", dst))

	if err := s.copyFile(src, dst); err != nil {
		return err
	}

	// The copy is complete; a leftover staged file is only litter.
	if err := s.fs.Remove(src); err != nil {
		s.log(ctx).WarnContext(ctx, "storage_staged_cleanup_failed",
			slog.String("path", src),
			slog.Any("error", err),
		)
	}
	return nil
}

// copyFile copies src to dst, removing a partial dst on failure.
func (s *Store) copyFile(src, dst string) (err error) {
	in, err := s.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = s.fs.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// # Removal

// Remove deletes the current variant of logicalName in dir and returns its path.
// It fails with [ErrNotFound] and changes nothing when no variant exists.
func (s *Store) Remove(ctx context.Context, dir, logicalName string) (string, error) {
	logicalName = filename.Normalize(logicalName)

	unlock := s.Lock(filepath.Join(dir, logicalName))
	defer unlock()

	target, err := s.Find(dir, logicalName)
	if err != nil {
		return "", err
	}

	if err := s.fs.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, logicalName)
		}
		return "", ioError("remove", target, err)
	}

	s.log(ctx).InfoContext(ctx, "storage_file_removed", slog.String("path", target))
	return target, nil
}
