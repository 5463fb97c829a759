// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/taibuivan/yomira-media/pkg/filename"
	"github.com/taibuivan/yomira-media/pkg/uuid"
)

// # Staging Area

// StagingDir returns the directory holding uploads in flight.
func (s *Store) StagingDir() string { return s.staging }

// Stage copies r into the staging area under a generated name that keeps the
// extension of originalName. A partial file is removed if the copy fails.
func (s *Store) Stage(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := s.fs.MkdirAll(s.staging, dirPerm); err != nil {
		return "", ioError("mkdir", s.staging, err)
	}

	staged := filepath.Join(s.staging, uuid.FileName(filename.Ext(originalName)))

	file, err := s.fs.OpenFile(staged, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return "", ioError("create", staged, err)
	}

	written, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = s.fs.Remove(staged)
		return "", ioError("write", staged, copyErr)
	}

	s.log(ctx).DebugContext(ctx, "storage_upload_staged",
		slog.String("path", staged),
		slog.String("original_name", originalName),
		slog.Int64("bytes", written),
	)
	return staged, nil
}

// Discard removes a staged file, logging instead of failing.
func (s *Store) Discard(ctx context.Context, stagedPath string) {
	if err := s.fs.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		s.log(ctx).WarnContext(ctx, "storage_discard_failed",
			slog.String("path", stagedPath),
			slog.Any("error", err),
		)
	}
}

// WriteFile writes data to a new file dir/name. dir must already exist
// (see [Store.Ensure]); an existing file is never overwritten.
func (s *Store) WriteFile(dir, name string, data []byte) (string, error) {
	if !s.resolver.Contains(dir) {
		return "", errPathEscapeFor(dir)
	}
	path := filepath.Join(dir, name)
	if err := s.writeExclusive(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return "", err
	}
	return path, nil
}

// WriteStream copies r to a new file dir/name, like [Store.WriteFile].
func (s *Store) WriteStream(dir, name string, r io.Reader) (string, int64, error) {
	if !s.resolver.Contains(dir) {
		return "", 0, errPathEscapeFor(dir)
	}
	path := filepath.Join(dir, name)
	var written int64
	err := s.writeExclusive(path, func(w io.Writer) error {
		n, err := io.Copy(w, r)
		written = n
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return path, written, nil
}

// writeExclusive creates path (failing if it exists) and runs fill on it.
// A partially filled file is removed.
func (s *Store) writeExclusive(path string, fill func(io.Writer) error) error {
	file, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return ioError("create", path, err)
	}
	fillErr := fill(file)
	closeErr := file.Close()
	if fillErr == nil {
		fillErr = closeErr
	}
	if fillErr != nil {
		_ = s.fs.Remove(path)
		return ioError("write", path, fillErr)
	}
	return nil
}
