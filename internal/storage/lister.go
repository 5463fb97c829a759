// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/taibuivan/yomira-media/pkg/filename"
)

// StoredFile describes one file in a storage directory.
type StoredFile struct {
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	FileName   string    `json:"fileName"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Width      *int      `json:"width,omitempty"`
	Height     *int      `json:"height,omitempty"`
}

// List enumerates the regular files directly inside dir, sorted by name.
//
// A missing directory yields an empty slice. Raster images are probed for
// dimensions; probe failures are logged and leave the dimensions empty.
func (s *Store) List(ctx context.Context, dir string) ([]StoredFile, error) {
	if !s.resolver.Contains(dir) {
		return nil, errPathEscapeFor(dir)
	}
	if err := s.verifyAncestors(dir); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []StoredFile{}, nil
	}
	if err != nil {
		return nil, ioError("readdir", dir, err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}

		stem, ext := filename.Split(entry.Name())
		file := StoredFile{
			Name:      stem,
			Extension: ext,
			FileName:  entry.Name(),
			Size:      entry.Size(),
			// Portable creation times are not exposed by os.FileInfo.
			CreatedAt:  entry.ModTime(),
			ModifiedAt: entry.ModTime(),
		}

		if IsRaster(ext) {
			path := filepath.Join(dir, entry.Name())
			dims, probeErr := s.Probe(path)
			if probeErr != nil {
				s.log(ctx).WarnContext(ctx, "storage_probe_failed",
					slog.String("path", path),
					slog.Any("error", probeErr),
				)
			} else {
				file.Width, file.Height = &dims.Width, &dims.Height
			}
		}

		files = append(files, file)
	}

	return files, nil
}

// Clear deletes every regular file directly inside dir (non-recursive) and
// returns how many were removed. A missing dir is not an error.
func (s *Store) Clear(ctx context.Context, dir string) (int, error) {
	if !s.resolver.Contains(dir) {
		return 0, errPathEscapeFor(dir)
	}
	if err := s.verifyAncestors(dir); err != nil {
		return 0, err
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, ioError("readdir", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, ioError("remove", path, err)
		}
		removed++
	}

	s.log(ctx).DebugContext(ctx, "storage_dir_cleared", slog.String("dir", dir), slog.Int("removed", removed))
	return removed, nil
}

// FileNames returns the names of the regular files directly inside dir.
func (s *Store) FileNames(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioError("readdir", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func errPathEscapeFor(p string) error {
	return fmt.Errorf("%w: %q", ErrPathEscape, p)
}
