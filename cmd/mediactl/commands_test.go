// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-media/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(storage.Options{
		Root:   "/srv/public",
		Fs:     afero.NewMemMapFs(),
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return store
}

func run(t *testing.T, store *storage.Store, args ...string) (string, error) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cmd := newRootCommand(func() (*storage.Store, error) { return store, nil }, logger)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func pngData(t *testing.T, width, height int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buffer.Bytes()
}

func TestResolve(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"assets", []string{"resolve", "assets"}, "/srv/public/assets", false},
		{"series", []string{"resolve", "series", "7"}, "/srv/public/series/7", false},
		{"chapter", []string{"resolve", "series-chapter", "7", "--chapter", "vol-1-cap-3"}, "/srv/public/series/7/chapters/vol-1-cap-3", false},
		{"escape", []string{"resolve", "user", ".."}, "", true},
		{"missing_id", []string{"resolve", "user"}, "", true},
		{"unknown_kind", []string{"resolve", "album", "1"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, store, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestListAndFind(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Fs().MkdirAll("/srv/public/series/7", 0o755))
	require.NoError(t, afero.WriteFile(store.Fs(), "/srv/public/series/7/cover.png", pngData(t, 3, 2), 0o644))

	out, err := run(t, store, "ls", "series", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "cover.png")
	assert.Contains(t, out, "3x2")
	assert.Contains(t, out, "1 files")

	out, err = run(t, store, "find", "series", "7", "cover")
	require.NoError(t, err)
	assert.Equal(t, "/srv/public/series/7/cover.png", strings.TrimSpace(out))

	_, err = run(t, store, "find", "series", "7", "banner")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExtract(t *testing.T) {
	store := newTestStore(t)

	var archive bytes.Buffer
	writer := zip.NewWriter(&archive)
	for _, name := range []string{"01.png", "02.png"} {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(pngData(t, 2, 2))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	require.NoError(t, afero.WriteFile(store.Fs(), "/in/chapter.zip", archive.Bytes(), 0o644))

	out, err := run(t, store, "extract", "/in/chapter.zip", "--series", "7", "--volume", "1", "--index", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "2 pages")

	names, err := store.FileNames("/srv/public/series/7/chapters/vol-1-cap-3")
	require.NoError(t, err)
	assert.Len(t, names, 2)

	_, err = run(t, store, "extract", "/in/chapter.zip", "--series", "7")
	assert.Error(t, err)
}
