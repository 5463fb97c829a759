// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-media/internal/platform/config"
)

/*
TestParse_Defaults verifies the default storage layout and probe order.
*/
func TestParse_Defaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("STORAGE_ROOT", root)

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, root, cfg.StorageRoot)
	assert.Equal(t, filepath.Join(root, "temp"), cfg.StagingDir)
	assert.Equal(t,
		[]string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".txt", ".pdf", ".zip"},
		cfg.AllowedExtensions,
	)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestParse_NormalizesExtensions checks that user supplied lists are canonicalised.
*/
func TestParse_NormalizesExtensions(t *testing.T) {
	t.Setenv("STORAGE_ROOT", t.TempDir())
	t.Setenv("ALLOWED_EXTENSIONS", "PNG, .Jpg ,,webp")

	cfg, err := config.Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{".png", ".jpg", ".webp"}, cfg.AllowedExtensions)
}

/*
TestParse_RejectsInvalidValues covers the failure branches of normalization.
*/
func TestParse_RejectsInvalidValues(t *testing.T) {
	t.Run("empty_extensions", func(t *testing.T) {
		t.Setenv("ALLOWED_EXTENSIONS", " , ")
		_, err := config.Parse()
		assert.Error(t, err)
	})

	t.Run("zero_upload_cap", func(t *testing.T) {
		t.Setenv("MAX_UPLOAD_BYTES", "0")
		_, err := config.Parse()
		assert.Error(t, err)
	})
}

/*
TestConfig_Origins splits the EXTRA_ORIGINS list.
*/
func TestConfig_Origins(t *testing.T) {
	cfg := &config.Config{ExtraOrigins: " https://a.example ,,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}
