// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bufio"
	"fmt"
	"image"
	"strings"

	// Register decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions is the pixel size of a raster image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// rasterExtensions are the formats whose headers we can decode.
var rasterExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// IsRaster reports whether ext denotes a raster image format we can probe.
func IsRaster(ext string) bool {
	_, ok := rasterExtensions[strings.ToLower(ext)]
	return ok
}

// Probe decodes only the image header of path and returns its dimensions.
func (s *Store) Probe(path string) (Dimensions, error) {
	file, err := s.fs.Open(path)
	if err != nil {
		return Dimensions{}, ioError("open", path, err)
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(bufio.NewReader(file))
	if err != nil {
		return Dimensions{}, fmt.Errorf("storage: decode %s: %w", path, err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return Dimensions{}, fmt.Errorf("storage: %s image %s has no size", format, path)
	}

	return Dimensions{Width: config.Width, Height: config.Height}, nil
}

// Describe returns the size of path and, for raster formats, its dimensions.
//
// It is lenient: a missing file yields (0, nil, false) and a failed probe
// leaves dimensions nil. The caller decides whether to log.
func (s *Store) Describe(path string) (size int64, dims *Dimensions, exists bool, probeErr error) {
	info, err := s.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, nil, false, nil
	}

	size = info.Size()
	if !IsRaster(extOf(path)) {
		return size, nil, true, nil
	}

	probed, err := s.Probe(path)
	if err != nil {
		return size, nil, true, err
	}
	return size, &probed, true, nil
}
