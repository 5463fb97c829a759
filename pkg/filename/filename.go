// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package filename normalizes client supplied file names and logical names.
//
// # Usage
//
// A logical name typed on macOS arrives decomposed (NFD) while the same name
// typed elsewhere arrives composed (NFC). Both must address the same file, so
// every name is folded to NFC before it reaches the disk.
package filename

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds s to Unicode NFC and trims surrounding whitespace.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsSegment reports whether s is usable as a single path component.
//
// It rejects empty names, the dot entries, separators of either platform,
// and NUL or other control characters.
func IsSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
}

// Split separates name into its stem and lower-cased extension.
//
// Example:
//
//	filename.Split("Cover.PNG") // "Cover", ".png"
func Split(name string) (stem, ext string) {
	ext = Ext(name)
	return name[:len(name)-len(ext)], ext
}

// Base returns the last element of a slash or backslash separated reference,
// dropping any query string or fragment. It is used to turn an imageURL such
// as "https://cdn/x/y/abc.png?v=2" into "abc.png".
func Base(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.ReplaceAll(ref, "\\", "/")
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return ""
	}
	return path.Base(ref)
}
