// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// # Path Resolution

// Resolver maps root-relative paths to absolute paths inside a sandbox.
//
// It is purely lexical: no syscalls, no symlink evaluation. Symlinks are
// handled by [Store.Ensure], which inspects each ancestor on disk.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver for root, which is cleaned and must be absolute.
func NewResolver(root string) (*Resolver, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("storage: root %q must be absolute", root)
	}
	return &Resolver{root: filepath.Clean(root)}, nil
}

// Root returns the cleaned storage root.
func (r *Resolver) Root() string { return r.root }

/*
Resolve joins relativePath to the root and verifies containment.

Rejected with [ErrPathEscape]:
  - any ".." segment, even one that would cancel out ("a/../b");
  - a leading "/" or "\" and any volume name ("C:");
  - NUL bytes;
  - a cleaned result that is neither the root nor below root+separator.

Both separators are accepted so a Windows-style client path cannot smuggle a
".." past a Unix-only check.
*/
func (r *Resolver) Resolve(relativePath string) (string, error) {
	if strings.ContainsRune(relativePath, 0) {
		return "", fmt.Errorf("%w: NUL in %q", ErrPathEscape, relativePath)
	}

	normalized := strings.ReplaceAll(relativePath, "\\", "/")
	if strings.HasPrefix(normalized, "/") || filepath.VolumeName(relativePath) != "" || hasDriveLetter(normalized) {
		return "", fmt.Errorf("%w: absolute path %q", ErrPathEscape, relativePath)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: parent segment in %q", ErrPathEscape, relativePath)
		}
	}

	resolved := filepath.Join(r.root, filepath.FromSlash(normalized))
	if !r.Contains(resolved) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, relativePath)
	}

	return resolved, nil
}

// ResolveDescriptor resolves the directory a [Descriptor] addresses.
func (r *Resolver) ResolveDescriptor(d Descriptor) (string, error) {
	relative, err := d.RelativePath()
	if err != nil {
		return "", err
	}
	return r.Resolve(relative)
}

// Contains reports whether the absolute path p is the root or lies below it.
// The comparison is on segment boundaries: "/srv/public2" is not inside "/srv/public".
func (r *Resolver) Contains(p string) bool {
	cleaned := filepath.Clean(p)
	if cleaned == r.root {
		return true
	}
	prefix := r.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(cleaned, prefix)
}

// Rel returns p relative to the root, failing with [ErrPathEscape] for outside paths.
func (r *Resolver) Rel(p string) (string, error) {
	if !r.Contains(p) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, p)
	}
	rel, err := filepath.Rel(r.root, filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrPathEscape, p, err)
	}
	return rel, nil
}

// hasDriveLetter catches "C:/x" style input on platforms where
// filepath.VolumeName does not recognise it.
func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
