// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage is the sandboxed file store behind every media endpoint.

It resolves resource descriptors to directories, creates directories one
verified ancestor at a time, matches logical names against an ordered
extension allow-list, replaces files across extension changes, lists
directories, and probes image dimensions.

# Filesystem

All I/O goes through an [afero.Fs]: the OS filesystem in production, an
in-memory one in tests.

# Concurrency

Writers that share a logical name are serialized in-process through a
[KeyedLocker]. Separate processes sharing one root are not coordinated.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-media/pkg/filename"
	"github.com/taibuivan/yomira-media/pkg/uuid"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// DefaultExtensions is the probe order used when no list is configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".txt", ".pdf", ".zip"}

// # Store Definition

// Options is the immutable configuration of a [Store].
type Options struct {
	// Root is the absolute sandbox directory.
	Root string

	// StagingDir receives uploads before they are moved. Empty means {Root}/temp.
	StagingDir string

	// Extensions is the ordered allow-list; nil means [DefaultExtensions].
	Extensions []string

	// Fs defaults to the OS filesystem.
	Fs afero.Fs

	Logger *slog.Logger
}

// Store implements the storage operations over one sandbox root.
type Store struct {
	fs         afero.Fs
	resolver   *Resolver
	staging    string
	extensions []string
	allowed    map[string]struct{}
	locks      *KeyedLocker
	logger     *slog.Logger
}

// New validates opts and creates the root and staging directories.
func New(opts Options) (*Store, error) {
	resolver, err := NewResolver(opts.Root)
	if err != nil {
		return nil, err
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	staging := opts.StagingDir
	if staging == "" {
		staging = filepath.Join(resolver.Root(), "temp")
	}

	store := &Store{
		fs:         fsys,
		resolver:   resolver,
		staging:    filepath.Clean(staging),
		extensions: append([]string(nil), extensions...),
		allowed:    allowed,
		locks:      NewKeyedLocker(),
		logger:     logger,
	}

	for _, dir := range []string{store.resolver.Root(), store.staging} {
		if err := fsys.MkdirAll(dir, dirPerm); err != nil {
			return nil, ioError("mkdir", dir, err)
		}
	}

	return store, nil
}

// # Accessors

// Fs returns the filesystem the store operates on.
func (s *Store) Fs() afero.Fs { return s.fs }

// Resolver returns the path resolver bound to the root.
func (s *Store) Resolver() *Resolver { return s.resolver }

// Extensions returns a copy of the ordered allow-list.
func (s *Store) Extensions() []string { return append([]string(nil), s.extensions...) }

// Allowed reports whether ext (with dot, any case) is in the allow-list.
func (s *Store) Allowed(ext string) bool {
	_, ok := s.allowed[strings.ToLower(ext)]
	return ok
}

// Lock serializes callers sharing key and returns the release function.
func (s *Store) Lock(key string) (unlock func()) { return s.locks.Lock(key) }

// Dir resolves a descriptor to its absolute directory without touching the disk.
func (s *Store) Dir(d Descriptor) (string, error) {
	return s.resolver.ResolveDescriptor(d)
}

func (s *Store) log(ctx context.Context) *slog.Logger {
	return ctxutil.LoggerOr(ctx, s.logger)
}

// # Directory Creation

/*
Ensure creates dir and every missing ancestor below the root.

Each ancestor is verified individually: it must be inside the root, must not
be a symlink ([ErrPathEscape]), and must be a directory ([ErrIO]). A
directory that appears concurrently is accepted. Existing directories are
not an error.
*/
func (s *Store) Ensure(dir string) error {
	rel, err := s.resolver.Rel(dir)
	if err != nil {
		return err
	}

	current := s.resolver.Root()
	if err := s.fs.MkdirAll(current, dirPerm); err != nil {
		return ioError("mkdir", current, err)
	}
	if rel == "." {
		return nil
	}

	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, segment)
		if !s.resolver.Contains(current) {
			return fmt.Errorf("%w: %q", ErrPathEscape, current)
		}
		if err := s.ensureOne(current); err != nil {
			return err
		}
	}

	return nil
}

// ensureOne verifies or creates a single directory level.
func (s *Store) ensureOne(dir string) error {
	info, err := s.lstat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := s.fs.Mkdir(dir, dirPerm); mkErr != nil && !errors.Is(mkErr, fs.ErrExist) {
			return ioError("mkdir", dir, mkErr)
		}
		// Re-inspect: a concurrent writer may have created something else.
		info, err = s.lstat(dir)
	}
	if err != nil {
		return ioError("stat", dir, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: symlinked directory %q", ErrPathEscape, dir)
	}
	if !info.IsDir() {
		return ioError("mkdir", dir, errors.New("not a directory"))
	}
	return nil
}

// verifyAncestors is the read-only counterpart of [Store.Ensure]: every
// existing level from the root down to dir must be a real directory, never a
// symlink. The walk stops at the first missing level.
func (s *Store) verifyAncestors(dir string) error {
	rel, err := s.resolver.Rel(dir)
	if err != nil {
		return err
	}
	if rel == "." {
		return nil
	}

	current := s.resolver.Root()
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, segment)
		info, err := s.lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return ioError("stat", current, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: symlinked directory %q", ErrPathEscape, current)
		}
		if !info.IsDir() {
			return nil
		}
	}
	return nil
}

// lstat stats without following a final symlink when the filesystem supports it.
func (s *Store) lstat(p string) (os.FileInfo, error) {
	if lstater, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(p)
		return info, err
	}
	return s.fs.Stat(p)
}

// # Extension Matching

// Find returns the first existing regular file dir/logicalName+ext, probing
// the allow-list in order. It never creates or modifies anything.
func (s *Store) Find(dir, logicalName string) (string, error) {
	logicalName = filename.Normalize(logicalName)
	if !filename.IsSegment(logicalName) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, logicalName)
	}
	if err := s.verifyAncestors(dir); err != nil {
		return "", err
	}

	for _, ext := range s.extensions {
		candidate := filepath.Join(dir, logicalName+ext)
		info, err := s.lstat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, logicalName)
}

// Lookup resolves name inside dir for serving. A name that already carries an
// allowed extension ("0190...png") matches that exact file first; otherwise
// name is a logical name handed to [Store.Find].
func (s *Store) Lookup(dir, name string) (string, error) {
	name = filename.Normalize(name)
	if !filename.IsSegment(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := s.verifyAncestors(dir); err != nil {
		return "", err
	}

	if ext := filename.Ext(name); ext != "" && s.Allowed(ext) {
		exact := filepath.Join(dir, name)
		if info, err := s.lstat(exact); err == nil && info.Mode().IsRegular() {
			return exact, nil
		}
	}

	return s.Find(dir, name)
}

// # Health

// Check verifies the staging area is writable. Each call writes its own
// file so concurrent checks never remove each other's.
func (s *Store) Check() error {
	probe := filepath.Join(s.staging, ".ready-"+uuid.New())
	if err := afero.WriteFile(s.fs, probe, []byte("ok"), filePerm); err != nil {
		return ioError("write", probe, err)
	}
	if err := s.fs.Remove(probe); err != nil {
		return ioError("remove", probe, err)
	}
	return nil
}
