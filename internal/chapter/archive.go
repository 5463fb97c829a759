// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"archive/zip"
	"io"
	"iter"
	"strings"
)

// Opener returns a fresh reader over one archive entry.
type Opener func() (io.ReadCloser, error)

// macOSMetadataDir holds resource forks added by the Finder archiver.
const macOSMetadataDir = "__MACOSX/"

// entries yields the regular file members of an archive in archive order.
//
// Directory entries, symlinks and Finder metadata are skipped. Reading an
// entry is left to the consumer, which must fully handle one entry before
// asking for the next.
func entries(reader *zip.Reader) iter.Seq2[string, Opener] {
	return func(yield func(string, Opener) bool) {
		for _, file := range reader.File {
			if !file.Mode().IsRegular() || strings.HasSuffix(file.Name, "/") {
				continue
			}
			if strings.HasPrefix(file.Name, macOSMetadataDir) {
				continue
			}
			if !yield(file.Name, file.Open) {
				return
			}
		}
	}
}
