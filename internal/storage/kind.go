// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"fmt"
	"path"

	"github.com/taibuivan/yomira-media/pkg/filename"
)

// # Resource Kinds

// Kind names a storage subtree.
type Kind string

const (
	KindUser          Kind = "user"
	KindAssets        Kind = "assets"
	KindSeries        Kind = "series"
	KindSeriesAssets  Kind = "series-assets"
	KindSeriesChapter Kind = "series-chapter"
)

// UploadKinds are the kinds accepted by the single-file upload and remove endpoints.
var UploadKinds = []string{
	string(KindUser),
	string(KindAssets),
	string(KindSeries),
	string(KindSeriesAssets),
}

// ParseKind maps a wire value to a [Kind].
func ParseKind(value string) (Kind, error) {
	switch kind := Kind(value); kind {
	case KindUser, KindAssets, KindSeries, KindSeriesAssets, KindSeriesChapter:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, value)
	}
}

// RequiresID reports whether the kind needs an identifier.
func (k Kind) RequiresID() bool {
	return k != KindAssets
}

// # Resource Descriptor

// Descriptor identifies one storage directory.
type Descriptor struct {
	Kind       Kind
	ID         string
	ChapterKey string
}

// RelativePath maps the descriptor to its subtree template:
//
//	user          -> user/{id}
//	assets        -> assets
//	series        -> series/{id}
//	series-assets -> series/{id}/assets
//	series-chapter-> series/{id}/chapters/{chapterKey}
//
// The result always uses forward slashes; [Resolver.Resolve] localizes it.
func (d Descriptor) RelativePath() (string, error) {
	id := filename.Normalize(d.ID)

	if d.Kind.RequiresID() {
		if id == "" {
			return "", fmt.Errorf("%w: kind %q", ErrMissingID, d.Kind)
		}
		if !filename.IsSegment(id) {
			return "", fmt.Errorf("%w: id %q", ErrPathEscape, d.ID)
		}
	}

	switch d.Kind {
	case KindUser:
		return path.Join("user", id), nil
	case KindAssets:
		return "assets", nil
	case KindSeries:
		return path.Join("series", id), nil
	case KindSeriesAssets:
		return path.Join("series", id, "assets"), nil
	case KindSeriesChapter:
		key := filename.Normalize(d.ChapterKey)
		if key == "" {
			return "", ErrMissingChapterKey
		}
		if !filename.IsSegment(key) {
			return "", fmt.Errorf("%w: chapter key %q", ErrPathEscape, d.ChapterKey)
		}
		return path.Join("series", id, "chapters", key), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}
}

// ChapterKey builds the directory name of a chapter: vol-{volume}-cap-{index}.
func ChapterKey(volume, index string) string {
	return fmt.Sprintf("vol-%s-cap-%s", volume, index)
}
