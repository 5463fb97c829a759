// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestResolver_RejectsEscapes covers parent segments and absolute-looking input.
*/
func TestResolver_RejectsEscapes(t *testing.T) {
	resolver, err := NewResolver(filepath.FromSlash("/srv/public"))
	require.NoError(t, err)

	inputs := []string{
		"..",
		"../public2",
		"../../etc/passwd",
		"user/../../etc",
		"user/../assets", // cancels out, still refused
		"user/1/..",
		`..\windows`,
		`user\..\..\x`,
		"/etc/passwd",
		`\etc\passwd`,
		"//srv/public/user",
		"C:/Windows",
		"c:evil",
		"user/\x00/x",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			resolved, err := resolver.Resolve(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPathEscape), "got %v", err)
			assert.Empty(t, resolved)
		})
	}
}

/*
TestResolver_NormalizesInside checks lexical cleanup of safe input.
*/
func TestResolver_NormalizesInside(t *testing.T) {
	root := filepath.FromSlash("/srv/public")
	resolver, err := NewResolver(root)
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
	}{
		{"", root},
		{".", root},
		{"assets", filepath.Join(root, "assets")},
		{"user//42///", filepath.Join(root, "user", "42")},
		{"./series/./7/assets", filepath.Join(root, "series", "7", "assets")},
		{"..hidden", filepath.Join(root, "..hidden")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := resolver.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, resolver.Contains(got))
		})
	}
}

/*
TestResolver_Contains_SegmentBoundary ensures a sibling sharing a prefix is outside.
*/
func TestResolver_Contains_SegmentBoundary(t *testing.T) {
	resolver, err := NewResolver(filepath.FromSlash("/srv/public"))
	require.NoError(t, err)

	assert.True(t, resolver.Contains(filepath.FromSlash("/srv/public")))
	assert.True(t, resolver.Contains(filepath.FromSlash("/srv/public/a")))
	assert.False(t, resolver.Contains(filepath.FromSlash("/srv/public2")))
	assert.False(t, resolver.Contains(filepath.FromSlash("/srv/public2/a")))
	assert.False(t, resolver.Contains(filepath.FromSlash("/srv")))
	assert.False(t, resolver.Contains(filepath.FromSlash("/srv/public/../private")))
}

func TestNewResolver_RequiresAbsoluteRoot(t *testing.T) {
	_, err := NewResolver("public")
	assert.Error(t, err)
}

/*
TestDescriptor_RelativePath covers every kind template and the id rules.
*/
func TestDescriptor_RelativePath(t *testing.T) {
	tests := []struct {
		name    string
		input   Descriptor
		want    string
		wantErr error
	}{
		{"user", Descriptor{Kind: KindUser, ID: "42"}, "user/42", nil},
		{"assets_without_id", Descriptor{Kind: KindAssets}, "assets", nil},
		{"assets_ignores_id", Descriptor{Kind: KindAssets, ID: "../x"}, "assets", nil},
		{"series", Descriptor{Kind: KindSeries, ID: "7"}, "series/7", nil},
		{"series_assets", Descriptor{Kind: KindSeriesAssets, ID: "7"}, "series/7/assets", nil},
		{"chapter", Descriptor{Kind: KindSeriesChapter, ID: "7", ChapterKey: "vol-1-cap-2"}, "series/7/chapters/vol-1-cap-2", nil},
		{"user_missing_id", Descriptor{Kind: KindUser}, "", ErrMissingID},
		{"series_blank_id", Descriptor{Kind: KindSeries, ID: "  "}, "", ErrMissingID},
		{"series_assets_missing_id", Descriptor{Kind: KindSeriesAssets}, "", ErrMissingID},
		{"chapter_missing_id", Descriptor{Kind: KindSeriesChapter, ChapterKey: "k"}, "", ErrMissingID},
		{"chapter_missing_key", Descriptor{Kind: KindSeriesChapter, ID: "7"}, "", ErrMissingChapterKey},
		{"id_traversal", Descriptor{Kind: KindUser, ID: ".."}, "", ErrPathEscape},
		{"id_separator", Descriptor{Kind: KindSeries, ID: "7/../../x"}, "", ErrPathEscape},
		{"key_separator", Descriptor{Kind: KindSeriesChapter, ID: "7", ChapterKey: "a/b"}, "", ErrPathEscape},
		{"unknown_kind", Descriptor{Kind: "comics", ID: "1"}, "", ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.RelativePath()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrMissingChapterKey_IsMissingID(t *testing.T) {
	assert.ErrorIs(t, ErrMissingChapterKey, ErrMissingID)
}

func TestParseKind(t *testing.T) {
	for _, value := range []string{"user", "assets", "series", "series-assets", "series-chapter"} {
		kind, err := ParseKind(value)
		require.NoError(t, err)
		assert.Equal(t, Kind(value), kind)
	}

	_, err := ParseKind("image")
	assert.ErrorIs(t, err, ErrInvalidKind)

	assert.False(t, KindAssets.RequiresID())
	assert.True(t, KindUser.RequiresID())
}

func TestChapterKey(t *testing.T) {
	assert.Equal(t, "vol-2-cap-15", ChapterKey("2", "15"))
}
