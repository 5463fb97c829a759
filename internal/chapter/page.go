// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages the page files of a single chapter directory.

A chapter lives at series/{id}/chapters/vol-{volume}-cap-{index}. Two
operations populate it:

  - Extraction: a zip archive is unpacked entry by entry into fresh,
    collision-free page files.
  - Reconciliation: the directory is synchronised to a page list declared
    by the client, deleting unreferenced files and writing inline images.

Both return the resulting [Page] list and hold the chapter lock for the whole
call.
*/
package chapter

import "github.com/taibuivan/yomira-media/pkg/convert"

// # Domain Types

// Page is one stored page of a chapter.
//
// ImageURL is the generated file name inside the chapter directory. Order is
// a sort key only; it need not be contiguous.
type Page struct {
	ID       convert.Text `json:"id,omitempty"`
	ImageURL string       `json:"imageURL"`
	Order    int          `json:"order"`
	Width    *int         `json:"width,omitempty"`
	Height   *int         `json:"height,omitempty"`
	FileSize int64        `json:"fileSize"`
}

// PageInput is one page of a declared page list.
//
// Exactly one of ImageURL (reference to a stored file) or ImageData
// (data URI) is expected. When both are present the inline data wins.
type PageInput struct {
	ID        convert.Text `json:"id,omitempty"`
	ImageURL  string       `json:"imageURL,omitempty"`
	ImageData string       `json:"imageData,omitempty"`
	Order     int          `json:"order"`
}
