// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	errNotDataURI  = errors.New("not a data URI")
	errNotBase64   = errors.New("only base64 data URIs are supported")
	errBadEncoding = errors.New("payload is not valid base64")
	errEmptyImage  = errors.New("payload is empty")
	errUnknownType = errors.New("payload format is unknown")
)

// inlineImage is a decoded data URI.
type inlineImage struct {
	data []byte
	ext  string
}

// decodeDataURI parses "data:<mime>[;param]*;base64,<payload>".
//
// The extension comes from the declared mime type. A missing or unknown mime
// falls back to sniffing the decoded bytes.
//
//	decodeDataURI("data:image/png;base64,iVBOR...") // ext ".png"
func decodeDataURI(uri string) (inlineImage, error) {
	uri = strings.TrimSpace(uri)

	rest, ok := cutPrefixFold(uri, "data:")
	if !ok {
		return inlineImage{}, errNotDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return inlineImage{}, errNotDataURI
	}

	params := strings.Split(meta, ";")
	if len(params) < 2 || !strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64") {
		return inlineImage{}, errNotBase64
	}
	mime := strings.ToLower(strings.TrimSpace(params[0]))

	data, err := decodeBase64(payload)
	if err != nil {
		return inlineImage{}, errBadEncoding
	}
	if len(data) == 0 {
		return inlineImage{}, errEmptyImage
	}

	ext := ""
	if declared := mimetype.Lookup(mime); mime != "" && declared != nil {
		ext = declared.Extension()
	}
	if ext == "" {
		ext = mimetype.Detect(data).Extension()
	}
	if ext == "" {
		return inlineImage{}, errUnknownType
	}

	return inlineImage{data: data, ext: ext}, nil
}

// decodeBase64 accepts padded and unpadded payloads, ignoring whitespace.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
