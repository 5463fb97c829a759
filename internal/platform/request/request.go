// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-media/internal/platform/apperr"
	"github.com/taibuivan/yomira-media/internal/platform/constants"
	"github.com/taibuivan/yomira-media/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: PAYLOAD_TOO_LARGE when the body exceeds the cap,
    validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ParseMultipart parses a multipart body, keeping at most
[constants.MultipartMemory] bytes in memory.

Returns:
  - error: PAYLOAD_TOO_LARGE when the body exceeds the cap,
    validate.ErrInvalidForm for any other malformed body
*/
func ParseMultipart(request *http.Request) error {
	if err := request.ParseMultipartForm(constants.MultipartMemory); err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return validate.ErrInvalidForm.WithCause(err)
	}
	return nil
}

/*
FormFile returns the uploaded part stored under field.

Returns:
  - multipart.File: The part contents; the caller closes it
  - *multipart.FileHeader: Client file name and size
  - error: A VALIDATION_ERROR naming the field when the part is missing
*/
func FormFile(request *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return nil, nil, tooLarge
		}
		return nil, nil, validate.RequiredError(field, "A file part is required")
	}
	return file, header, nil
}

/*
Value returns a trimmed field from the parsed form, falling back to the URL
query.
*/
func Value(request *http.Request, field string) string {
	if request.Form == nil {
		_ = request.ParseForm()
	}
	return strings.TrimSpace(request.FormValue(field))
}

/*
Fields collects form fields from a urlencoded or multipart body, whatever the
method, layered over the URL query. Body values win.

net/http only parses urlencoded bodies of POST, PUT and PATCH requests, so a
DELETE body is read here.
*/
func Fields(request *http.Request) (url.Values, error) {
	values := url.Values{}
	for key, value := range request.URL.Query() {
		values[key] = value
	}

	switch {
	case IsMultipart(request):
		if err := ParseMultipart(request); err != nil {
			return nil, err
		}
		for key, value := range request.MultipartForm.Value {
			values[key] = value
		}

	case hasMediaType(request, "application/x-www-form-urlencoded"):
		body, err := io.ReadAll(request.Body)
		if err != nil {
			if tooLarge := bodyTooLarge(err); tooLarge != nil {
				return nil, tooLarge
			}
			return nil, validate.ErrInvalidForm.WithCause(err)
		}
		parsed, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, validate.ErrInvalidForm.WithCause(err)
		}
		for key, value := range parsed {
			values[key] = value
		}
	}

	return values, nil
}

/*
IsJSON reports whether the request declares a JSON body.
*/
func IsJSON(request *http.Request) bool {
	return hasMediaType(request, "application/json")
}

/*
IsMultipart reports whether the request declares a multipart body.
*/
func IsMultipart(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

func hasMediaType(request *http.Request, want string) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	return err == nil && mediaType == want
}

func bodyTooLarge(err error) *apperr.AppError {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return apperr.PayloadTooLarge(maxBytes.Limit).WithCause(err)
	}
	return nil
}
