// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the media service.

It defines server timeouts, multipart limits, form field names, and the JSON
keys shared between the transport and the storage layers.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Uploads: Multipart memory budget and form field identifiers.
  - Headers: Tracing and proxy headers read by the middleware chain.

Using this package keeps magic strings and numbers out of the handlers.
*/
package constants

import "time"

// # Metadata

const (
	AppName = "yomira-media"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads of whole chapters can be large, so this is generous.
	DefaultReadTimeout = 5 * time.Minute

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 5 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 10 * time.Minute

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Uploads

const (
	// MultipartMemory is the part of a multipart body kept in memory before
	// the standard library spills it to a temporary file.
	MultipartMemory = 32 << 20

	// MaxNameLength caps a logical name so name plus extension stays within
	// common filesystem limits.
	MaxNameLength = 200

	// FormFieldFile is the multipart part carrying the uploaded bytes.
	FormFieldFile = "file"

	FormFieldName    = "name"
	FormFieldType    = "type"
	FormFieldID      = "id"
	FormFieldSerieID = "serieID"
	FormFieldVolume  = "volume"
	FormFieldIndex   = "index"
	FormFieldPages   = "pages"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldFile    = "file"
	FieldFiles   = "files"
	FieldPages   = "pages"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)
