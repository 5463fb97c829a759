// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to generate Version 7 values. They name
staged uploads, extracted chapter pages, and request IDs.

Advantages:

  - Sortable: Generated page files list in creation order.
  - Collision-free: Two writers never pick the same file name.
*/
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// FileName returns a fresh UUIDv7 joined with ext (lower-cased).
//
// Example:
//
//	uuid.FileName(".PNG") // "0190f1c2-...-7b3a.png"
func FileName(ext string) string {
	return New() + strings.ToLower(ext)
}
