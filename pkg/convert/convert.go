// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides fault-tolerant conversions for client payloads.

Clients of the media API send identifiers either as JSON strings ("42") or as
numbers (42) depending on where they came from. [Text] accepts both so
handlers do not have to care.
*/
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a JSON scalar decoded into its textual form.
//
// Strings are kept as is, numbers keep their literal spelling ("1.50" stays
// "1.50"), booleans become "true"/"false" and null becomes "".
type Text string

// UnmarshalJSON implements [json.Unmarshaler].
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil

	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil

	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = Text(data)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("convert: expected a string or a number, got %s", data)
	}
	*t = Text(number.String())
	return nil
}

// String returns the trimmed text.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}
