package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONMarshal encodes v compactly without escaping HTML, so grid glyphs
// and angle brackets come out as written.
func JSONMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := &bytes.Buffer{}
	if err := json.Compact(out, buf.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// JSONUnmarshal decodes exactly one JSON value from r into out. Unknown
// fields and trailing data are errors.
func JSONUnmarshal(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after json value")
	}
	return nil
}
