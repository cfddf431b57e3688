// Package envelope implements the JSON request/result protocol shared by the
// stt and tts processes.
//
// A request arrives either as plain UTF-8 JSON or as gzip-compressed JSON; the
// two are told apart by whether the raw bytes are valid UTF-8. A result is
// always written as exactly one JSON line.
package envelope

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// Request field names.
const (
	FieldAudioFile = "audiofile"
	FieldText      = "text"
)

// maxInflated caps the decompressed size of a gzip request.
const maxInflated = 512 << 20

// Request is a decoded request envelope: the top-level JSON object.
type Request struct {
	fields map[string]json.RawMessage
}

// NewRequest builds a request from string fields. Used by callers that
// assemble requests in-process.
func NewRequest(fields map[string]string) *Request {
	r := &Request{fields: make(map[string]json.RawMessage, len(fields))}
	for k, v := range fields {
		raw, _ := json.Marshal(v)
		r.fields[k] = raw
	}
	return r
}

// Len returns the number of top-level keys.
func (r *Request) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Empty reports whether the request carries no fields at all.
func (r *Request) Empty() bool {
	return r.Len() == 0
}

// Field returns the string value of name. Absent, null and empty values all
// yield "". A non-string value is a DecodeError.
func (r *Request) Field(name string) (string, error) {
	if r == nil {
		return "", nil
	}
	raw, ok := r.fields[name]
	if !ok {
		return "", nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", DecodeError(name, fmt.Errorf("%s is not a string", name))
	}
	return s, nil
}

// MarshalJSON re-encodes the request object.
func (r *Request) MarshalJSON() ([]byte, error) {
	if r == nil || r.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.fields)
}

// Decode parses raw request bytes. Valid UTF-8 is parsed as JSON directly;
// anything else is treated as a gzip stream holding UTF-8 JSON.
func Decode(raw []byte) (*Request, error) {
	body := raw
	if !utf8.Valid(raw) {
		inflated, err := gunzip(raw)
		if err != nil {
			return nil, InvalidInput(err)
		}
		if !utf8.Valid(inflated) {
			return nil, InvalidInput(errors.New("decompressed payload is not valid UTF-8"))
		}
		body = inflated
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, InvalidInput(err)
	}
	return &Request{fields: fields}, nil
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxInflated+1))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if len(data) > maxInflated {
		return nil, fmt.Errorf("gzip: decompressed payload exceeds %d bytes", maxInflated)
	}
	return data, nil
}
