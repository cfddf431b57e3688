package envelope

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// Result field names.
const (
	FieldResult   = "result"
	FieldReason   = "reason"
	FieldLanguage = "language"
)

// Field is one key/value pair of a success payload.
type Field struct {
	Key   string
	Value string
}

// Result is a response envelope. Payload fields keep their insertion order
// on the wire.
type Result struct {
	OK     bool
	Reason string
	Fields []Field
}

// Transcription builds the STT success result.
func Transcription(language, text string) Result {
	return Result{OK: true, Fields: []Field{
		{Key: FieldLanguage, Value: language},
		{Key: FieldText, Value: text},
	}}
}

// Audio builds the TTS success result from base64 audio.
func Audio(audioBase64 string) Result {
	return Result{OK: true, Fields: []Field{
		{Key: FieldAudioFile, Value: audioBase64},
	}}
}

// Failure builds a failure result.
func Failure(reason string) Result {
	return Result{OK: false, Reason: reason}
}

// FromError converts any error into a failure result carrying its message.
func FromError(err error) Result {
	if err == nil {
		return Failure("unknown error")
	}
	return Failure(err.Error())
}

// Get returns the value of a payload field.
func (r Result) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Run is the fault boundary for a pipeline body: a returned error or a panic
// becomes a failure result, so callers always receive a well-formed Result.
func Run(fn func() (Result, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			L_error("envelope: pipeline panicked", "panic", r)
			res = Failure(fmt.Sprint(r))
		}
	}()

	out, err := fn()
	if err != nil {
		L_debug("envelope: pipeline failed", "kind", KindOf(err), "error", err)
		return FromError(err)
	}
	return out
}

// MarshalJSON renders the result as a single-line JSON object with the
// `", "` / `": "` separator layout and ASCII-only output.
func (r Result) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"result": `)
	if r.OK {
		b.WriteString("true")
		for _, f := range r.Fields {
			b.WriteString(", ")
			writeASCIIString(&b, f.Key)
			b.WriteString(": ")
			writeASCIIString(&b, f.Value)
		}
	} else {
		b.WriteString("false, ")
		writeASCIIString(&b, FieldReason)
		b.WriteString(": ")
		writeASCIIString(&b, r.Reason)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Encode writes the result to w as exactly one line.
func Encode(w io.Writer, r Result) error {
	line, err := r.MarshalJSON()
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

const hexDigits = "0123456789abcdef"

// writeASCIIString writes s as a JSON string literal, escaping everything
// outside printable ASCII. Invalid UTF-8 becomes U+FFFD.
func writeASCIIString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"':
				b.WriteString(`\"`)
			case c == '\\':
				b.WriteString(`\\`)
			case c == '\n':
				b.WriteString(`\n`)
			case c == '\r':
				b.WriteString(`\r`)
			case c == '\t':
				b.WriteString(`\t`)
			case c == '\b':
				b.WriteString(`\b`)
			case c == '\f':
				b.WriteString(`\f`)
			case c < 0x20 || c == 0x7f:
				writeUnicodeEscape(b, rune(c))
			default:
				b.WriteByte(c)
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError || r2 != utf8.RuneError {
			writeUnicodeEscape(b, r1)
			writeUnicodeEscape(b, r2)
		} else {
			writeUnicodeEscape(b, r)
		}
		i += size
	}
	b.WriteByte('"')
}

func writeUnicodeEscape(b *bytes.Buffer, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xf])
	b.WriteByte(hexDigits[(r>>8)&0xf])
	b.WriteByte(hexDigits[(r>>4)&0xf])
	b.WriteByte(hexDigits[r&0xf])
}
