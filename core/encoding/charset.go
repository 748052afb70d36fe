// Package encoding resolves character-encoding labels and wraps readers so the
// XML tokenizer always sees UTF-8.
package encoding

import (
	"io"
	"strings"

	"github.com/FocuswithJustin/tmxparser/core/errors"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultLabel is used when the caller does not name an encoding and the
// document does not declare one.
const DefaultLabel = "UTF-8"

// Lookup resolves an encoding label ("latin1", "windows-1252", "utf-16le", ...)
// using the WHATWG label table.
func Lookup(label string) (xencoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, &errors.UnsupportedError{
			Feature: "encoding",
			Reason:  "unknown label " + `"` + label + `"`,
			Err:     err,
		}
	}
	return enc, nil
}

// IsUTF8 reports whether label names UTF-8 (or is empty).
func IsUTF8(label string) bool {
	if strings.TrimSpace(label) == "" {
		return true
	}
	enc, err := Lookup(label)
	if err != nil {
		return false
	}
	return enc == unicode.UTF8
}

// Name returns the canonical name of label, or label itself if unknown.
func Name(label string) string {
	enc, err := Lookup(label)
	if err != nil {
		return label
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return label
	}
	return name
}

// NewReader returns a reader producing UTF-8 from r, which is encoded as label.
// UTF-8 input is returned unchanged.
func NewReader(r io.Reader, label string) (io.Reader, error) {
	if IsUTF8(label) {
		return r, nil
	}
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(r), nil
}

// StripBOM returns a reader that drops a leading byte order mark. A UTF-16
// mark switches the reader to UTF-16 decoding, so the output is always UTF-8.
func StripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// CharsetReader matches the xml.Decoder.CharsetReader signature and decodes
// input according to the encoding declared in the XML prolog. UTF-16 labels
// pass through: such input only parses after StripBOM has already converted it.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	if isUTF16(label) {
		return input, nil
	}
	return NewReader(input, label)
}

func isUTF16(label string) bool {
	switch strings.ToLower(Name(label)) {
	case "utf-16le", "utf-16be":
		return true
	}
	return false
}

// PassThrough matches the xml.Decoder.CharsetReader signature and ignores the
// declared label. It is used when the input has already been transcoded.
func PassThrough(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
