package encoding

import (
	"errors"
	"io"
	"strings"
	"testing"

	tmxerrors "github.com/FocuswithJustin/tmxparser/core/errors"
)

func TestIsUTF8(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"", true},
		{"UTF-8", true},
		{"utf8", true},
		{"latin1", false},
		{"windows-1252", false},
		{"no-such-charset", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := IsUTF8(tt.label); got != tt.want {
				t.Errorf("IsUTF8(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if got := Name("UTF8"); got != "utf-8" {
		t.Errorf("Name(UTF8) = %q, want utf-8", got)
	}
	if got := Name("bogus"); got != "bogus" {
		t.Errorf("Name(bogus) = %q, want bogus", got)
	}
}

func TestNewReaderLatin1(t *testing.T) {
	// "Größe" in ISO-8859-1.
	raw := []byte{'G', 'r', 0xF6, 0xDF, 'e'}
	r, err := NewReader(strings.NewReader(string(raw)), "ISO-8859-1")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Größe" {
		t.Errorf("decoded = %q, want %q", got, "Größe")
	}
}

func TestNewReaderUTF8IsIdentity(t *testing.T) {
	src := strings.NewReader("abc")
	r, err := NewReader(src, "utf-8")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r != io.Reader(src) {
		t.Error("UTF-8 input should be returned unchanged")
	}
}

func TestNewReaderUnknownLabel(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), "klingon-8")
	if err == nil {
		t.Fatal("expected error for unknown label")
	}
	if !errors.Is(err, tmxerrors.ErrUnsupported) {
		t.Errorf("error %v should wrap ErrUnsupported", err)
	}
}

func TestCharsetReaderAndPassThrough(t *testing.T) {
	raw := string([]byte{0xE9}) // é in windows-1252
	r, err := CharsetReader("windows-1252", strings.NewReader(raw))
	if err != nil {
		t.Fatalf("CharsetReader: %v", err)
	}
	got, _ := io.ReadAll(r)
	if string(got) != "é" {
		t.Errorf("CharsetReader decoded %q, want é", got)
	}

	src := strings.NewReader("é")
	pr, err := PassThrough("windows-1252", src)
	if err != nil || pr != io.Reader(src) {
		t.Errorf("PassThrough should return input unchanged, got %v, %v", pr, err)
	}
}

func TestStripBOM(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "utf-8 bom", in: []byte("\xEF\xBB\xBF<tmx/>"), want: "<tmx/>"},
		{name: "no bom", in: []byte("<tmx/>"), want: "<tmx/>"},
		{name: "utf-16le bom", in: []byte{0xFF, 0xFE, '<', 0, 'a', 0, '/', 0, '>', 0}, want: "<a/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(StripBOM(strings.NewReader(string(tt.in))))
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("StripBOM = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCharsetReaderUTF16PassesThrough(t *testing.T) {
	src := strings.NewReader("<a/>")
	r, err := CharsetReader("UTF-16", src)
	if err != nil {
		t.Fatalf("CharsetReader: %v", err)
	}
	if r != io.Reader(src) {
		t.Error("UTF-16 label should pass input through unchanged")
	}
}
