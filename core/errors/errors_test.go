package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "unit", ID: "79b3"},
			wantMsg:  "unit not found: 79b3",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "import"},
			wantMsg:  "import not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "unit", ID: "a", Err: underlyingErr}
		if !errors.Is(err, underlyingErr) {
			t.Error("NotFoundError should unwrap to its underlying error")
		}
		if !errors.Is(err, ErrNotFound) {
			t.Error("NotFoundError with an underlying error should still match ErrNotFound")
		}
	})
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ParseError
		wantMsg string
	}{
		{
			name:    "path and position",
			err:     &ParseError{Format: "TMX", Path: "a.tmx", Line: 3, Column: 7, Message: "unexpected EOF"},
			wantMsg: "failed to parse TMX at a.tmx:3:7: unexpected EOF",
		},
		{
			name:    "path only",
			err:     &ParseError{Format: "TMX", Path: "a.tmx", Message: "bad"},
			wantMsg: "failed to parse TMX at a.tmx: bad",
		},
		{
			name:    "position only",
			err:     &ParseError{Format: "TMX", Line: 1, Column: 2, Message: "bad"},
			wantMsg: "failed to parse TMX at 1:2: bad",
		},
		{
			name:    "bare",
			err:     NewParse("filter", "", "unexpected token"),
			wantMsg: "failed to parse filter: unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Errorf("errors.Is(%v, ErrInvalidInput) = false", tt.err)
			}
		})
	}

	t.Run("keeps underlying error", func(t *testing.T) {
		err := &ParseError{Format: "TMX", Message: "eof", Err: io.ErrUnexpectedEOF}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Error("expected ParseError to unwrap to io.ErrUnexpectedEOF")
		}
	})
}

func TestStructureError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructureError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "missing context",
			err:      NewStructure("placeholder", "ph", ErrMissingContext),
			wantMsg:  "placeholder <ph>: structural error: missing context",
			wantBase: ErrMissingContext,
		},
		{
			name:     "unit already open",
			err:      NewStructure("unit", "", ErrUnitAlreadyOpen),
			wantMsg:  "unit: structural error: unit already open",
			wantBase: ErrUnitAlreadyOpen,
		},
		{
			name:     "no sentinel",
			err:      &StructureError{Action: "done"},
			wantMsg:  "done: <nil>",
			wantBase: ErrStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantBase)
			}
			if !errors.Is(tt.err, ErrStructure) {
				t.Errorf("errors.Is(%v, ErrStructure) = false", tt.err)
			}
		})
	}
}

func TestStructureSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrMissingContext, ErrUnitAlreadyOpen, ErrStrayClose, ErrStrayText}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestIOError(t *testing.T) {
	err := NewIO("open", "/tmp/x.tmx", io.ErrClosedPipe)
	if got, want := err.Error(), "failed to open /tmp/x.tmx: io: read/write on closed pipe"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("IOError should unwrap to its cause")
	}

	noPath := NewIO("read", "", io.EOF)
	if got, want := noPath.Error(), "failed to read: EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("encoding", "unknown label \"klingon\"")
	if got, want := err.Error(), `unsupported encoding: unknown label "klingon"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("UnsupportedError should unwrap to ErrUnsupported")
	}
	if got, want := NewUnsupported("feature", "").Error(), "unsupported feature"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := fmt.Errorf("htmlindex: invalid encoding name")
	wrapped := &UnsupportedError{Feature: "encoding", Reason: "unknown label", Err: cause}
	if !errors.Is(wrapped, ErrUnsupported) {
		t.Error("UnsupportedError with an underlying error should still match ErrUnsupported")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("UnsupportedError should unwrap to its underlying error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}

	base := NewStructure("variant", "tuv", ErrMissingContext)
	wrapped := Wrapf(base, "unit %d", 4)
	if got, want := wrapped.Error(), "unit 4: variant <tuv>: structural error: missing context"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !Is(wrapped, ErrMissingContext) {
		t.Error("Is() should see through Wrapf")
	}
	var se *StructureError
	if !As(Wrap(base, "ctx"), &se) || se.Tag != "tuv" {
		t.Errorf("As() did not recover StructureError, got %+v", se)
	}
}
