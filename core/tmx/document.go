package tmx

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/FocuswithJustin/tmxparser/core/encoding"
	"github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/FocuswithJustin/tmxparser/core/source"
	"github.com/FocuswithJustin/tmxparser/internal/logging"
)

// Opener returns a fresh reader positioned at the start of the document.
// Every parse run calls it once and closes what it returns.
type Opener func() (io.ReadCloser, error)

// Document binds a TMX source to parser settings. Each call to Each, Units,
// Iterator or All runs a complete, independent pass over the source.
type Document struct {
	name     string
	open     Opener
	encoding string
	strict   bool
	logger   *slog.Logger
	onHeader func(*Header) error
}

// Option configures a Document.
type Option func(*Document)

// WithEncoding forces the input encoding, overriding the XML declaration.
// Without it, the declared encoding is used, defaulting to UTF-8.
func WithEncoding(label string) Option {
	return func(d *Document) {
		d.encoding = label
	}
}

// WithStrict turns stray closing tags and text outside any sink into errors.
func WithStrict(strict bool) Option {
	return func(d *Document) {
		d.strict = strict
	}
}

// WithLogger sets the logger used for run summaries and ignored input.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithHeaderHandler registers fn to receive the <header> element once it closes.
func WithHeaderHandler(fn func(*Header) error) Option {
	return func(d *Document) {
		d.onHeader = fn
	}
}

// New returns a Document reading from open. name identifies the source in
// errors and logs.
func New(name string, open Opener, opts ...Option) *Document {
	d := &Document{
		name:   name,
		open:   open,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open returns a Document over the file at path. gzip and xz files are
// decompressed on the fly. The file is reopened for every run.
func Open(path string, opts ...Option) *Document {
	return New(path, func() (io.ReadCloser, error) {
		return source.Open(path)
	}, opts...)
}

// LoadBytes returns a Document over data.
func LoadBytes(data []byte, opts ...Option) *Document {
	return New("", func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, opts...)
}

// LoadString returns a Document over s.
func LoadString(s string, opts ...Option) *Document {
	return New("", func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}, opts...)
}

// Load returns a Document over r. Runs after the first rewind r when it is an
// io.Seeker and fail with ErrNotRestartable otherwise. r is never closed.
func Load(r io.Reader, opts ...Option) *Document {
	used := false
	return New("", func() (io.ReadCloser, error) {
		if used {
			s, ok := r.(io.Seeker)
			if !ok {
				return nil, errors.ErrNotRestartable
			}
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return nil, errors.NewIO("rewind", "", err)
			}
		}
		used = true
		return io.NopCloser(r), nil
	}, opts...)
}

// ErrStop may be returned by a unit or header callback to end the run
// early. Each then returns nil.
var ErrStop = stderrors.New("tmx: stop")

// Each parses the document, calling fn with every unit as soon as its </tu>
// is read. A non-nil error from fn stops the run and is returned as is,
// except ErrStop. Units delivered before a failure remain valid.
func (d *Document) Each(fn func(*Unit) error) error {
	start := time.Now()
	count := 0
	err := d.run(func(u *Unit) error {
		count++
		return fn(u)
	})
	if stderrors.Is(err, ErrStop) {
		err = nil
	}
	logging.ParseRun(d.logger, d.name, count, time.Since(start), err)
	return err
}

func (d *Document) run(emit func(*Unit) error) error {
	rc, err := d.open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dec, err := d.newDecoder(rc)
	if err != nil {
		return err
	}

	l := newListener(emit)
	l.strict = d.strict
	l.logger = d.logger
	l.onHeader = d.onHeader
	return newSAXHandler(l).parse(dec, d.name)
}

func (d *Document) newDecoder(r io.Reader) (*xml.Decoder, error) {
	charset := encoding.CharsetReader
	if d.encoding != "" {
		tr, err := encoding.NewReader(r, d.encoding)
		if err != nil {
			return nil, err
		}
		r = tr
		charset = encoding.PassThrough
	} else {
		r = encoding.StripBOM(r)
	}

	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charset
	return dec, nil
}

// Units returns the units as a lazy sequence. Each range over it re-opens the
// source and parses from the start; breaking out of the loop stops the parse
// and releases the source. A failure is yielded once, as the last pair.
func (d *Document) Units() iter.Seq2[*Unit, error] {
	return func(yield func(*Unit, error) bool) {
		err := d.Each(func(u *Unit) error {
			if !yield(u, nil) {
				return ErrStop
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
		}
	}
}

// All parses the whole document and returns its units. On failure it returns
// the units read so far together with the error.
func (d *Document) All() ([]*Unit, error) {
	var units []*Unit
	err := d.Each(func(u *Unit) error {
		units = append(units, u)
		return nil
	})
	return units, err
}
