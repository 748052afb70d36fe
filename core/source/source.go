// Package source opens TMX inputs, transparently decompressing gzip and xz
// streams so the parser only ever sees XML.
package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"

	"github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/ulikunitz/xz"
)

// Compression identifies a container format detected from magic bytes.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// Injectable functions for testing
var (
	osOpen        = os.Open
	gzipNewReader = gzip.NewReader
	xzNewReader   = func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) }
)

// Detect peeks at the start of br and reports its compression.
func Detect(br *bufio.Reader) Compression {
	head, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	}
	return CompressionNone
}

// readCloser pairs a decompressing reader with the closers underneath it.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Wrap returns a reader over the decompressed content of rc. Closing the
// result closes rc.
func Wrap(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	switch Detect(br) {
	case CompressionGzip:
		zr, err := gzipNewReader(br)
		if err != nil {
			return nil, errors.NewIO("open gzip stream", "", err)
		}
		return &readCloser{Reader: zr, closers: []io.Closer{rc, zr}}, nil
	case CompressionXZ:
		xr, err := xzNewReader(br)
		if err != nil {
			return nil, errors.NewIO("open xz stream", "", err)
		}
		return &readCloser{Reader: xr, closers: []io.Closer{rc}}, nil
	}
	return &readCloser{Reader: br, closers: []io.Closer{rc}}, nil
}

// Open opens path for reading, decompressing it if needed. The caller must
// close the result.
func Open(path string) (io.ReadCloser, error) {
	f, err := osOpen(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	rc, err := Wrap(f)
	if err != nil {
		f.Close()
		if ioErr, ok := err.(*errors.IOError); ok {
			ioErr.Path = path
		}
		return nil, err
	}
	return rc, nil
}
