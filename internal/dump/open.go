// Package dump handles the file side of an extraction run: opening
// possibly-compressed inputs, naming and writing compressed outputs, and
// decoding dump chunk filenames.
package dump

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies an output compression format.
type Compression string

const (
	None   Compression = ""
	Gzip   Compression = "gzip"
	Zstd   Compression = "zstd"
	LZ4    Compression = "lz4"
	Snappy Compression = "snappy"
)

// ParseCompression validates a compression flag/config value.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case None, Gzip, Zstd, LZ4, Snappy:
		return Compression(s), nil
	case "none":
		return None, nil
	}
	return None, fmt.Errorf("invalid compression %q (use gzip, zstd, lz4, snappy or none)", s)
}

// Ext returns the filename suffix for the format, including the dot.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	case Snappy:
		return ".sz"
	}
	return ""
}

// readCloser bundles the decompressor with the underlying file so both
// are released on Close.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenInput opens path for reading, transparently decompressing by file
// extension: .gz, .bz2, .zst, .lz4, .sz. Any other extension is read as
// plain text. 7z archives are not supported; re-compress those with a
// streamable format first.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip input %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".bz2":
		return &readCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open zstd input %s: %w", path, err)
		}
		return &readCloser{Reader: zr.IOReadCloser(), closers: []io.Closer{f}}, nil
	case ".lz4":
		return &readCloser{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	case ".sz":
		return &readCloser{Reader: snappy.NewReader(f), closers: []io.Closer{f}}, nil
	case ".7z":
		f.Close()
		return nil, fmt.Errorf("open input %s: 7z archives are not supported", path)
	}
	return f, nil
}

// writeCloser flushes/closes the compressor before the underlying file.
type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateOutput creates path (plus the format's extension) for writing,
// compressing with the requested format. Parent directories are created
// as needed.
func CreateOutput(path string, compression Compression) (io.WriteCloser, error) {
	full := path + compression.Ext()
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	switch compression {
	case Gzip:
		zw := gzip.NewWriter(f)
		return &writeCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case Zstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create zstd output %s: %w", full, err)
		}
		return &writeCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case LZ4:
		zw := lz4.NewWriter(f)
		return &writeCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case Snappy:
		zw := snappy.NewBufferedWriter(f)
		return &writeCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	}
	return f, nil
}
