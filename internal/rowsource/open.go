package rowsource

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"ingest-mapper/internal/eval"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Source is an open row source. Close releases the file and any
// decompressor.
type Source struct {
	r       io.Reader
	format  Format
	closers []io.Closer
}

// FormatFor guesses the format from the file name, ignoring a compression
// suffix. Anything that is not .jsonl, .ndjson or .json reads as CSV.
func FormatFor(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".zst")

	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONLines
	default:
		return FormatCSV
	}
}

// Open opens the file at path. An empty format is guessed with FormatFor.
// "-" reads standard input.
func Open(path string, format Format) (*Source, error) {
	if format == "" {
		format = FormatFor(path)
	}

	if path == "-" {
		return NewSource(os.Stdin, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}

	src, err := NewSource(f, format)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}

	src.closers = append(src.closers, f)

	return src, nil
}

// NewSource wraps r, decompressing gzip or zstd data detected by its
// magic bytes.
func NewSource(r io.Reader, format Format) (*Source, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	src := &Source{r: br, format: format}

	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}

		src.r = zr
		src.closers = append(src.closers, zr)
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}

		rc := zr.IOReadCloser()
		src.r = rc
		src.closers = append(src.closers, rc)
	}

	return src, nil
}

// Format returns the format rows are decoded with.
func (s *Source) Format() Format { return s.format }

// Rows returns the row sequence. It can be ranged over once. An
// unsupported format is yielded as the only element.
func (s *Source) Rows() iter.Seq2[eval.Row, error] {
	rows, err := Rows(s.r, s.format)
	if err != nil {
		return func(yield func(eval.Row, error) bool) {
			yield(nil, err)
		}
	}

	return rows
}

// Close releases the source.
func (s *Source) Close() error {
	var errs []error

	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}

	s.closers = nil

	return errors.Join(errs...)
}
