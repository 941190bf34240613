// Package rowsource reads raw input rows from CSV or JSON-lines data,
// optionally gzip or zstd compressed.
package rowsource

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"

	"ingest-mapper/internal/eval"
)

// Format is the textual layout of a row source.
type Format string

const (
	FormatCSV       Format = "csv"
	FormatJSONLines Format = "jsonl"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSONLines}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}

	return "", fmt.Errorf("unsupported input format %q", s)
}

// maxLine bounds a single JSON-lines record.
const maxLine = 16 << 20

// Rows returns the row sequence of r in format f.
func Rows(r io.Reader, f Format) (iter.Seq2[eval.Row, error], error) {
	switch f {
	case FormatCSV:
		return CSV(r), nil
	case FormatJSONLines:
		return JSONLines(r), nil
	default:
		return nil, fmt.Errorf("unsupported input format %q", f)
	}
}

// CSV reads a header line followed by records. Empty fields are left out
// of the row, which reads them as null.
func CSV(r io.Reader) iter.Seq2[eval.Row, error] {
	return func(yield func(eval.Row, error) bool) {
		cr := csv.NewReader(r)

		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		}

		if err != nil {
			yield(nil, fmt.Errorf("failed to read csv header: %w", err))
			return
		}

		header = append([]string(nil), header...)

		seen := make(map[string]struct{}, len(header))
		for _, h := range header {
			if _, dup := seen[h]; dup {
				yield(nil, fmt.Errorf("duplicate column %q in csv header", h))
				return
			}

			seen[h] = struct{}{}
		}

		for {
			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, fmt.Errorf("failed to read csv record: %w", err))
				return
			}

			row := make(eval.Row, len(header))

			for i, v := range rec {
				if v != "" {
					row[header[i]] = v
				}
			}

			if !yield(row, nil) {
				return
			}
		}
	}
}

// JSONLines reads one JSON object per line. Strings are kept as-is,
// numbers and booleans become their text, nested values their JSON
// encoding, and nulls are left out. Blank lines are skipped.
func JSONLines(r io.Reader) iter.Seq2[eval.Row, error] {
	return func(yield func(eval.Row, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxLine)

		line := 0

		for sc.Scan() {
			line++

			data := bytes.TrimSpace(sc.Bytes())
			if len(data) == 0 {
				continue
			}

			row, err := decodeLine(data)
			if err != nil {
				yield(nil, fmt.Errorf("line %d: %w", line, err))
				return
			}

			if !yield(row, nil) {
				return
			}
		}

		if err := sc.Err(); err != nil {
			yield(nil, fmt.Errorf("line %d: %w", line+1, err))
		}
	}
}

func decodeLine(data []byte) (eval.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid json record: %w", err)
	}

	if obj == nil {
		return nil, errors.New("json record is not an object")
	}

	row := make(eval.Row, len(obj))

	for k, v := range obj {
		switch x := v.(type) {
		case nil:
		case string:
			row[k] = x
		case json.Number:
			row[k] = x.String()
		case bool:
			row[k] = strconv.FormatBool(x)
		default:
			raw, err := json.Marshal(x)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", k, err)
			}

			row[k] = string(raw)
		}
	}

	return row, nil
}
