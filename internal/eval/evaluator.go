package eval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"ingest-mapper/internal/custom"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
	"ingest-mapper/internal/value"
)

// DefaultJSONCacheSize is the number of parsed JSON payloads kept per
// evaluator.
const DefaultJSONCacheSize = 1024

// Row is one raw input row. Absent columns and empty strings are null.
type Row map[string]string

// Functions dispatches $custom calls and custom enum parsers.
type Functions interface {
	Call(name string, args custom.Args) (value.Value, error)
	Parse(name, rawText string, args custom.Args) (value.Value, error)
}

// Evaluator evaluates the expressions of one manifest.
type Evaluator struct {
	manifest  *mapping.Manifest
	funcs     Functions
	cacheSize int
	cache     *lru.Cache[string, any]
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithFunctions sets the registry behind $custom and $custom_parser.
func WithFunctions(f Functions) Option {
	return func(e *Evaluator) {
		e.funcs = f
	}
}

// WithJSONCacheSize bounds the parsed JSON cache. Zero or less disables it.
func WithJSONCacheSize(n int) Option {
	return func(e *Evaluator) {
		e.cacheSize = n
	}
}

// New creates an Evaluator for m, which must have passed validation.
func New(m *mapping.Manifest, opts ...Option) (*Evaluator, error) {
	if m == nil {
		return nil, errors.New("nil manifest")
	}

	e := &Evaluator{
		manifest:  m,
		cacheSize: DefaultJSONCacheSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cacheSize > 0 {
		cache, err := lru.New[string, any](e.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create json cache: %w", err)
		}

		e.cache = cache
	}

	return e, nil
}

// Manifest returns the manifest being evaluated.
func (e *Evaluator) Manifest() *mapping.Manifest { return e.manifest }

// Evaluate evaluates x against row in a fresh scope.
func (e *Evaluator) Evaluate(x mapping.Expr, row Row) (value.Value, error) {
	return e.NewScope(row).Eval(x)
}

// CachedJSON returns the number of parsed JSON payloads currently cached.
func (e *Evaluator) CachedJSON() int {
	if e.cache == nil {
		return 0
	}

	return e.cache.Len()
}

// parseJSON decodes text, reusing an earlier decode of the same text.
// Cached documents are shared and must not be modified.
func (e *Evaluator) parseJSON(text string) (any, error) {
	if e.cache != nil {
		if doc, ok := e.cache.Get(text); ok {
			return doc, nil
		}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", report.ErrMalformedJSON, err)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", report.ErrMalformedJSON)
	}

	if e.cache != nil {
		e.cache.Add(text, doc)
	}

	return doc, nil
}
