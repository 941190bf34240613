package mapping

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"ingest-mapper/internal/common"
	"ingest-mapper/internal/custom"
	"ingest-mapper/internal/diagnostic"
	"ingest-mapper/internal/match"
	"ingest-mapper/internal/report"
)

var topLevelKeys = []string{
	"manifest_language",
	"input_columns",
	"unused_columns",
	"primary_key",
	"id_fields",
	"variables",
	"output",
}

// Option configures loading.
type Option func(*options)

type options struct {
	registry custom.Lookup
}

// WithRegistry checks $custom functions and enum parsers against r.
func WithRegistry(r custom.Lookup) Option {
	return func(o *options) {
		o.registry = r
	}
}

// LoadError is returned when a manifest fails validation. It carries
// every diagnostic found.
type LoadError struct {
	Diagnostics *diagnostic.Diagnostics
}

func (e *LoadError) Error() string {
	msg := report.ErrLoadValidation.Error()
	if err := e.Diagnostics.Error(); err != nil {
		msg += ": " + err.Error()
	}

	return msg
}

// Unwrap exposes report.ErrLoadValidation, plus report.ErrUnsupportedVersion
// when the language version was rejected.
func (e *LoadError) Unwrap() []error {
	errs := []error{report.ErrLoadValidation}
	if slices.Contains(e.Diagnostics.Codes(), CodeUnsupportedLanguage) {
		errs = append(errs, report.ErrUnsupportedVersion)
	}

	return errs
}

// LoadFile reads, parses and validates the manifest at path.
func LoadFile(path string, opts ...Option) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	return Parse(data, opts...)
}

// Parse parses and validates a manifest document. Any error diagnostic
// makes it return a *LoadError; warnings are dropped.
func Parse(data []byte, opts ...Option) (*Manifest, error) {
	m, diags := Check(data, opts...)
	if diags.HasErrors() {
		return nil, &LoadError{Diagnostics: diags}
	}

	return m, nil
}

// Check parses and validates a manifest document and returns everything
// found. The manifest may be partial, or nil when the document is not
// readable at all; it is only fit for evaluation when diags has no errors.
func Check(data []byte, opts ...Option) (*Manifest, *diagnostic.Diagnostics) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	diags := &diagnostic.Diagnostics{}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		diags.AddErrorf("invalid_yaml", "", "cannot parse manifest: %v", err)
		return nil, diags
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		diags.AddError("empty_manifest", "", "manifest document is empty")
		return nil, diags
	}

	root := resolve(doc.Content[0])
	p := &parser{diags: diags}

	ents, _ := p.entries(root, "")
	if root.Kind != yaml.MappingNode {
		return nil, diags
	}

	var raw rawManifest
	if err := root.Decode(&raw); err != nil {
		diags.AddErrorf("invalid_document", "", "%v", err)
	}

	var varsNode, outNode *yaml.Node

	for _, e := range ents {
		switch e.key {
		case "variables":
			varsNode = e.value
		case "output":
			outNode = e.value
		default:
			if !slices.Contains(topLevelKeys, e.key) {
				diags.AddError("unknown_key", e.key,
					fmt.Sprintf("unknown top-level key %q", e.key),
					match.Suggest(e.key, topLevelKeys, 1)...)
			}
		}
	}

	m := &Manifest{
		Language:      raw.Language,
		InputColumns:  raw.InputColumns,
		UnusedColumns: raw.UnusedColumns,
		PrimaryKey:    raw.PrimaryKey,
		IDFields:      common.Dedup(raw.IDFields),
	}

	if len(m.IDFields) == 0 {
		m.IDFields = slices.Clone(DefaultIDFields)
	}

	m.Variables = p.variables(varsNode, "variables")

	if outNode == nil || isNull(outNode) {
		diags.AddError("missing_output", "output", "manifest has no output entity")
	} else {
		m.Output = p.entity(outNode, "output")
	}

	validate(m, o.registry, diags)
	m.index()

	return m, diags
}
