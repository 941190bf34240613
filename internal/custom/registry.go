package custom

import (
	"errors"
	"fmt"
	"slices"

	"ingest-mapper/internal/report"
	"ingest-mapper/internal/value"
)

// ErrAlreadyRegistered is returned when a name is registered twice.
var ErrAlreadyRegistered = errors.New("name already registered")

// Args are the named, already evaluated arguments of a call.
type Args map[string]value.Value

// Text returns the raw text of argument name, or "" when absent or null.
func (a Args) Text(name string) string {
	return a[name].Text()
}

// Func is a function callable through $custom.
type Func func(args Args) (value.Value, error)

// EnumParser maps raw text that the mapping table did not cover to an
// enum member (a string value) or null.
type EnumParser func(rawText string, args Args) (value.Value, error)

// Lookup is the read side of a registry, used for load-time checks.
type Lookup interface {
	HasFunc(name string) bool
	HasEnumParser(name string) bool
}

// Registry maps names to functions and enum parsers.
type Registry struct {
	funcs   map[string]Func
	parsers map[string]EnumParser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:   make(map[string]Func),
		parsers: make(map[string]EnumParser),
	}
}

// RegisterFunc adds fn under name.
func (r *Registry) RegisterFunc(name string, fn Func) error {
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("%w: function %q", ErrAlreadyRegistered, name)
	}

	r.funcs[name] = fn

	return nil
}

// RegisterEnumParser adds p under name.
func (r *Registry) RegisterEnumParser(name string, p EnumParser) error {
	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("%w: enum parser %q", ErrAlreadyRegistered, name)
	}

	r.parsers[name] = p

	return nil
}

// HasFunc returns true if a function with the given name exists.
func (r *Registry) HasFunc(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// HasEnumParser returns true if an enum parser with the given name exists.
func (r *Registry) HasEnumParser(name string) bool {
	_, ok := r.parsers[name]
	return ok
}

// EnumParser returns the parser registered under name.
func (r *Registry) EnumParser(name string) (EnumParser, bool) {
	p, ok := r.parsers[name]
	return p, ok
}

// FuncNames returns all function names, sorted.
func (r *Registry) FuncNames() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ParserNames returns all enum parser names, sorted.
func (r *Registry) ParserNames() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Call invokes the function name. Failures of the function itself are
// wrapped with report.ErrCustomFunction.
func (r *Registry) Call(name string, args Args) (value.Value, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return value.Null(), fmt.Errorf("%w: %q", report.ErrUnknownFunction, name)
	}

	out, err := fn(args)
	if err != nil {
		return value.Null(), fmt.Errorf("%w: %s: %w", report.ErrCustomFunction, name, err)
	}

	if out.Kind() == value.KindList {
		return value.Null(), fmt.Errorf("%w: %s returned a list", report.ErrCustomFunction, name)
	}

	return out, nil
}

// Parse invokes the enum parser name on rawText.
func (r *Registry) Parse(name, rawText string, args Args) (value.Value, error) {
	p, ok := r.parsers[name]
	if !ok {
		return value.Null(), fmt.Errorf("%w: enum parser %q", report.ErrUnknownFunction, name)
	}

	out, err := p(rawText, args)
	if err != nil {
		return value.Null(), fmt.Errorf("%w: %s: %w", report.ErrCustomFunction, name, err)
	}

	return out, nil
}
