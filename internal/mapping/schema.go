package mapping

import (
	"slices"
)

// SupportedLanguages lists the manifest_language versions this package reads.
var SupportedLanguages = []string{"1.0.0", "1.1.0"}

// DefaultIDFields is used when a manifest declares no id_fields.
var DefaultIDFields = []string{"external_id"}

// Manifest is a parsed and validated manifest. It is never modified after
// loading and may be shared by independent runs.
type Manifest struct {
	// Language is the manifest_language version.
	Language string

	// InputColumns are the expected raw columns, in declared order.
	InputColumns []string

	// UnusedColumns are input columns intentionally never read.
	UnusedColumns []string

	// PrimaryKey lists the columns grouping rows into one logical record.
	// Empty means every row is its own record.
	PrimaryKey []string

	// IDFields name the entity fields that form entity identity.
	IDFields []string

	// Variables in dependency order: a variable appears after every
	// variable it references.
	Variables []Variable

	// Output is the root entity constructor.
	Output *EntityNode

	columns   map[string]struct{}
	variables map[string]Expr
}

// Variable is a named expression evaluated lazily, once per row.
type Variable struct {
	Name string
	Expr Expr
}

// HasColumn reports whether name is a declared input column.
func (m *Manifest) HasColumn(name string) bool {
	_, ok := m.columns[name]
	return ok
}

// Variable returns the expression of the variable name.
func (m *Manifest) Variable(name string) (Expr, bool) {
	e, ok := m.variables[name]
	return e, ok
}

// IsIDField reports whether field participates in entity identity.
func (m *Manifest) IsIDField(field string) bool {
	return slices.Contains(m.IDFields, field)
}

// index builds the lookup maps once validation succeeded.
func (m *Manifest) index() {
	m.columns = make(map[string]struct{}, len(m.InputColumns))
	for _, c := range m.InputColumns {
		m.columns[c] = struct{}{}
	}

	m.variables = make(map[string]Expr, len(m.Variables))
	for _, v := range m.Variables {
		m.variables[v.Name] = v.Expr
	}
}

// rawManifest is the top level of the document before expressions and
// output are parsed.
type rawManifest struct {
	Language      string   `yaml:"manifest_language"`
	InputColumns  []string `yaml:"input_columns"`
	UnusedColumns []string `yaml:"unused_columns,omitempty"`
	PrimaryKey    []string `yaml:"primary_key,omitempty"`
	IDFields      []string `yaml:"id_fields,omitempty"`
}
