package enummap

import (
	"fmt"

	"ingest-mapper/internal/report"
	"ingest-mapper/internal/value"
)

// Parser is a custom enum parser already bound to its auxiliary arguments.
type Parser func(rawText string) (value.Value, error)

// Resolver resolves raw values for one $enum_mapping.
type Resolver struct {
	Table *Table
	// NullMember is returned for null raw text; empty means null stays null.
	NullMember string
	// Parser handles raw values the table does not know. May be nil.
	Parser Parser
}

// Resolve maps raw to exactly one member, null, or an error.
//
// Lookup is verbatim and case-sensitive. Values the table cannot place go
// to the parser, whose result is trusted as-is; without a parser they fail
// with report.ErrUnmappedEnumValue.
func (r Resolver) Resolve(raw value.Value) (value.Value, error) {
	if raw.IsNull() {
		if r.NullMember != "" {
			return value.String(r.NullMember), nil
		}

		return value.Null(), nil
	}

	text := raw.Text()

	member, ignored, ok := r.Table.Lookup(text)
	switch {
	case ok && ignored:
		return value.Null(), nil
	case ok:
		return value.String(member), nil
	}

	if r.Parser != nil {
		return r.Parser(text)
	}

	return value.Null(), fmt.Errorf("%w: raw value %q has no mapping and no custom parser is configured",
		report.ErrUnmappedEnumValue, text)
}

// Resolve is the functional form of Resolver.Resolve.
func Resolve(raw value.Value, table *Table, parser Parser) (value.Value, error) {
	return Resolver{Table: table, Parser: parser}.Resolve(raw)
}
