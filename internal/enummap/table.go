package enummap

import (
	"slices"
)

// Entry is one authored mapping line: Member is chosen for any of Raw.
type Entry struct {
	Member string
	Raw    []string
}

// Duplicate describes a raw value claimed more than once.
type Duplicate struct {
	Raw string
	// Claims lists the members that claim Raw, in authoring order. The
	// ignore list appears as IgnoreClaim.
	Claims []string
}

// IgnoreClaim stands for the $ignore list in Duplicate.Claims.
const IgnoreClaim = "$ignore"

// Table is the inverted raw value -> member lookup for one field.
type Table struct {
	members []string
	lookup  map[string]string
	ignore  map[string]struct{}
}

// NewTable inverts entries. Duplicated raw values are reported and the
// first claim wins in the returned table.
func NewTable(entries []Entry, ignore []string) (*Table, []Duplicate) {
	t := &Table{
		lookup: make(map[string]string),
		ignore: make(map[string]struct{}, len(ignore)),
	}

	claims := make(map[string][]string)

	var order []string

	claim := func(raw, by string) {
		prev, seen := claims[raw]
		if !seen {
			order = append(order, raw)
		}

		// A member listing the same raw value twice is reported too.
		claims[raw] = append(prev, by)
	}

	for _, e := range entries {
		if !slices.Contains(t.members, e.Member) {
			t.members = append(t.members, e.Member)
		}

		for _, raw := range e.Raw {
			claim(raw, e.Member)

			if _, ok := t.lookup[raw]; !ok {
				t.lookup[raw] = e.Member
			}
		}
	}

	for _, raw := range ignore {
		claim(raw, IgnoreClaim)

		if _, mapped := t.lookup[raw]; !mapped {
			t.ignore[raw] = struct{}{}
		}
	}

	var dups []Duplicate

	for _, raw := range order {
		if c := claims[raw]; len(c) > 1 {
			dups = append(dups, Duplicate{Raw: raw, Claims: c})
		}
	}

	return t, dups
}

// Lookup finds the member for raw. ignored is true when raw is on the
// ignore list.
func (t *Table) Lookup(raw string) (member string, ignored, ok bool) {
	if t == nil {
		return "", false, false
	}

	if m, found := t.lookup[raw]; found {
		return m, false, true
	}

	if _, found := t.ignore[raw]; found {
		return "", true, true
	}

	return "", false, false
}

// Members returns the distinct members in authoring order.
func (t *Table) Members() []string {
	if t == nil {
		return nil
	}

	return append([]string(nil), t.members...)
}

// Len returns the number of mapped raw values, ignored ones excluded.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.lookup)
}

// IsEmpty returns true if the table maps and ignores nothing.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.lookup) == 0 && len(t.ignore) == 0
}
