package entity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Key returns the identity of e under idFields.
func Key(e *Entity, idFields []string) string {
	var b strings.Builder

	b.WriteString(e.Type)
	b.WriteByte('{')

	n := 0

	for _, f := range idFields {
		v, ok := e.Fields[f]
		if !ok || v.IsNull() {
			continue
		}

		if n > 0 {
			b.WriteByte(',')
		}

		b.WriteString(f)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(v.Text()))

		n++
	}

	if n == 0 {
		// No id: identity is the content itself.
		b.WriteByte('#')
		b.Write(canonical(e))
	}

	b.WriteByte('}')

	return b.String()
}

// HasID reports whether any of idFields is set on e.
func HasID(e *Entity, idFields []string) bool {
	for _, f := range idFields {
		if v, ok := e.Fields[f]; ok && !v.IsNull() {
			return true
		}
	}

	return false
}

func canonical(e *Entity) []byte {
	data, err := json.Marshal(e.Map())
	if err != nil {
		return []byte(err.Error())
	}

	return data
}

// plain turns decoded JSON numbers into int64 or float64 so every encoder
// sees ordinary Go values.
func plain(v any) any {
	switch d := v.(type) {
	case json.Number:
		if n, err := d.Int64(); err == nil {
			return n
		}

		if f, err := d.Float64(); err == nil {
			return f
		}

		return d.String()
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, x := range d {
			out[k] = plain(x)
		}

		return out
	case []any:
		out := make([]any, len(d))
		for i, x := range d {
			out[i] = plain(x)
		}

		return out
	default:
		return v
	}
}
