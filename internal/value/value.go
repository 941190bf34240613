package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
)

// Value is an immutable expression result. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  int64
	flag bool
	seq  iter.Seq2[Value, error]
	doc  any
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps n.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List wraps a lazy sequence. The sequence must be restartable: every
// call to Items ranges over it again from the start.
func List(seq iter.Seq2[Value, error]) Value {
	if seq == nil {
		seq = func(func(Value, error) bool) {}
	}

	return Value{kind: KindList, seq: seq}
}

// ListOf builds an eager list from vs.
func ListOf(vs ...Value) Value {
	items := append([]Value(nil), vs...)

	return List(func(yield func(Value, error) bool) {
		for _, v := range items {
			if !yield(v, nil) {
				return
			}
		}
	})
}

// JSON wraps a decoded JSON object or array. Scalars are converted to the
// matching Value kind.
func JSON(doc any) Value {
	switch d := doc.(type) {
	case nil:
		return Null()
	case string:
		return String(d)
	case bool:
		return Bool(d)
	case json.Number:
		if n, err := d.Int64(); err == nil {
			return Int(n)
		}

		return String(d.String())
	case float64:
		if d == float64(int64(d)) {
			return Int(int64(d))
		}

		return String(strconv.FormatFloat(d, 'f', -1, 64))
	default:
		return Value{kind: KindJSON, doc: doc}
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string held by v.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// IntVal returns the integer held by v.
func (v Value) IntVal() (int64, bool) { return v.num, v.kind == KindInt }

// BoolVal returns the boolean held by v.
func (v Value) BoolVal() (bool, bool) { return v.flag, v.kind == KindBool }

// Doc returns the decoded JSON held by v.
func (v Value) Doc() (any, bool) { return v.doc, v.kind == KindJSON }

// Items ranges over a list value. Non-list values yield nothing.
func (v Value) Items() iter.Seq2[Value, error] {
	if v.kind != KindList {
		return func(func(Value, error) bool) {}
	}

	return v.seq
}

// Collect materializes a list value.
func (v Value) Collect() ([]Value, error) {
	var out []Value

	for item, err := range v.Items() {
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// Text renders v as raw text, the form used by concatenation and enum
// lookups. Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindJSON:
		return string(canonical(v.doc))
	case KindList:
		return "[list]"
	default:
		return ""
	}
}

// Native converts v into plain Go data: nil, string, int64, bool, []any,
// or the decoded JSON document.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindBool:
		return v.flag
	case KindJSON:
		return v.doc
	case KindList:
		items, err := v.Collect()
		if err != nil {
			return nil
		}

		out := make([]any, len(items))
		for i, it := range items {
			out[i] = it.Native()
		}

		return out
	default:
		return nil
	}
}

// Equal reports structural equality. Two nulls are equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindInt:
		return a.num == b.num
	case KindBool:
		return a.flag == b.flag
	case KindJSON:
		return bytes.Equal(canonical(a.doc), canonical(b.doc))
	case KindList:
		as, errA := a.Collect()
		bs, errB := b.Collect()

		if errA != nil || errB != nil || len(as) != len(bs) {
			return false
		}

		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(v.str)
	default:
		return v.Text()
	}
}

// GoString keeps %#v readable in test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("value.%s(%s)", v.kind, v.String())
}

// canonical encodes doc with sorted object keys.
func canonical(doc any) []byte {
	data, err := json.Marshal(doc)
	if err != nil {
		return []byte(fmt.Sprint(doc))
	}

	return data
}
