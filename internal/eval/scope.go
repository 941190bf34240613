package eval

import (
	"fmt"
	"strings"

	"ingest-mapper/internal/custom"
	"ingest-mapper/internal/enummap"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
	"ingest-mapper/internal/value"
)

// Scope is the evaluation context of one row.
type Scope struct {
	ev    *Evaluator
	row   Row
	memo  map[string]value.Value
	items []value.Value
}

// NewScope starts evaluating row with an empty variable memo.
func (e *Evaluator) NewScope(row Row) *Scope {
	return &Scope{
		ev:   e,
		row:  row,
		memo: make(map[string]value.Value),
	}
}

// Row returns the row being evaluated.
func (s *Scope) Row() Row { return s.row }

// Bind returns a scope in which $iter_item is item. The variable memo is
// shared with s, which is sound because variables cannot read $iter_item.
func (s *Scope) Bind(item value.Value) *Scope {
	items := make([]value.Value, len(s.items), len(s.items)+1)
	copy(items, s.items)

	return &Scope{
		ev:    s.ev,
		row:   s.row,
		memo:  s.memo,
		items: append(items, item),
	}
}

// Eval evaluates x. Errors carry the path of the innermost failing node.
func (s *Scope) Eval(x mapping.Expr) (value.Value, error) {
	v, err := s.eval(x)
	if err != nil {
		return value.Null(), report.At(x.Path(), err)
	}

	return v, nil
}

// Cond evaluates x as a condition: null is false, anything but a boolean
// is a type mismatch.
func (s *Scope) Cond(x mapping.Expr) (bool, error) {
	v, err := s.Eval(x)
	if err != nil {
		return false, err
	}

	if v.IsNull() {
		return false, nil
	}

	b, ok := v.BoolVal()
	if !ok {
		return false, report.At(x.Path(),
			fmt.Errorf("%w: condition must be boolean, got %s", report.ErrTypeMismatch, v.Kind()))
	}

	return b, nil
}

// Scalar evaluates x and rejects list results.
func (s *Scope) Scalar(x mapping.Expr) (value.Value, error) {
	v, err := s.Eval(x)
	if err != nil {
		return value.Null(), err
	}

	if v.Kind() == value.KindList {
		return value.Null(), report.At(x.Path(),
			fmt.Errorf("%w: expected a single value, got a list", report.ErrTypeMismatch))
	}

	return v, nil
}

// List evaluates x as a list. Null is the empty list.
func (s *Scope) List(x mapping.Expr) (value.Value, error) {
	v, err := s.Eval(x)
	if err != nil {
		return value.Null(), err
	}

	switch v.Kind() {
	case value.KindList:
		return v, nil
	case value.KindNull:
		return value.ListOf(), nil
	default:
		return value.Null(), report.At(x.Path(),
			fmt.Errorf("%w: expected a list, got %s", report.ErrTypeMismatch, v.Kind()))
	}
}

func (s *Scope) eval(x mapping.Expr) (value.Value, error) {
	switch n := x.(type) {
	case *mapping.Literal:
		return n.Value, nil
	case *mapping.ColumnRef:
		return s.column(n)
	case *mapping.Concat:
		return s.concat(n)
	case *mapping.Conditional:
		return s.conditional(n)
	case *mapping.BoolTest:
		return s.test(n)
	case *mapping.Logical:
		return s.logical(n)
	case *mapping.EnumMapping:
		return s.enum(n)
	case *mapping.JSONExtract:
		return s.jsonExtract(n)
	case *mapping.SplitJSON:
		return s.splitJSON(n)
	case *mapping.Split:
		return s.split(n)
	case *mapping.Custom:
		return s.custom(n)
	case *mapping.VariableRef:
		return s.variable(n)
	case *mapping.IterItem:
		if len(s.items) == 0 {
			return value.Null(), fmt.Errorf("%w: $iter_item outside $foreach", report.ErrTypeMismatch)
		}

		return s.items[len(s.items)-1], nil
	case *mapping.ForEach:
		return value.Null(), fmt.Errorf("%w: $foreach builds entities, not values", report.ErrTypeMismatch)
	default:
		return value.Null(), fmt.Errorf("unsupported expression %T", x)
	}
}

func (s *Scope) column(n *mapping.ColumnRef) (value.Value, error) {
	if !s.ev.manifest.HasColumn(n.Column) {
		return value.Null(), fmt.Errorf("%w: %q is not a declared input column", report.ErrUnknownColumn, n.Column)
	}

	raw, ok := s.row[n.Column]
	if !ok || raw == "" {
		return value.Null(), nil
	}

	return value.String(raw), nil
}

func (s *Scope) concat(n *mapping.Concat) (value.Value, error) {
	parts := make([]string, 0, len(n.Values))

	for _, x := range n.Values {
		v, err := s.Scalar(x)
		if err != nil {
			return value.Null(), err
		}

		if v.IsNull() {
			if !n.IncludeNulls {
				return value.Null(), nil
			}

			parts = append(parts, n.NullSentinel)

			continue
		}

		parts = append(parts, v.Text())
	}

	return value.String(strings.Join(parts, n.Separator)), nil
}

func (s *Scope) conditional(n *mapping.Conditional) (value.Value, error) {
	for _, b := range n.Branches {
		ok, err := s.Cond(b.Cond)
		if err != nil {
			return value.Null(), err
		}

		if ok {
			return s.Eval(b.Then)
		}
	}

	if n.Else != nil {
		return s.Eval(n.Else)
	}

	return value.Null(), nil
}

func (s *Scope) test(n *mapping.BoolTest) (value.Value, error) {
	operands := make([]value.Value, len(n.Operands))

	for i, x := range n.Operands {
		v, err := s.Scalar(x)
		if err != nil {
			return value.Null(), err
		}

		operands[i] = v
	}

	switch n.Op {
	case mapping.TestIsNull:
		return value.Bool(operands[0].IsNull()), nil
	case mapping.TestNotNull:
		return value.Bool(!operands[0].IsNull()), nil
	case mapping.TestEqual:
		return value.Bool(same(operands[0], operands[1])), nil
	case mapping.TestIn, mapping.TestNotIn:
		found := false

		if !operands[0].IsNull() {
			for _, opt := range n.Options {
				if same(operands[0], opt) {
					found = true
					break
				}
			}
		}

		if n.Op == mapping.TestNotIn {
			return value.Bool(!found), nil
		}

		return value.Bool(found), nil
	default:
		return value.Null(), fmt.Errorf("unsupported test %s", n.Op)
	}
}

// same is value equality where scalars of different kinds compare by text,
// so a JSON number 1 equals the literal "1".
func same(a, b value.Value) bool {
	if value.Equal(a, b) {
		return true
	}

	if a.IsNull() || b.IsNull() || !a.Kind().IsScalar() || !b.Kind().IsScalar() {
		return false
	}

	return a.Text() == b.Text()
}

func (s *Scope) logical(n *mapping.Logical) (value.Value, error) {
	switch n.Op {
	case mapping.LogicalNot:
		ok, err := s.Cond(n.Operands[0])
		if err != nil {
			return value.Null(), err
		}

		return value.Bool(!ok), nil
	case mapping.LogicalAnd, mapping.LogicalOr:
		// $and stops at the first false operand, $or at the first true one.
		stopAt := n.Op == mapping.LogicalOr

		for _, x := range n.Operands {
			ok, err := s.Cond(x)
			if err != nil {
				return value.Null(), err
			}

			if ok == stopAt {
				return value.Bool(stopAt), nil
			}
		}

		return value.Bool(!stopAt), nil
	default:
		return value.Null(), fmt.Errorf("unsupported logical operator %d", n.Op)
	}
}

func (s *Scope) args(in []mapping.Arg) (custom.Args, error) {
	out := make(custom.Args, len(in))

	for _, a := range in {
		v, err := s.Scalar(a.Value)
		if err != nil {
			return nil, err
		}

		out[a.Name] = v
	}

	return out, nil
}

func (s *Scope) enum(n *mapping.EnumMapping) (value.Value, error) {
	raw, err := s.Scalar(n.RawText)
	if err != nil {
		return value.Null(), err
	}

	r := enummap.Resolver{Table: n.Table, NullMember: n.NullMember}

	if n.Parser != "" {
		r.Parser = func(text string) (value.Value, error) {
			args, err := s.args(n.ParserArgs)
			if err != nil {
				return value.Null(), err
			}

			if s.ev.funcs == nil {
				return value.Null(), fmt.Errorf("%w: enum parser %q", report.ErrUnknownFunction, n.Parser)
			}

			out, err := s.ev.funcs.Parse(n.Parser, text, args)
			if err != nil {
				return value.Null(), err
			}

			if !out.IsNull() && out.Kind() != value.KindString {
				return value.Null(), fmt.Errorf("%w: enum parser %s returned %s, want a member name",
					report.ErrTypeMismatch, n.Parser, out.Kind())
			}

			return out, nil
		}
	}

	return r.Resolve(raw)
}

// document returns the decoded JSON behind v. ok is false for null.
func (s *Scope) document(v value.Value) (doc any, ok bool, err error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, false, nil
	case value.KindJSON:
		doc, _ = v.Doc()
		return doc, true, nil
	case value.KindString:
		text, _ := v.Str()

		doc, err = s.ev.parseJSON(text)
		if err != nil {
			return nil, false, err
		}

		return doc, doc != nil, nil
	default:
		return nil, false, fmt.Errorf("%w: expected JSON text, got %s", report.ErrTypeMismatch, v.Kind())
	}
}

func (s *Scope) jsonExtract(n *mapping.JSONExtract) (value.Value, error) {
	v, err := s.Scalar(n.JSON)
	if err != nil {
		return value.Null(), err
	}

	doc, ok, err := s.document(v)
	if err != nil || !ok {
		return value.Null(), err
	}

	obj, isObject := doc.(map[string]any)
	if !isObject {
		return value.Null(), fmt.Errorf("%w: $json_extract needs a JSON object, got %s",
			report.ErrMalformedJSON, jsonKind(doc))
	}

	return value.JSON(obj[n.Key]), nil
}

func (s *Scope) splitJSON(n *mapping.SplitJSON) (value.Value, error) {
	v, err := s.Scalar(n.JSON)
	if err != nil {
		return value.Null(), err
	}

	doc, ok, err := s.document(v)
	if err != nil {
		return value.Null(), err
	}

	if !ok {
		return value.ListOf(), nil
	}

	arr, isArray := doc.([]any)
	if !isArray {
		return value.Null(), fmt.Errorf("%w: $split_json needs a JSON array, got %s",
			report.ErrMalformedJSON, jsonKind(doc))
	}

	return value.List(func(yield func(value.Value, error) bool) {
		for _, elem := range arr {
			if !yield(value.JSON(elem), nil) {
				return
			}
		}
	}), nil
}

func jsonKind(doc any) string {
	switch doc.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case nil:
		return "null"
	default:
		return "scalar"
	}
}

func (s *Scope) split(n *mapping.Split) (value.Value, error) {
	v, err := s.Scalar(n.Value)
	if err != nil {
		return value.Null(), err
	}

	if v.IsNull() {
		return value.ListOf(), nil
	}

	var parts []value.Value

	for _, p := range strings.Split(v.Text(), n.Separator) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, value.String(p))
		}
	}

	return value.ListOf(parts...), nil
}

func (s *Scope) custom(n *mapping.Custom) (value.Value, error) {
	args, err := s.args(n.Args)
	if err != nil {
		return value.Null(), err
	}

	if s.ev.funcs == nil {
		return value.Null(), fmt.Errorf("%w: %q", report.ErrUnknownFunction, n.Function)
	}

	return s.ev.funcs.Call(n.Function, args)
}

func (s *Scope) variable(n *mapping.VariableRef) (value.Value, error) {
	if v, ok := s.memo[n.Name]; ok {
		return v, nil
	}

	x, ok := s.ev.manifest.Variable(n.Name)
	if !ok {
		return value.Null(), fmt.Errorf("%w: variable %q is not declared", report.ErrTypeMismatch, n.Name)
	}

	v, err := s.Eval(x)
	if err != nil {
		return value.Null(), err
	}

	s.memo[n.Name] = v

	return v, nil
}
