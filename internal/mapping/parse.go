package mapping

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ingest-mapper/internal/diagnostic"
	"ingest-mapper/internal/enummap"
	"ingest-mapper/internal/value"
)

// inlineKeyword matches the scalar forms $name and $name(arg).
var inlineKeyword = regexp.MustCompile(`^\$([a-z_]+)(?:\((.*)\))?$`)

// parser turns YAML nodes into expression and output nodes. Problems go
// to diags and the offending node becomes nil, so parsing can continue
// and report everything in one pass.
type parser struct {
	diags *diagnostic.Diagnostics
}

func (p *parser) errorf(code, path, format string, args ...any) {
	p.diags.AddErrorf(code, path, format, args...)
}

// entries returns the pairs of a mapping node. Duplicate keys are reported
// and make the result invalid; the first occurrence is kept.
func (p *parser) entries(n *yaml.Node, path string) ([]entry, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		got := "nothing"
		if n != nil {
			got = kindName(n)
		}

		p.errorf("expected_mapping", path, "expected a mapping, got %s", got)

		return nil, false
	}

	out := make([]entry, 0, len(n.Content)/2)
	seen := make(map[string]struct{}, len(n.Content)/2)
	valid := true

	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if _, dup := seen[key]; dup {
			p.errorf("duplicate_key", joinPath(path, key), "key %q appears more than once", key)
			valid = false

			continue
		}

		seen[key] = struct{}{}
		out = append(out, entry{key: key, value: resolve(n.Content[i+1])})
	}

	return out, valid
}

// kwargs reads the keyword arguments of a mapping-form keyword.
func (p *parser) kwargs(n *yaml.Node, path string, required []string, optional ...string) (map[string]*yaml.Node, bool) {
	ents, ok := p.entries(n, path)
	if !ok {
		return nil, false
	}

	out := make(map[string]*yaml.Node, len(ents))
	valid := true

	for _, e := range ents {
		if !slices.Contains(required, e.key) && !slices.Contains(optional, e.key) {
			p.errorf("unknown_argument", joinPath(path, e.key), "unexpected argument %q", e.key)
			valid = false

			continue
		}

		out[e.key] = e.value
	}

	for _, r := range required {
		if _, ok := out[r]; !ok {
			p.errorf("missing_argument", path, "missing required argument %q", r)
			valid = false
		}
	}

	return out, valid
}

func (p *parser) scalar(n *yaml.Node, path string) (string, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		p.errorf("expected_scalar", path, "expected a scalar value")
		return "", false
	}

	return n.Value, true
}

func (p *parser) boolean(n *yaml.Node, path string) (bool, bool) {
	s, ok := p.scalar(n, path)
	if !ok {
		return false, false
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		p.errorf("expected_bool", path, "expected true or false, got %q", s)
		return false, false
	}

	return b, true
}

// scalars reads a scalar or a sequence of scalars as raw text.
func (p *parser) scalars(n *yaml.Node, path string) ([]string, bool) {
	n = resolve(n)
	if n != nil && n.Kind == yaml.ScalarNode {
		s, ok := p.scalar(n, path)
		if !ok {
			return nil, false
		}

		return []string{s}, true
	}

	if n == nil || n.Kind != yaml.SequenceNode {
		p.errorf("expected_sequence", path, "expected a scalar or a sequence of scalars")
		return nil, false
	}

	out := make([]string, 0, len(n.Content))
	valid := true

	for i, item := range n.Content {
		s, ok := p.scalar(item, indexPath(path, i))
		if !ok {
			valid = false
			continue
		}

		out = append(out, s)
	}

	return out, valid
}

func (p *parser) sequence(n *yaml.Node, path string) ([]*yaml.Node, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		p.errorf("expected_sequence", path, "expected a sequence")
		return nil, false
	}

	out := make([]*yaml.Node, len(n.Content))
	for i, item := range n.Content {
		out[i] = resolve(item)
	}

	return out, true
}

// expr parses a value expression.
func (p *parser) expr(n *yaml.Node, path string) Expr {
	n = resolve(n)
	if n == nil || isNull(n) {
		p.errorf("missing_expression", path, "expected an expression")
		return nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			p.errorf("bare_scalar", path,
				"%q is not a column name; wrap constants in $literal(...)", n.Value)

			return nil
		}

		return p.inline(n.Value, path)

	case yaml.MappingNode:
		key, val, ok := singleKey(n)
		if !ok || !isKeyword(key) {
			p.errorf("invalid_expression", path, "expected a single $keyword mapping")
			return nil
		}

		return p.keyword(key, val, joinPath(path, key))

	default:
		p.errorf("invalid_expression", path, "expected an expression, got %s", kindName(n))
		return nil
	}
}

// inline parses a scalar expression: a column name or an inline keyword.
func (p *parser) inline(s, path string) Expr {
	s = strings.TrimSpace(s)
	if !isKeyword(s) {
		if s == "" {
			p.errorf("missing_expression", path, "empty column name")
			return nil
		}

		return &ColumnRef{node: node{path}, Column: s}
	}

	m := inlineKeyword.FindStringSubmatch(s)
	if m == nil {
		p.errorf("unknown_keyword", path, "cannot parse %q", s)
		return nil
	}

	name, arg, hasArg := m[1], m[2], strings.HasSuffix(s, ")")

	switch name {
	case "literal":
		if !hasArg {
			p.errorf("missing_argument", path, "$literal needs a value, e.g. $literal(\"X\")")
			return nil
		}

		return &Literal{node: node{path}, Value: value.String(unquote(arg))}
	case "variable":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			p.errorf("missing_argument", path, "$variable needs a name")
			return nil
		}

		return &VariableRef{node: node{path}, Name: arg}
	case "iter_item":
		return &IterItem{node: node{path}}
	case "null":
		return &Literal{node: node{path}, Value: value.Null()}
	default:
		p.errorf("unknown_keyword", path, "unknown inline keyword $%s", name)
		return nil
	}
}

// unquote strips one level of double or single quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}

	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}

	return s
}

func (p *parser) keyword(key string, val *yaml.Node, path string) Expr {
	at := node{path}

	switch key {
	case "$literal":
		if val == nil || isNull(val) {
			return &Literal{node: at, Value: value.Null()}
		}

		s, ok := p.scalar(val, path)
		if !ok {
			return nil
		}

		return &Literal{node: at, Value: value.String(s)}

	case "$variable":
		s, ok := p.scalar(val, path)
		if !ok {
			return nil
		}

		return &VariableRef{node: at, Name: s}

	case "$concat":
		return p.concat(val, at)

	case "$conditional":
		return p.conditional(val, at)

	case "$is_null", "$not_null":
		op := TestIsNull
		if key == "$not_null" {
			op = TestNotNull
		}

		operand := p.expr(val, path)
		if operand == nil {
			return nil
		}

		return &BoolTest{node: at, Op: op, Operands: []Expr{operand}}

	case "$equal":
		items, ok := p.sequence(val, path)
		if !ok {
			return nil
		}

		if len(items) != 2 {
			p.errorf("wrong_arity", path, "$equal takes exactly 2 operands, got %d", len(items))
			return nil
		}

		a, b := p.expr(items[0], indexPath(path, 0)), p.expr(items[1], indexPath(path, 1))
		if a == nil || b == nil {
			return nil
		}

		return &BoolTest{node: at, Op: TestEqual, Operands: []Expr{a, b}}

	case "$in", "$not_in":
		return p.membership(key, val, at)

	case "$and", "$or":
		op := LogicalAnd
		if key == "$or" {
			op = LogicalOr
		}

		items, ok := p.sequence(val, path)
		if !ok {
			return nil
		}

		if len(items) < 2 {
			p.errorf("wrong_arity", path, "%s takes at least 2 operands, got %d", key, len(items))
			return nil
		}

		operands := p.exprList(items, path)
		if operands == nil {
			return nil
		}

		return &Logical{node: at, Op: op, Operands: operands}

	case "$not":
		operand := p.expr(val, path)
		if operand == nil {
			return nil
		}

		return &Logical{node: at, Op: LogicalNot, Operands: []Expr{operand}}

	case "$enum_mapping":
		return p.enumMapping(val, at)

	case "$json_extract":
		args, ok := p.kwargs(val, path, []string{"$key", "$json"})
		if !ok {
			return nil
		}

		k, okKey := p.scalar(args["$key"], joinPath(path, "$key"))
		j := p.expr(args["$json"], joinPath(path, "$json"))

		if !okKey || j == nil {
			return nil
		}

		return &JSONExtract{node: at, Key: k, JSON: j}

	case "$split_json":
		j := p.expr(val, path)
		if j == nil {
			return nil
		}

		return &SplitJSON{node: at, JSON: j}

	case "$split":
		args, ok := p.kwargs(val, path, []string{"$value"}, "$separator")
		if !ok {
			return nil
		}

		sep := ","
		if n, ok := args["$separator"]; ok {
			if s, ok := p.scalar(n, joinPath(path, "$separator")); ok {
				sep = s
			}
		}

		v := p.expr(args["$value"], joinPath(path, "$value"))
		if v == nil {
			return nil
		}

		return &Split{node: at, Value: v, Separator: sep}

	case "$custom":
		args, ok := p.kwargs(val, path, []string{"$function"}, "$args")
		if !ok {
			return nil
		}

		fn, okFn := p.scalar(args["$function"], joinPath(path, "$function"))

		var callArgs []Arg
		if n, ok := args["$args"]; ok {
			callArgs, ok = p.namedArgs(n, joinPath(path, "$args"))
			if !ok {
				return nil
			}
		}

		if !okFn {
			return nil
		}

		return &Custom{node: at, Function: fn, Args: callArgs}

	case "$foreach":
		if f := p.forEach(val, path); f != nil {
			return f
		}

		return nil

	default:
		p.errorf("unknown_keyword", path, "unknown keyword %s", key)
		return nil
	}
}

func (p *parser) exprList(items []*yaml.Node, path string) []Expr {
	out := make([]Expr, 0, len(items))
	valid := true

	for i, item := range items {
		e := p.expr(item, indexPath(path, i))
		if e == nil {
			valid = false
			continue
		}

		out = append(out, e)
	}

	if !valid {
		return nil
	}

	return out
}

func (p *parser) namedArgs(n *yaml.Node, path string) ([]Arg, bool) {
	ents, ok := p.entries(n, path)
	if !ok {
		return nil, false
	}

	out := make([]Arg, 0, len(ents))
	valid := true

	for _, e := range ents {
		v := p.expr(e.value, joinPath(path, e.key))
		if v == nil {
			valid = false
			continue
		}

		out = append(out, Arg{Name: e.key, Value: v})
	}

	return out, valid
}

func (p *parser) concat(val *yaml.Node, at node) Expr {
	args, ok := p.kwargs(val, at.path, []string{"$values"}, "$separator", "$include_nulls", "$null_sentinel")
	if !ok {
		return nil
	}

	c := &Concat{node: at, Separator: DefaultSeparator, NullSentinel: DefaultNullSentinel}

	if n, ok := args["$separator"]; ok {
		// An empty separator is legal and must survive YAML's null handling.
		if n.Kind == yaml.ScalarNode && !isNull(n) {
			c.Separator = n.Value
		} else if isNull(n) {
			c.Separator = ""
		}
	}

	if n, ok := args["$include_nulls"]; ok {
		c.IncludeNulls, _ = p.boolean(n, joinPath(at.path, "$include_nulls"))
	}

	if n, ok := args["$null_sentinel"]; ok {
		c.NullSentinel, _ = p.scalar(n, joinPath(at.path, "$null_sentinel"))
	}

	items, ok := p.sequence(args["$values"], joinPath(at.path, "$values"))
	if !ok {
		return nil
	}

	c.Values = p.exprList(items, joinPath(at.path, "$values"))
	if c.Values == nil {
		return nil
	}

	return c
}

// rawBranch is a $conditional arm before its $then is interpreted.
type rawBranch struct {
	cond    *yaml.Node
	then    *yaml.Node
	path    string
	condKey string
}

// branches splits a $conditional sequence into $if/$else_if arms and an
// optional $else node.
func (p *parser) branches(val *yaml.Node, path string) ([]rawBranch, *yaml.Node, string, bool) {
	items, ok := p.sequence(val, path)
	if !ok {
		return nil, nil, "", false
	}

	if len(items) == 0 {
		p.errorf("empty_conditional", path, "$conditional needs at least one $if branch")
		return nil, nil, "", false
	}

	var (
		out      []rawBranch
		elseNode *yaml.Node
		elsePath string
	)

	valid := true

	for i, item := range items {
		ip := indexPath(path, i)

		ents, ok := p.entries(item, ip)
		if !ok {
			valid = false
			continue
		}

		keys := make([]string, len(ents))
		byKey := make(map[string]*yaml.Node, len(ents))

		for j, e := range ents {
			keys[j] = e.key
			byKey[e.key] = e.value
		}

		slices.Sort(keys)

		switch {
		case i == 0 && slices.Equal(keys, []string{"$if", "$then"}):
			out = append(out, rawBranch{cond: byKey["$if"], then: byKey["$then"], path: ip, condKey: "$if"})
		case i > 0 && slices.Equal(keys, []string{"$else_if", "$then"}):
			out = append(out, rawBranch{cond: byKey["$else_if"], then: byKey["$then"], path: ip, condKey: "$else_if"})
		case i > 0 && i == len(items)-1 && slices.Equal(keys, []string{"$else"}):
			elseNode, elsePath = byKey["$else"], joinPath(ip, "$else")
		default:
			p.errorf("invalid_branch", ip,
				"expected {$if, $then} first, then {$else_if, $then}, and an optional final {$else}")

			valid = false
		}
	}

	return out, elseNode, elsePath, valid
}

func (p *parser) conditional(val *yaml.Node, at node) Expr {
	arms, elseNode, elsePath, ok := p.branches(val, at.path)
	if !ok {
		return nil
	}

	c := &Conditional{node: at}
	valid := true

	for _, arm := range arms {
		cond := p.expr(arm.cond, joinPath(arm.path, arm.condKey))
		then := p.expr(arm.then, joinPath(arm.path, "$then"))

		if cond == nil || then == nil {
			valid = false
			continue
		}

		c.Branches = append(c.Branches, Branch{Cond: cond, Then: then})
	}

	if elseNode != nil {
		c.Else = p.expr(elseNode, elsePath)
		valid = valid && c.Else != nil
	}

	if !valid {
		return nil
	}

	return c
}

func (p *parser) membership(key string, val *yaml.Node, at node) Expr {
	args, ok := p.kwargs(val, at.path, []string{"$value", "$options"})
	if !ok {
		return nil
	}

	op := TestIn
	if key == "$not_in" {
		op = TestNotIn
	}

	tested := p.expr(args["$value"], joinPath(at.path, "$value"))

	optPath := joinPath(at.path, "$options")

	items, ok := p.sequence(args["$options"], optPath)
	if !ok || tested == nil {
		return nil
	}

	options := make([]value.Value, 0, len(items))
	valid := true

	for i, item := range items {
		e := p.expr(item, indexPath(optPath, i))
		if e == nil {
			valid = false
			continue
		}

		lit, isLit := e.(*Literal)
		if !isLit {
			p.errorf("non_literal_option", indexPath(optPath, i), "%s options must be $literal values", key)
			valid = false

			continue
		}

		options = append(options, lit.Value)
	}

	if !valid {
		return nil
	}

	return &BoolTest{node: at, Op: op, Operands: []Expr{tested}, Options: options}
}

func (p *parser) enumMapping(val *yaml.Node, at node) Expr {
	args, ok := p.kwargs(val, at.path, []string{"$raw_text"},
		"$mappings", "$ignore", "$map_null_to", "$custom_parser", "$parser_args")
	if !ok {
		return nil
	}

	em := &EnumMapping{node: at}
	valid := true

	em.RawText = p.expr(args["$raw_text"], joinPath(at.path, "$raw_text"))
	valid = valid && em.RawText != nil

	var entries []enummap.Entry

	if n, ok := args["$mappings"]; ok {
		mp := joinPath(at.path, "$mappings")

		ents, ok := p.entries(n, mp)
		valid = valid && ok

		for _, e := range ents {
			raw, ok := p.scalars(e.value, joinPath(mp, e.key))
			if !ok {
				valid = false
				continue
			}

			entries = append(entries, enummap.Entry{Member: e.key, Raw: raw})
		}
	}

	var ignore []string

	if n, ok := args["$ignore"]; ok {
		ignore, ok = p.scalars(n, joinPath(at.path, "$ignore"))
		valid = valid && ok
	}

	if n, ok := args["$map_null_to"]; ok {
		em.NullMember, ok = p.scalar(n, joinPath(at.path, "$map_null_to"))
		valid = valid && ok
	}

	if n, ok := args["$custom_parser"]; ok {
		em.Parser, ok = p.scalar(n, joinPath(at.path, "$custom_parser"))
		valid = valid && ok
	}

	if n, ok := args["$parser_args"]; ok {
		em.ParserArgs, ok = p.namedArgs(n, joinPath(at.path, "$parser_args"))
		valid = valid && ok
	}

	if !valid {
		return nil
	}

	em.Table, em.duplicates = enummap.NewTable(entries, ignore)

	return em
}

func (p *parser) forEach(val *yaml.Node, path string) *ForEach {
	args, ok := p.kwargs(val, path, []string{"$iterable", "$result"})
	if !ok {
		return nil
	}

	iterable := p.expr(args["$iterable"], joinPath(path, "$iterable"))

	rp := joinPath(path, "$result")

	var result Output

	switch n := args["$result"]; {
	case isEntityNode(n):
		if e := p.entity(n, rp); e != nil {
			result = e
		}
	case isConditionalNode(n):
		if c := p.condEntity(n, rp); c != nil {
			result = c
		}
	default:
		p.errorf("invalid_foreach_result", rp, "$result must be an entity constructor")
	}

	if iterable == nil || result == nil {
		return nil
	}

	return &ForEach{node: node{path}, Iterable: iterable, Result: result}
}

func isConditionalNode(n *yaml.Node) bool {
	key, _, ok := singleKey(n)
	return ok && key == "$conditional"
}

func isForEachNode(n *yaml.Node) bool {
	key, _, ok := singleKey(n)
	return ok && key == "$foreach"
}

// yieldsEntities reports whether any arm of a $conditional produces an
// entity, which makes it an output node rather than a value expression.
func yieldsEntities(n *yaml.Node) bool {
	_, val, _ := singleKey(n)
	if val == nil || val.Kind != yaml.SequenceNode {
		return false
	}

	for _, item := range val.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode {
			continue
		}

		for i := 0; i+1 < len(item.Content); i += 2 {
			k := item.Content[i].Value
			v := resolve(item.Content[i+1])

			if (k == "$then" || k == "$else") && (isEntityNode(v) || isConditionalNode(v) && yieldsEntities(v)) {
				return true
			}
		}
	}

	return false
}

// entity parses a single-key mapping Type: {fields...}.
func (p *parser) entity(n *yaml.Node, path string) *EntityNode {
	typ, body, ok := singleKey(resolve(n))
	if !ok || isKeyword(typ) {
		p.errorf("expected_entity", path, "expected an entity constructor like `Person: {...}`")
		return nil
	}

	ep := joinPath(path, typ)

	ents, ok := p.entries(body, ep)
	if !ok {
		return nil
	}

	e := &EntityNode{node: node{ep}, Type: typ}
	valid := true

	for _, f := range ents {
		fp := joinPath(ep, f.key)
		if isKeyword(f.key) {
			p.errorf("invalid_field_name", fp, "field names cannot start with $")
			valid = false

			continue
		}

		out := p.fieldValue(f.value, fp)
		if out == nil {
			valid = false
			continue
		}

		e.Fields = append(e.Fields, Field{Name: f.key, Value: out})
	}

	if !valid {
		return nil
	}

	return e
}

func (p *parser) fieldValue(n *yaml.Node, path string) Output {
	n = resolve(n)

	switch {
	case n != nil && n.Kind == yaml.SequenceNode:
		return p.list(n, path)
	case n != nil && isEntityNode(n):
		if e := p.entity(n, path); e != nil {
			return e
		}

		return nil
	case n != nil && isConditionalNode(n) && yieldsEntities(n):
		if c := p.condEntity(n, path); c != nil {
			return c
		}

		return nil
	}

	e := p.expr(n, path)
	if e == nil {
		return nil
	}

	return &ScalarField{node: node{path}, Expr: e}
}

func (p *parser) list(n *yaml.Node, path string) Output {
	l := &ListField{node: node{path}}
	valid := true

	for i, item := range n.Content {
		item = resolve(item)
		ip := indexPath(path, i)

		var out Output

		switch {
		case isEntityNode(item):
			if e := p.entity(item, ip); e != nil {
				out = e
			}
		case isForEachNode(item):
			_, val, _ := singleKey(item)
			if f := p.forEach(val, joinPath(ip, "$foreach")); f != nil {
				out = f
			}
		case isConditionalNode(item):
			if c := p.condEntity(item, ip); c != nil {
				out = c
			}
		default:
			p.errorf("invalid_list_item", ip, "list items must be entities, $foreach or $conditional")
		}

		if out == nil {
			valid = false
			continue
		}

		l.Items = append(l.Items, out)
	}

	if !valid {
		return nil
	}

	return l
}

// condEntity parses a $conditional whose branches yield entities.
func (p *parser) condEntity(n *yaml.Node, path string) *CondEntity {
	_, val, _ := singleKey(n)
	path = joinPath(path, "$conditional")

	arms, elseNode, elsePath, ok := p.branches(val, path)
	if !ok {
		return nil
	}

	c := &CondEntity{node: node{path}}
	valid := true

	for _, arm := range arms {
		cond := p.expr(arm.cond, joinPath(arm.path, arm.condKey))
		then := p.entityOrCond(arm.then, joinPath(arm.path, "$then"))

		if cond == nil || then == nil {
			valid = false
			continue
		}

		c.Branches = append(c.Branches, OutputBranch{Cond: cond, Then: then})
	}

	if elseNode != nil {
		c.Else = p.entityOrCond(elseNode, elsePath)
		valid = valid && c.Else != nil
	}

	if !valid {
		return nil
	}

	return c
}

func (p *parser) entityOrCond(n *yaml.Node, path string) Output {
	n = resolve(n)

	switch {
	case n != nil && isEntityNode(n):
		if e := p.entity(n, path); e != nil {
			return e
		}
	case n != nil && isConditionalNode(n):
		if c := p.condEntity(n, path); c != nil {
			return c
		}
	default:
		p.errorf("expected_entity", path, "conditional entity branches must yield an entity constructor")
	}

	return nil
}

// variables parses the variables section: a sequence of single-key
// mappings, or one mapping, in declaration order.
func (p *parser) variables(n *yaml.Node, path string) []Variable {
	n = resolve(n)
	if n == nil || isNull(n) {
		return nil
	}

	var ents []entry

	switch n.Kind {
	case yaml.SequenceNode:
		for i, item := range n.Content {
			ip := indexPath(path, i)

			itemEnts, ok := p.entries(item, ip)
			if !ok {
				continue
			}

			if len(itemEnts) != 1 {
				p.errorf("invalid_variable", ip, "each variable entry must have exactly one name")
				continue
			}

			ents = append(ents, itemEnts[0])
		}
	case yaml.MappingNode:
		ents, _ = p.entries(n, path)
	default:
		p.errorf("invalid_variable", path, "variables must be a sequence or a mapping")
		return nil
	}

	out := make([]Variable, 0, len(ents))
	seen := make(map[string]struct{}, len(ents))

	for _, e := range ents {
		vp := joinPath(path, e.key)

		if isKeyword(e.key) {
			p.errorf("invalid_variable", vp, "variable names cannot start with $")
			continue
		}

		if _, dup := seen[e.key]; dup {
			p.errorf("duplicate_variable", vp, "variable %q is declared more than once", e.key)
			continue
		}

		seen[e.key] = struct{}{}

		if ex := p.expr(e.value, vp); ex != nil {
			out = append(out, Variable{Name: e.key, Expr: ex})
		}
	}

	return out
}
