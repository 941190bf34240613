package mapping

import (
	"fmt"
	"slices"
	"strings"

	"ingest-mapper/internal/custom"
	"ingest-mapper/internal/diagnostic"
	"ingest-mapper/internal/match"
)

const maxSuggestions = 3

// Diagnostic codes reported by validation.
const (
	CodeUnsupportedLanguage    = "unsupported_manifest_language"
	CodeMissingLanguage        = "missing_manifest_language"
	CodeDuplicateColumn        = "duplicate_input_column"
	CodeUndeclaredUnused       = "undeclared_unused_column"
	CodeUndeclaredPrimaryKey   = "undeclared_primary_key_column"
	CodeUnknownColumn          = "unknown_column"
	CodeUnusedColumnReferenced = "unused_column_referenced"
	CodeColumnNotCovered       = "column_not_covered"
	CodeUnknownVariable        = "unknown_variable"
	CodeVariableCycle          = "variable_cycle"
	CodeUnusedVariable         = "unused_variable"
	CodeListInScalarContext    = "list_in_scalar_context"
	CodeScalarIterable         = "scalar_iterable"
	CodeMixedBranchShapes      = "mixed_branch_shapes"
	CodeForEachInExpression    = "foreach_in_expression"
	CodeIterItemOutsideForEach = "iter_item_outside_foreach"
	CodeIterItemInVariable     = "iter_item_in_variable"
	CodeAmbiguousEnumMapping   = "ambiguous_enum_mapping"
	CodeEmptyEnumMapping       = "empty_enum_mapping"
	CodeParserArgsWithoutParse = "parser_args_without_parser"
	CodeUnknownFunction        = "unknown_function"
	CodeUnknownEnumParser      = "unknown_enum_parser"
)

type shape int

const (
	shapeScalar shape = iota
	shapeList
)

// validator walks a parsed manifest once, collecting every problem.
type validator struct {
	m        *Manifest
	registry custom.Lookup
	diags    *diagnostic.Diagnostics

	columns  map[string]struct{}
	colNames []string
	unused   map[string]struct{}
	varExprs map[string]Expr
	varNames []string

	referenced map[string]struct{}
	varUses    map[string]int
	deps       map[string][]string
	shapes     map[string]shape
	visiting   map[string]bool

	// current is the variable being walked, empty inside output.
	current   string
	loopDepth int
}

// validate checks m in place and puts m.Variables in dependency order.
// Coverage and usage checks are skipped when parsing already failed, since
// a partially parsed tree would report columns and variables as unused.
func validate(m *Manifest, registry custom.Lookup, diags *diagnostic.Diagnostics) {
	parseFailed := diags.HasErrors()

	v := &validator{
		m:          m,
		registry:   registry,
		diags:      diags,
		columns:    make(map[string]struct{}, len(m.InputColumns)),
		unused:     make(map[string]struct{}, len(m.UnusedColumns)),
		varExprs:   make(map[string]Expr, len(m.Variables)),
		referenced: make(map[string]struct{}),
		varUses:    make(map[string]int),
		deps:       make(map[string][]string),
		shapes:     make(map[string]shape),
		visiting:   make(map[string]bool),
	}

	v.checkLanguage()
	v.checkColumns()

	for _, vr := range m.Variables {
		v.varExprs[vr.Name] = vr.Expr
		v.varNames = append(v.varNames, vr.Name)
	}

	for _, vr := range m.Variables {
		v.current = vr.Name
		v.walkExpr(vr.Expr)
	}

	v.current = ""

	if m.Output != nil {
		v.walkOutput(m.Output)
	}

	v.orderVariables()

	if parseFailed {
		return
	}

	v.checkCoverage()
	v.checkVariableUse()
}

func (v *validator) checkLanguage() {
	switch {
	case v.m.Language == "":
		v.diags.AddErrorf(CodeMissingLanguage, "manifest_language",
			"manifest_language is required; supported: %s", strings.Join(SupportedLanguages, ", "))
	case !slices.Contains(SupportedLanguages, v.m.Language):
		v.diags.AddErrorf(CodeUnsupportedLanguage, "manifest_language",
			"manifest_language %q is not supported; supported: %s",
			v.m.Language, strings.Join(SupportedLanguages, ", "))
	}
}

func (v *validator) checkColumns() {
	for i, c := range v.m.InputColumns {
		if _, dup := v.columns[c]; dup {
			v.diags.AddErrorf(CodeDuplicateColumn, indexPath("input_columns", i),
				"input column %q is declared more than once", c)

			continue
		}

		v.columns[c] = struct{}{}
		v.colNames = append(v.colNames, c)
	}

	for i, c := range v.m.UnusedColumns {
		if _, ok := v.columns[c]; !ok {
			v.diags.AddError(CodeUndeclaredUnused, indexPath("unused_columns", i),
				fmt.Sprintf("unused column %q is not an input column", c),
				match.Suggest(c, v.colNames, maxSuggestions)...)

			continue
		}

		v.unused[c] = struct{}{}
	}

	for i, c := range v.m.PrimaryKey {
		if _, ok := v.columns[c]; !ok {
			v.diags.AddError(CodeUndeclaredPrimaryKey, indexPath("primary_key", i),
				fmt.Sprintf("primary key column %q is not an input column", c),
				match.Suggest(c, v.colNames, maxSuggestions)...)
		}
	}
}

func (v *validator) walkOutput(o Output) {
	switch n := o.(type) {
	case *EntityNode:
		for _, f := range n.Fields {
			v.walkOutput(f.Value)
		}
	case *ScalarField:
		v.requireScalar(n.Expr)
		v.walkExpr(n.Expr)
	case *ListField:
		for _, item := range n.Items {
			v.walkOutput(item)
		}
	case *CondEntity:
		for _, b := range n.Branches {
			v.requireScalar(b.Cond)
			v.walkExpr(b.Cond)
			v.walkOutput(b.Then)
		}

		if n.Else != nil {
			v.walkOutput(n.Else)
		}
	case *ForEach:
		v.requireList(n.Iterable)
		v.walkExpr(n.Iterable)

		v.loopDepth++
		v.walkOutput(n.Result)
		v.loopDepth--
	}
}

func (v *validator) walkExpr(e Expr) {
	switch n := e.(type) {
	case *ColumnRef:
		v.useColumn(n)
	case *VariableRef:
		v.useVariable(n)
	case *IterItem:
		switch {
		case v.current != "":
			v.diags.AddErrorf(CodeIterItemInVariable, n.Path(),
				"$iter_item cannot be used in variable %q", v.current)
		case v.loopDepth == 0:
			v.diags.AddErrorf(CodeIterItemOutsideForEach, n.Path(),
				"$iter_item is only defined inside a $foreach $result")
		}
	case *ForEach:
		v.diags.AddErrorf(CodeForEachInExpression, n.Path(),
			"$foreach builds entities and may only appear as an item of a list field")
		v.walkOutput(n)

		return
	case *Conditional:
		v.checkBranchShapes(n)

		for _, b := range n.Branches {
			v.requireScalar(b.Cond)
			v.walkExpr(b.Cond)
			v.walkExpr(b.Then)
		}

		if n.Else != nil {
			v.walkExpr(n.Else)
		}

		return
	case *EnumMapping:
		v.checkEnum(n)
	case *Custom:
		v.checkFunction(n)
	}

	for _, c := range Children(e) {
		v.requireScalar(c)
		v.walkExpr(c)
	}
}

func (v *validator) useColumn(n *ColumnRef) {
	if _, ok := v.columns[n.Column]; !ok {
		v.diags.AddError(CodeUnknownColumn, n.Path(),
			fmt.Sprintf("column %q is not declared in input_columns", n.Column),
			match.Suggest(n.Column, v.colNames, maxSuggestions)...)

		return
	}

	v.referenced[n.Column] = struct{}{}
}

func (v *validator) useVariable(n *VariableRef) {
	if _, ok := v.varExprs[n.Name]; !ok {
		v.diags.AddError(CodeUnknownVariable, n.Path(),
			fmt.Sprintf("variable %q is not declared", n.Name),
			match.Suggest(n.Name, v.varNames, maxSuggestions)...)

		return
	}

	v.varUses[n.Name]++

	if v.current != "" && !slices.Contains(v.deps[v.current], n.Name) {
		v.deps[v.current] = append(v.deps[v.current], n.Name)
	}
}

func (v *validator) checkEnum(n *EnumMapping) {
	for _, d := range n.duplicates {
		v.diags.AddErrorf(CodeAmbiguousEnumMapping, joinPath(n.Path(), "$mappings"),
			"raw value %q is claimed by %s", d.Raw, strings.Join(d.Claims, ", "))
	}

	if n.Table.IsEmpty() && n.Parser == "" && n.NullMember == "" {
		v.diags.AddError(CodeEmptyEnumMapping, n.Path(),
			"$enum_mapping needs $mappings, $ignore or a $custom_parser")
	}

	if n.Parser == "" && len(n.ParserArgs) > 0 {
		v.diags.AddError(CodeParserArgsWithoutParse, joinPath(n.Path(), "$parser_args"),
			"$parser_args given without $custom_parser")
	}

	if n.Parser != "" && v.registry != nil && !v.registry.HasEnumParser(n.Parser) {
		var names []string
		if l, ok := v.registry.(interface{ ParserNames() []string }); ok {
			names = l.ParserNames()
		}

		v.diags.AddError(CodeUnknownEnumParser, joinPath(n.Path(), "$custom_parser"),
			fmt.Sprintf("enum parser %q is not registered", n.Parser),
			match.Suggest(n.Parser, names, maxSuggestions)...)
	}
}

func (v *validator) checkFunction(n *Custom) {
	if v.registry == nil || v.registry.HasFunc(n.Function) {
		return
	}

	var names []string
	if l, ok := v.registry.(interface{ FuncNames() []string }); ok {
		names = l.FuncNames()
	}

	v.diags.AddError(CodeUnknownFunction, joinPath(n.Path(), "$function"),
		fmt.Sprintf("custom function %q is not registered", n.Function),
		match.Suggest(n.Function, names, maxSuggestions)...)
}

// shapeOf reports whether e yields a list or a single value.
func (v *validator) shapeOf(e Expr) shape {
	switch n := e.(type) {
	case *SplitJSON, *Split, *ForEach:
		return shapeList
	case *Conditional:
		for _, b := range n.Branches {
			if v.shapeOf(b.Then) == shapeList {
				return shapeList
			}
		}

		if n.Else != nil && v.shapeOf(n.Else) == shapeList {
			return shapeList
		}

		return shapeScalar
	case *VariableRef:
		return v.variableShape(n.Name)
	default:
		return shapeScalar
	}
}

func (v *validator) variableShape(name string) shape {
	if s, ok := v.shapes[name]; ok {
		return s
	}

	e, ok := v.varExprs[name]
	if !ok || v.visiting[name] {
		return shapeScalar
	}

	v.visiting[name] = true
	s := v.shapeOf(e)
	delete(v.visiting, name)

	v.shapes[name] = s

	return s
}

// isNullLiteral fits either shape: a null iterable yields no items.
func isNullLiteral(e Expr) bool {
	l, ok := e.(*Literal)
	return ok && l.Value.IsNull()
}

func (v *validator) checkBranchShapes(n *Conditional) {
	arms := make([]Expr, 0, len(n.Branches)+1)
	for _, b := range n.Branches {
		arms = append(arms, b.Then)
	}

	if n.Else != nil {
		arms = append(arms, n.Else)
	}

	var lists, scalars int

	for _, a := range arms {
		switch {
		case isNullLiteral(a):
		case v.shapeOf(a) == shapeList:
			lists++
		default:
			scalars++
		}
	}

	if lists > 0 && scalars > 0 {
		v.diags.AddError(CodeMixedBranchShapes, n.Path(),
			"$conditional branches must all produce lists or all produce single values")
	}
}

func (v *validator) requireScalar(e Expr) {
	if _, isLoop := e.(*ForEach); isLoop {
		return
	}

	if v.shapeOf(e) == shapeList {
		v.diags.AddError(CodeListInScalarContext, e.Path(),
			"expression produces a list; lists can only feed a $foreach $iterable")
	}
}

func (v *validator) requireList(e Expr) {
	if v.shapeOf(e) != shapeList {
		v.diags.AddError(CodeScalarIterable, e.Path(),
			"$iterable must produce a list ($split_json, $split or a list-valued variable)")
	}
}

func (v *validator) checkCoverage() {
	for i, c := range v.m.InputColumns {
		_, used := v.referenced[c]
		_, unused := v.unused[c]

		switch {
		case used && unused:
			v.diags.AddErrorf(CodeUnusedColumnReferenced, indexPath("input_columns", i),
				"column %q is listed in unused_columns but referenced", c)
		case !used && !unused:
			v.diags.AddErrorf(CodeColumnNotCovered, indexPath("input_columns", i),
				"column %q is never referenced; reference it or list it in unused_columns", c)
		}
	}
}

func (v *validator) checkVariableUse() {
	for _, name := range v.varNames {
		if v.varUses[name] == 0 {
			v.diags.AddWarning(CodeUnusedVariable, joinPath("variables", name),
				fmt.Sprintf("variable %q is never referenced", name))
		}
	}
}

// orderVariables sorts m.Variables so each follows the variables it reads.
func (v *validator) orderVariables() {
	vars := v.m.Variables
	if len(vars) == 0 {
		return
	}

	pos := make(map[string]int, len(vars))
	for i, vr := range vars {
		pos[vr.Name] = i
	}

	order, stuck, err := topoSort(len(vars), func(i int) []int {
		var out []int
		for _, d := range v.deps[vars[i].Name] {
			out = append(out, pos[d])
		}

		return out
	})
	if err != nil && len(stuck) == 0 {
		// Out-of-range indices cannot happen: deps only hold declared names.
		return
	}

	if len(stuck) > 0 {
		names := make([]string, len(stuck))
		for i, idx := range stuck {
			names[i] = vars[idx].Name
		}

		v.diags.AddErrorf(CodeVariableCycle, "variables",
			"variables cannot be ordered, dependency cycle among: %s", strings.Join(names, ", "))

		order = append(order, stuck...)
	}

	sorted := make([]Variable, len(order))
	for i, idx := range order {
		sorted[i] = vars[idx]
	}

	v.m.Variables = sorted
}
