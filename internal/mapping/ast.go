package mapping

import (
	"ingest-mapper/internal/enummap"
	"ingest-mapper/internal/value"
)

//go:generate go tool stringer -type=ExprKind -trimprefix=Expr -output=exprkind_string.go

// ExprKind identifies an expression node variant.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprColumn
	ExprConcat
	ExprConditional
	ExprBoolTest
	ExprLogical
	ExprEnumMapping
	ExprJSONExtract
	ExprSplitJSON
	ExprSplit
	ExprCustom
	ExprVariable
	ExprIterItem
	ExprForEach

	// ExprTotal is the number of expression kinds defined.
	ExprTotal = int(iota)
)

// Expr is a value expression. The set of implementations is closed; every
// node embeds node and is listed in ExprKind.
type Expr interface {
	Kind() ExprKind
	// Path locates the node in the manifest.
	Path() string
	expr()
}

type node struct {
	path string
}

func (n node) Path() string { return n.path }

func (node) expr() {}

// Literal is a constant. A null Value is the $null literal.
type Literal struct {
	node
	Value value.Value
}

func (*Literal) Kind() ExprKind { return ExprLiteral }

// ColumnRef reads one input column.
type ColumnRef struct {
	node
	Column string
}

func (*ColumnRef) Kind() ExprKind { return ExprColumn }

// Default $concat settings.
const (
	DefaultSeparator    = "-"
	DefaultNullSentinel = "NONE"
)

// Concat joins the text of Values with Separator. Unless IncludeNulls is
// set, any null operand makes the whole result null.
type Concat struct {
	node
	Values       []Expr
	Separator    string
	IncludeNulls bool
	NullSentinel string
}

func (*Concat) Kind() ExprKind { return ExprConcat }

// Branch is one $if/$else_if arm.
type Branch struct {
	Cond Expr
	Then Expr
}

// Conditional picks the first branch whose condition is true. Else may be nil.
type Conditional struct {
	node
	Branches []Branch
	Else     Expr
}

func (*Conditional) Kind() ExprKind { return ExprConditional }

// TestOp is the comparison performed by a BoolTest.
type TestOp int

const (
	TestIsNull TestOp = iota
	TestNotNull
	TestEqual
	TestIn
	TestNotIn
)

var testOpNames = [...]string{"$is_null", "$not_null", "$equal", "$in", "$not_in"}

func (op TestOp) String() string {
	if op < 0 || int(op) >= len(testOpNames) {
		return "$unknown_test"
	}

	return testOpNames[op]
}

// BoolTest is a null check, equality, or option-set membership. For $in
// and $not_in Operands holds the single tested value and Options the set.
type BoolTest struct {
	node
	Op       TestOp
	Operands []Expr
	Options  []value.Value
}

func (*BoolTest) Kind() ExprKind { return ExprBoolTest }

// LogicalOp combines boolean operands.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalNot
)

// Logical is $and, $or (short-circuit) or $not (single operand).
type Logical struct {
	node
	Op       LogicalOp
	Operands []Expr
}

func (*Logical) Kind() ExprKind { return ExprLogical }

// Arg is a named argument of a custom call.
type Arg struct {
	Name  string
	Value Expr
}

// EnumMapping translates RawText through Table, falling back to the
// enum parser named Parser when set.
type EnumMapping struct {
	node
	RawText    Expr
	Table      *enummap.Table
	NullMember string
	Parser     string
	ParserArgs []Arg

	duplicates []enummap.Duplicate
}

func (*EnumMapping) Kind() ExprKind { return ExprEnumMapping }

// JSONExtract reads Key from the JSON object produced by JSON.
type JSONExtract struct {
	node
	Key  string
	JSON Expr
}

func (*JSONExtract) Kind() ExprKind { return ExprJSONExtract }

// SplitJSON turns a JSON array into a list of its elements.
type SplitJSON struct {
	node
	JSON Expr
}

func (*SplitJSON) Kind() ExprKind { return ExprSplitJSON }

// Split turns delimited text into a list of strings.
type Split struct {
	node
	Value     Expr
	Separator string
}

func (*Split) Kind() ExprKind { return ExprSplit }

// Custom calls a registry function with evaluated named arguments.
type Custom struct {
	node
	Function string
	Args     []Arg
}

func (*Custom) Kind() ExprKind { return ExprCustom }

// VariableRef reads a manifest variable.
type VariableRef struct {
	node
	Name string
}

func (*VariableRef) Kind() ExprKind { return ExprVariable }

// IterItem is the element bound by the innermost enclosing $foreach.
type IterItem struct {
	node
}

func (*IterItem) Kind() ExprKind { return ExprIterItem }

// ForEach builds Result once per element of Iterable. It is both an
// expression (so misuse in scalar position is caught by shape checks) and
// a list item of the output tree.
type ForEach struct {
	node
	Iterable Expr
	Result   Output
}

func (*ForEach) Kind() ExprKind { return ExprForEach }

func (*ForEach) output() {}

// Children returns the direct sub-expressions of e, in evaluation order.
// ForEach results are output nodes and are not included.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Concat:
		return n.Values
	case *Conditional:
		out := make([]Expr, 0, 2*len(n.Branches)+1)
		for _, b := range n.Branches {
			out = append(out, b.Cond, b.Then)
		}

		if n.Else != nil {
			out = append(out, n.Else)
		}

		return out
	case *BoolTest:
		return n.Operands
	case *Logical:
		return n.Operands
	case *EnumMapping:
		return append([]Expr{n.RawText}, argExprs(n.ParserArgs)...)
	case *JSONExtract:
		return []Expr{n.JSON}
	case *SplitJSON:
		return []Expr{n.JSON}
	case *Split:
		return []Expr{n.Value}
	case *Custom:
		return argExprs(n.Args)
	case *ForEach:
		return []Expr{n.Iterable}
	default:
		return nil
	}
}

func argExprs(args []Arg) []Expr {
	out := make([]Expr, len(args))
	for i, a := range args {
		out[i] = a.Value
	}

	return out
}
