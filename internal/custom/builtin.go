package custom

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ingest-mapper/internal/value"
)

// Date layouts accepted by date.normalize, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"20060102",
	"02-Jan-2006",
}

// RegisterBuiltins adds the state-independent helpers every run gets:
//
//	str.upper       value -> upper-cased text
//	str.trim        value -> text without surrounding whitespace
//	int.parse       value -> integer
//	date.normalize  value [, layout] -> YYYY-MM-DD
//
// All of them return null for a null value argument.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Func{
		"str.upper":      strUpper,
		"str.trim":       strTrim,
		"int.parse":      intParse,
		"date.normalize": dateNormalize,
	}

	for name, fn := range builtins {
		if err := r.RegisterFunc(name, fn); err != nil {
			return err
		}
	}

	return nil
}

func strUpper(args Args) (value.Value, error) {
	if args["value"].IsNull() {
		return value.Null(), nil
	}

	return value.String(strings.ToUpper(args.Text("value"))), nil
}

func strTrim(args Args) (value.Value, error) {
	if args["value"].IsNull() {
		return value.Null(), nil
	}

	return value.String(strings.TrimSpace(args.Text("value"))), nil
}

func intParse(args Args) (value.Value, error) {
	v := args["value"]
	if v.IsNull() {
		return value.Null(), nil
	}

	if n, ok := v.IntVal(); ok {
		return value.Int(n), nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(v.Text()), 10, 64)
	if err != nil {
		return value.Null(), fmt.Errorf("not an integer: %q", v.Text())
	}

	return value.Int(n), nil
}

func dateNormalize(args Args) (value.Value, error) {
	if args["value"].IsNull() {
		return value.Null(), nil
	}

	raw := strings.TrimSpace(args.Text("value"))

	layouts := dateLayouts
	if layout := args.Text("layout"); layout != "" {
		layouts = []string{layout}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return value.String(t.Format(time.DateOnly)), nil
		}
	}

	return value.Null(), fmt.Errorf("unrecognized date %q", raw)
}
