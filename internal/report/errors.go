package report

import (
	"errors"
	"fmt"
)

// Load-time.
var (
	ErrLoadValidation     = errors.New("manifest validation failed")
	ErrUnsupportedVersion = errors.New("unsupported manifest language")
)

// Row evaluation.
var (
	ErrUnknownColumn         = errors.New("unknown column")
	ErrMalformedJSON         = errors.New("malformed json")
	ErrUnmappedEnumValue     = errors.New("unmapped enum value")
	ErrCustomFunction        = errors.New("custom function failed")
	ErrUnknownFunction       = errors.New("unknown custom function")
	ErrConflictingFieldValue = errors.New("conflicting field value")
	ErrTypeMismatch          = errors.New("type mismatch")
)

// Driver.
var (
	ErrCancelled  = errors.New("run cancelled")
	ErrRowSource  = errors.New("row source failed")
	ErrOutOfOrder = errors.New("primary key out of order")
)

// Error kinds as they appear in the report.
const (
	KindLoadTimeValidation = "LoadTimeValidationError"
	KindUnknownColumn      = "UnknownColumnError"
	KindMalformedJSON      = "MalformedJsonError"
	KindUnmappedEnumValue  = "UnmappedEnumValueError"
	KindCustomFunction     = "CustomFunctionError"
	KindConflictingField   = "ConflictingFieldValueError"
	KindTypeMismatch       = "TypeMismatchError"
	KindDriver             = "DriverError"
	KindRowEvaluation      = "RowEvaluationError"
)

var kinds = []struct {
	sentinel error
	kind     string
}{
	{ErrLoadValidation, KindLoadTimeValidation},
	{ErrUnsupportedVersion, KindLoadTimeValidation},
	{ErrUnknownColumn, KindUnknownColumn},
	{ErrMalformedJSON, KindMalformedJSON},
	{ErrUnmappedEnumValue, KindUnmappedEnumValue},
	{ErrCustomFunction, KindCustomFunction},
	{ErrUnknownFunction, KindCustomFunction},
	{ErrConflictingFieldValue, KindConflictingField},
	{ErrTypeMismatch, KindTypeMismatch},
	{ErrCancelled, KindDriver},
	{ErrRowSource, KindDriver},
	{ErrOutOfOrder, KindDriver},
}

// KindOf classifies err. Unclassified errors are row evaluation errors.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}

	return KindRowEvaluation
}

// IsDriverError reports whether err aborts the whole run.
func IsDriverError(err error) bool {
	return KindOf(err) == KindDriver
}

// RowError is a failure scoped to one primary-key group.
type RowError struct {
	// PrimaryKey of the rejected group; empty until the driver stamps it.
	PrimaryKey string
	// FieldPath locates the failing node in the manifest output tree.
	FieldPath string
	Err       error
}

func (e *RowError) Error() string {
	msg := e.Err.Error()
	if e.FieldPath != "" {
		msg = e.FieldPath + ": " + msg
	}

	if e.PrimaryKey != "" {
		msg = fmt.Sprintf("[%s] %s", e.PrimaryKey, msg)
	}

	return msg
}

func (e *RowError) Unwrap() error { return e.Err }

// Kind returns the report kind of the wrapped error.
func (e *RowError) Kind() string { return KindOf(e.Err) }

// At attaches a manifest path to err. An error that already carries a
// path keeps the innermost one.
func At(path string, err error) error {
	if err == nil {
		return nil
	}

	var re *RowError
	if errors.As(err, &re) {
		if re.FieldPath == "" {
			re.FieldPath = path
		}

		return err
	}

	return &RowError{FieldPath: path, Err: err}
}

// WithKey stamps the primary key onto err.
func WithKey(key string, err error) error {
	if err == nil {
		return nil
	}

	var re *RowError
	if errors.As(err, &re) {
		re.PrimaryKey = key
		return err
	}

	return &RowError{PrimaryKey: key, Err: err}
}
