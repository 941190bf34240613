package value

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindBool
	KindList
	KindJSON

	// KindTotal is the number of kinds defined.
	KindTotal = int(iota)
)

// IsScalar reports whether values of this kind may be stored on an entity field.
func (k Kind) IsScalar() bool {
	switch k {
	case KindNull, KindString, KindInt, KindBool, KindJSON:
		return true
	default:
		return false
	}
}
