package mapping

// Output is a node of the output tree: an entity constructor, a scalar
// field, a list of child entities, a conditional entity, or a $foreach.
type Output interface {
	Path() string
	output()
}

// EntityNode constructs one entity of Type.
type EntityNode struct {
	node
	Type   string
	Fields []Field
}

func (*EntityNode) output() {}

// Field returns the field named name.
func (e *EntityNode) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Field is one named slot of an entity.
type Field struct {
	Name  string
	Value Output
}

// ScalarField assigns the result of Expr to a field.
type ScalarField struct {
	node
	Expr Expr
}

func (*ScalarField) output() {}

// ListField is a one-to-many child list. Items are *EntityNode,
// *ForEach or *CondEntity.
type ListField struct {
	node
	Items []Output
}

func (*ListField) output() {}

// OutputBranch is one arm of a CondEntity.
type OutputBranch struct {
	Cond Expr
	Then Output
}

// CondEntity is a $conditional whose branches yield entities. When no
// branch matches and Else is nil the entity is absent.
type CondEntity struct {
	node
	Branches []OutputBranch
	Else     Output
}

func (*CondEntity) output() {}
