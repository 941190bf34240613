package entity

import (
	"slices"

	"ingest-mapper/internal/value"
)

// Entity is one built output object.
type Entity struct {
	Type     string
	Fields   map[string]value.Value
	Singles  map[string]*Entity
	Children map[string][]*Entity

	// order keeps field, single and list names in construction order.
	order []string
}

// New creates an empty entity of type typ.
func New(typ string) *Entity {
	return &Entity{
		Type:     typ,
		Fields:   make(map[string]value.Value),
		Singles:  make(map[string]*Entity),
		Children: make(map[string][]*Entity),
	}
}

func (e *Entity) remember(name string) {
	if !slices.Contains(e.order, name) {
		e.order = append(e.order, name)
	}
}

// Set assigns a scalar field.
func (e *Entity) Set(name string, v value.Value) {
	e.remember(name)
	e.Fields[name] = v
}

// Field returns the scalar field name. Absent fields read as null.
func (e *Entity) Field(name string) value.Value {
	return e.Fields[name]
}

// SetSingle attaches a one-to-one child.
func (e *Entity) SetSingle(name string, child *Entity) {
	e.remember(name)
	e.Singles[name] = child
}

// DeclareList makes the list name present even when it stays empty.
func (e *Entity) DeclareList(name string) {
	e.remember(name)

	if _, ok := e.Children[name]; !ok {
		e.Children[name] = []*Entity{}
	}
}

// List returns the children of list name.
func (e *Entity) List(name string) []*Entity {
	return e.Children[name]
}

// Names returns all field, single and list names in construction order.
func (e *Entity) Names() []string {
	return slices.Clone(e.order)
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	out := New(e.Type)
	out.order = slices.Clone(e.order)

	for k, v := range e.Fields {
		out.Fields[k] = v
	}

	for k, c := range e.Singles {
		out.Singles[k] = c.Clone()
	}

	for k, list := range e.Children {
		cl := make([]*Entity, len(list))
		for i, c := range list {
			cl[i] = c.Clone()
		}

		out.Children[k] = cl
	}

	return out
}

// Map converts e into plain nested data: scalars as Go values, singles as
// maps, lists as slices of maps.
func (e *Entity) Map() map[string]any {
	out := make(map[string]any, len(e.order))

	for _, name := range e.order {
		if v, ok := e.Fields[name]; ok {
			out[name] = plain(v.Native())
			continue
		}

		if c, ok := e.Singles[name]; ok {
			out[name] = c.Map()
			continue
		}

		if list, ok := e.Children[name]; ok {
			items := make([]any, len(list))
			for i, c := range list {
				items[i] = c.Map()
			}

			out[name] = items
		}
	}

	return out
}
