package entity

import (
	"slices"
)

// Index is the arena of root entities for one group, keyed by identity.
type Index struct {
	idFields []string
	byKey    map[string]*Entity
	order    []string
}

// NewIndex creates an empty index identifying entities by idFields.
func NewIndex(idFields []string) *Index {
	return &Index{
		idFields: slices.Clone(idFields),
		byKey:    make(map[string]*Entity),
	}
}

// Put adds e, merging it into the root with the same identity.
func (x *Index) Put(e *Entity) error {
	key := Key(e, x.idFields)

	if old, ok := x.byKey[key]; ok {
		return Merge(old, e, x.idFields)
	}

	x.byKey[key] = e
	x.order = append(x.order, key)

	return nil
}

// Fold merges e into the first root, creating it when the index is empty.
// All rows of one primary-key group fold into a single root, so differing
// root ids or scalars fail with report.ErrConflictingFieldValue.
func (x *Index) Fold(e *Entity) error {
	if len(x.order) == 0 {
		return x.Put(e)
	}

	return Merge(x.byKey[x.order[0]], e, x.idFields)
}

// Get returns the root with identity key.
func (x *Index) Get(key string) (*Entity, bool) {
	e, ok := x.byKey[key]
	return e, ok
}

// Keys returns root identities in first-seen order.
func (x *Index) Keys() []string {
	return slices.Clone(x.order)
}

// Roots returns the root entities in first-seen order.
func (x *Index) Roots() []*Entity {
	out := make([]*Entity, len(x.order))
	for i, k := range x.order {
		out[i] = x.byKey[k]
	}

	return out
}

// Len returns the number of roots.
func (x *Index) Len() int { return len(x.order) }

// IDFields returns the fields identity is computed from.
func (x *Index) IDFields() []string { return slices.Clone(x.idFields) }
