package entity

import (
	"fmt"

	"ingest-mapper/internal/report"
	"ingest-mapper/internal/value"
)

// Merge folds src into dst, which must have the same identity.
//
// Scalar fields must agree: a null on either side takes the other value,
// two distinct non-null values fail with report.ErrConflictingFieldValue.
// Singles merge recursively. Lists are unioned by child identity in
// first-seen order, merging children that share an identity.
func Merge(dst, src *Entity, idFields []string) error {
	return merge(dst, src, idFields, dst.Type)
}

func merge(dst, src *Entity, idFields []string, path string) error {
	if dst.Type != src.Type {
		return report.At(path, fmt.Errorf("%w: cannot merge %s into %s",
			report.ErrConflictingFieldValue, src.Type, dst.Type))
	}

	for _, name := range src.order {
		fp := path + "." + name

		if v, ok := src.Fields[name]; ok {
			if err := mergeField(dst, name, v, fp); err != nil {
				return err
			}

			continue
		}

		if c, ok := src.Singles[name]; ok {
			if err := mergeSingle(dst, name, c, idFields, fp); err != nil {
				return err
			}

			continue
		}

		if list, ok := src.Children[name]; ok {
			dst.DeclareList(name)

			for _, c := range list {
				if err := attach(dst, name, c, idFields, fp); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func mergeField(dst *Entity, name string, v value.Value, path string) error {
	old, ok := dst.Fields[name]

	switch {
	case !ok || old.IsNull():
		dst.Set(name, v)
	case v.IsNull() || value.Equal(old, v):
	default:
		return report.At(path, fmt.Errorf("%w: %s vs %s", report.ErrConflictingFieldValue, old, v))
	}

	return nil
}

func mergeSingle(dst *Entity, name string, c *Entity, idFields []string, path string) error {
	old, ok := dst.Singles[name]
	if !ok {
		dst.SetSingle(name, c)
		return nil
	}

	if Key(old, idFields) != Key(c, idFields) && HasID(old, idFields) && HasID(c, idFields) {
		return report.At(path, fmt.Errorf("%w: %s vs %s",
			report.ErrConflictingFieldValue, Key(old, idFields), Key(c, idFields)))
	}

	return merge(old, c, idFields, path+"."+c.Type)
}

// Attach adds child to list name of e, merging it into an existing child
// with the same identity.
func Attach(e *Entity, name string, child *Entity, idFields []string) error {
	e.DeclareList(name)
	return attach(e, name, child, idFields, e.Type+"."+name)
}

func attach(e *Entity, name string, child *Entity, idFields []string, path string) error {
	key := Key(child, idFields)

	for _, c := range e.Children[name] {
		if c.Type == child.Type && Key(c, idFields) == key {
			return merge(c, child, idFields, path+"."+child.Type)
		}
	}

	e.Children[name] = append(e.Children[name], child)

	return nil
}
