package build

import (
	"errors"

	"ingest-mapper/internal/entity"
	"ingest-mapper/internal/eval"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
)

// Builder builds entities for the output tree of one manifest.
type Builder struct {
	ev       *eval.Evaluator
	output   *mapping.EntityNode
	idFields []string
}

// New creates a Builder over the manifest evaluated by ev.
func New(ev *eval.Evaluator) *Builder {
	m := ev.Manifest()

	return &Builder{
		ev:       ev,
		output:   m.Output,
		idFields: m.IDFields,
	}
}

// Manifest returns the manifest being built.
func (b *Builder) Manifest() *mapping.Manifest { return b.ev.Manifest() }

// NewGraph returns an empty graph using the manifest identity fields.
func (b *Builder) NewGraph() *entity.Index {
	return entity.NewIndex(b.idFields)
}

// Build builds the root entity for row.
func (b *Builder) Build(row eval.Row) (*entity.Entity, error) {
	return b.entity(b.ev.NewScope(row), b.output)
}

// Fold builds row and merges its root into the single root of g.
func (b *Builder) Fold(g *entity.Index, row eval.Row) error {
	root, err := b.Build(row)
	if err != nil {
		return err
	}

	return rooted(g.Fold(root))
}

// rooted prefixes the entity path of a merge error so it reads like the
// manifest paths reported by evaluation.
func rooted(err error) error {
	var re *report.RowError
	if errors.As(err, &re) && re.FieldPath != "" {
		re.FieldPath = "output." + re.FieldPath
	}

	return err
}

// BuildGroup folds rows, which share one primary key, into a fresh graph.
func (b *Builder) BuildGroup(rows []eval.Row) (*entity.Index, error) {
	g := b.NewGraph()

	for _, row := range rows {
		if err := b.Fold(g, row); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (b *Builder) entity(s *eval.Scope, n *mapping.EntityNode) (*entity.Entity, error) {
	e := entity.New(n.Type)

	for _, f := range n.Fields {
		if err := b.field(s, e, f); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (b *Builder) field(s *eval.Scope, e *entity.Entity, f mapping.Field) error {
	switch out := f.Value.(type) {
	case *mapping.ScalarField:
		v, err := s.Scalar(out.Expr)
		if err != nil {
			return err
		}

		e.Set(f.Name, v)

	case *mapping.EntityNode:
		child, err := b.entity(s, out)
		if err != nil {
			return err
		}

		e.SetSingle(f.Name, child)

	case *mapping.CondEntity:
		child, err := b.conditional(s, out)
		if err != nil {
			return err
		}

		if child != nil {
			e.SetSingle(f.Name, child)
		}

	case *mapping.ListField:
		e.DeclareList(f.Name)

		for _, item := range out.Items {
			err := b.items(s, item, func(child *entity.Entity) error {
				return rooted(entity.Attach(e, f.Name, child, b.idFields))
			})
			if err != nil {
				return err
			}
		}

	default:
		return report.At(f.Value.Path(), errors.New("unsupported output node"))
	}

	return nil
}

// items builds the entities produced by one list item and hands each to
// add, in order.
func (b *Builder) items(s *eval.Scope, item mapping.Output, add func(*entity.Entity) error) error {
	switch n := item.(type) {
	case *mapping.EntityNode:
		child, err := b.entity(s, n)
		if err != nil {
			return err
		}

		return add(child)

	case *mapping.CondEntity:
		child, err := b.conditional(s, n)
		if err != nil || child == nil {
			return err
		}

		return add(child)

	case *mapping.ForEach:
		list, err := s.List(n.Iterable)
		if err != nil {
			return err
		}

		for elem, err := range list.Items() {
			if err != nil {
				return report.At(n.Iterable.Path(), err)
			}

			if err := b.items(s.Bind(elem), n.Result, add); err != nil {
				return err
			}
		}

		return nil

	default:
		return report.At(item.Path(), errors.New("unsupported list item"))
	}
}

// conditional returns the entity of the first matching branch, or nil when
// nothing matches and there is no else.
func (b *Builder) conditional(s *eval.Scope, n *mapping.CondEntity) (*entity.Entity, error) {
	for _, br := range n.Branches {
		ok, err := s.Cond(br.Cond)
		if err != nil {
			return nil, err
		}

		if ok {
			return b.branch(s, br.Then)
		}
	}

	if n.Else != nil {
		return b.branch(s, n.Else)
	}

	return nil, nil
}

// branch builds a branch target, which is an entity or another
// conditional entity.
func (b *Builder) branch(s *eval.Scope, o mapping.Output) (*entity.Entity, error) {
	switch n := o.(type) {
	case *mapping.EntityNode:
		return b.entity(s, n)
	case *mapping.CondEntity:
		return b.conditional(s, n)
	default:
		return nil, report.At(o.Path(), errors.New("conditional branch must yield an entity"))
	}
}
