// Package build turns the output tree of a manifest into entities.
//
// Build walks the tree depth-first for one row. Scalar fields are
// evaluated, nested entities become singles, list fields collect the
// entities of their items: plain constructors, conditional constructors
// (absent when no branch matches) and $foreach blocks (one result per
// element). Children of one list that share an identity are merged as they
// are attached.
//
// Fold merges each row of a primary-key group into an entity.Index, so a
// group yields one root per distinct root identity, normally exactly one.
package build
