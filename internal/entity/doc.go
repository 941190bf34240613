// Package entity holds the objects produced by the graph builder.
//
// An Entity has a type, scalar fields, one-to-one children (singles) and
// one-to-many children (lists). Entities form trees: children are owned by
// their parent and never shared. Merging across the rows of a group goes
// through an Index, an arena of root entities keyed by identity.
//
// Identity is the entity type plus the values of the configured id fields
// present on the entity. An entity with none of its id fields set is
// identified by its full canonical content, so only identical copies merge.
package entity
