// Package value defines the runtime values produced by manifest
// expressions: null, strings, integers, booleans, lazy lists and
// structured JSON leaves.
package value
