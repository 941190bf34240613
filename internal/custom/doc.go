// Package custom holds the caller-supplied functions a manifest can call
// by name: general functions invoked through $custom and enum parsers
// invoked through $enum_mapping's $custom_parser.
//
// Registries are plain values handed to the evaluator; nothing is
// registered globally.
package custom
