// Package app wires configuration, logging, the manifest, a row source and
// the output encoders into one mapping run. The CLI in cmd/ingest-mapper
// is a thin layer over it.
package app
