package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
manifest_language: 1.0.0
input_columns: [ID, NAME]
primary_key: [ID]
output:
  Person:
    external_id: ID
    name: NAME
`

func write(t *testing.T, dir, name, data string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := write(t, dir, "good.yaml", manifest)
	bad := write(t, dir, "bad.yaml", `
manifest_language: 1.0.0
input_columns: [ID, NAME]
output:
  Person:
    external_id: ID
`)

	var out, errW bytes.Buffer
	require.NoError(t, run(&out, &errW, []string{"validate", good}))
	assert.Contains(t, out.String(), "good.yaml: ok")

	out.Reset()
	err := run(&out, &errW, []string{"validate", bad})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, out.String(), "column_not_covered")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	m := write(t, dir, "m.yaml", manifest)
	in := write(t, dir, "rows.csv", "ID,NAME\n1,Al\n2,Bo\n")

	var out, errW bytes.Buffer
	require.NoError(t, run(&out, &errW, []string{"run", m, in, "--log-level", "error"}))
	assert.Equal(t,
		`{"primaryKey":"1","type":"Person","entity":{"external_id":"1","name":"Al"}}`+"\n"+
			`{"primaryKey":"2","type":"Person","entity":{"external_id":"2","name":"Bo"}}`+"\n",
		out.String())
}

func TestRunCommand_BadFlag(t *testing.T) {
	dir := t.TempDir()
	m := write(t, dir, "m.yaml", manifest)

	var out, errW bytes.Buffer
	err := run(&out, &errW, []string{"run", m, "rows.csv", "-o", "yaml"})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid output format")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	m := write(t, dir, "m.yaml", manifest)

	var out, errW bytes.Buffer
	require.NoError(t, run(&out, &errW, []string{"inspect", m}))
	assert.Contains(t, out.String(), "Manifest")
	assert.Contains(t, out.String(), `"Person"`)
	assert.Contains(t, out.String(), `"external_id"`)
}
