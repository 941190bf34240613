package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"ingest-mapper/internal/entity"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
)

const personManifest = `
manifest_language: 1.0.0
input_columns: [ID, NAME, EXIT]
primary_key: [ID]
variables:
  - upper_name:
      $custom:
        $function: str.upper
        $args:
          value: NAME
output:
  Person:
    external_id: ID
    name: $variable(upper_name)
    status:
      $enum_mapping:
        $raw_text: EXIT
        $mappings:
          COMPLETED: ["40"]
`

const personRows = "ID,NAME,EXIT\n1,al,40\n1,al,\n2,bo,99\n3,cy,40\n"

// setup writes the manifest and input into a temp dir and returns a
// config pointing at them.
func setup(t *testing.T, manifest, rows, inputName string) Config {
	t.Helper()

	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.ManifestPath = filepath.Join(dir, "manifest.yaml")
	cfg.InputPath = filepath.Join(dir, inputName)
	cfg.ReportPath = filepath.Join(dir, "report.jsonl")
	cfg.LogLevel = "debug"

	require.NoError(t, os.WriteFile(cfg.ManifestPath, []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(cfg.InputPath, []byte(rows), 0o600))

	return cfg
}

func newApp(t *testing.T, cfg Config) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	c, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &SafeBuffer{}, &SafeBuffer{}

	a, err := New(c, out, logs, nil)
	require.NoError(t, err)

	return a, out, logs
}

func readReport(t *testing.T, path string) []report.Record {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var recs []report.Record

	for line := range strings.Lines(string(data)) {
		var rec report.Record
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		recs = append(recs, rec)
	}

	return recs
}

func TestRun_JSON(t *testing.T) {
	cfg := setup(t, personManifest, personRows, "people.csv")
	a, out, logs := newApp(t, cfg)

	summary, err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrGroupsRejected)

	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, 3, summary.Groups)
	assert.Equal(t, 1, summary.FailedGroups)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		`{"primaryKey":"1","type":"Person","entity":{"external_id":"1","name":"AL","status":"COMPLETED"}}`,
		`{"primaryKey":"3","type":"Person","entity":{"external_id":"3","name":"CY","status":"COMPLETED"}}`,
	}, lines)

	recs := readReport(t, cfg.ReportPath)
	require.Len(t, recs, 1)
	assert.Equal(t, "2", recs[0].PrimaryKey)
	assert.Equal(t, report.KindUnmappedEnumValue, recs[0].ErrorKind)

	assert.Contains(t, logs.String(), "Group failed")
	assert.Contains(t, logs.String(), "Run finished")
}

func TestRun_Msgpack(t *testing.T) {
	cfg := setup(t, personManifest, "ID,NAME,EXIT\n1,al,40\n", "people.csv")
	cfg.OutputFormat = string(entity.FormatMsgpack)
	a, out, _ := newApp(t, cfg)

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Records)

	rec, err := entity.DecodeMsgpack(msgpack.NewDecoder(bytes.NewReader(out.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, "1", rec.PrimaryKey)
	assert.Equal(t, "Person", rec.Type)
	assert.Equal(t, "AL", rec.Entity["name"])
	assert.Empty(t, readReport(t, cfg.ReportPath))
}

func TestRun_JSONLinesInput(t *testing.T) {
	cfg := setup(t, personManifest, `{"ID": 1, "NAME": "al", "EXIT": 40}`+"\n", "people.jsonl")
	a, out, _ := newApp(t, cfg)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"status":"COMPLETED"`)
}

func TestRun_FailFast(t *testing.T) {
	cfg := setup(t, personManifest, personRows, "people.csv")
	cfg.FailFast = true
	a, out, _ := newApp(t, cfg)

	summary, err := a.Run(context.Background())
	require.ErrorIs(t, err, report.ErrUnmappedEnumValue)
	assert.Equal(t, 1, summary.Records)
	assert.Len(t, readReport(t, cfg.ReportPath), 1)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestRun_OutOfOrder(t *testing.T) {
	cfg := setup(t, personManifest, "ID,NAME,EXIT\n1,a,40\n2,b,40\n1,c,40\n", "people.csv")
	a, _, _ := newApp(t, cfg)

	_, err := a.Run(context.Background())
	require.ErrorIs(t, err, report.ErrOutOfOrder)

	recs := readReport(t, cfg.ReportPath)
	require.Len(t, recs, 1)
	assert.Equal(t, report.KindDriver, recs[0].ErrorKind)
}

func TestRun_InvalidManifest(t *testing.T) {
	cfg := setup(t, `
manifest_language: 1.0.0
input_columns: [ID]
output:
  Person:
    external_id:
      $custom:
        $function: no.such.function
        $args:
          value: ID
`, "ID\n1\n", "people.csv")
	a, _, _ := newApp(t, cfg)

	_, err := a.Run(context.Background())
	require.ErrorIs(t, err, report.ErrLoadValidation)

	m, diags, err := a.Check()
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, []string{mapping.CodeUnknownFunction}, diags.Codes())
}

func TestCheck(t *testing.T) {
	cfg := setup(t, personManifest, "", "people.csv")
	a, _, _ := newApp(t, cfg)

	m, diags, err := a.Check()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.False(t, diags.HasErrors())
	assert.Equal(t, []string{"ID"}, m.PrimaryKey)

	cfg.ManifestPath = filepath.Join(t.TempDir(), "missing.yaml")
	a, _, _ = newApp(t, cfg)

	_, _, err = a.Check()
	assert.ErrorContains(t, err, "failed to read manifest")
}
