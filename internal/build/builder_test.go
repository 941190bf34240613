package build

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingest-mapper/internal/eval"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
)

func newBuilder(t *testing.T, doc string) *Builder {
	t.Helper()

	m, err := mapping.Parse([]byte(doc))
	require.NoError(t, err)

	ev, err := eval.New(m)
	require.NoError(t, err)

	return New(ev)
}

const sentenceDoc = `
manifest_language: 1.0.0
input_columns: [ID, NAME, EXIT]
primary_key: [ID]
output:
  Sentence:
    external_id: ID
    charges:
      - Charge:
          description: NAME
    status:
      $enum_mapping:
        $raw_text: EXIT
        $mappings:
          COMPLETED: ["40"]
`

func TestBuild_EndToEnd(t *testing.T) {
	b := newBuilder(t, sentenceDoc)

	root, err := b.Build(eval.Row{"ID": "1", "NAME": "Al", "EXIT": "40"})
	require.NoError(t, err)

	want := map[string]any{
		"external_id": "1",
		"charges":     []any{map[string]any{"description": "Al"}},
		"status":      "COMPLETED",
	}

	if diff := cmp.Diff(want, root.Map()); diff != "" {
		t.Errorf("entity mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Sentence", root.Type)

	root, err = b.Build(eval.Row{"ID": "1", "NAME": "Al", "EXIT": "99"})
	require.Error(t, err)
	assert.Nil(t, root)
	assert.ErrorIs(t, err, report.ErrUnmappedEnumValue)

	var re *report.RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "output.Sentence.status.$enum_mapping", re.FieldPath)
}

func TestBuild_ForEachSplitJSON(t *testing.T) {
	b := newBuilder(t, `
manifest_language: 1.0.0
input_columns: [ID, ITEMS]
output:
  Person:
    external_id: ID
    items:
      - $foreach:
          $iterable:
            $split_json: ITEMS
          $result:
            Item:
              a:
                $json_extract:
                  $key: a
                  $json: $iter_item
`)

	root, err := b.Build(eval.Row{"ID": "p", "ITEMS": `[{"a":1},{"a":2}]`})
	require.NoError(t, err)

	want := []any{
		map[string]any{"a": int64(1)},
		map[string]any{"a": int64(2)},
	}

	if diff := cmp.Diff(want, root.Map()["items"]); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	// Empty and null arrays give an empty, present list.
	for _, raw := range []string{"[]", ""} {
		root, err = b.Build(eval.Row{"ID": "p", "ITEMS": raw})
		require.NoError(t, err)
		assert.Equal(t, []any{}, root.Map()["items"], "ITEMS=%q", raw)
	}

	_, err = b.Build(eval.Row{"ID": "p", "ITEMS": `[{"a":1}`})
	assert.ErrorIs(t, err, report.ErrMalformedJSON)
}

func TestBuild_ForEachDeduplicates(t *testing.T) {
	b := newBuilder(t, `
manifest_language: 1.0.0
input_columns: [ID, CODES]
output:
  Person:
    external_id: ID
    charges:
      - $foreach:
          $iterable:
            $split: {$value: CODES}
          $result:
            Charge:
              external_id: $iter_item
`)

	root, err := b.Build(eval.Row{"ID": "p", "CODES": "a,b,a,c"})
	require.NoError(t, err)

	var got []string
	for _, c := range root.List("charges") {
		got = append(got, c.Field("external_id").Text())
	}

	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestBuild_ConditionalEntity(t *testing.T) {
	b := newBuilder(t, `
manifest_language: 1.0.0
input_columns: [ID, CITY, START, KIND]
output:
  Person:
    external_id: ID
    address:
      $conditional:
        - $if:
            $not_null: CITY
          $then:
            Address:
              city: CITY
    periods:
      - $conditional:
          - $if:
              $equal: [KIND, $literal("I")]
            $then:
              Incarceration:
                start: START
          - $else_if:
              $equal: [KIND, $literal("S")]
            $then:
              Supervision:
                start: START
`)

	root, err := b.Build(eval.Row{"ID": "1", "CITY": "X", "START": "2020", "KIND": "S"})
	require.NoError(t, err)

	want := map[string]any{
		"external_id": "1",
		"address":     map[string]any{"city": "X"},
		"periods":     []any{map[string]any{"start": "2020"}},
	}
	if diff := cmp.Diff(want, root.Map()); diff != "" {
		t.Errorf("entity mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Supervision", root.List("periods")[0].Type)

	// No branch matches: the entities are absent, not null.
	root, err = b.Build(eval.Row{"ID": "1", "START": "2020", "KIND": "Q"})
	require.NoError(t, err)

	want = map[string]any{
		"external_id": "1",
		"periods":     []any{},
	}
	if diff := cmp.Diff(want, root.Map()); diff != "" {
		t.Errorf("entity mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGroup_Merge(t *testing.T) {
	b := newBuilder(t, `
manifest_language: 1.0.0
input_columns: [ID, X, CHARGE]
primary_key: [ID]
output:
  Sentence:
    external_id: ID
    x: X
    charges:
      - Charge:
          external_id: CHARGE
`)

	t.Run("rows fold into one root", func(t *testing.T) {
		g, err := b.BuildGroup([]eval.Row{
			{"ID": "1", "X": "same", "CHARGE": "c1"},
			{"ID": "1", "X": "same", "CHARGE": "c2"},
			{"ID": "1", "CHARGE": "c1"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, g.Len())

		want := map[string]any{
			"external_id": "1",
			"x":           "same",
			"charges": []any{
				map[string]any{"external_id": "c1"},
				map[string]any{"external_id": "c2"},
			},
		}
		if diff := cmp.Diff(want, g.Roots()[0].Map()); diff != "" {
			t.Errorf("graph mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("conflicting scalar", func(t *testing.T) {
		_, err := b.BuildGroup([]eval.Row{
			{"ID": "1", "X": "a", "CHARGE": "c1"},
			{"ID": "1", "X": "b", "CHARGE": "c1"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, report.ErrConflictingFieldValue)

		var re *report.RowError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "output.Sentence.x", re.FieldPath)
	})

	t.Run("differing root ids conflict", func(t *testing.T) {
		g := b.NewGraph()
		require.NoError(t, b.Fold(g, eval.Row{"ID": "1", "CHARGE": "c1"}))

		err := b.Fold(g, eval.Row{"ID": "2", "CHARGE": "c1"})
		require.ErrorIs(t, err, report.ErrConflictingFieldValue)

		var re *report.RowError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "output.Sentence.external_id", re.FieldPath)
		assert.Equal(t, 1, g.Len())
	})
}

func TestBuildGroup_RootWithoutID(t *testing.T) {
	b := newBuilder(t, `
manifest_language: 1.0.0
input_columns: [PID, EXIT, CHARGE]
unused_columns: [PID]
primary_key: [PID]
output:
  Sentence:
    status:
      $enum_mapping:
        $raw_text: EXIT
        $mappings:
          COMPLETED: ["40"]
          REVOKED: ["50"]
    charges:
      - Charge:
          external_id: CHARGE
`)

	g, err := b.BuildGroup([]eval.Row{
		{"PID": "1", "EXIT": "40", "CHARGE": "c1"},
		{"PID": "1", "EXIT": "40", "CHARGE": "c2"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())

	want := map[string]any{
		"status": "COMPLETED",
		"charges": []any{
			map[string]any{"external_id": "c1"},
			map[string]any{"external_id": "c2"},
		},
	}
	if diff := cmp.Diff(want, g.Roots()[0].Map()); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}

	_, err = b.BuildGroup([]eval.Row{
		{"PID": "2", "EXIT": "40", "CHARGE": "c1"},
		{"PID": "2", "EXIT": "50", "CHARGE": "c1"},
	})
	require.ErrorIs(t, err, report.ErrConflictingFieldValue)

	var re *report.RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "output.Sentence.status", re.FieldPath)
}
