package entity

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"ingest-mapper/internal/report"
	"ingest-mapper/internal/value"
)

var ids = []string{"external_id"}

func sentence(id string, fields map[string]value.Value, charges ...*Entity) *Entity {
	e := New("Sentence")
	e.Set("external_id", value.String(id))

	for k, v := range fields {
		e.Set(k, v)
	}

	e.DeclareList("charges")
	for _, c := range charges {
		e.Children["charges"] = append(e.Children["charges"], c)
	}

	return e
}

func charge(id, desc string) *Entity {
	c := New("Charge")
	if id != "" {
		c.Set("external_id", value.String(id))
	}

	c.Set("description", value.String(desc))

	return c
}

func TestKey(t *testing.T) {
	a := charge("c1", "x")
	b := charge("c1", "y")
	assert.Equal(t, Key(a, ids), Key(b, ids))
	assert.Equal(t, `Charge{external_id="c1"}`, Key(a, ids))

	// Same id on a different type is a different entity.
	p := New("Person")
	p.Set("external_id", value.String("c1"))
	assert.NotEqual(t, Key(a, ids), Key(p, ids))

	// Without an id the content decides.
	assert.Equal(t, Key(charge("", "x"), ids), Key(charge("", "x"), ids))
	assert.NotEqual(t, Key(charge("", "x"), ids), Key(charge("", "y"), ids))
	assert.False(t, HasID(charge("", "x"), ids))

	// Null ids do not count.
	n := New("Charge")
	n.Set("external_id", value.Null())
	assert.False(t, HasID(n, ids))
}

func TestMerge(t *testing.T) {
	t.Run("equal values are a no-op", func(t *testing.T) {
		dst := sentence("1", map[string]value.Value{"status": value.String("A")})
		src := sentence("1", map[string]value.Value{"status": value.String("A")})

		require.NoError(t, Merge(dst, src, ids))
		assert.Equal(t, value.String("A"), dst.Field("status"))
	})

	t.Run("null takes the other side", func(t *testing.T) {
		dst := sentence("1", map[string]value.Value{"status": value.Null()})
		src := sentence("1", map[string]value.Value{"status": value.String("A"), "county": value.String("C")})

		require.NoError(t, Merge(dst, src, ids))
		assert.Equal(t, value.String("A"), dst.Field("status"))
		assert.Equal(t, value.String("C"), dst.Field("county"))

		require.NoError(t, Merge(dst, sentence("1", map[string]value.Value{"status": value.Null()}), ids))
		assert.Equal(t, value.String("A"), dst.Field("status"))
	})

	t.Run("conflict", func(t *testing.T) {
		dst := sentence("1", map[string]value.Value{"status": value.String("A")})
		src := sentence("1", map[string]value.Value{"status": value.String("B")})

		err := Merge(dst, src, ids)
		require.Error(t, err)
		assert.ErrorIs(t, err, report.ErrConflictingFieldValue)
		assert.Equal(t, report.KindConflictingField, report.KindOf(err))

		var re *report.RowError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "Sentence.status", re.FieldPath)
	})

	t.Run("lists union by identity", func(t *testing.T) {
		dst := sentence("1", nil, charge("c1", "x"), charge("c2", "y"))
		src := sentence("1", nil, charge("c2", "y"), charge("c3", "z"), charge("", "free"))

		require.NoError(t, Merge(dst, src, ids))

		var got []string
		for _, c := range dst.List("charges") {
			got = append(got, c.Field("description").Text())
		}

		assert.Equal(t, []string{"x", "y", "z", "free"}, got)
	})

	t.Run("child conflict", func(t *testing.T) {
		dst := sentence("1", nil, charge("c1", "x"))
		src := sentence("1", nil, charge("c1", "other"))

		err := Merge(dst, src, ids)
		require.ErrorIs(t, err, report.ErrConflictingFieldValue)

		var re *report.RowError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "Sentence.charges.Charge.description", re.FieldPath)
	})

	t.Run("singles", func(t *testing.T) {
		dst := sentence("1", nil)
		src := sentence("1", nil)

		addr := New("Address")
		addr.Set("city", value.String("A"))
		src.SetSingle("address", addr)

		require.NoError(t, Merge(dst, src, ids))
		require.NotNil(t, dst.Singles["address"])

		other := New("Address")
		other.Set("city", value.String("B"))

		again := sentence("1", nil)
		again.SetSingle("address", other)
		assert.ErrorIs(t, Merge(dst, again, ids), report.ErrConflictingFieldValue)
	})
}

func TestAttach(t *testing.T) {
	p := New("Person")

	require.NoError(t, Attach(p, "charges", charge("c1", "x"), ids))
	require.NoError(t, Attach(p, "charges", charge("c1", "x"), ids))
	require.NoError(t, Attach(p, "charges", charge("c2", "y"), ids))

	assert.Len(t, p.List("charges"), 2)
	assert.ErrorIs(t, Attach(p, "charges", charge("c2", "z"), ids), report.ErrConflictingFieldValue)
}

func TestIndex(t *testing.T) {
	x := NewIndex(ids)

	require.NoError(t, x.Put(sentence("1", nil, charge("c1", "x"))))
	require.NoError(t, x.Put(sentence("2", nil)))
	require.NoError(t, x.Put(sentence("1", nil, charge("c2", "y"))))

	assert.Equal(t, 2, x.Len())
	assert.Equal(t, []string{`Sentence{external_id="1"}`, `Sentence{external_id="2"}`}, x.Keys())

	root, ok := x.Get(`Sentence{external_id="1"}`)
	require.True(t, ok)
	assert.Len(t, root.List("charges"), 2)
	assert.Equal(t, root, x.Roots()[0])
}

func TestIndexFold(t *testing.T) {
	x := NewIndex(ids)

	noID := New("Sentence")
	noID.DeclareList("charges")
	noID.Children["charges"] = []*Entity{charge("c1", "x")}

	require.NoError(t, x.Fold(noID))
	require.NoError(t, x.Fold(sentence("1", nil, charge("c2", "y"))))
	require.Equal(t, 1, x.Len())

	root := x.Roots()[0]
	assert.Equal(t, value.String("1"), root.Field("external_id"))
	assert.Len(t, root.List("charges"), 2)

	err := x.Fold(sentence("2", nil))
	require.ErrorIs(t, err, report.ErrConflictingFieldValue)
	assert.Equal(t, 1, x.Len())
}

func TestMap(t *testing.T) {
	e := sentence("1", map[string]value.Value{"status": value.String("COMPLETED")}, charge("", "Al"))

	want := map[string]any{
		"external_id": "1",
		"status":      "COMPLETED",
		"charges": []any{
			map[string]any{"description": "Al"},
		},
	}

	if diff := cmp.Diff(want, e.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"external_id", "status", "charges"}, e.Names())

	clone := e.Clone()
	clone.Set("status", value.String("OTHER"))
	assert.Equal(t, value.String("COMPLETED"), e.Field("status"))
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer

	enc, err := NewEncoder(FormatJSON, &buf)
	require.NoError(t, err)

	e := sentence("1", map[string]value.Value{"n": value.Int(3)}, charge("", "<a&b>"))
	require.NoError(t, enc.Encode(NewRecord("1", e)))

	assert.Equal(t,
		`{"primaryKey":"1","type":"Sentence","entity":{"charges":[{"description":"<a&b>"}],"external_id":"1","n":3}}`+"\n",
		buf.String())
}

func TestMsgpackEncoder(t *testing.T) {
	var buf bytes.Buffer

	enc, err := NewEncoder(FormatMsgpack, &buf)
	require.NoError(t, err)

	e := sentence("1", nil, charge("", "Al"))
	require.NoError(t, enc.Encode(NewRecord("1", e)))
	require.NoError(t, enc.Encode(NewRecord("2", sentence("2", nil))))

	dec := msgpack.NewDecoder(&buf)

	first, err := DecodeMsgpack(dec)
	require.NoError(t, err)
	assert.Equal(t, "1", first.PrimaryKey)
	assert.Equal(t, "Sentence", first.Type)
	assert.Equal(t, "1", first.Entity["external_id"])

	second, err := DecodeMsgpack(dec)
	require.NoError(t, err)
	assert.Equal(t, "2", second.PrimaryKey)

	_, err = NewEncoder("xml", &buf)
	assert.ErrorContains(t, err, "xml")
}

func TestPlainJSONNumbers(t *testing.T) {
	e := New("Row")
	e.Set("doc", value.JSON(map[string]any{"a": json.Number("1"), "b": json.Number("1.5")}))

	got := e.Map()["doc"].(map[string]any)
	assert.Equal(t, int64(1), got["a"])
	assert.InDelta(t, 1.5, got["b"], 1e-9)
}
