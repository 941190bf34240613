package entity

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is the serialized form of one root entity of a group.
type Record struct {
	PrimaryKey string         `json:"primaryKey" msgpack:"primaryKey"`
	Type       string         `json:"type" msgpack:"type"`
	Entity     map[string]any `json:"entity" msgpack:"entity"`
}

// NewRecord flattens e, the root built for primary key key.
func NewRecord(key string, e *Entity) Record {
	return Record{PrimaryKey: key, Type: e.Type, Entity: e.Map()}
}

// Encoder writes records to a stream.
type Encoder interface {
	Encode(rec Record) error
}

// Format names an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported output encodings.
var Formats = []Format{FormatJSON, FormatMsgpack}

// NewEncoder returns an encoder for f writing to w.
func NewEncoder(f Format, w io.Writer) (Encoder, error) {
	switch f {
	case FormatJSON:
		return NewJSONEncoder(w), nil
	case FormatMsgpack:
		return NewMsgpackEncoder(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", f)
	}
}

// JSONEncoder writes one JSON document per line.
type JSONEncoder struct {
	enc *json.Encoder
}

// NewJSONEncoder creates a JSON lines encoder.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return &JSONEncoder{enc: enc}
}

func (e *JSONEncoder) Encode(rec Record) error {
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode JSON record: %w", err)
	}

	return nil
}

// MsgpackEncoder writes a stream of MessagePack records with sorted map keys.
type MsgpackEncoder struct {
	enc *msgpack.Encoder
}

// NewMsgpackEncoder creates a MessagePack stream encoder.
func NewMsgpackEncoder(w io.Writer) *MsgpackEncoder {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)

	return &MsgpackEncoder{enc: enc}
}

func (e *MsgpackEncoder) Encode(rec Record) error {
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode MessagePack record: %w", err)
	}

	return nil
}

// DecodeMsgpack reads one record written by MsgpackEncoder.
func DecodeMsgpack(dec *msgpack.Decoder) (Record, error) {
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode MessagePack record: %w", err)
	}

	return rec, nil
}
