package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

// Codec encodes and decodes a whole mapping.
type Codec interface {
	Encode(w io.Writer, m *domain.Object) error
	Decode(r io.Reader) (*domain.Object, error)
}

// JSON is the snapshot codec.
type JSON struct {
	Indent Indent
}

// New creates a JSON codec with the given snapshot layout.
func New(indent Indent) *JSON {
	return &JSON{Indent: indent}
}

// Encode writes m to w in the configured layout.
func (c *JSON) Encode(w io.Writer, m *domain.Object) error {
	data, err := c.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("codec: write: %w", err)
	}
	return nil
}

// Marshal returns m in the configured layout.
func (c *JSON) Marshal(m *domain.Object) ([]byte, error) {
	e := &encodeState{indent: c.Indent}
	if err := e.object(m, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// Decode reads one JSON object from r. A top-level null member means the
// key is absent and is dropped, as a null record deletes in the log.
func (c *JSON) Decode(r io.Reader) (*domain.Object, error) {
	obj, err := decodeDocument(r)
	if err != nil {
		return nil, err
	}
	for _, key := range obj.Keys() {
		if v, _ := obj.Get(key); v.IsAbsent() {
			obj.Delete(key)
		}
	}
	return obj, nil
}

// Unmarshal parses one JSON object like Decode.
func (c *JSON) Unmarshal(data []byte) (*domain.Object, error) {
	return c.Decode(bytes.NewReader(data))
}

// MarshalValue encodes a single value in the flat layout.
func MarshalValue(v domain.Value) ([]byte, error) {
	e := &encodeState{}
	if err := e.value(v, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// UnmarshalValue parses exactly one JSON value of any kind.
func UnmarshalValue(data []byte) (domain.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return domain.Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Value{}, malformed("trailing data after value", err)
	}
	return v, nil
}

// EncodeRecord encodes one log record as a flat single-key object without a
// trailing newline.
func EncodeRecord(key string, v domain.Value) ([]byte, error) {
	e := &encodeState{}
	e.buf = append(e.buf, '{')
	e.buf = appendString(e.buf, key)
	e.buf = append(e.buf, ": "...)
	if err := e.value(v, 1); err != nil {
		return nil, err
	}
	e.buf = append(e.buf, '}')
	return e.buf, nil
}

// DecodeRecord parses one log record.
func DecodeRecord(line []byte) (string, domain.Value, error) {
	obj, err := decodeDocument(bytes.NewReader(line))
	if err != nil {
		return "", domain.Value{}, err
	}
	if obj.Len() != 1 {
		return "", domain.Value{}, malformed(fmt.Sprintf("record must hold exactly one key, got %d", obj.Len()), nil)
	}
	key := obj.Keys()[0]
	v, _ := obj.Get(key)
	return key, v, nil
}
