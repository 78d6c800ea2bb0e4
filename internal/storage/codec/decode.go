package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

func malformed(details string, cause error) error {
	err := domain.ErrMalformedData.WithDetails(details)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}

// decodeDocument reads exactly one JSON object from r.
func decodeDocument(r io.Reader) (*domain.Object, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed("empty document", nil)
		}
		return nil, malformed("read token", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, malformed(fmt.Sprintf("top level must be an object, got %v", tok), nil)
	}

	obj, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, malformed("trailing data after object", nil)
		}
		return nil, malformed("trailing data after object", err)
	}
	return obj, nil
}

// decodeObject reads members after an opening brace up to and including the
// closing brace.
func decodeObject(dec *json.Decoder) (*domain.Object, error) {
	obj := domain.NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed("read key", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed(fmt.Sprintf("object key must be a string, got %v", tok), nil)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed("read object end", err)
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (domain.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.Value{}, malformed("read value", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj, err := decodeObject(dec)
			if err != nil {
				return domain.Value{}, err
			}
			return domain.ObjectValue(obj), nil
		case '[':
			var items []domain.Value
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return domain.Value{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return domain.Value{}, malformed("read list end", err)
			}
			return domain.List(items...), nil
		default:
			return domain.Value{}, malformed(fmt.Sprintf("unexpected delimiter %v", t), nil)
		}
	case string:
		return domain.String(t), nil
	case json.Number:
		return decodeNumber(t)
	case bool:
		return domain.Bool(t), nil
	case nil:
		return domain.Absent(), nil
	default:
		return domain.Value{}, malformed(fmt.Sprintf("unexpected token %v", tok), nil)
	}
}

func decodeNumber(n json.Number) (domain.Value, error) {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		i, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return domain.Value{}, malformed("integer out of range: "+lit, err)
		}
		return domain.Int(i), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return domain.Value{}, malformed("invalid number: "+lit, err)
	}
	return domain.Float(f), nil
}
