package codec

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

const hexDigits = "0123456789abcdef"

type encodeState struct {
	buf    []byte
	indent Indent
}

func (e *encodeState) newline(depth int) {
	e.buf = append(e.buf, '\n')
	for i := 0; i < depth; i++ {
		e.buf = append(e.buf, e.indent.unit...)
	}
}

func (e *encodeState) object(o *domain.Object, depth int) error {
	if o.Len() == 0 {
		e.buf = append(e.buf, "{}"...)
		return nil
	}

	e.buf = append(e.buf, '{')
	first := true
	var err error
	o.Range(func(key string, v domain.Value) bool {
		if !first {
			e.buf = append(e.buf, ',')
			if !e.indent.enabled {
				e.buf = append(e.buf, ' ')
			}
		}
		first = false
		if e.indent.enabled {
			e.newline(depth + 1)
		}
		e.buf = appendString(e.buf, key)
		e.buf = append(e.buf, ": "...)
		err = e.value(v, depth+1)
		return err == nil
	})
	if err != nil {
		return err
	}
	if e.indent.enabled {
		e.newline(depth)
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *encodeState) list(v domain.Value, depth int) error {
	n := v.Len()
	if n == 0 {
		e.buf = append(e.buf, "[]"...)
		return nil
	}

	e.buf = append(e.buf, '[')
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
			if !e.indent.enabled {
				e.buf = append(e.buf, ' ')
			}
		}
		if e.indent.enabled {
			e.newline(depth + 1)
		}
		if err := e.value(v.Index(i), depth+1); err != nil {
			return err
		}
	}
	if e.indent.enabled {
		e.newline(depth)
	}
	e.buf = append(e.buf, ']')
	return nil
}

func (e *encodeState) value(v domain.Value, depth int) error {
	switch v.Kind() {
	case domain.KindAbsent:
		e.buf = append(e.buf, "null"...)
	case domain.KindString:
		s, _ := v.AsString()
		e.buf = appendString(e.buf, s)
	case domain.KindInt:
		n, _ := v.AsInt()
		e.buf = strconv.AppendInt(e.buf, n, 10)
	case domain.KindFloat:
		f, _ := v.AsFloat()
		var err error
		if e.buf, err = appendFloat(e.buf, f); err != nil {
			return err
		}
	case domain.KindBool:
		b, _ := v.AsBool()
		e.buf = strconv.AppendBool(e.buf, b)
	case domain.KindList:
		return e.list(v, depth)
	case domain.KindObject:
		obj, _ := v.AsObject()
		return e.object(obj, depth)
	default:
		return domain.ErrInvalidValue.WithDetails(fmt.Sprintf("unknown kind %v", v.Kind()))
	}
	return nil
}

// appendFloat formats like encoding/json, but always keeps a fraction or an
// exponent so the value decodes back as a float.
func appendFloat(buf []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return buf, domain.ErrInvalidValue.WithDetails(fmt.Sprintf("unsupported float %v", f))
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, f, format, -1, 64)
	for _, c := range buf[start:] {
		if c == '.' || c == 'e' {
			return buf, nil
		}
	}
	return append(buf, ".0"...), nil
}

// appendString writes s as a JSON string literal. Non-ASCII text is kept as
// UTF-8; invalid bytes become U+FFFD.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"', '\\':
				buf = append(buf, '\\', c)
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			default:
				if c < 0x20 {
					buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
				} else {
					buf = append(buf, c)
				}
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, `�`...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
