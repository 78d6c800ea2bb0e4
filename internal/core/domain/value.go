// Package domain defines the core domain model for nonbloat-db.
package domain

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindAbsent is the zero Kind. At the top level of a store it means
	// "delete this key"; nested inside a list or object it is JSON null.
	KindAbsent Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindObject
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a JSON-like tagged union.
//
// The zero Value is Absent. Values are immutable from the outside: list and
// object payloads are copied on construction and on access.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bit  bool
	list []Value
	obj  *Object
}

// Absent returns the deletion marker.
func Absent() Value { return Value{} }

// String returns a text Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integer Value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, bit: b} }

// List returns a list Value holding a copy of items.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	for i, it := range items {
		cp[i] = it.Clone()
	}
	return Value{kind: KindList, list: cp}
}

// ObjectValue returns an object Value holding a copy of obj.
// A nil obj yields an empty object.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		return Value{kind: KindObject, obj: NewObject()}
	}
	return Value{kind: KindObject, obj: obj.Clone()}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the deletion marker.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsString returns the text payload.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) { return v.flt, v.kind == KindFloat }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.bit, v.kind == KindBool }

// AsList returns a copy of the list payload.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]Value, len(v.list))
	for i, it := range v.list {
		cp[i] = it.Clone()
	}
	return cp, true
}

// AsObject returns a copy of the object payload.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj.Clone(), true
}

// Len returns the number of list items or object members, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// Index returns the i-th list item without copying the whole list.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Absent()
	}
	return v.list[i]
}

// Field returns a member of an object Value without copying the object.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Absent(), false
	}
	return v.obj.Get(key)
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		cp := make([]Value, len(v.list))
		for i, it := range v.list {
			cp[i] = it.Clone()
		}
		return Value{kind: KindList, list: cp}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	default:
		return v
	}
}

// Equal reports deep equality. Object member order is ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent:
		return true
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt || (math.IsNaN(v.flt) && math.IsNaN(o.flt))
	case KindBool:
		return v.bit == o.bit
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(o.obj)
	default:
		return false
	}
}

// Interface converts v into plain Go values: string, int64, float64, bool,
// []any, map[string]any or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.bit
	case KindList:
		out := make([]any, len(v.list))
		for i, it := range v.list {
			out[i] = it.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		v.obj.Range(func(key string, val Value) bool {
			out[key] = val.Interface()
			return true
		})
		return out
	default:
		return nil
	}
}

// FromInterface converts plain Go values into a Value.
//
// Supported inputs are nil, Value, *Object, string, bool, all integer kinds,
// float32/float64, []any, []Value and map[string]any. Map members are
// inserted in sorted key order because Go maps carry no order.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return t.Clone(), nil
	case *Object:
		return ObjectValue(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, ErrInvalidValue.WithDetails("integer overflows int64")
		}
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, ErrInvalidValue.WithDetails("integer overflows int64")
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []Value:
		return List(t...), nil
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			v, err := FromInterface(it)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return Value{}, err
			}
			obj.Set(k, v)
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		return Value{}, ErrInvalidValue.WithDetails(fmt.Sprintf("unsupported type %T", x))
	}
}
