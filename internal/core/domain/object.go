// Package domain defines the core domain model for nonbloat-db.
package domain

import "container/list"

type member struct {
	key   string
	value Value
}

// Object is a string-keyed mapping that remembers insertion order.
//
// Overwriting a key keeps its position; deleting and re-inserting moves it to
// the end. The zero Object is ready to use. Object is not safe for concurrent
// use; the storage engine guards its mapping with its own lock.
type Object struct {
	index map[string]*list.Element
	order *list.List
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{
		index: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (o *Object) lazyInit() {
	if o.index == nil {
		o.index = make(map[string]*list.Element)
		o.order = list.New()
	}
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil || o.index == nil {
		return 0
	}
	return len(o.index)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil || o.index == nil {
		return Absent(), false
	}
	el, ok := o.index[key]
	if !ok {
		return Absent(), false
	}
	return el.Value.(*member).value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil || o.index == nil {
		return false
	}
	_, ok := o.index[key]
	return ok
}

// Set inserts or overwrites key and reports whether it already existed.
func (o *Object) Set(key string, v Value) bool {
	o.lazyInit()
	if el, ok := o.index[key]; ok {
		el.Value.(*member).value = v
		return true
	}
	o.index[key] = o.order.PushBack(&member{key: key, value: v})
	return false
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil || o.index == nil {
		return false
	}
	el, ok := o.index[key]
	if !ok {
		return false
	}
	o.order.Remove(el)
	delete(o.index, key)
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for each member in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil || o.order == nil {
		return
	}
	for el := o.order.Front(); el != nil; el = el.Next() {
		m := el.Value.(*member)
		if !fn(m.key, m.value) {
			return
		}
	}
}

// Clone returns a deep copy preserving order.
func (o *Object) Clone() *Object {
	cp := NewObject()
	o.Range(func(key string, v Value) bool {
		cp.Set(key, v.Clone())
		return true
	})
	return cp
}

// Equal reports whether both objects hold equal members, ignoring order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Range(func(key string, v Value) bool {
		ov, ok := other.Get(key)
		if !ok || !v.Equal(ov) {
			equal = false
			return false
		}
		return true
	})
	return equal
}
