package models

import "reflect"

// Properties is a property bag that remembers insertion order.
// The zero value is an empty bag ready to use.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties returns a bag holding the given key/value pairs in order.
func NewProperties(pairs ...Property) Properties {
	var p Properties
	for _, kv := range pairs {
		p.Set(kv.Key, kv.Value)
	}
	return p
}

// Property is a single key/value pair of a Properties bag.
type Property struct {
	Key   string
	Value any
}

// Set stores value under key. Nil values are ignored. Overwriting an
// existing key keeps its original position.
func (p *Properties) Set(key string, value any) {
	if isNil(value) {
		return
	}
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Properties) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *Properties) Len() int {
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

// All returns the pairs in insertion order.
func (p *Properties) All() []Property {
	pairs := make([]Property, 0, len(p.keys))
	for _, k := range p.keys {
		pairs = append(pairs, Property{Key: k, Value: p.values[k]})
	}
	return pairs
}

// Range calls fn for each pair in insertion order until fn returns false.
func (p *Properties) Range(fn func(key string, value any) bool) {
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
