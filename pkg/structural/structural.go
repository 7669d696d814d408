// Package structural provides the recursive JSON value model used throughout
// the exporter.
//
// Resources are diffed, flattened and rewritten structurally, so the model
// must preserve object member order exactly as it appears in the source
// document. encoding/json maps cannot do that, so Decode walks the token
// stream and keeps members in an ordered slice.
package structural

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the JSON type of a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a JSON value. Objects keep their members in document order.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  json.Number
	strVal  string
	items   []*Value
	members []Member
}

// Null returns a JSON null.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a JSON boolean.
func Bool(b bool) *Value { return &Value{kind: KindBool, boolVal: b} }

// Number returns a JSON number from its literal representation.
func Number(n json.Number) *Value { return &Value{kind: KindNumber, numVal: n} }

// Int returns a JSON number from an int.
func Int(i int) *Value { return Number(json.Number(strconv.Itoa(i))) }

// String returns a JSON string.
func String(s string) *Value { return &Value{kind: KindString, strVal: s} }

// NewArray returns a JSON array with the given items.
func NewArray(items ...*Value) *Value { return &Value{kind: KindArray, items: items} }

// NewObject returns an empty JSON object.
func NewObject() *Value { return &Value{kind: KindObject} }

// Decode parses JSON data into a Value, preserving object member order.
func Decode(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode JSON: trailing data after value")
	}
	return v, nil
}

// MustDecode is Decode for statically known inputs; it panics on error.
func MustDecode(data string) *Value {
	v, err := Decode([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.members = append(obj.members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.items = append(arr.items, item)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// Kind returns the JSON kind of the value. A nil Value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// BoolVal returns the boolean payload.
func (v *Value) BoolVal() bool { return v.boolVal }

// NumberVal returns the number payload in its literal form.
func (v *Value) NumberVal() json.Number { return v.numVal }

// StringVal returns the string payload.
func (v *Value) StringVal() string { return v.strVal }

// Len returns the item count of an array or the member count of an object.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	if v.kind == KindArray {
		return len(v.items)
	}
	return len(v.members)
}

// Item returns the i-th array item, or nil when out of range.
func (v *Value) Item(i int) *Value {
	if v == nil || v.kind != KindArray || i < 0 || i >= len(v.items) {
		return nil
	}
	return v.items[i]
}

// Items returns the array items.
func (v *Value) Items() []*Value {
	if v == nil {
		return nil
	}
	return v.items
}

// Append adds an item to an array.
func (v *Value) Append(item *Value) {
	v.items = append(v.items, item)
}

// Members returns the object members in document order.
func (v *Value) Members() []Member {
	if v == nil {
		return nil
	}
	return v.members
}

// Get returns the member value for key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// GetString returns the string payload of the member for key, or "".
func (v *Value) GetString(key string) string {
	m := v.Get(key)
	if m == nil || m.kind != KindString {
		return ""
	}
	return m.strVal
}

// Has reports whether the object has a member for key.
func (v *Value) Has(key string) bool {
	return v.Get(key) != nil
}

// Set replaces the member for key, or appends a new member.
func (v *Value) Set(key string, val *Value) {
	for i, m := range v.members {
		if m.Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Delete removes the member for key. Returns true when a member was removed.
func (v *Value) Delete(key string) bool {
	if v == nil || v.kind != KindObject {
		return false
	}
	for i, m := range v.members {
		if m.Key == key {
			v.members = append(v.members[:i], v.members[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := &Value{kind: v.kind, boolVal: v.boolVal, numVal: v.numVal, strVal: v.strVal}
	if v.items != nil {
		c.items = make([]*Value, len(v.items))
		for i, item := range v.items {
			c.items[i] = item.Clone()
		}
	}
	if v.members != nil {
		c.members = make([]Member, len(v.members))
		for i, m := range v.members {
			c.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return c
}

// Equal compares two values for exact structural equality.
// Object member order does not affect equality; numbers compare by value.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a.Kind() == KindNull && b.Kind() == KindNull
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return numberEqual(a.numVal, b.numVal)
	case KindString:
		return a.strVal == b.strVal
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other := b.Get(m.Key)
			if other == nil || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Contains reports whether needle is structurally contained in haystack:
// equal primitives, objects whose members all appear (recursively) in the
// haystack object, and arrays whose items are each found somewhere in the
// haystack array.
func Contains(haystack, needle *Value) bool {
	if needle == nil {
		return true
	}
	if haystack == nil {
		return needle.Kind() == KindNull
	}
	switch needle.kind {
	case KindObject:
		if haystack.kind != KindObject {
			return false
		}
		for _, m := range needle.members {
			hv := haystack.Get(m.Key)
			if hv == nil || !Contains(hv, m.Value) {
				return false
			}
		}
		return true
	case KindArray:
		if haystack.kind != KindArray {
			return false
		}
		for _, item := range needle.items {
			found := false
			for _, h := range haystack.items {
				if Contains(h, item) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return Equal(haystack, needle)
	}
}

func numberEqual(a, b json.Number) bool {
	if a.String() == b.String() {
		return true
	}
	af, aerr := a.Float64()
	bf, berr := b.Float64()
	return aerr == nil && berr == nil && af == bf
}

// IsEmpty reports whether a value carries no content: nil, null, the empty
// string, an empty array, or an empty object.
func IsEmpty(v *Value) bool {
	if v == nil {
		return true
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.strVal == ""
	case KindArray:
		return len(v.items) == 0
	case KindObject:
		return len(v.members) == 0
	default:
		return false
	}
}

// JSON renders the value as compact JSON, preserving object member order.
func (v *Value) JSON() string {
	var sb strings.Builder
	v.writeJSON(&sb)
	return sb.String()
}

func (v *Value) writeJSON(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("null")
		return
	}
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.boolVal))
	case KindNumber:
		sb.WriteString(v.numVal.String())
	case KindString:
		b, _ := json.Marshal(v.strVal)
		sb.Write(b)
	case KindArray:
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			item.writeJSON(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				sb.WriteByte(',')
			}
			b, _ := json.Marshal(m.Key)
			sb.Write(b)
			sb.WriteByte(':')
			m.Value.writeJSON(sb)
		}
		sb.WriteByte('}')
	}
}
