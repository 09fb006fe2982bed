package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the dynamic type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one field value of a tracker record. Tracker payloads are sparse
// and nested, so values are kept as a tagged union instead of a fixed struct.
//
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	obj  map[string]Value
	list []Value
}

func Null() Value            { return Value{} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

func Number(n float64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(n, 'f', -1, 64))}
}

func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsZero reports whether v carries nothing worth displaying.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindList:
		for _, e := range v.Items() {
			if !e.IsZero() {
				return false
			}
		}
		return true
	case KindObject:
		return strings.TrimSpace(v.Display()) == ""
	default:
		return false
	}
}

// Str returns the raw string when v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Get returns a member of an object value.
func (v Value) Get(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	m, ok := v.obj[name]
	return m, ok
}

// Items returns the elements of a list value.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// displayKeys are probed, in order, when an object value is shown to a human.
// They cover Jira's status/priority/issuetype (name), users (displayName),
// custom select options (value) and linked issues (key).
var displayKeys = []string{"name", "displayName", "value", "key", "emailAddress"}

// Display renders v as a single-line human string. Null renders empty.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return displayNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject:
		for _, k := range displayKeys {
			if m, ok := v.Get(k); ok && !m.IsNull() && m.kind != KindObject {
				if s := m.Display(); strings.TrimSpace(s) != "" {
					return s
				}
			}
		}
		return ""
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, e := range v.Items() {
			if s := e.Display(); strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func displayNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

// UnmarshalJSON decodes any JSON value into the tagged representation.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// MarshalJSON encodes v back to plain JSON. Object keys are emitted sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("record: cannot marshal %s", v.kind)
	}
}

func fromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		return Value{kind: KindNumber, num: x}, nil
	case float64:
		return Number(x), nil
	case []any:
		out := make([]Value, 0, len(x))
		for _, e := range x {
			ev, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			out = append(out, ev)
		}
		return Value{kind: KindList, list: out}, nil
	case map[string]any:
		out := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			out[k] = ev
		}
		return Value{kind: KindObject, obj: out}, nil
	default:
		return Value{}, fmt.Errorf("record: unsupported JSON type %T", raw)
	}
}
