// Package record models the work items fetched from the issue tracker.
package record

import "strings"

// Record is one tracked work item. It is immutable once decoded and lives
// only for the run that fetched it.
type Record struct {
	ID     string
	Key    string
	Fields map[string]Value
}

// Field looks up a field by name. The pseudo-fields "key" and "id" resolve to
// the record's own identifiers, so they can be listed like any other field.
func (r Record) Field(name string) (Value, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "key":
		if r.Key == "" {
			return Value{}, false
		}
		return String(r.Key), true
	case "id":
		if r.ID == "" {
			return Value{}, false
		}
		return String(r.ID), true
	}
	v, ok := r.Fields[name]
	if !ok || v.IsNull() {
		return Value{}, false
	}
	return v, true
}

// Text returns the display text of a field and whether it is present.
func (r Record) Text(name string) (string, bool) {
	v, ok := r.Field(name)
	if !ok || v.IsZero() {
		return "", false
	}
	return v.Display(), true
}

// IsPseudoField reports whether name is resolved from the record itself
// rather than from the tracker's field map.
func IsPseudoField(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "key", "id":
		return true
	}
	return false
}
