package core

import (
	"sort"
	"strings"
)

// ValidationErrors maps a form field name to a human readable message.
type ValidationErrors map[string]string

// Add records err for field unless the field already has a message.
func (v ValidationErrors) Add(field string, err error) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = err.Error()
}

// Merge adds every message of other whose field has none yet.
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, msg := range other {
		if _, exists := v[field]; !exists {
			v[field] = msg
		}
	}
}

// Error lists the failed fields in a stable order.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when no field failed so callers can use the usual err != nil check.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
