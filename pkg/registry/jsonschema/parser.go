// Package jsonschema implements parsing and compatibility checking for the
// JSON Schema subset this registry understands: required/optional
// properties, type, minimum/maximum. No pack example repo carries a JSON
// Schema library (grounds for the stdlib-only choice here, recorded in
// DESIGN.md); the compatibility rule set only needs structural
// presence/absence checks, not full draft validation.
package jsonschema

import (
	"encoding/json"
	"fmt"
)

// Schema is the abstract parsed form of a JSON Schema document.
type Schema struct {
	Type       interface{}        `json:"type,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Minimum    *float64           `json:"minimum,omitempty"`
	Maximum    *float64           `json:"maximum,omitempty"`
	Ref        string             `json:"$ref,omitempty"`
}

// Parse validates that text is well-formed JSON and decodes the subset of
// keywords compatibility checking needs. Malformed JSON maps to
// registry.ErrInvalidSchema (422) at the call site.
func Parse(text string) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}
	return &s, nil
}

func (s *Schema) requiredSet() map[string]bool {
	m := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		m[r] = true
	}
	return m
}
