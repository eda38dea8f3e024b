// Package avro implements parsing and compatibility checking for Avro
// schemas. Validation is delegated to a real Avro codec library
// (github.com/linkedin/goavro/v2, the library riferrei-srclient uses for the
// same purpose); the structural shape compatibility checking needs (record
// fields with defaults, enum symbols, union branches) is extracted by a
// lightweight JSON walk alongside that validation.
package avro

import (
	"encoding/json"
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// Schema is the abstract parsed form of an Avro schema: declared
// name/namespace, fields with types and defaults, enum symbols.
type Schema struct {
	Kind           string // "record", "enum", "array", "map", "union", or a primitive name
	Name           string
	Namespace      string
	Fields         []Field
	Symbols        []string
	HasEnumDefault bool
	EnumDefault    string // enum "default" symbol, valid only when HasEnumDefault
	Items          *Schema // array item type
	Values         *Schema // map value type
	Union          []*Schema
	Raw            interface{}
}

// Field is an Avro record field.
type Field struct {
	Name       string
	Type       *Schema
	HasDefault bool
	Default    interface{}
}

// FullName is namespace-qualified per Avro naming rules.
func (s *Schema) FullName() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}

// Parse validates the schema with goavro (a real Avro codec, so syntax and
// type-reference errors surface exactly as a production consumer would see
// them) and then builds the structural Schema compatibility checking needs.
// Parse failure maps to registry.ErrInvalidSchema (422) at the call site.
func Parse(text string) (*Schema, error) {
	if _, err := goavro.NewCodec(text); err != nil {
		return nil, fmt.Errorf("invalid avro schema: %w", err)
	}
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("invalid avro schema json: %w", err)
	}
	return buildSchema(raw), nil
}

func buildSchema(raw interface{}) *Schema {
	switch v := raw.(type) {
	case string:
		return &Schema{Kind: v, Raw: raw}
	case []interface{}:
		s := &Schema{Kind: "union", Raw: raw}
		for _, branch := range v {
			s.Union = append(s.Union, buildSchema(branch))
		}
		return s
	case map[string]interface{}:
		kind, _ := v["type"].(string)
		s := &Schema{Kind: kind, Raw: raw}
		if name, ok := v["name"].(string); ok {
			s.Name = name
		}
		if ns, ok := v["namespace"].(string); ok {
			s.Namespace = ns
		}
		switch kind {
		case "record", "error":
			if fields, ok := v["fields"].([]interface{}); ok {
				for _, f := range fields {
					fm, ok := f.(map[string]interface{})
					if !ok {
						continue
					}
					field := Field{}
					if n, ok := fm["name"].(string); ok {
						field.Name = n
					}
					field.Type = buildSchema(fm["type"])
					if def, ok := fm["default"]; ok {
						field.HasDefault = true
						field.Default = def
					}
					s.Fields = append(s.Fields, field)
				}
			}
		case "enum":
			if syms, ok := v["symbols"].([]interface{}); ok {
				for _, sym := range syms {
					if str, ok := sym.(string); ok {
						s.Symbols = append(s.Symbols, str)
					}
				}
			}
			if def, ok := v["default"].(string); ok {
				s.HasEnumDefault = true
				s.EnumDefault = def
			}
		case "array":
			s.Items = buildSchema(v["items"])
		case "map":
			s.Values = buildSchema(v["values"])
		}
		return s
	default:
		return &Schema{Kind: "null", Raw: raw}
	}
}
