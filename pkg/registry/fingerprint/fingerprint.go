// Package fingerprint implements per-schema-type canonicalization and a
// content hash combined with schema type and normalized references into the
// registry's global dedup key.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/platinummonkey/schema-registry/pkg/registry/protobuf"
	"github.com/platinummonkey/schema-registry/pkg/validation"
)

// RefFingerprint is a normalized reference: the symbolic name plus the
// fingerprint of the schema it resolves to.
type RefFingerprint struct {
	Name        string
	Fingerprint string
}

// Canonicalize produces the canonical text for a schema body, dispatching by
// schema type.
func Canonicalize(schemaType string, text string) (string, error) {
	switch strings.ToUpper(schemaType) {
	case "AVRO":
		return canonicalizeAvro(text)
	case "JSON":
		return canonicalizeJSON(text)
	case "PROTOBUF":
		return canonicalizeProtobuf(text)
	default:
		return "", fmt.Errorf("fingerprint: unknown schema type %q", schemaType)
	}
}

// Fingerprint combines the canonical text's content hash with schema_type
// and the normalized reference list into the global dedup key. Two
// registrations with equal (type, canonical_text, normalized_refs) always
// produce the same fingerprint, independent of subject or whitespace.
func Fingerprint(schemaType string, canonicalText string, refs []RefFingerprint) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(strings.ToUpper(schemaType)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(canonicalText))
	contentSum := h.Sum64()

	sorted := make([]RefFingerprint, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	rh := xxhash.New()
	for _, r := range sorted {
		_, _ = rh.Write([]byte(r.Name))
		_, _ = rh.Write([]byte{0})
		_, _ = rh.Write([]byte(r.Fingerprint))
		_, _ = rh.Write([]byte{0})
	}
	refSum := rh.Sum64()

	return fmt.Sprintf("%s:%016x:%016x", strings.ToUpper(schemaType), contentSum, refSum)
}

// canonicalizeAvro reduces an Avro schema in the spirit of Parsing Canonical
// Form: parse JSON, keep only the keys in avroSignificantKeys (which include
// "default"), drop every other key such as doc and aliases, and emit keys in
// alphabetical order. Names are not expanded to their full names.
func canonicalizeAvro(text string) (string, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", fmt.Errorf("invalid avro schema json: %w", err)
	}
	canon := canonicalizeAvroNode(v)
	out, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var avroSignificantKeys = map[string]bool{
	"type": true, "name": true, "namespace": true, "fields": true,
	"items": true, "values": true, "size": true, "symbols": true,
	"default": true,
}

func canonicalizeAvroNode(v interface{}) interface{} {
	switch n := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{})
		keys := make([]string, 0, len(n))
		for k := range n {
			if avroSignificantKeys[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = canonicalizeAvroNode(n[k])
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, e := range n {
			out[i] = canonicalizeAvroNode(e)
		}
		return out
	default:
		return n
	}
}

// canonicalizeJSON stable-sorts keys of every object and strips insignificant
// whitespace; JSON Schema has no canonical-form field pruning rule so every
// key is kept, unlike Avro.
func canonicalizeJSON(text string) (string, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", fmt.Errorf("invalid json schema: %w", err)
	}
	canon := sortJSONNode(v)
	out, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func sortJSONNode(v interface{}) interface{} {
	switch n := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(n))
		for _, k := range keys {
			out[k] = sortJSONNode(n[k])
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, e := range n {
			out[i] = sortJSONNode(e)
		}
		return out
	default:
		return n
	}
}

// canonicalizeProtobuf parses the schema with ParseWithDescriptor, sorts
// imports, fields and enum values with validation.Normalizer, and serializes
// the result, which drops comments and layout while keeping field numbers and
// types. This is the same pipeline as validation.Normalizer.NormalizeString.
func canonicalizeProtobuf(text string) (string, error) {
	cfg := validation.DefaultNormalizationConfig()
	cfg.PreserveComments = false // fingerprinting strips comments
	normalizer := validation.NewNormalizer(cfg)
	ast, err := protobuf.ParseWithDescriptor("schema.proto", text)
	if err != nil {
		return "", fmt.Errorf("invalid protobuf schema: %w", err)
	}
	normalized, err := normalizer.Normalize(ast)
	if err != nil {
		return "", err
	}
	serializer := validation.NewSerializer(cfg)
	return serializer.Serialize(normalized)
}
