package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeAvroDropsDocAndWhitespace(t *testing.T) {
	a := `{"type":"record","name":"User","doc":"a user","fields":[{"name":"id","type":"long","doc":"the id"}]}`
	b := `{
		"doc": "a different doc string",
		"name": "User",
		"type": "record",
		"fields": [ { "type": "long", "name": "id" } ]
	}`

	canonA, err := Canonicalize("AVRO", a)
	require.NoError(t, err)
	canonB, err := Canonicalize("avro", b)
	require.NoError(t, err)

	assert.Equal(t, canonA, canonB)
	assert.NotContains(t, canonA, "doc")
}

func TestCanonicalizeJSONSortsKeysButKeepsAll(t *testing.T) {
	a := `{"type":"object","title":"User","properties":{"id":{"type":"integer"}}}`
	b := `{"properties":{"id":{"type":"integer"}},"title":"User","type":"object"}`

	canonA, err := Canonicalize("JSON", a)
	require.NoError(t, err)
	canonB, err := Canonicalize("JSON", b)
	require.NoError(t, err)

	assert.Equal(t, canonA, canonB)
	assert.Contains(t, canonA, "title")
}

func TestCanonicalizeUnknownSchemaType(t *testing.T) {
	_, err := Canonicalize("XML", "<x/>")
	assert.Error(t, err)
}

func TestCanonicalizeAvroInvalidJSON(t *testing.T) {
	_, err := Canonicalize("AVRO", "not json")
	assert.Error(t, err)
}

func TestFingerprintStableAcrossWhitespace(t *testing.T) {
	a := `{"type":"record","name":"User","fields":[{"name":"id","type":"long"}]}`
	b := `{ "name" : "User" , "type":"record" , "fields":[{"type":"long","name":"id"}] }`

	canonA, err := Canonicalize("AVRO", a)
	require.NoError(t, err)
	canonB, err := Canonicalize("AVRO", b)
	require.NoError(t, err)

	fpA := Fingerprint("AVRO", canonA, nil)
	fpB := Fingerprint("AVRO", canonB, nil)
	assert.Equal(t, fpA, fpB)
}

func TestFingerprintDiffersOnContentChange(t *testing.T) {
	canon1, err := Canonicalize("AVRO", `{"type":"record","name":"User","fields":[{"name":"id","type":"long"}]}`)
	require.NoError(t, err)
	canon2, err := Canonicalize("AVRO", `{"type":"record","name":"User","fields":[{"name":"id","type":"string"}]}`)
	require.NoError(t, err)

	assert.NotEqual(t, Fingerprint("AVRO", canon1, nil), Fingerprint("AVRO", canon2, nil))
}

func TestFingerprintDiffersOnSchemaType(t *testing.T) {
	canon, err := Canonicalize("AVRO", `{"type":"record","name":"User","fields":[]}`)
	require.NoError(t, err)

	assert.NotEqual(t, Fingerprint("AVRO", canon, nil), Fingerprint("JSON", canon, nil))
}

func TestFingerprintReferenceOrderIndependent(t *testing.T) {
	canon, err := Canonicalize("AVRO", `{"type":"record","name":"User","fields":[]}`)
	require.NoError(t, err)

	refsAB := []RefFingerprint{{Name: "a", Fingerprint: "fp-a"}, {Name: "b", Fingerprint: "fp-b"}}
	refsBA := []RefFingerprint{{Name: "b", Fingerprint: "fp-b"}, {Name: "a", Fingerprint: "fp-a"}}

	assert.Equal(t, Fingerprint("AVRO", canon, refsAB), Fingerprint("AVRO", canon, refsBA))
}

func TestFingerprintDiffersOnReferenceFingerprint(t *testing.T) {
	canon, err := Canonicalize("AVRO", `{"type":"record","name":"User","fields":[]}`)
	require.NoError(t, err)

	refs1 := []RefFingerprint{{Name: "a", Fingerprint: "fp-a"}}
	refs2 := []RefFingerprint{{Name: "a", Fingerprint: "fp-a-changed"}}

	assert.NotEqual(t, Fingerprint("AVRO", canon, refs1), Fingerprint("AVRO", canon, refs2))
}

func TestCanonicalizeProtobufStripsComments(t *testing.T) {
	a := `syntax = "proto3";
package example;

// a comment about the message
message User {
  int64 id = 1;
}
`
	b := `syntax = "proto3";
package example;

message User {
  int64 id = 1;
}
`
	canonA, err := Canonicalize("PROTOBUF", a)
	require.NoError(t, err)
	canonB, err := Canonicalize("PROTOBUF", b)
	require.NoError(t, err)
	assert.Equal(t, canonA, canonB)
}

func TestCanonicalizeProtobufInvalidSchema(t *testing.T) {
	_, err := Canonicalize("PROTOBUF", "not a proto file")
	assert.Error(t, err)
}
