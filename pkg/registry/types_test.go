package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSchemaType(t *testing.T) {
	cases := []struct {
		in      string
		want    SchemaType
		wantErr bool
	}{
		{"", SchemaTypeAvro, false},
		{"AVRO", SchemaTypeAvro, false},
		{"avro", SchemaTypeAvro, false},
		{"JSON", SchemaTypeJSON, false},
		{"json", SchemaTypeJSON, false},
		{"PROTOBUF", SchemaTypeProtobuf, false},
		{"protobuf", SchemaTypeProtobuf, false},
		{"XML", "", true},
	}
	for _, c := range cases {
		got, err := ParseSchemaType(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		assert.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseCompatibilityLevel(t *testing.T) {
	valid := []string{"NONE", "BACKWARD", "BACKWARD_TRANSITIVE", "FORWARD", "FORWARD_TRANSITIVE", "FULL", "FULL_TRANSITIVE"}
	for _, v := range valid {
		got, err := ParseCompatibilityLevel(v)
		assert.NoError(t, err, v)
		assert.Equal(t, CompatibilityLevel(v), got)
	}
	_, err := ParseCompatibilityLevel("backward")
	assert.Error(t, err, "lowercase should not match, unlike schema type")

	_, err = ParseCompatibilityLevel("BOGUS")
	assert.Error(t, err)
}

func TestCompatibilityLevelTransitive(t *testing.T) {
	assert.True(t, CompatibilityBackwardTransitive.Transitive())
	assert.True(t, CompatibilityForwardTransitive.Transitive())
	assert.True(t, CompatibilityFullTransitive.Transitive())
	assert.False(t, CompatibilityBackward.Transitive())
	assert.False(t, CompatibilityFull.Transitive())
	assert.False(t, CompatibilityNone.Transitive())
}

func TestCompatibilityLevelBase(t *testing.T) {
	assert.Equal(t, CompatibilityBackward, CompatibilityBackwardTransitive.base())
	assert.Equal(t, CompatibilityForward, CompatibilityForwardTransitive.base())
	assert.Equal(t, CompatibilityFull, CompatibilityFullTransitive.base())
	assert.Equal(t, CompatibilityNone, CompatibilityNone.base())
}

func TestParseMode(t *testing.T) {
	valid := []string{"READWRITE", "READONLY", "READONLY_OVERRIDE", "IMPORT"}
	for _, v := range valid {
		got, err := ParseMode(v)
		assert.NoError(t, err, v)
		assert.Equal(t, Mode(v), got)
	}
	_, err := ParseMode("readwrite")
	assert.Error(t, err)
}

func TestSubjectLatestActive(t *testing.T) {
	s := &Subject{Versions: []VersionEntry{
		{VersionNumber: 1, SchemaID: 1},
		{VersionNumber: 2, SchemaID: 2, Deleted: true},
		{VersionNumber: 3, SchemaID: 3},
	}}
	latest := s.LatestActive()
	if assert.NotNil(t, latest) {
		assert.Equal(t, 3, latest.VersionNumber)
	}

	allDeleted := &Subject{Versions: []VersionEntry{{VersionNumber: 1, Deleted: true}}}
	assert.Nil(t, allDeleted.LatestActive())
}

func TestSubjectActiveVersions(t *testing.T) {
	s := &Subject{Versions: []VersionEntry{
		{VersionNumber: 1},
		{VersionNumber: 2, Deleted: true},
		{VersionNumber: 3},
	}}
	active := s.ActiveVersions()
	assert.Len(t, active, 2)
	assert.Equal(t, 1, active[0].VersionNumber)
	assert.Equal(t, 3, active[1].VersionNumber)
}

func TestSubjectFindVersion(t *testing.T) {
	s := &Subject{Versions: []VersionEntry{{VersionNumber: 1}, {VersionNumber: 5}}}
	entry, ok := s.FindVersion(5)
	assert.True(t, ok)
	assert.Equal(t, 5, entry.VersionNumber)

	_, ok = s.FindVersion(99)
	assert.False(t, ok)
}

func TestSubjectMaxVersionNumber(t *testing.T) {
	s := &Subject{Versions: []VersionEntry{{VersionNumber: 2}, {VersionNumber: 5, Deleted: true}, {VersionNumber: 1}}}
	assert.Equal(t, 5, s.MaxVersionNumber())

	empty := &Subject{}
	assert.Equal(t, 0, empty.MaxVersionNumber())
}
