package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigModeStoreResolveCompatibilityFallback(t *testing.T) {
	s := newConfigModeStore()
	assert.Equal(t, DefaultCompatibilityLevel, s.ResolveCompatibility(".", "users-value"))

	s.SetCompatibility(".", "", CompatibilityFull)
	assert.Equal(t, CompatibilityFull, s.ResolveCompatibility(".", "users-value"))

	s.SetCompatibility(".", "users-value", CompatibilityNone)
	assert.Equal(t, CompatibilityNone, s.ResolveCompatibility(".", "users-value"))
	assert.Equal(t, CompatibilityFull, s.ResolveCompatibility(".", "other-value"))
}

func TestConfigModeStoreExplicitCompatibility(t *testing.T) {
	s := newConfigModeStore()
	_, ok := s.ExplicitCompatibility(".", "users-value")
	assert.False(t, ok)

	s.SetCompatibility(".", "users-value", CompatibilityForward)
	lvl, ok := s.ExplicitCompatibility(".", "users-value")
	assert.True(t, ok)
	assert.Equal(t, CompatibilityForward, lvl)

	s.DeleteCompatibility(".", "users-value")
	_, ok = s.ExplicitCompatibility(".", "users-value")
	assert.False(t, ok)
}

func TestConfigModeStoreResolveModeFallback(t *testing.T) {
	s := newConfigModeStore()
	assert.Equal(t, DefaultMode, s.ResolveMode(".", "users-value"))

	s.SetMode(".", "", ModeReadOnly)
	assert.Equal(t, ModeReadOnly, s.ResolveMode(".", "users-value"))

	s.SetMode(".", "users-value", ModeImport)
	assert.Equal(t, ModeImport, s.ResolveMode(".", "users-value"))
	assert.Equal(t, ModeReadOnly, s.ResolveMode(".", "other-value"))
}

func TestConfigModeStoreExplicitMode(t *testing.T) {
	s := newConfigModeStore()
	_, ok := s.ExplicitMode(".", "users-value")
	assert.False(t, ok)

	s.SetMode(".", "users-value", ModeReadOnlyOverride)
	m, ok := s.ExplicitMode(".", "users-value")
	assert.True(t, ok)
	assert.Equal(t, ModeReadOnlyOverride, m)

	s.DeleteMode(".", "users-value")
	_, ok = s.ExplicitMode(".", "users-value")
	assert.False(t, ok)
}

func TestConfigModeStoreContextNames(t *testing.T) {
	s := newConfigModeStore()
	s.SetCompatibility("prod", "", CompatibilityFull)
	s.SetMode("staging", "", ModeReadOnly)

	names := s.contextNames()
	assert.Contains(t, names, "prod")
	assert.Contains(t, names, "staging")
	assert.Len(t, names, 2)
}
