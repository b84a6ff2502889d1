package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamerName(t *testing.T) {
	namer := NewNamer("en")

	tests := []struct {
		code     string
		expected string
		ok       bool
	}{
		{"en", "English", true},
		{"de", "German", true},
		{"fr", "French", true},
		{"und", "", false},
		{"", "", false},
		{"not a language", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			name, ok := namer.Name(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestNewNamerFallsBackToEnglish(t *testing.T) {
	namer := NewNamer("???")

	name, ok := namer.Name("es")
	assert.True(t, ok)
	assert.Equal(t, "Spanish", name)
}

func TestNewNamerDisplayLanguage(t *testing.T) {
	namer := NewNamer("de")

	name, ok := namer.Name("en")
	assert.True(t, ok)
	assert.Equal(t, "Englisch", name)
}
