// Package language resolves language codes to display names.
package language

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Namer names language tags in a fixed display language
type Namer struct {
	namer display.Namer
}

// NewNamer creates a namer that names languages in the given display
// language. Invalid or empty display languages fall back to English.
func NewNamer(displayLanguage string) *Namer {
	tag, err := language.Parse(displayLanguage)
	if err != nil || tag == language.Und {
		tag = language.English
	}
	return &Namer{namer: display.Tags(tag)}
}

// Name returns the display name of code, and false when the code is not
// a known language
func (n *Namer) Name(code string) (string, bool) {
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return "", false
	}
	name := n.namer.Name(tag)
	if name == "" {
		return "", false
	}
	return name, true
}
