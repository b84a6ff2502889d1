// Package policy translates user-facing settings into the predicates used
// to classify and filter formats.
package policy

import (
	"strings"
)

// Policy holds the exclusion and frame-rate predicates for one request.
// It is immutable once built.
type Policy struct {
	exclude  []string
	fpsLimit int
}

// New creates a policy from raw codec prefixes and a frame-rate cap (0 = unlimited)
func New(exclude []string, fpsLimit int) Policy {
	names := make([]string, 0, len(exclude))
	for _, name := range exclude {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if fpsLimit < 0 {
		fpsLimit = 0
	}
	return Policy{exclude: names, fpsLimit: fpsLimit}
}

// IsExcluded reports whether codec starts with any excluded name
func (p Policy) IsExcluded(codec string) bool {
	for _, name := range p.exclude {
		if strings.HasPrefix(codec, name) {
			return true
		}
	}
	return false
}

// WithinFpsCap reports whether a video frame rate passes the cap
func (p Policy) WithinFpsCap(fps float64) bool {
	return p.fpsLimit == 0 || fps <= float64(p.fpsLimit)
}

// FpsLimit returns the configured cap
func (p Policy) FpsLimit() int {
	return p.fpsLimit
}

// Exclude returns a copy of the excluded codec prefixes
func (p Policy) Exclude() []string {
	return append([]string(nil), p.exclude...)
}
