// Package manifest classifies raw extractor formats and assembles the
// stream descriptors handed to a manifest renderer.
package manifest

import (
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// Mode is the manifest presentation being assembled
type Mode string

// Mode constants
const (
	ModeSegmented Mode = "segmented"
	ModeVariant   Mode = "variant"
)

// DropReason explains why a format yielded no descriptor
type DropReason string

// DropReason constants
const (
	DropNone      DropReason = ""
	DropProtocol  DropReason = "protocol"
	DropCodecs    DropReason = "codecs"
	DropExcluded  DropReason = "excluded"
	DropFps       DropReason = "fps"
	DropMalformed DropReason = "malformed"
)

// Report summarizes one assembly pass
type Report struct {
	Mode       Mode
	Considered int
	Emitted    map[models.ContentType]int
	Dropped    map[DropReason]int
}

func newReport(mode Mode) *Report {
	return &Report{
		Mode:    mode,
		Emitted: make(map[models.ContentType]int),
		Dropped: make(map[DropReason]int),
	}
}

func (r *Report) emit(ct models.ContentType) {
	r.Emitted[ct]++
}

func (r *Report) drop(reason DropReason) {
	r.Dropped[reason]++
}

// TotalEmitted returns the number of descriptors produced
func (r *Report) TotalEmitted() int {
	total := 0
	for _, n := range r.Emitted {
		total += n
	}
	return total
}

// TotalDropped returns the number of formats and subtitles dropped
func (r *Report) TotalDropped() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}
