package policy

import (
	"math"
	"strconv"
)

// CodecFamily groups raw codec name prefixes under one user-facing entry
type CodecFamily struct {
	Label string
	Names []string
}

// CodecFamilies is the set of codec families a user may exclude
var CodecFamilies = map[string]CodecFamily{
	"avc1": {Label: "H.264 (AVC)", Names: []string{"avc1"}},
	"mp4a": {Label: "AAC", Names: []string{"mp4a"}},
	"vp09": {Label: "VP9", Names: []string{"vp09", "vp9"}},
	"opus": {Label: "Opus", Names: []string{"opus"}},
	"av01": {Label: "AV1", Names: []string{"av01"}},
}

// FpsLimits maps the accepted frame-rate caps to their labels
var FpsLimits = map[int]string{
	0:  "Unlimited",
	30: "30 fps",
}

// Fps hint modes
const (
	FpsHintInt      = "int"
	FpsHintFloat    = "float"
	FpsHintFraction = "fraction"
)

// FpsHints re-expresses common frame rates per hint mode
var FpsHints = map[string]map[int]string{
	FpsHintInt: {
		24: "24", 25: "25", 30: "30", 48: "48", 50: "50", 60: "60",
	},
	FpsHintFloat: {
		24: "23.976", 25: "25", 30: "29.97", 48: "47.952", 50: "50", 60: "59.94",
	},
	FpsHintFraction: {
		24: "24000/1001", 25: "25", 30: "30000/1001", 48: "48000/1001", 50: "50", 60: "60000/1001",
	},
}

// FrameRate returns the hinted representation of fps. Rates missing
// from the table fall back to their integer form.
func FrameRate(hint string, fps float64) string {
	rounded := int(math.Round(fps))
	if values, ok := FpsHints[hint]; ok {
		if value, ok := values[rounded]; ok {
			return value
		}
	}
	return strconv.Itoa(rounded)
}

// Resolution is a nominal frame size
type Resolution struct {
	Width  int
	Height int
}

// VideoHeights maps a nominal height to its 16:9 frame size
var VideoHeights = map[int]Resolution{
	144:  {Width: 256, Height: 144},
	240:  {Width: 426, Height: 240},
	360:  {Width: 640, Height: 360},
	480:  {Width: 854, Height: 480},
	720:  {Width: 1280, Height: 720},
	1080: {Width: 1920, Height: 1080},
	1440: {Width: 2560, Height: 1440},
	2160: {Width: 3840, Height: 2160},
	4320: {Width: 7680, Height: 4320},
}

// IsPreferredSize reports whether a track matches the preferred height,
// either directly or through the width of the nominal frame size (which
// catches letterboxed encodes).
func IsPreferredSize(width, height, preferred int) bool {
	if preferred <= 0 {
		return false
	}
	if height == preferred {
		return true
	}
	res, ok := VideoHeights[preferred]
	return ok && width == res.Width
}
