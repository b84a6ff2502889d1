package models

import (
	"bytes"
	"encoding/json"
)

// ContentType is the classification axis of a track
type ContentType string

// ContentType constants
const (
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
	ContentTypeText  ContentType = "text"
)

// StreamDescriptor describes one track of a segmented (DASH) manifest.
// Audio-only engine flags are pointers so they are only emitted when set.
type StreamDescriptor struct {
	ContentType    ContentType `json:"contentType"`
	MimeType       string      `json:"mimeType"`
	ID             string      `json:"id"`
	Codecs         string      `json:"codecs,omitempty"`
	Bandwidth      int64       `json:"bandwidth,omitempty"`
	AverageBitrate int64       `json:"averageBitrate,omitempty"`

	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	FrameRate string `json:"frameRate,omitempty"`
	Default   bool   `json:"default,omitempty"`

	Lang              string `json:"lang,omitempty"`
	AudioSamplingRate int    `json:"audioSamplingRate,omitempty"`
	AudioChannels     int    `json:"audioChannels,omitempty"`
	Original          *bool  `json:"original,omitempty"`
	Impaired          *bool  `json:"impaired,omitempty"`

	URL        string     `json:"url"`
	IndexRange *ByteRange `json:"indexRange,omitempty"`
	InitRange  *ByteRange `json:"initRange,omitempty"`
}

// SegmentedManifest is the renderer input for segmented mode
type SegmentedManifest struct {
	Duration float64            `json:"duration"`
	Streams  []StreamDescriptor `json:"streams"`
}

// VariantStream describes one variant of a variant-playlist (HLS) manifest
type VariantStream struct {
	Codecs     string  `json:"codecs"`
	Bandwidth  int64   `json:"bandwidth"`
	URL        string  `json:"url"`
	Resolution string  `json:"resolution,omitempty"`
	FrameRate  float64 `json:"frame_rate,omitempty"`
	Video      string  `json:"video,omitempty"`
	Audio      string  `json:"audio,omitempty"`
	Subtitles  string  `json:"subtitles,omitempty"`
}

// SubtitleRendition is a subtitle entry of a variant-playlist manifest
type SubtitleRendition struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	URI      string `json:"uri"`
}

// Group is a variant-playlist rendition group
type Group struct {
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
}

// GroupTable is an insertion-ordered mapping of group key to Group.
// Entries are never overwritten once set.
type GroupTable struct {
	keys    []string
	entries map[string]Group
}

// SetDefault stores g under key unless key is already present, and
// returns the stored group.
func (t *GroupTable) SetDefault(key string, g Group) Group {
	if existing, ok := t.entries[key]; ok {
		return existing
	}
	if t.entries == nil {
		t.entries = make(map[string]Group)
	}
	t.entries[key] = g
	t.keys = append(t.keys, key)
	return g
}

// Get returns the group stored under key
func (t *GroupTable) Get(key string) (Group, bool) {
	g, ok := t.entries[key]
	return g, ok
}

// Keys returns the keys in insertion order
func (t *GroupTable) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len returns the number of groups
func (t *GroupTable) Len() int {
	return len(t.keys)
}

// MarshalJSON encodes the table as an object in insertion order
func (t GroupTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(t.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Groups holds the video and audio group tables of a variant playlist
type Groups struct {
	Video GroupTable `json:"video"`
	Audio GroupTable `json:"audio"`
}

// VariantPlaylist is the renderer input for variant-playlist mode
type VariantPlaylist struct {
	Streams   []VariantStream     `json:"streams"`
	Groups    Groups              `json:"groups"`
	Subtitles []SubtitleRendition `json:"subtitles"`
}
