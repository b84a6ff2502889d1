package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NoneCodec is the codec value the extractor reports for an absent axis.
const NoneCodec = "none"

// Delivery markers used to select formats per manifest mode
const (
	DashContainerSuffix = "_dash"
	ProtocolM3U8Native  = "m3u8_native"
)

// Codec is a codec identifier. The "none" sentinel is normalized to the
// empty value at ingestion, so absence is a plain presence test.
type Codec string

// UnmarshalJSON implements json.Unmarshaler
func (c *Codec) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == NoneCodec {
		*c = ""
		return nil
	}
	*c = Codec(*s)
	return nil
}

// Present reports whether the codec axis exists
func (c Codec) Present() bool {
	return c != ""
}

func (c Codec) String() string {
	return string(c)
}

// ByteRange is an inclusive byte offset pair for segmented delivery
type ByteRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// UnmarshalJSON accepts offsets as numbers or numeric strings. A range
// that cannot be read decodes as the zero range instead of failing the
// enclosing record.
func (r *ByteRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}
	*r = ByteRange{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	start, ok := parseOffset(raw.Start)
	if !ok {
		return nil
	}
	end, ok := parseOffset(raw.End)
	if !ok || end < start {
		return nil
	}

	r.Start, r.End = start, end
	return nil
}

func parseOffset(data json.RawMessage) (int64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		return n, n >= 0
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, n >= 0
}

// IsZero reports whether the range carries no offsets
func (r ByteRange) IsZero() bool {
	return r == ByteRange{}
}

// String formats the range the way segment indexes expect it ("start-end")
func (r ByteRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// RawFormat is one format record as reported by the extractor.
// Optional numeric fields are pointers: nil means the extractor did not
// report the value.
type RawFormat struct {
	FormatID   string `json:"format_id"`
	URL        string `json:"url"`
	Ext        string `json:"ext"`
	Container  string `json:"container"`
	Protocol   string `json:"protocol"`
	VideoCodec Codec  `json:"vcodec"`
	AudioCodec Codec  `json:"acodec"`

	VBR *float64 `json:"vbr"`
	ABR *float64 `json:"abr"`
	TBR *float64 `json:"tbr"`

	Width      *int     `json:"width"`
	Height     *int     `json:"height"`
	Resolution string   `json:"resolution"`
	FPS        *float64 `json:"fps"`

	ASR           *int    `json:"asr"`
	AudioChannels *int    `json:"audio_channels"`
	Language      *string `json:"language"`

	IndexRange *ByteRange `json:"indexRange"`
	InitRange  *ByteRange `json:"initRange"`

	AudioIsOriginal    bool `json:"audioIsOriginal"`
	AudioIsDescriptive bool `json:"audioIsDescriptive"`
}

// Lang returns the language tag, or "" when unknown
func (f *RawFormat) Lang() string {
	if f.Language == nil {
		return ""
	}
	return *f.Language
}

// RawSubtitle is one subtitle record. Language is filled from the
// enclosing language map key.
type RawSubtitle struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	Ext      string `json:"ext"`
	Protocol string `json:"protocol"`
	URL      string `json:"url"`
}

// RawVideoInfo is the typed view of an extraction result
type RawVideoInfo struct {
	ID          string
	FullTitle   string
	Description string
	ChannelID   string
	Channel     string
	Duration    float64
	IsLive      bool
	ManifestURL string
	Thumbnail   string
	LikeCount   int64
	ViewCount   int64
	Timestamp   int64

	Formats           []RawFormat
	Subtitles         []RawSubtitle
	AutomaticCaptions []RawSubtitle

	// Skipped counts records that could not be decoded
	Skipped int
}

type rawVideoInfo struct {
	ID                string                       `json:"id"`
	FullTitle         *string                      `json:"fulltitle"`
	Description       *string                      `json:"description"`
	ChannelID         string                       `json:"channel_id"`
	Channel           *string                      `json:"channel"`
	Duration          *float64                     `json:"duration"`
	IsLive            *bool                        `json:"is_live"`
	ManifestURL       *string                      `json:"manifest_url"`
	Thumbnail         string                       `json:"thumbnail"`
	LikeCount         *float64                     `json:"like_count"`
	ViewCount         *float64                     `json:"view_count"`
	Timestamp         *float64                     `json:"timestamp"`
	Formats           []json.RawMessage            `json:"formats"`
	Subtitles         map[string][]json.RawMessage `json:"subtitles"`
	AutomaticCaptions map[string][]json.RawMessage `json:"automatic_captions"`
}

// ParseVideoInfo decodes an extraction document. Defaults are applied here
// once. A format or subtitle record that fails to decode is skipped and
// counted; only a malformed top-level document is an error.
func ParseVideoInfo(data []byte) (*RawVideoInfo, error) {
	var raw rawVideoInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse video info: %w", err)
	}

	info := &RawVideoInfo{
		ID:          raw.ID,
		FullTitle:   deref(raw.FullTitle, ""),
		Description: deref(raw.Description, ""),
		ChannelID:   raw.ChannelID,
		Channel:     deref(raw.Channel, ""),
		Duration:    deref(raw.Duration, -1),
		IsLive:      deref(raw.IsLive, false),
		ManifestURL: deref(raw.ManifestURL, ""),
		Thumbnail:   raw.Thumbnail,
		LikeCount:   int64(deref(raw.LikeCount, 0)),
		ViewCount:   int64(deref(raw.ViewCount, 0)),
		Timestamp:   int64(deref(raw.Timestamp, 0)),
		Formats:     make([]RawFormat, 0, len(raw.Formats)),
	}

	for _, msg := range raw.Formats {
		var f RawFormat
		if err := json.Unmarshal(msg, &f); err != nil {
			info.Skipped++
			continue
		}
		info.Formats = append(info.Formats, f)
	}

	var skipped int
	info.Subtitles, skipped = flattenSubtitles(raw.Subtitles)
	info.Skipped += skipped
	info.AutomaticCaptions, skipped = flattenSubtitles(raw.AutomaticCaptions)
	info.Skipped += skipped

	return info, nil
}

// flattenSubtitles turns the per-language map into a list ordered by
// language tag, keeping the per-language order.
func flattenSubtitles(byLang map[string][]json.RawMessage) ([]RawSubtitle, int) {
	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var subs []RawSubtitle
	skipped := 0
	for _, lang := range langs {
		for _, msg := range byLang[lang] {
			var sub RawSubtitle
			if err := json.Unmarshal(msg, &sub); err != nil {
				skipped++
				continue
			}
			sub.Language = lang
			subs = append(subs, sub)
		}
	}
	return subs, skipped
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
