// Package render turns assembled manifests into DASH and HLS documents
// and hands them to a manifest store.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

const (
	mpdNamespace      = "urn:mpeg:dash:schema:mpd:2011"
	mpdProfile        = "urn:mpeg:dash:profile:isoff-on-demand:2011"
	roleScheme        = "urn:mpeg:dash:role:2011"
	audioPurposeCS    = "urn:tva:metadata:cs:AudioPurposeCS:2007"
	channelConfScheme = "urn:mpeg:dash:23003:3:audio_channel_configuration:2011"
	minBufferTime     = "PT1.5S"
)

type mpd struct {
	XMLName                   xml.Name `xml:"MPD"`
	Xmlns                     string   `xml:"xmlns,attr"`
	Profiles                  string   `xml:"profiles,attr"`
	Type                      string   `xml:"type,attr"`
	MinBufferTime             string   `xml:"minBufferTime,attr"`
	MediaPresentationDuration string   `xml:"mediaPresentationDuration,attr,omitempty"`
	Period                    period   `xml:"Period"`
}

type period struct {
	AdaptationSets []adaptationSet `xml:"AdaptationSet"`
}

type descriptor struct {
	SchemeIDURI string `xml:"schemeIdUri,attr"`
	Value       string `xml:"value,attr"`
}

type adaptationSet struct {
	ID               int              `xml:"id,attr"`
	ContentType      string           `xml:"contentType,attr"`
	MimeType         string           `xml:"mimeType,attr"`
	Lang             string           `xml:"lang,attr,omitempty"`
	SegmentAlignment bool             `xml:"segmentAlignment,attr,omitempty"`
	Roles            []descriptor     `xml:"Role"`
	Accessibility    []descriptor     `xml:"Accessibility"`
	Representations  []representation `xml:"Representation"`
}

type representation struct {
	ID                string       `xml:"id,attr"`
	Codecs            string       `xml:"codecs,attr,omitempty"`
	Bandwidth         int64        `xml:"bandwidth,attr"`
	Width             int          `xml:"width,attr,omitempty"`
	Height            int          `xml:"height,attr,omitempty"`
	FrameRate         string       `xml:"frameRate,attr,omitempty"`
	AudioSamplingRate int          `xml:"audioSamplingRate,attr,omitempty"`
	AudioChannels     *descriptor  `xml:"AudioChannelConfiguration"`
	BaseURL           string       `xml:"BaseURL"`
	SegmentBase       *segmentBase `xml:"SegmentBase"`
}

type segmentBase struct {
	IndexRange     string          `xml:"indexRange,attr"`
	Initialization *initialization `xml:"Initialization"`
}

type initialization struct {
	Range string `xml:"range,attr"`
}

type setKey struct {
	contentType models.ContentType
	mimeType    string
	lang        string
	original    bool
	impaired    bool
}

func keyOf(s *models.StreamDescriptor) setKey {
	k := setKey{
		contentType: s.ContentType,
		mimeType:    s.MimeType,
		lang:        s.Lang,
	}
	if s.Original != nil {
		k.original = *s.Original
	}
	if s.Impaired != nil {
		k.impaired = *s.Impaired
	}
	return k
}

// isoDuration formats seconds as an ISO 8601 duration
func isoDuration(seconds float64) string {
	if seconds < 0 {
		return ""
	}
	return fmt.Sprintf("PT%.3fS", seconds)
}

// BuildMPD renders segmented streams as a static on-demand MPD. Streams
// sharing content type, mime type, language and audio flags share one
// adaptation set; sets keep the order in which they first appear.
// A negative duration means unknown and is left out of the document.
func BuildMPD(duration float64, streams []models.StreamDescriptor) ([]byte, error) {
	doc := mpd{
		Xmlns:                     mpdNamespace,
		Profiles:                  mpdProfile,
		Type:                      "static",
		MinBufferTime:             minBufferTime,
		MediaPresentationDuration: isoDuration(duration),
	}

	index := make(map[setKey]int)
	for i := range streams {
		s := &streams[i]
		key := keyOf(s)

		pos, ok := index[key]
		if !ok {
			pos = len(doc.Period.AdaptationSets)
			index[key] = pos
			set := adaptationSet{
				ID:               pos,
				ContentType:      string(s.ContentType),
				MimeType:         s.MimeType,
				Lang:             s.Lang,
				SegmentAlignment: s.ContentType != models.ContentTypeText,
			}
			if key.original {
				set.Roles = append(set.Roles, descriptor{SchemeIDURI: roleScheme, Value: "main"})
			}
			if key.impaired {
				set.Accessibility = append(set.Accessibility, descriptor{SchemeIDURI: audioPurposeCS, Value: "1"})
			}
			doc.Period.AdaptationSets = append(doc.Period.AdaptationSets, set)
		}

		set := &doc.Period.AdaptationSets[pos]
		if s.Default && !hasRole(set.Roles, "main") {
			set.Roles = append(set.Roles, descriptor{SchemeIDURI: roleScheme, Value: "main"})
		}
		set.Representations = append(set.Representations, newRepresentation(s))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode MPD: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func hasRole(roles []descriptor, value string) bool {
	for _, r := range roles {
		if r.Value == value {
			return true
		}
	}
	return false
}

func newRepresentation(s *models.StreamDescriptor) representation {
	rep := representation{
		ID:                s.ID,
		Codecs:            s.Codecs,
		Bandwidth:         s.Bandwidth,
		Width:             s.Width,
		Height:            s.Height,
		FrameRate:         s.FrameRate,
		AudioSamplingRate: s.AudioSamplingRate,
		BaseURL:           s.URL,
	}
	if s.AudioChannels > 0 {
		rep.AudioChannels = &descriptor{
			SchemeIDURI: channelConfScheme,
			Value:       fmt.Sprintf("%d", s.AudioChannels),
		}
	}
	if s.IndexRange != nil && !s.IndexRange.IsZero() {
		rep.SegmentBase = &segmentBase{IndexRange: s.IndexRange.String()}
		if s.InitRange != nil && !s.InitRange.IsZero() {
			rep.SegmentBase.Initialization = &initialization{Range: s.InitRange.String()}
		}
	}
	return rep
}
