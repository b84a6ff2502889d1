package manifest

import (
	"fmt"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// SupportedSubtitles lists the subtitle file extensions players can load
// from a segmented manifest
var SupportedSubtitles = map[string]bool{
	"vtt": true,
}

// SegmentedSubtitles selects directly downloadable subtitles in a
// supported format and converts them into text descriptors
func SegmentedSubtitles(subtitles []models.RawSubtitle) []models.StreamDescriptor {
	var streams []models.StreamDescriptor
	for _, sub := range subtitles {
		if sub.Protocol != "" || sub.Name == "" || sub.URL == "" {
			continue
		}
		if !SupportedSubtitles[sub.Ext] {
			continue
		}
		streams = append(streams, models.StreamDescriptor{
			ContentType: models.ContentTypeText,
			MimeType:    fmt.Sprintf("%s/%s", models.ContentTypeText, sub.Ext),
			Lang:        sub.Language,
			ID:          sub.Name,
			URL:         sub.URL,
		})
	}
	return streams
}

// VariantSubtitles selects native playlist subtitles. The extension is
// not checked here: playlist subtitles are passed through as they are.
func VariantSubtitles(subtitles []models.RawSubtitle) []models.SubtitleRendition {
	renditions := make([]models.SubtitleRendition, 0)
	for _, sub := range subtitles {
		if sub.Protocol != models.ProtocolM3U8Native {
			continue
		}
		renditions = append(renditions, models.SubtitleRendition{
			Language: sub.Language,
			Name:     sub.Name,
			URI:      sub.URL,
		})
	}
	return renditions
}
