package manifest

import (
	"fmt"
	"strings"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// SubtitlesGroup is the group key every variant uses for subtitles
const SubtitlesGroup = "subtitles"

// LanguageNamer returns the display name of a language code
type LanguageNamer interface {
	Name(code string) (string, bool)
}

// AnnotateVariant converts one native playlist format into a variant and
// records its groups. Muxed formats are kept: both codecs are reported.
func AnnotateVariant(f *models.RawFormat, groups *models.Groups, namer LanguageNamer, hasSubtitles bool) (models.VariantStream, DropReason) {
	if !IsVariant(f) {
		return models.VariantStream{}, DropProtocol
	}

	var codecs []string
	if f.VideoCodec.Present() {
		codecs = append(codecs, f.VideoCodec.String())
	}
	if f.AudioCodec.Present() {
		codecs = append(codecs, f.AudioCodec.String())
	}
	if len(codecs) == 0 {
		return models.VariantStream{}, DropCodecs
	}
	if f.URL == "" || f.TBR == nil {
		return models.VariantStream{}, DropMalformed
	}

	stream := models.VariantStream{
		Codecs:    strings.Join(codecs, ","),
		Bandwidth: int64(*f.TBR * 1000),
		URL:       f.URL,
	}

	if f.VideoCodec.Present() && f.Resolution != "" {
		key := f.Resolution
		stream.Resolution = f.Resolution
		if f.FPS != nil && *f.FPS != 0 {
			stream.FrameRate = *f.FPS
			key = fmt.Sprintf("%s@%d", f.Resolution, int(*f.FPS))
		}
		groups.Video.SetDefault(key, models.Group{Name: key})
		stream.Video = key
	}

	if f.AudioCodec.Present() {
		if lang := f.Lang(); lang != "" && namer != nil {
			if name, ok := namer.Name(lang); ok {
				groups.Audio.SetDefault(lang, models.Group{Name: name, Language: lang})
				stream.Audio = lang
			}
		}
	}

	if hasSubtitles {
		stream.Subtitles = SubtitlesGroup
	}
	return stream, DropNone
}

// AssembleVariant builds the renderer input for variant-playlist mode.
// The result is returned even when no variant survived.
func AssembleVariant(formats []models.RawFormat, subtitles []models.RawSubtitle, namer LanguageNamer) (*models.VariantPlaylist, *Report) {
	report := newReport(ModeVariant)
	playlist := &models.VariantPlaylist{
		Streams:   make([]models.VariantStream, 0, len(formats)),
		Subtitles: VariantSubtitles(subtitles),
	}
	hasSubtitles := len(playlist.Subtitles) > 0

	for i := range formats {
		report.Considered++
		stream, reason := AnnotateVariant(&formats[i], &playlist.Groups, namer, hasSubtitles)
		if reason != DropNone {
			report.drop(reason)
			continue
		}
		report.emit(variantContentType(&formats[i]))
		playlist.Streams = append(playlist.Streams, stream)
	}
	for range playlist.Subtitles {
		report.emit(models.ContentTypeText)
	}
	return playlist, report
}

func variantContentType(f *models.RawFormat) models.ContentType {
	if f.VideoCodec.Present() {
		return models.ContentTypeVideo
	}
	return models.ContentTypeAudio
}
