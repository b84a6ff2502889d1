package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

type stubNamer map[string]string

func (n stubNamer) Name(code string) (string, bool) {
	name, ok := n[code]
	return name, ok
}

func hlsFormat(id, vcodec, acodec, resolution string, fps, tbr float64) models.RawFormat {
	f := models.RawFormat{
		FormatID:   id,
		URL:        "https://manifest.example.com/" + id + ".m3u8",
		Protocol:   models.ProtocolM3U8Native,
		VideoCodec: models.Codec(vcodec),
		AudioCodec: models.Codec(acodec),
		Resolution: resolution,
		TBR:        ptr(tbr),
	}
	if fps != 0 {
		f.FPS = ptr(fps)
	}
	return f
}

// Scenario E
func TestAssembleVariantSharedResolution(t *testing.T) {
	formats := []models.RawFormat{
		hlsFormat("232", "avc1.4D401F", "mp4a.40.2", "1280x720", 30, 1500),
		hlsFormat("311", "avc1.4D401F", "mp4a.40.2", "1280x720", 30, 3000),
	}

	pl, report := AssembleVariant(formats, nil, stubNamer{})
	require.Len(t, pl.Streams, 2)

	assert.Equal(t, 1, pl.Groups.Video.Len())
	group, ok := pl.Groups.Video.Get("1280x720@30")
	require.True(t, ok)
	assert.Equal(t, "1280x720@30", group.Name)

	for _, s := range pl.Streams {
		assert.Equal(t, "1280x720@30", s.Video)
		assert.Equal(t, "1280x720", s.Resolution)
		assert.Equal(t, 30.0, s.FrameRate)
		assert.Equal(t, "avc1.4D401F,mp4a.40.2", s.Codecs)
	}
	assert.Equal(t, int64(1500000), pl.Streams[0].Bandwidth)
	assert.Equal(t, int64(3000000), pl.Streams[1].Bandwidth)
	assert.Equal(t, 2, report.Emitted[models.ContentTypeVideo])
}

func TestAssembleVariantResolutionWithoutFps(t *testing.T) {
	formats := []models.RawFormat{
		hlsFormat("91", "avc1.4d400c", "mp4a.40.5", "256x144", 0, 290),
	}

	pl, _ := AssembleVariant(formats, nil, nil)
	require.Len(t, pl.Streams, 1)
	assert.Equal(t, "256x144", pl.Streams[0].Video)
	assert.Zero(t, pl.Streams[0].FrameRate)
	assert.Equal(t, []string{"256x144"}, pl.Groups.Video.Keys())
}

func TestAssembleVariantAudioGroups(t *testing.T) {
	english := hlsFormat("233", "", "mp4a.40.2", "audio only", 0, 128)
	english.Language = ptr("en")
	german := hlsFormat("234", "", "mp4a.40.2", "audio only", 0, 128)
	german.Language = ptr("de")
	unnamed := hlsFormat("235", "", "mp4a.40.2", "audio only", 0, 128)
	unnamed.Language = ptr("xx")
	englishAgain := hlsFormat("236", "", "opus", "audio only", 0, 160)
	englishAgain.Language = ptr("en")

	namer := stubNamer{"en": "English", "de": "German"}
	pl, report := AssembleVariant([]models.RawFormat{english, german, unnamed, englishAgain}, nil, namer)
	require.Len(t, pl.Streams, 4)

	assert.Equal(t, []string{"en", "de"}, pl.Groups.Audio.Keys())
	group, _ := pl.Groups.Audio.Get("en")
	assert.Equal(t, models.Group{Name: "English", Language: "en"}, group)

	assert.Equal(t, "en", pl.Streams[0].Audio)
	assert.Equal(t, "", pl.Streams[2].Audio)
	assert.Equal(t, "", pl.Streams[0].Video)
	assert.Equal(t, 0, pl.Groups.Video.Len())
	assert.Equal(t, 4, report.Emitted[models.ContentTypeAudio])
}

func TestAssembleVariantFiltersProtocolAndCodecs(t *testing.T) {
	dash := hlsFormat("137", "avc1", "", "1920x1080", 30, 4000)
	dash.Protocol = "https"
	noCodecs := hlsFormat("sb0", "", "", "", 0, 1)
	noBandwidth := hlsFormat("96", "avc1", "mp4a", "1920x1080", 30, 0)
	noBandwidth.TBR = nil

	pl, report := AssembleVariant([]models.RawFormat{dash, noCodecs, noBandwidth}, nil, nil)
	assert.NotNil(t, pl)
	assert.Empty(t, pl.Streams)
	assert.NotNil(t, pl.Streams)
	assert.Equal(t, 1, report.Dropped[DropProtocol])
	assert.Equal(t, 1, report.Dropped[DropCodecs])
	assert.Equal(t, 1, report.Dropped[DropMalformed])
}

func TestAssembleVariantSubtitles(t *testing.T) {
	subs := []models.RawSubtitle{
		{Language: "en", Name: "English", Ext: "vtt", Protocol: "m3u8_native", URL: "https://example.com/en.m3u8"},
		{Language: "fr", Name: "French", Ext: "srt", Protocol: "m3u8_native", URL: "https://example.com/fr.m3u8"},
		{Language: "de", Name: "German", Ext: "vtt", URL: "https://example.com/de.vtt"},
	}
	formats := []models.RawFormat{
		hlsFormat("232", "avc1.4D401F", "mp4a.40.2", "1280x720", 30, 1500),
	}

	pl, report := AssembleVariant(formats, subs, nil)
	require.Len(t, pl.Subtitles, 2)
	assert.Equal(t, models.SubtitleRendition{Language: "en", Name: "English", URI: "https://example.com/en.m3u8"}, pl.Subtitles[0])
	assert.Equal(t, models.SubtitleRendition{Language: "fr", Name: "French", URI: "https://example.com/fr.m3u8"}, pl.Subtitles[1])
	assert.Equal(t, SubtitlesGroup, pl.Streams[0].Subtitles)
	assert.Equal(t, 2, report.Emitted[models.ContentTypeText])

	withoutSubs, _ := AssembleVariant(formats, nil, nil)
	assert.Equal(t, "", withoutSubs.Streams[0].Subtitles)
	assert.Empty(t, withoutSubs.Subtitles)
}
