package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInfo = `{
	"id": "abc123",
	"fulltitle": "Sample",
	"description": null,
	"channel": "Channel",
	"channel_id": "UC1",
	"duration": 212.5,
	"like_count": null,
	"view_count": 1000,
	"formats": [
		{"format_id": "137", "vcodec": "avc1.640028", "acodec": "none", "container": "mp4_dash",
		 "ext": "mp4", "url": "https://example.com/137", "width": 1920, "height": 1080, "fps": 30, "vbr": 4000.5,
		 "indexRange": {"start": 741, "end": 1284}, "initRange": {"start": 0, "end": 740}},
		{"format_id": "bad", "width": "wide"},
		{"format_id": "140", "vcodec": "none", "acodec": "mp4a.40.2", "container": "m4a_dash",
		 "ext": "m4a", "url": "https://example.com/140", "abr": 129.5, "asr": 44100, "language": "en"}
	],
	"subtitles": {
		"fr": [{"name": "French", "ext": "vtt", "url": "https://example.com/fr.vtt"}],
		"en": [{"name": "English", "ext": "vtt", "url": "https://example.com/en.vtt"},
		       {"name": "English", "ext": "srv3", "url": "https://example.com/en.srv3"}]
	}
}`

func TestParseVideoInfo(t *testing.T) {
	info, err := ParseVideoInfo([]byte(sampleInfo))
	require.NoError(t, err)

	assert.Equal(t, "abc123", info.ID)
	assert.Equal(t, "Sample", info.FullTitle)
	assert.Equal(t, "", info.Description)
	assert.Equal(t, 212.5, info.Duration)
	assert.Equal(t, int64(0), info.LikeCount)
	assert.Equal(t, int64(1000), info.ViewCount)
	assert.Equal(t, "", info.ManifestURL)
	assert.Equal(t, 1, info.Skipped)

	require.Len(t, info.Formats, 2)
	video := info.Formats[0]
	assert.True(t, video.VideoCodec.Present())
	assert.False(t, video.AudioCodec.Present())
	assert.Equal(t, "avc1.640028", video.VideoCodec.String())
	require.NotNil(t, video.IndexRange)
	assert.Equal(t, "741-1284", video.IndexRange.String())

	audio := info.Formats[1]
	assert.False(t, audio.VideoCodec.Present())
	assert.Equal(t, "en", audio.Lang())
	assert.Nil(t, audio.AudioChannels)

	require.Len(t, info.Subtitles, 3)
	assert.Equal(t, "en", info.Subtitles[0].Language)
	assert.Equal(t, "srv3", info.Subtitles[1].Ext)
	assert.Equal(t, "fr", info.Subtitles[2].Language)
	assert.Empty(t, info.AutomaticCaptions)
}

func TestParseVideoInfoStringRanges(t *testing.T) {
	info, err := ParseVideoInfo([]byte(`{
		"id": "abc123",
		"formats": [
			{"format_id": "137", "vcodec": "avc1.640028", "acodec": "none", "container": "mp4_dash",
			 "indexRange": {"start": "741", "end": "1284"}, "initRange": {"start": "0", "end": "740"}}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 0, info.Skipped)
	require.Len(t, info.Formats, 1)

	f := info.Formats[0]
	require.NotNil(t, f.IndexRange)
	require.NotNil(t, f.InitRange)
	assert.Equal(t, ByteRange{Start: 741, End: 1284}, *f.IndexRange)
	assert.Equal(t, "0-740", f.InitRange.String())
}

func TestByteRangeUnreadableKeepsFormat(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a number", value: `{"start": "abc", "end": "10"}`},
		{name: "missing end", value: `{"start": 5}`},
		{name: "reversed", value: `{"start": 10, "end": 5}`},
		{name: "negative", value: `{"start": -1, "end": 5}`},
		{name: "not an object", value: `"0-740"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"id": "x", "formats": [{"format_id": "137", "vcodec": "avc1", "container": "mp4_dash", "indexRange": ` + tt.value + `}]}`
			info, err := ParseVideoInfo([]byte(doc))
			require.NoError(t, err)
			assert.Equal(t, 0, info.Skipped)
			require.Len(t, info.Formats, 1)
			require.NotNil(t, info.Formats[0].IndexRange)
			assert.True(t, info.Formats[0].IndexRange.IsZero())
		})
	}
}

func TestParseVideoInfoDefaults(t *testing.T) {
	info, err := ParseVideoInfo([]byte(`{"id": "x"}`))
	require.NoError(t, err)

	assert.Equal(t, -1.0, info.Duration)
	assert.False(t, info.IsLive)
	assert.Empty(t, info.Formats)

	video := NewVideo(info)
	assert.Equal(t, "x", video.VideoID)
	assert.False(t, video.HasManifest())
}

func TestParseVideoInfoInvalidDocument(t *testing.T) {
	_, err := ParseVideoInfo([]byte(`[1, 2`))
	assert.Error(t, err)
}

func TestCodecNull(t *testing.T) {
	var f RawFormat
	require.NoError(t, json.Unmarshal([]byte(`{"vcodec": null, "acodec": "opus"}`), &f))
	assert.False(t, f.VideoCodec.Present())
	assert.Equal(t, Codec("opus"), f.AudioCodec)
}

func TestGroupTableSetDefault(t *testing.T) {
	var table GroupTable

	first := table.SetDefault("1280x720", Group{Name: "first"})
	second := table.SetDefault("1280x720", Group{Name: "second"})
	table.SetDefault("640x360", Group{Name: "640x360"})

	assert.Equal(t, "first", first.Name)
	assert.Equal(t, "first", second.Name)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"1280x720", "640x360"}, table.Keys())

	g, ok := table.Get("1280x720")
	assert.True(t, ok)
	assert.Equal(t, "first", g.Name)
}

func TestGroupsMarshalOrder(t *testing.T) {
	var groups Groups
	groups.Video.SetDefault("b", Group{Name: "b"})
	groups.Video.SetDefault("a", Group{Name: "a"})
	groups.Audio.SetDefault("en", Group{Name: "English", Language: "en"})

	data, err := json.Marshal(groups)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"video":{"b":{"name":"b"},"a":{"name":"a"}},"audio":{"en":{"name":"English","language":"en"}}}`,
		string(data))
	assert.Contains(t, string(data), `"b":{"name":"b"},"a"`)
}

func TestStreamDescriptorJSON(t *testing.T) {
	original := true
	stream := StreamDescriptor{
		ContentType: ContentTypeAudio,
		MimeType:    "audio/mp4",
		ID:          "140",
		Original:    &original,
		URL:         "https://example.com/140",
	}

	data, err := json.Marshal(stream)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "audio", decoded["contentType"])
	assert.Equal(t, true, decoded["original"])
	assert.NotContains(t, decoded, "impaired")
	assert.NotContains(t, decoded, "indexRange")
}
