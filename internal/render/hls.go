package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/gohlslib/v2/pkg/playlist"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

const masterPlaylistVersion = 4

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "'") + `"`
}

// BuildMasterPlaylist renders a variant playlist as an HLS master playlist.
// Group and subtitle renditions come first, in table order, followed by one
// EXT-X-STREAM-INF entry per variant.
func BuildMasterPlaylist(pl *models.VariantPlaylist) []byte {
	var content strings.Builder

	content.WriteString("#EXTM3U\n")
	content.WriteString(fmt.Sprintf("#EXT-X-VERSION:%d\n", masterPlaylistVersion))
	content.WriteString("#EXT-X-INDEPENDENT-SEGMENTS\n\n")

	for _, key := range pl.Groups.Video.Keys() {
		group, _ := pl.Groups.Video.Get(key)
		content.WriteString(fmt.Sprintf("#EXT-X-MEDIA:TYPE=VIDEO,GROUP-ID=%s,NAME=%s,DEFAULT=YES,AUTOSELECT=YES\n",
			quote(key), quote(group.Name)))
	}

	for i, key := range pl.Groups.Audio.Keys() {
		group, _ := pl.Groups.Audio.Get(key)
		content.WriteString(fmt.Sprintf("#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=%s,LANGUAGE=%s,NAME=%s,DEFAULT=%s,AUTOSELECT=YES\n",
			quote(key), quote(group.Language), quote(group.Name), yesNo(i == 0)))
	}

	for i, sub := range pl.Subtitles {
		name := sub.Name
		if name == "" {
			name = sub.Language
		}
		content.WriteString(fmt.Sprintf("#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID=%s,LANGUAGE=%s,NAME=%s,DEFAULT=%s,AUTOSELECT=YES,URI=%s\n",
			quote(subtitlesGroup(pl)), quote(sub.Language), quote(name), yesNo(i == 0), quote(sub.URI)))
	}

	if pl.Groups.Video.Len() > 0 || pl.Groups.Audio.Len() > 0 || len(pl.Subtitles) > 0 {
		content.WriteString("\n")
	}

	for _, s := range pl.Streams {
		attrs := []string{
			"BANDWIDTH=" + strconv.FormatInt(s.Bandwidth, 10),
			"CODECS=" + quote(s.Codecs),
		}
		if s.Resolution != "" && isDimensions(s.Resolution) {
			attrs = append(attrs, "RESOLUTION="+s.Resolution)
		}
		if s.FrameRate > 0 {
			attrs = append(attrs, "FRAME-RATE="+strconv.FormatFloat(s.FrameRate, 'f', 3, 64))
		}
		if s.Video != "" {
			attrs = append(attrs, "VIDEO="+quote(s.Video))
		}
		if s.Audio != "" {
			attrs = append(attrs, "AUDIO="+quote(s.Audio))
		}
		if s.Subtitles != "" {
			attrs = append(attrs, "SUBTITLES="+quote(s.Subtitles))
		}
		content.WriteString("#EXT-X-STREAM-INF:" + strings.Join(attrs, ",") + "\n")
		content.WriteString(s.URL + "\n")
	}

	return []byte(content.String())
}

// subtitlesGroup returns the group id variants use for subtitles
func subtitlesGroup(pl *models.VariantPlaylist) string {
	for _, s := range pl.Streams {
		if s.Subtitles != "" {
			return s.Subtitles
		}
	}
	return "subtitles"
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// isDimensions reports whether s has the WIDTHxHEIGHT form
func isDimensions(s string) bool {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return false
	}
	_, errW := strconv.Atoi(w)
	_, errH := strconv.Atoi(h)
	return errW == nil && errH == nil
}

// ValidateMasterPlaylist parses a rendered master playlist and returns
// the number of variants it declares
func ValidateMasterPlaylist(data []byte) (int, error) {
	pl, err := playlist.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse master playlist: %w", err)
	}

	mv, ok := pl.(*playlist.Multivariant)
	if !ok {
		return 0, fmt.Errorf("not a multivariant playlist")
	}

	return len(mv.Variants), nil
}
