package manifest

import (
	"strings"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/policy"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// Classification is the outcome of classifying one format for segmented
// delivery. ContentType is empty when the format was dropped.
type Classification struct {
	ContentType models.ContentType
	Codec       string
	Reason      DropReason
}

// Kept reports whether the format survived classification
func (c Classification) Kept() bool {
	return c.ContentType != ""
}

// IsSegmented reports whether a format is delivered as separate
// byte-range addressable tracks
func IsSegmented(f *models.RawFormat) bool {
	return strings.HasSuffix(f.Container, models.DashContainerSuffix)
}

// IsVariant reports whether a format is delivered as a native playlist
func IsVariant(f *models.RawFormat) bool {
	return f.Protocol == models.ProtocolM3U8Native
}

// Classify decides whether a format is a pure video track, a pure audio
// track or neither, and applies the codec exclusion. Muxed formats (both
// axes present) and formats with no axis are dropped.
func Classify(f *models.RawFormat, p policy.Policy) Classification {
	if !IsSegmented(f) {
		return Classification{Reason: DropProtocol}
	}

	var ct models.ContentType
	var codec models.Codec
	switch {
	case f.VideoCodec.Present() && !f.AudioCodec.Present():
		ct, codec = models.ContentTypeVideo, f.VideoCodec
	case f.AudioCodec.Present() && !f.VideoCodec.Present():
		ct, codec = models.ContentTypeAudio, f.AudioCodec
	default:
		return Classification{Reason: DropCodecs}
	}

	if p.IsExcluded(codec.String()) {
		return Classification{Codec: codec.String(), Reason: DropExcluded}
	}
	return Classification{ContentType: ct, Codec: codec.String()}
}
