package manifest

import (
	"fmt"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/policy"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

const defaultAudioChannels = 2

// SegmentedOptions holds the parameters of a segmented assembly
type SegmentedOptions struct {
	Policy          policy.Policy
	FpsHint         string
	PreferredHeight int
	InputStream     string
}

// SegmentedOptionsFrom builds options from a settings snapshot and a
// request policy
func SegmentedOptionsFrom(snap *policy.Snapshot, p policy.Policy) SegmentedOptions {
	return SegmentedOptions{
		Policy:          p,
		FpsHint:         snap.FpsHint,
		PreferredHeight: snap.PreferredHeight,
		InputStream:     snap.InputStream,
	}
}

// AnnotateSegmented converts one format into a descriptor. The returned
// reason is non-empty when the format yields no descriptor.
func AnnotateSegmented(f *models.RawFormat, opts SegmentedOptions) (models.StreamDescriptor, DropReason) {
	class := Classify(f, opts.Policy)
	if !class.Kept() {
		return models.StreamDescriptor{}, class.Reason
	}
	if f.FormatID == "" || f.URL == "" || f.Ext == "" {
		return models.StreamDescriptor{}, DropMalformed
	}

	var stream models.StreamDescriptor
	var reason DropReason
	switch class.ContentType {
	case models.ContentTypeVideo:
		stream, reason = videoStream(f, opts)
	case models.ContentTypeAudio:
		stream, reason = audioStream(f, opts)
	}
	if reason != DropNone {
		return models.StreamDescriptor{}, reason
	}

	stream.ContentType = class.ContentType
	stream.MimeType = fmt.Sprintf("%s/%s", class.ContentType, f.Ext)
	stream.ID = f.FormatID
	stream.Codecs = class.Codec
	stream.URL = f.URL
	stream.IndexRange = byteRange(f.IndexRange)
	stream.InitRange = byteRange(f.InitRange)
	return stream, DropNone
}

func videoStream(f *models.RawFormat, opts SegmentedOptions) (models.StreamDescriptor, DropReason) {
	if f.FPS == nil {
		return models.StreamDescriptor{}, DropMalformed
	}
	fps := *f.FPS
	if !opts.Policy.WithinFpsCap(fps) {
		return models.StreamDescriptor{}, DropFps
	}
	if f.Width == nil || f.Height == nil || f.VBR == nil {
		return models.StreamDescriptor{}, DropMalformed
	}

	bitrate := int64(*f.VBR * 1000)
	return models.StreamDescriptor{
		Bandwidth:      bitrate,
		AverageBitrate: bitrate,
		Width:          *f.Width,
		Height:         *f.Height,
		FrameRate:      policy.FrameRate(opts.FpsHint, fps),
		Default:        policy.IsPreferredSize(*f.Width, *f.Height, opts.PreferredHeight),
	}, DropNone
}

func audioStream(f *models.RawFormat, opts SegmentedOptions) (models.StreamDescriptor, DropReason) {
	if f.ABR == nil || f.ASR == nil {
		return models.StreamDescriptor{}, DropMalformed
	}

	channels := defaultAudioChannels
	if f.AudioChannels != nil {
		channels = *f.AudioChannels
	}

	bitrate := int64(*f.ABR * 1000)
	stream := models.StreamDescriptor{
		Bandwidth:         bitrate,
		AverageBitrate:    bitrate,
		Lang:              f.Lang(),
		AudioSamplingRate: *f.ASR,
		AudioChannels:     channels,
	}
	// custom attributes understood by the adaptive engine only
	if opts.InputStream == policy.InputStreamAdaptive {
		original := f.AudioIsOriginal
		impaired := f.AudioIsDescriptive
		stream.Original = &original
		stream.Impaired = &impaired
	}
	return stream, DropNone
}

// byteRange copies r, or returns nil when the format reported no usable
// range
func byteRange(r *models.ByteRange) *models.ByteRange {
	if r == nil || r.IsZero() {
		return nil
	}
	out := *r
	return &out
}

// SegmentedStreams annotates every format in input order
func SegmentedStreams(formats []models.RawFormat, opts SegmentedOptions) ([]models.StreamDescriptor, *Report) {
	report := newReport(ModeSegmented)
	streams := make([]models.StreamDescriptor, 0, len(formats))
	for i := range formats {
		report.Considered++
		stream, reason := AnnotateSegmented(&formats[i], opts)
		if reason != DropNone {
			report.drop(reason)
			continue
		}
		report.emit(stream.ContentType)
		streams = append(streams, stream)
	}
	return streams, report
}

// AssembleSegmented builds the renderer input for segmented mode. It
// returns nil when no audio or video track survived; subtitles alone do
// not make a manifest.
func AssembleSegmented(duration float64, formats []models.RawFormat, subtitles []models.RawSubtitle, opts SegmentedOptions) (*models.SegmentedManifest, *Report) {
	streams, report := SegmentedStreams(formats, opts)
	if len(streams) == 0 {
		return nil, report
	}

	for _, sub := range SegmentedSubtitles(subtitles) {
		report.emit(sub.ContentType)
		streams = append(streams, sub)
	}
	return &models.SegmentedManifest{Duration: duration, Streams: streams}, report
}
