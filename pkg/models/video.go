package models

import (
	"time"
)

// Video is the playable result returned to callers
type Video struct {
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ChannelID    string  `json:"channel_id"`
	Channel      string  `json:"channel"`
	Duration     float64 `json:"duration"`
	IsLive       bool    `json:"is_live"`
	URL          string  `json:"url"`
	Thumbnail    string  `json:"thumbnail"`
	LikeCount    int64   `json:"like_count"`
	ViewCount    int64   `json:"view_count"`
	Timestamp    int64   `json:"timestamp"`
	ManifestType string  `json:"manifestType"`
	MimeType     string  `json:"mimeType,omitempty"`
}

// NewVideo copies the descriptive fields of an extraction result
func NewVideo(info *RawVideoInfo) *Video {
	return &Video{
		VideoID:     info.ID,
		Title:       info.FullTitle,
		Description: info.Description,
		ChannelID:   info.ChannelID,
		Channel:     info.Channel,
		Duration:    info.Duration,
		IsLive:      info.IsLive,
		URL:         info.ManifestURL,
		Thumbnail:   info.Thumbnail,
		LikeCount:   info.LikeCount,
		ViewCount:   info.ViewCount,
		Timestamp:   info.Timestamp,
	}
}

// HasManifest reports whether a playable manifest URL was produced
func (v *Video) HasManifest() bool {
	return v.URL != ""
}

// ManifestType constants
const (
	ManifestTypeMPD = "mpd"
	ManifestTypeHLS = "hls"
)

// Manifest MIME types
const (
	MimeTypeDASH = "application/dash+xml"
	MimeTypeHLS  = "application/vnd.apple.mpegurl"
)

// VideoEvent is published once a video request has been resolved
type VideoEvent struct {
	Event        string    `json:"event"`
	RequestURL   string    `json:"request_url"`
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	ManifestType string    `json:"manifest_type"`
	ManifestURL  string    `json:"manifest_url,omitempty"`
	Passthrough  bool      `json:"passthrough"`
	StreamCount  int       `json:"stream_count"`
	DroppedCount int       `json:"dropped_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// Request returns the history record an event describes
func (e *VideoEvent) Request() *VideoRequest {
	return &VideoRequest{
		RequestURL:   e.RequestURL,
		VideoID:      e.VideoID,
		Title:        e.Title,
		ManifestType: e.ManifestType,
		Passthrough:  e.Passthrough,
		StreamCount:  e.StreamCount,
		DroppedCount: e.DroppedCount,
		CreatedAt:    e.Timestamp,
	}
}

// Event names
const (
	EventVideoResolved = "video.resolved"
)

// VideoRequest is a history record of one resolved request
type VideoRequest struct {
	ID           string    `json:"id" db:"id"`
	RequestURL   string    `json:"request_url" db:"request_url"`
	VideoID      string    `json:"video_id" db:"video_id"`
	Title        string    `json:"title" db:"title"`
	ManifestType string    `json:"manifest_type" db:"manifest_type"`
	Passthrough  bool      `json:"passthrough" db:"passthrough"`
	StreamCount  int       `json:"stream_count" db:"stream_count"`
	DroppedCount int       `json:"dropped_count" db:"dropped_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// HistoryStats summarizes recorded requests
type HistoryStats struct {
	Total          int64   `json:"total"`
	Passthrough    int64   `json:"passthrough"`
	Empty          int64   `json:"empty"`
	AverageStreams float64 `json:"average_streams"`
	AverageDropped float64 `json:"average_dropped"`
}
