package media

// Descriptor is one available encoding of a source video, as reported by the
// extraction collaborator. Immutable once fetched. FormatID is opaque and
// source-assigned; it is only unique within a single catalog snapshot.
type Descriptor struct {
	FormatID  string  `json:"format_id"`
	Ext       string  `json:"ext,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	FPS       float64 `json:"fps,omitempty"`
	HasVideo  bool    `json:"has_video"`
	HasAudio  bool    `json:"has_audio"`
	SizeBytes int64   `json:"filesize,omitempty"`
	Bitrate   float64 `json:"bitrate,omitempty"`
	VCodec    string  `json:"vcodec,omitempty"`
	ACodec    string  `json:"acodec,omitempty"`
}

// Tier partitions descriptors for sort order: combined streams first, then
// video-only, then audio-only.
type Tier int

const (
	TierCombined Tier = iota
	TierVideoOnly
	TierAudioOnly
)

// Tier classifies the descriptor from its track presence flags.
func (d Descriptor) Tier() Tier {
	switch {
	case d.HasVideo && d.HasAudio:
		return TierCombined
	case d.HasVideo:
		return TierVideoOnly
	default:
		return TierAudioOnly
	}
}
