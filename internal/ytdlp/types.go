package ytdlp

import (
	"encoding/json"
	"strings"

	"offlinetube/internal/media"
)

// Info is the metadata extracted for a single video.
type Info struct {
	ID           string
	Title        string
	Description  string
	Duration     int64
	Uploader     string
	ViewCount    int64
	ThumbnailURL string
	Formats      []media.Descriptor
}

// SearchResult is one entry from a flat-playlist search. Formats are not
// populated; a follow-up extraction resolves them.
type SearchResult struct {
	ID           string
	Title        string
	Duration     int64
	Uploader     string
	ViewCount    int64
	ThumbnailURL string
	URL          string
}

// rawInfo mirrors the subset of yt-dlp's --dump-json output we consume.
type rawInfo struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    json.Number `json:"duration"`
	Uploader    string      `json:"uploader"`
	Channel     string      `json:"channel"`
	ViewCount   json.Number `json:"view_count"`
	Thumbnail   string      `json:"thumbnail"`
	WebpageURL  string      `json:"webpage_url"`
	URL         string      `json:"url"`
	Formats     []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID       string      `json:"format_id"`
	Ext            string      `json:"ext"`
	Width          json.Number `json:"width"`
	Height         json.Number `json:"height"`
	FPS            json.Number `json:"fps"`
	VCodec         string      `json:"vcodec"`
	ACodec         string      `json:"acodec"`
	Filesize       json.Number `json:"filesize"`
	FilesizeApprox json.Number `json:"filesize_approx"`
	ABR            json.Number `json:"abr"`
	TBR            json.Number `json:"tbr"`
}

func (r rawInfo) toInfo() Info {
	info := Info{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Duration:     numberInt(r.Duration),
		Uploader:     r.Uploader,
		ViewCount:    numberInt(r.ViewCount),
		ThumbnailURL: r.Thumbnail,
	}
	if info.Uploader == "" {
		info.Uploader = r.Channel
	}
	info.Formats = make([]media.Descriptor, 0, len(r.Formats))
	for _, f := range r.Formats {
		info.Formats = append(info.Formats, f.toDescriptor())
	}
	return info
}

func (r rawInfo) toSearchResult() SearchResult {
	url := r.WebpageURL
	if url == "" {
		url = r.URL
	}
	uploader := r.Uploader
	if uploader == "" {
		uploader = r.Channel
	}
	return SearchResult{
		ID:           r.ID,
		Title:        r.Title,
		Duration:     numberInt(r.Duration),
		Uploader:     uploader,
		ViewCount:    numberInt(r.ViewCount),
		ThumbnailURL: r.Thumbnail,
		URL:          url,
	}
}

// toDescriptor maps one raw format entry. yt-dlp reports an absent track as
// the literal string "none"; an empty codec field means the track is present
// but the codec is unreported.
func (f rawFormat) toDescriptor() media.Descriptor {
	size := numberInt(f.Filesize)
	if size == 0 {
		size = numberInt(f.FilesizeApprox)
	}
	bitrate := numberFloat(f.ABR)
	if bitrate == 0 {
		bitrate = numberFloat(f.TBR)
	}
	return media.Descriptor{
		FormatID:  f.FormatID,
		Ext:       f.Ext,
		Width:     int(numberInt(f.Width)),
		Height:    int(numberInt(f.Height)),
		FPS:       numberFloat(f.FPS),
		HasVideo:  hasTrack(f.VCodec),
		HasAudio:  hasTrack(f.ACodec),
		SizeBytes: size,
		Bitrate:   bitrate,
		VCodec:    codecOrEmpty(f.VCodec),
		ACodec:    codecOrEmpty(f.ACodec),
	}
}

func hasTrack(codec string) bool {
	codec = strings.TrimSpace(codec)
	return codec != "" && !strings.EqualFold(codec, "none")
}

func codecOrEmpty(codec string) string {
	if strings.EqualFold(strings.TrimSpace(codec), "none") {
		return ""
	}
	return codec
}

func numberInt(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

func numberFloat(n json.Number) float64 {
	if n == "" {
		return 0
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return 0
}
