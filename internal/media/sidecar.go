package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sidecar is the metadata record persisted next to a downloaded media file,
// keyed by the same base filename with a .json extension. It is written once
// after a successful fetch and rewritten wholesale on re-download; the library
// listing reads it back to render an entry.
type Sidecar struct {
	SourceID     string       `json:"source_id"`
	URL          string       `json:"url,omitempty"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Duration     int64        `json:"duration"`
	Uploader     string       `json:"uploader,omitempty"`
	ViewCount    int64        `json:"view_count,omitempty"`
	ThumbnailURL string       `json:"thumbnail,omitempty"`
	Formats      []Descriptor `json:"formats,omitempty"`
	DownloadedAt time.Time    `json:"downloaded_at"`
}

// SidecarPath derives the sidecar location for a media file path.
func SidecarPath(mediaPath string) string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return base + ".json"
}

// WriteSidecar persists the record next to the media file, replacing any
// previous version.
func WriteSidecar(mediaPath string, sc Sidecar) error {
	raw, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	path := SidecarPath(mediaPath)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return nil
}

// ReadSidecar loads the record stored next to a media file.
func ReadSidecar(mediaPath string) (Sidecar, error) {
	var sc Sidecar
	raw, err := os.ReadFile(SidecarPath(mediaPath))
	if err != nil {
		return sc, err
	}
	if err := json.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("parse sidecar: %w", err)
	}
	return sc, nil
}
