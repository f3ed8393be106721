package library

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"offlinetube/internal/fileutil"
	"offlinetube/internal/media"
	"offlinetube/internal/services"
)

// Entry is one library item rendered from a media file plus its sidecar.
type Entry struct {
	Filename     string    `json:"filename"`
	Filepath     string    `json:"filepath"`
	Title        string    `json:"title"`
	SourceID     string    `json:"source_id,omitempty"`
	SizeBytes    int64     `json:"size"`
	Duration     int64     `json:"duration,omitempty"`
	Uploader     string    `json:"uploader,omitempty"`
	ThumbnailURL string    `json:"thumbnail,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// sourceIDSuffix matches the trailing _<id> component of generated base
// names.
var sourceIDSuffix = regexp.MustCompile(`_([a-zA-Z0-9_-]{11})$`)

// List scans the download directory and returns entries newest first.
// Sidecars enrich the entry when present; otherwise metadata is derived from
// the filename alone.
func List(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrValidation, "library", "list", "read download directory", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !fileutil.IsMediaFile(de.Name()) {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, de.Name())
		entry := Entry{
			Filename:     de.Name(),
			Filepath:     path,
			SizeBytes:    fi.Size(),
			DownloadedAt: fi.ModTime(),
		}

		base := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
		if m := sourceIDSuffix.FindStringSubmatch(base); m != nil {
			entry.SourceID = m[1]
		}

		if sc, err := media.ReadSidecar(path); err == nil && sc.Title != "" {
			entry.Title = sc.Title
			entry.Duration = sc.Duration
			entry.Uploader = sc.Uploader
			entry.ThumbnailURL = sc.ThumbnailURL
			if sc.SourceID != "" {
				entry.SourceID = sc.SourceID
			}
			if !sc.DownloadedAt.IsZero() {
				entry.DownloadedAt = sc.DownloadedAt
			}
		} else {
			entry.Title = DisplayTitle(base)
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DownloadedAt.After(entries[j].DownloadedAt)
	})
	return entries, nil
}

// Delete removes a library entry and its sidecar. The filename must be a
// bare media file name; anything path-like is rejected.
func Delete(dir, filename string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return services.Wrap(services.ErrValidation, "library", "delete", "invalid filename", nil)
	}
	if !fileutil.IsMediaFile(filename) {
		return services.Wrap(services.ErrValidation, "library", "delete", "not a media file", nil)
	}

	path := filepath.Join(dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrValidation, "library", "delete", "no such entry "+filename, err)
		}
		return services.Wrap(services.ErrValidation, "library", "delete", "remove media file", err)
	}
	if err := os.Remove(media.SidecarPath(path)); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrValidation, "library", "delete", "remove sidecar", err)
	}
	return nil
}

// DisplayTitle turns a generated base name back into a readable title: the
// trailing source id is stripped, underscores become spaces, and words are
// title-cased.
func DisplayTitle(base string) string {
	base = sourceIDSuffix.ReplaceAllString(base, "")
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.TrimSpace(base)
	if base == "" {
		return "Video"
	}
	// cases.Caser carries transform state, so each call gets its own.
	return cases.Title(language.English).String(base)
}
