package main

import (
	"fmt"
	"time"
)

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "?"
	}
	const (
		kib = 1 << 10
		mib = 1 << 20
		gib = 1 << 30
	)
	switch {
	case bytes >= gib:
		return fmt.Sprintf("%.2f GiB", float64(bytes)/gib)
	case bytes >= mib:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/mib)
	case bytes >= kib:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/kib)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// renderProgress prints a byte-count pair with an optional percentage; a nil
// percent means the total is still unknown.
func renderProgress(downloaded, total int64, percent *float64) string {
	if percent == nil {
		if downloaded <= 0 {
			return "waiting"
		}
		return formatSize(downloaded)
	}
	return fmt.Sprintf("%s / %s (%.1f%%)", formatSize(downloaded), formatSize(total), *percent)
}
