package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"clean", "video.mp4", "video.mp4"},
		{"slashes", "a/b\\c.mp4", "a-b-c.mp4"},
		{"removed characters", "what?.mp4", "what.mp4"},
		{"trimmed", "  clip.webm  ", "clip.webm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.input); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSafeTitle(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces collapse", "Never Gonna Give You Up", "Never_Gonna_Give_You_Up"},
		{"punctuation dropped", "Top 10: Cats! (Official)", "Top_10_Cats_Official"},
		{"hyphen runs", "lo-fi -- beats", "lo_fi_beats"},
		{"empty", "!!!", "video"},
		{"unicode letters kept", "Música Año", "Música_Año"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SafeTitle(tc.input); got != tc.want {
				t.Fatalf("SafeTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSafeTitleTruncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := SafeTitle(long)
	if len([]rune(got)) != 50 {
		t.Fatalf("expected 50 runes, got %d", len([]rune(got)))
	}
}
