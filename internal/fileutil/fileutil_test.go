package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsMediaFile(t *testing.T) {
	if !IsMediaFile("clip_abc.mp4") {
		t.Error("mp4 should be media")
	}
	if !IsMediaFile("CLIP.MKV") {
		t.Error("extension match should be case-insensitive")
	}
	if IsMediaFile("clip_abc.mp4.part") {
		t.Error("partial download should not be media")
	}
	if IsMediaFile("clip_abc.json") {
		t.Error("sidecar should not be media")
	}
}

func TestMatchingOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "clip_abc.mp4"), 10)
	writeFile(t, filepath.Join(dir, "clip_abc.f137.mp4.part"), 20)
	writeFile(t, filepath.Join(dir, "clip_abcdef.mp4"), 5)
	writeFile(t, filepath.Join(dir, "other.mp4"), 5)

	matches, err := MatchingOutputs(dir, "clip_abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(matches), matches)
	}
}

func TestLargestSize(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "clip_abc.f137.mp4.part")
	b := filepath.Join(dir, "clip_abc.f140.m4a.part")
	writeFile(t, a, 300)
	writeFile(t, b, 100)

	got := LargestSize([]string{a, b, filepath.Join(dir, "missing.mp4")})
	if got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
}

func TestFinalOutput(t *testing.T) {
	dir := t.TempDir()
	part := filepath.Join(dir, "clip_abc.f137.mp4.part")
	final := filepath.Join(dir, "clip_abc.mp4")
	writeFile(t, part, 500)
	writeFile(t, final, 400)

	if got := FinalOutput([]string{part, final}); got != final {
		t.Fatalf("expected %s, got %s", final, got)
	}
	if got := FinalOutput([]string{part}); got != "" {
		t.Fatalf("expected no final output, got %s", got)
	}
}
