package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"offlinetube/internal/media"
	"offlinetube/internal/testsupport"
)

type cliTestEnv struct {
	configPath  string
	downloadDir string
	baseDir     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	configPath := filepath.Join(filepath.Dir(cfg.Paths.LogDir), "config.toml")
	content := fmt.Sprintf(
		"[paths]\ndownload_dir = %q\nlog_dir = %q\napi_bind = %q\n\n[ytdlp]\nbinary = %q\n",
		cfg.Paths.DownloadDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.YtDlp.Binary,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		configPath:  configPath,
		downloadDir: cfg.Paths.DownloadDir,
		baseDir:     filepath.Dir(cfg.Paths.LogDir),
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func TestCLIConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, env.configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env.configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, env.configPath, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLILibraryListAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "library", "list")
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Library is empty")

	path := filepath.Join(env.downloadDir, "Sample_Video_dQw4w9WgXcQ.mp4")
	testsupport.WriteFile(t, path, 4096)
	if err := media.WriteSidecar(path, media.Sidecar{SourceID: "dQw4w9WgXcQ", Title: "Sample Video", Duration: 212}); err != nil {
		t.Fatalf("WriteSidecar: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "library")
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	requireContains(t, out, "Sample Video")
	requireContains(t, out, "1 items")

	out, _, err = runCLI(t, env.configPath, "library", "remove", "Sample_Video_dQw4w9WgXcQ.mp4")
	if err != nil {
		t.Fatalf("library remove: %v", err)
	}
	requireContains(t, out, "Removed")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file still present after remove")
	}

	if _, _, err := runCLI(t, env.configPath, "library", "remove", "../escape.mp4"); err == nil {
		t.Fatal("expected error for path-like filename")
	}
}

func TestCLIFormatsFallsBackToSyntheticTiers(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, env.configPath, "formats", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	requireContains(t, out, "standard fallback tiers")
	requireContains(t, out, "best[height<=720]")
}

func TestCLISearchEmptyResults(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, env.configPath, "search", "anything")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "No results")
}

func TestCLIStatusWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env.configPath, "status"); err == nil {
		t.Fatal("expected connection error without a running daemon")
	}
}

func TestParseResolutionFlag(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"1080", 1080, true},
		{"720p", 720, true},
		{"junk", 0, false},
		{"0", 0, false},
	}
	for _, tc := range cases {
		got, err := parseResolutionFlag(tc.raw)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("parseResolutionFlag(%q) = %d,%v want %d", tc.raw, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseResolutionFlag(%q): expected error", tc.raw)
		}
	}
}

func TestRenderHelpers(t *testing.T) {
	if got := formatSize(50 << 20); got != "50.0 MiB" {
		t.Fatalf("formatSize: %q", got)
	}
	if got := formatDuration(212); got != "3:32" {
		t.Fatalf("formatDuration: %q", got)
	}
	if got := formatDuration(3725); got != "1:02:05" {
		t.Fatalf("formatDuration: %q", got)
	}
	pct := 50.0
	if got := renderProgress(1<<20, 2<<20, &pct); !strings.Contains(got, "50.0%") {
		t.Fatalf("renderProgress: %q", got)
	}
	if got := renderProgress(0, 0, nil); got != "waiting" {
		t.Fatalf("renderProgress indeterminate: %q", got)
	}
}
