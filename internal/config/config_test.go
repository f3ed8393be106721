package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.YtDlp.Binary != "yt-dlp" {
		t.Errorf("unexpected binary default %q", cfg.YtDlp.Binary)
	}
	if len(cfg.YtDlp.PlayerClients) != 3 {
		t.Errorf("unexpected player clients %v", cfg.YtDlp.PlayerClients)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Error("expected missing config file")
	}
	if resolved != path {
		t.Errorf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Progress.PollIntervalMS != defaultPollIntervalMS {
		t.Errorf("poll interval %d", cfg.Progress.PollIntervalMS)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
download_dir = "` + filepath.Join(dir, "media") + `"
api_bind = "127.0.0.1:9000"

[ytdlp]
player_clients = [" Android ", "web"]
extract_timeout = 5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Errorf("api bind %q", cfg.Paths.APIBind)
	}
	if got := cfg.YtDlp.PlayerClients; len(got) != 2 || got[0] != "android" || got[1] != "web" {
		t.Errorf("player clients %v", got)
	}
	if cfg.YtDlp.FetchTimeout != defaultFetchTimeout {
		t.Errorf("fetch timeout %d", cfg.YtDlp.FetchTimeout)
	}
}

func TestValidateRejectsUnknownClient(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.YtDlp.PlayerClients = []string{"teapot"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "player_clients") {
		t.Fatalf("expected player_clients error, got %v", err)
	}
}

func TestValidateRejectsBadBind(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.APIBind = "not-a-bind"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected bind validation error")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config did not load: %v", err)
	}
}
