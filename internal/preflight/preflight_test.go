package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"offlinetube/internal/testsupport"
)

func TestCheckDirectoryAccessOK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccessNotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccessNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBinaryMissing(t *testing.T) {
	result := CheckBinary("yt-dlp", "definitely-not-a-real-binary-name")
	if result.Passed {
		t.Fatal("expected failure for missing binary")
	}
}

func TestCheckBinaryEmpty(t *testing.T) {
	result := CheckBinary("yt-dlp", "")
	if result.Passed {
		t.Fatal("expected failure for empty binary")
	}
}

func TestCheckDiskSpaceGenerous(t *testing.T) {
	// Any real filesystem should clear a 0 GiB floor.
	result := CheckDiskSpace("disk", t.TempDir(), 0)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestVerifyPassesWithStubbedEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := Verify(context.Background(), cfg); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyFailsWhenDownloadDirMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	// Directories intentionally not created.
	if err := Verify(context.Background(), cfg); err == nil {
		t.Fatal("expected verify failure for missing download directory")
	}
}
