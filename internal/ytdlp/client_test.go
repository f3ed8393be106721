package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"offlinetube/internal/services"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/yt-dlp"))
	if cli.binary != "/opt/yt-dlp" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestExtractRequiresURL(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Extract(context.Background(), "", "web"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractSuccess(t *testing.T) {
	setHelperCommand(t, "extract")

	cli := NewCLI()
	info, err := cli.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "web")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if info.ID != "dQw4w9WgXcQ" || info.Title != "Sample Video" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Duration != 212 || info.ViewCount != 1234567 {
		t.Fatalf("unexpected counters in %+v", info)
	}
	if len(info.Formats) != 3 {
		t.Fatalf("expected 3 formats, got %d", len(info.Formats))
	}
	combined := info.Formats[0]
	if !combined.HasVideo || !combined.HasAudio || combined.Height != 360 {
		t.Fatalf("unexpected combined format %+v", combined)
	}
	videoOnly := info.Formats[1]
	if !videoOnly.HasVideo || videoOnly.HasAudio {
		t.Fatalf("expected video-only classification, got %+v", videoOnly)
	}
	if videoOnly.ACodec != "" {
		t.Fatalf("acodec 'none' must map to empty, got %q", videoOnly.ACodec)
	}
	audioOnly := info.Formats[2]
	if audioOnly.HasVideo || !audioOnly.HasAudio {
		t.Fatalf("expected audio-only classification, got %+v", audioOnly)
	}
	if audioOnly.SizeBytes != 10485760 {
		t.Fatalf("expected approx size fallback, got %d", audioOnly.SizeBytes)
	}
}

func TestExtractPassesAccessProfile(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "YTDLP_HELPER_MODE=extract")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	if _, err := cli.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "android"); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	idx := findArg(capturedArgs, "--extractor-args")
	if idx == -1 || idx+1 >= len(capturedArgs) {
		t.Fatalf("expected --extractor-args in %v", capturedArgs)
	}
	if capturedArgs[idx+1] != "youtube:player_client=android" {
		t.Fatalf("unexpected extractor args %q", capturedArgs[idx+1])
	}
}

func TestExtractFailure(t *testing.T) {
	setHelperCommand(t, "extractfail")

	cli := NewCLI()
	_, err := cli.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestFetchReportsProgress(t *testing.T) {
	setHelperCommand(t, "fetch")

	cli := NewCLI()
	var updates []ProgressUpdate
	err := cli.Fetch(context.Background(), FetchRequest{
		URL:            "https://youtu.be/dQw4w9WgXcQ",
		FormatSpec:     "18",
		OutputTemplate: "/tmp/out.%(ext)s",
	}, func(u ProgressUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	first := updates[0]
	if first.Status != "downloading" || first.DownloadedBytes != 1048576 {
		t.Fatalf("unexpected first update %+v", first)
	}
	if first.TotalBytes != 52428800 {
		t.Fatalf("expected authoritative total, got %d", first.TotalBytes)
	}
	last := updates[1]
	if last.Status != "finished" || last.DownloadedBytes != 52428800 {
		t.Fatalf("unexpected final update %+v", last)
	}
}

func TestFetchBuildsCommand(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "YTDLP_HELPER_MODE=fetch")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI(WithMergeFormat("mkv"))
	err := cli.Fetch(context.Background(), FetchRequest{
		URL:            "https://youtu.be/dQw4w9WgXcQ",
		FormatSpec:     "137+140",
		OutputTemplate: "/downloads/Sample_dQw4w9WgXcQ.%(ext)s",
	}, nil)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	idx := findArg(capturedArgs, "-f")
	if idx == -1 || capturedArgs[idx+1] != "137+140" {
		t.Fatalf("expected format spec in args %v", capturedArgs)
	}
	idx = findArg(capturedArgs, "--merge-output-format")
	if idx == -1 || capturedArgs[idx+1] != "mkv" {
		t.Fatalf("expected merge format in args %v", capturedArgs)
	}
	if findArg(capturedArgs, "--newline") == -1 {
		t.Fatalf("expected --newline in args %v", capturedArgs)
	}
}

func TestFetchClassifiesFormatRejection(t *testing.T) {
	setHelperCommand(t, "rejected")

	cli := NewCLI()
	err := cli.Fetch(context.Background(), FetchRequest{
		URL:            "https://youtu.be/dQw4w9WgXcQ",
		FormatSpec:     "9999",
		OutputTemplate: "/tmp/out.%(ext)s",
	}, nil)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if !services.IsRetryable(err) {
		t.Fatalf("expected retryable rejection, got %v", err)
	}
}

func TestFetchClassifiesGenericFailure(t *testing.T) {
	setHelperCommand(t, "fetchfail")

	cli := NewCLI()
	err := cli.Fetch(context.Background(), FetchRequest{
		URL:            "https://youtu.be/dQw4w9WgXcQ",
		FormatSpec:     "18",
		OutputTemplate: "/tmp/out.%(ext)s",
	}, nil)
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error marker, got %v", err)
	}
	if services.IsRetryable(err) {
		t.Fatalf("generic failure must not be retryable: %v", err)
	}
}

func TestSearchParsesFlatEntries(t *testing.T) {
	setHelperCommand(t, "search")

	cli := NewCLI()
	results, err := cli.Search(context.Background(), "test query", 2)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "aaaaaaaaaaa" || results[0].Title != "First" {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].Uploader != "Channel Two" {
		t.Fatalf("expected channel fallback for uploader, got %+v", results[1])
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Search(context.Background(), "  ", 5); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://example.com/video/123", "", false},
	}
	for _, tc := range cases {
		got, ok := VideoID(tc.url)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("VideoID(%q) = %q,%v want %q,%v", tc.url, got, ok, tc.want, tc.ok)
		}
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("YTDLP_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("YTDLP_HELPER_MODE") {
	case "extract":
		fmt.Println(`{"id":"dQw4w9WgXcQ","title":"Sample Video","description":"desc","duration":212,"uploader":"Sample Channel","view_count":1234567,"thumbnail":"https://i.ytimg.com/vi/dQw4w9WgXcQ/hq720.jpg","formats":[{"format_id":"18","ext":"mp4","height":360,"vcodec":"avc1.42001E","acodec":"mp4a.40.2","filesize":52428800},{"format_id":"137","ext":"mp4","height":1080,"vcodec":"avc1.640028","acodec":"none","filesize":524288000},{"format_id":"140","ext":"m4a","vcodec":"none","acodec":"mp4a.40.2","filesize_approx":10485760,"abr":128}]}`)
		os.Exit(0)
	case "extractfail":
		fmt.Fprintln(os.Stderr, "ERROR: [youtube] dQw4w9WgXcQ: Video unavailable")
		os.Exit(1)
	case "fetch":
		fmt.Println("[youtube] Extracting URL")
		fmt.Println(`OTPROG {"status":"downloading","downloaded_bytes":1048576,"total_bytes":52428800,"speed":2097152.5,"filename":"/tmp/out.mp4"}`)
		fmt.Println("OTPROG not-json")
		fmt.Println(`OTPROG {"status":"finished","downloaded_bytes":52428800,"total_bytes":52428800,"filename":"/tmp/out.mp4"}`)
		os.Exit(0)
	case "rejected":
		fmt.Fprintln(os.Stderr, "ERROR: [youtube] dQw4w9WgXcQ: Requested format is not available.")
		os.Exit(1)
	case "fetchfail":
		fmt.Fprintln(os.Stderr, "ERROR: unable to download video data: HTTP Error 403")
		os.Exit(1)
	case "search":
		fmt.Println(`{"id":"aaaaaaaaaaa","title":"First","duration":120,"uploader":"Channel One","view_count":10,"url":"https://www.youtube.com/watch?v=aaaaaaaaaaa"}`)
		fmt.Println(`{"id":"bbbbbbbbbbb","title":"Second","duration":240,"channel":"Channel Two","view_count":20,"url":"https://www.youtube.com/watch?v=bbbbbbbbbbb"}`)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}
