package config

const (
	defaultDownloadDir      = "~/Downloads/offlinetube"
	defaultLogDir           = "~/.local/share/offlinetube/logs"
	defaultAPIBind          = "127.0.0.1:8001"
	defaultYtDlpBinary      = "yt-dlp"
	defaultExtractTimeout   = 60
	defaultFetchTimeout     = 3600
	defaultMergeFormat      = "mp4"
	defaultSearchMaxResults = 20
	defaultPollIntervalMS   = 500
	defaultMinFreeGiB       = 1
	defaultNtfyTimeout      = 10
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
)

// defaultPlayerClients lists the upstream access profiles tried during
// extraction, in attempt order. Each client may expose a different slice of
// the available formats.
func defaultPlayerClients() []string {
	return []string{"web", "android", "ios"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		YtDlp: YtDlp{
			Binary:           defaultYtDlpBinary,
			PlayerClients:    defaultPlayerClients(),
			ExtractTimeout:   defaultExtractTimeout,
			FetchTimeout:     defaultFetchTimeout,
			MergeFormat:      defaultMergeFormat,
			SearchMaxResults: defaultSearchMaxResults,
		},
		Progress: Progress{
			PollIntervalMS: defaultPollIntervalMS,
		},
		Preflight: Preflight{
			MinFreeGiB: defaultMinFreeGiB,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			OnComplete:     true,
			OnError:        true,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
