// Package ytdlp wraps the yt-dlp command line tool. It covers the three
// operations the rest of the system needs: metadata extraction under a
// chosen access profile, the actual media fetch with machine-readable
// progress lines, and keyword search. The binary is treated as an opaque
// collaborator; everything crosses the boundary as JSON on stdout.
package ytdlp
