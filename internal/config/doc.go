// Package config loads, normalizes, and validates OfflineTube configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// server and CLI need: the download directory, yt-dlp invocation settings,
// progress polling cadence, and notification targets.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths and clear validation errors.
package config
