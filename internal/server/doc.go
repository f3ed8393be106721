// Package server exposes the HTTP and websocket surface: search and
// metadata lookups, synchronous downloads, the streaming download session,
// library listing/serving/deletion, and daemon status.
package server
