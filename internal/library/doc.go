// Package library reads persisted downloads back out of the output
// directory. There is no index: every listing is reconstructed from the
// media files and their metadata sidecars at read time.
package library
