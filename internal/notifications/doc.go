// Package notifications delivers push notifications for terminal download
// states via ntfy. Unconfigured installs get a noop implementation so
// callers never branch.
package notifications
