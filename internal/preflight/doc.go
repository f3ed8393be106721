// Package preflight verifies the runtime environment before the daemon
// starts serving and before CLI downloads run: the fetch binary must be on
// PATH and the download directory must exist, be writable, and have enough
// free space.
package preflight
