// Package downloads owns the download job lifecycle: probing the extractor
// under several access profiles, resolving a fetch plan, running the fetch
// with fused hook-and-poller progress, retrying once on execution-time
// format rejection, and finalizing the output with its metadata sidecar.
//
// Each job emits a bounded event stream. Progress events coalesce when the
// consumer lags; the single terminal event is always delivered and always
// last, after which the stream closes.
package downloads
