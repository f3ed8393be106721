// Package daemon coordinates the long-running download service: it owns the
// single-instance lock, the history store, the job supervisor, and the HTTP
// front end, and ties their lifetimes to one context.
package daemon
