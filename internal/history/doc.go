// Package history persists download job records in SQLite. The supervisor
// writes through the Recorder hooks; the status surfaces read recent records
// back. Persistence is advisory, a write failure never affects a running job.
package history
