// Package services defines the error taxonomy shared by the download
// orchestrator and its collaborators.
//
// Errors are tagged with sentinel markers via Wrap so callers can classify a
// failure (extraction, format rejection, fetch, missing output) with errors.Is
// without parsing message text.
package services
