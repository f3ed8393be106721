// Package media models the encoding catalog for one source video and the
// metadata sidecar persisted next to downloaded files.
//
// A Catalog is built once per job from the raw format lists returned by the
// extraction collaborator; it is read-only after construction. When extraction
// yields nothing, a synthetic placeholder catalog keeps downstream plan
// resolution functional.
package media
