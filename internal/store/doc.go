// Package store persists the collection cache in SQLite.
//
// Four logical tables back the pipeline and the manual editor: canonical
// releases, artist records, the user-maintained skip list, and per-release
// completion markers used for resume. Records are stored as JSON documents
// with the identifying columns (ids, slugs) lifted out for indexing.
//
// The pipeline is the sole writer during a run; the editor reads and writes
// the same tables between runs. Release upserts commit before the matching
// progress marker so an interrupted run never leaves a marker without data.
package store
