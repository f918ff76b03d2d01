// Package sources defines the shared contract for external metadata
// providers: the error taxonomy that separates permanent misses from
// transient faults, and the bounded retry policy clients run under.
//
// Concrete clients live in subpackages (discogs, applemusic, spotify,
// wikipedia). Each client classifies HTTP outcomes with this package so
// the pipeline can decide whether to retry, fall back, or halt.
package sources
