// Package main hosts the crate CLI entrypoint and command graph.
//
// The Cobra-based command tree covers collection syncing, cache inspection,
// skip-list maintenance, site re-rendering, the manual-editing server, and
// configuration scaffolding. It centralizes configuration resolution, the
// run lock, and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
