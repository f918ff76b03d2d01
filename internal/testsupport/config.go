package testsupport

import (
	"path/filepath"
	"testing"

	"crate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// External sources are disabled so nothing reaches the network by accident.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Discogs.Token = "test-token"
	cfg.Discogs.Username = "tester"
	cfg.Discogs.DelaySeconds = 0
	cfg.Discogs.RequestsPerMn = 6000
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.SiteDir = filepath.Join(base, "site")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.BackupDir = filepath.Join(base, "backups")
	cfg.AppleMusic.Enabled = false
	cfg.Spotify.Enabled = false
	cfg.Wikipedia.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDelay overrides the cataloging source delay on the test config.
func WithDelay(seconds float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Discogs.DelaySeconds = seconds
	}
}
