package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for the cache and site output.
type Paths struct {
	CacheDir   string `toml:"cache_dir"`
	SiteDir    string `toml:"site_dir"`
	PostsDir   string `toml:"posts_dir"`
	ArtistsDir string `toml:"artists_dir"`
	LogDir     string `toml:"log_dir"`
	BackupDir  string `toml:"backup_dir"`
}

// Discogs contains configuration for the cataloging source.
type Discogs struct {
	Token         string  `toml:"token"`
	Username      string  `toml:"username"`
	BaseURL       string  `toml:"base_url"`
	PageSize      int     `toml:"page_size"`
	SortOrder     string  `toml:"sort_order"` // "asc" or "desc" by date added
	DelaySeconds  float64 `toml:"delay_seconds"`
	RequestsPerMn int     `toml:"requests_per_minute"`
}

// AppleMusic contains configuration for the Apple Music catalog API.
type AppleMusic struct {
	Enabled        bool   `toml:"enabled"`
	KeyID          string `toml:"key_id"`
	TeamID         string `toml:"team_id"`
	PrivateKeyPath string `toml:"private_key_path"`
	Storefront     string `toml:"storefront"`
	ArtworkSize    int    `toml:"artwork_size"`
}

// Spotify contains client-credentials configuration for the Spotify API.
type Spotify struct {
	Enabled      bool   `toml:"enabled"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Wikipedia contains configuration for artist summary lookups.
type Wikipedia struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Contact string `toml:"contact"` // included in the User-Agent per Wikimedia policy
}

// Retry contains the bounded-attempt policy applied to transient failures.
type Retry struct {
	MaxAttempts  int `toml:"max_attempts"`
	BaseDelayMS  int `toml:"base_delay_ms"`
	MaxDelayMS   int `toml:"max_delay_ms"`
	JitterPct    int `toml:"jitter_pct"`
	ImageRetries int `toml:"image_retries"`
}

// Editor contains configuration for the manual-editing web interface.
type Editor struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for crate.
//
// Configuration sections by subsystem:
//   - Paths: cache database, site output, and log directories
//   - Discogs: cataloging source credentials and throttling
//   - AppleMusic: catalog search and developer token signing
//   - Spotify: album search via client credentials
//   - Wikipedia: artist summary lookups
//   - Retry: transient failure retry policy shared by source clients
//   - Editor: manual-editing web interface bind address
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Discogs    Discogs    `toml:"discogs"`
	AppleMusic AppleMusic `toml:"apple_music"`
	Spotify    Spotify    `toml:"spotify"`
	Wikipedia  Wikipedia  `toml:"wikipedia"`
	Retry      Retry      `toml:"retry"`
	Editor     Editor     `toml:"editor"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/crate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("crate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// applyEnvOverrides lets secrets live outside the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DISCOGS_TOKEN"); v != "" {
		c.Discogs.Token = v
	}
	if v := os.Getenv("DISCOGS_USERNAME"); v != "" {
		c.Discogs.Username = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("APPLE_MUSIC_KEY_ID"); v != "" {
		c.AppleMusic.KeyID = v
	}
	if v := os.Getenv("APPLE_MUSIC_TEAM_ID"); v != "" {
		c.AppleMusic.TeamID = v
	}
	if v := os.Getenv("APPLE_MUSIC_PRIVATE_KEY"); v != "" {
		c.AppleMusic.PrivateKeyPath = v
	}
}

// EnsureDirectories creates the directories a run needs before any writes.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir, c.Paths.BackupDir, c.PostsPath(), c.ArtistsPath()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the cache database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.CacheDir, "collection.db")
}

// LockPath returns the location of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CacheDir, "crate.lock")
}

// PostsPath returns the directory release documents are rendered into.
func (c *Config) PostsPath() string {
	return filepath.Join(c.Paths.SiteDir, c.Paths.PostsDir)
}

// ArtistsPath returns the directory artist documents are rendered into.
func (c *Config) ArtistsPath() string {
	return filepath.Join(c.Paths.SiteDir, c.Paths.ArtistsDir)
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to the given path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
