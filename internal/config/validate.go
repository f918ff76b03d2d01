package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDiscogs(); err != nil {
		return err
	}
	if err := c.validateAppleMusic(); err != nil {
		return err
	}
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDiscogs() error {
	if c.Discogs.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/crate/config.toml"
		}
		return fmt.Errorf("discogs.token is required. Set DISCOGS_TOKEN env var or edit %s (create with 'crate config init')", defaultPath)
	}
	if c.Discogs.Username == "" {
		return errors.New("discogs.username is required")
	}
	if c.Discogs.SortOrder != "asc" && c.Discogs.SortOrder != "desc" {
		return fmt.Errorf("discogs.sort_order must be \"asc\" or \"desc\", got %q", c.Discogs.SortOrder)
	}
	if c.Discogs.DelaySeconds < 0 {
		return fmt.Errorf("discogs.delay_seconds must not be negative, got %v", c.Discogs.DelaySeconds)
	}
	return nil
}

func (c *Config) validateAppleMusic() error {
	if !c.AppleMusic.Enabled {
		return nil
	}
	if c.AppleMusic.KeyID == "" || c.AppleMusic.TeamID == "" || c.AppleMusic.PrivateKeyPath == "" {
		return errors.New("apple_music requires key_id, team_id, and private_key_path (or set apple_music.enabled = false)")
	}
	if _, err := os.Stat(c.AppleMusic.PrivateKeyPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("apple_music.private_key_path %q does not exist", c.AppleMusic.PrivateKeyPath)
		}
		return fmt.Errorf("stat apple music private key: %w", err)
	}
	if len(c.AppleMusic.Storefront) != 2 {
		return fmt.Errorf("apple_music.storefront must be a two-letter code, got %q", c.AppleMusic.Storefront)
	}
	return nil
}

func (c *Config) validateSpotify() error {
	if !c.Spotify.Enabled {
		return nil
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return errors.New("spotify requires client_id and client_secret (or set spotify.enabled = false)")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must not be empty")
	}
	if c.Paths.SiteDir == "" {
		return errors.New("paths.site_dir must not be empty")
	}
	return nil
}
