package config

import (
	"fmt"
	"strings"
)

// normalize expands paths and canonicalizes string fields after decode.
func (c *Config) normalize() error {
	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return err
	}
	if c.Paths.SiteDir, err = expandPath(c.Paths.SiteDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return err
	}
	if c.AppleMusic.PrivateKeyPath, err = expandPath(c.AppleMusic.PrivateKeyPath); err != nil {
		return err
	}

	c.Paths.PostsDir = strings.Trim(strings.TrimSpace(c.Paths.PostsDir), "/")
	c.Paths.ArtistsDir = strings.Trim(strings.TrimSpace(c.Paths.ArtistsDir), "/")

	c.Discogs.BaseURL = strings.TrimRight(strings.TrimSpace(c.Discogs.BaseURL), "/")
	c.Wikipedia.BaseURL = strings.TrimRight(strings.TrimSpace(c.Wikipedia.BaseURL), "/")
	c.Discogs.SortOrder = strings.ToLower(strings.TrimSpace(c.Discogs.SortOrder))
	c.AppleMusic.Storefront = strings.ToLower(strings.TrimSpace(c.AppleMusic.Storefront))

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Discogs.PageSize <= 0 {
		c.Discogs.PageSize = defaultDiscogsPageSize
	}
	if c.Discogs.PageSize > 100 {
		return fmt.Errorf("discogs.page_size must be at most 100, got %d", c.Discogs.PageSize)
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = defaultRetryAttempts
	}
	if c.Retry.BaseDelayMS <= 0 {
		c.Retry.BaseDelayMS = defaultRetryBaseMS
	}
	if c.Retry.MaxDelayMS < c.Retry.BaseDelayMS {
		c.Retry.MaxDelayMS = defaultRetryMaxMS
	}
	if c.AppleMusic.ArtworkSize <= 0 {
		c.AppleMusic.ArtworkSize = defaultArtworkSize
	}
	return nil
}
