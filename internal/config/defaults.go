package config

const (
	defaultCacheDir        = "~/.local/share/crate"
	defaultSiteDir         = "~/records/website"
	defaultPostsDir        = "content/albums"
	defaultArtistsDir      = "content/artists"
	defaultLogDir          = "~/.local/share/crate/logs"
	defaultBackupDir       = "~/.local/share/crate/backups"
	defaultDiscogsBaseURL  = "https://api.discogs.com"
	defaultDiscogsPageSize = 100
	defaultSortOrder       = "desc"
	defaultDelaySeconds    = 2.0
	defaultRequestsPerMn   = 25
	defaultStorefront      = "gb"
	defaultArtworkSize     = 2000
	defaultWikipediaURL    = "https://en.wikipedia.org/api/rest_v1"
	defaultRetryAttempts   = 3
	defaultRetryBaseMS     = 1000
	defaultRetryMaxMS      = 30000
	defaultRetryJitterPct  = 20
	defaultImageRetries    = 3
	defaultEditorBind      = "127.0.0.1:5173"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:   defaultCacheDir,
			SiteDir:    defaultSiteDir,
			PostsDir:   defaultPostsDir,
			ArtistsDir: defaultArtistsDir,
			LogDir:     defaultLogDir,
			BackupDir:  defaultBackupDir,
		},
		Discogs: Discogs{
			BaseURL:       defaultDiscogsBaseURL,
			PageSize:      defaultDiscogsPageSize,
			SortOrder:     defaultSortOrder,
			DelaySeconds:  defaultDelaySeconds,
			RequestsPerMn: defaultRequestsPerMn,
		},
		// Credentialed sources start disabled so a bare config with only
		// the Discogs token validates. Enabling them in the config file
		// makes their credentials required.
		AppleMusic: AppleMusic{
			Enabled:     false,
			Storefront:  defaultStorefront,
			ArtworkSize: defaultArtworkSize,
		},
		Spotify: Spotify{
			Enabled: false,
		},
		Wikipedia: Wikipedia{
			Enabled: true,
			BaseURL: defaultWikipediaURL,
		},
		Retry: Retry{
			MaxAttempts:  defaultRetryAttempts,
			BaseDelayMS:  defaultRetryBaseMS,
			MaxDelayMS:   defaultRetryMaxMS,
			JitterPct:    defaultRetryJitterPct,
			ImageRetries: defaultImageRetries,
		},
		Editor: Editor{
			Bind: defaultEditorBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
