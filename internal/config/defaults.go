package config

const (
	defaultOutputDir              = "~/.local/share/pcsteps/processed"
	defaultLogDir                 = "~/.local/share/pcsteps/logs"
	defaultRegistryPath           = "~/.local/share/pcsteps/registry.db"
	defaultIndexerBaseURL         = "https://api.twelvelabs.io/v1.3"
	defaultIndexName              = "pc_building_videos"
	defaultIndexModel             = "marengo2.7"
	defaultIndexerTimeoutSeconds  = 60
	defaultRequestsPerSecond      = 2.0
	defaultBurst                  = 4
	defaultTaskIntervalSeconds    = 5
	defaultIndexIntervalSeconds   = 30
	defaultPollingTimeoutSeconds  = 7200
	defaultYtdlpBinary            = "yt-dlp"
	defaultVideoFormat            = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultMinCacheBytes          = 1024 * 1024
	defaultCacheMaxGiB            = 20
	defaultDownloadTimeoutSeconds = 3600
	defaultInfoTimeoutSeconds     = 60
	defaultPageLimit              = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 14
	defaultNtfyTimeoutSeconds     = 10
	indexerAPIKeyEnv              = "TWELVE_LABS_API_KEY"
	indexerIndexIDEnv             = "TWELVE_LABS_INDEX_ID"
	defaultRegistryEnabled        = true
	maxPageLimit                  = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:     defaultOutputDir,
			LogDir:        defaultLogDir,
			VideoCacheDir: defaultVideoCacheDir(),
			RegistryPath:  defaultRegistryPath,
		},
		Indexer: Indexer{
			BaseURL:           defaultIndexerBaseURL,
			IndexName:         defaultIndexName,
			Model:             defaultIndexModel,
			TimeoutSeconds:    defaultIndexerTimeoutSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
			Burst:             defaultBurst,
		},
		Polling: Polling{
			TaskIntervalSeconds:  defaultTaskIntervalSeconds,
			IndexIntervalSeconds: defaultIndexIntervalSeconds,
			TimeoutSeconds:       defaultPollingTimeoutSeconds,
		},
		VideoSource: VideoSource{
			Binary:                 defaultYtdlpBinary,
			Format:                 defaultVideoFormat,
			MinCacheBytes:          defaultMinCacheBytes,
			CacheMaxGiB:            defaultCacheMaxGiB,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
			InfoTimeoutSeconds:     defaultInfoTimeoutSeconds,
		},
		Extraction: Extraction{
			PageLimit: defaultPageLimit,
		},
		Registry: Registry{
			Enabled: defaultRegistryEnabled,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
