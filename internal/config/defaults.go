package config

const (
	defaultArchiveRoot     = "."
	defaultDigest          = "sha1"
	defaultNameDelimiter   = "."
	defaultPagePattern     = `[a-zA-Z]*\d+[rv]`
	defaultCropWorkers     = 4
	defaultCropTimeout     = 30
	defaultIdentifyBinary  = "identify"
	defaultConvertBinary   = "convert"
	defaultProbeTimeout    = 60
	defaultCacheBooks      = 64
	defaultCacheTTLSeconds = 0
	defaultLogFormat       = "text"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Archive: Archive{
			Root:            defaultArchiveRoot,
			DigestAlgorithm: defaultDigest,
			NameDelimiter:   defaultNameDelimiter,
			PagePattern:     defaultPagePattern,
		},
		Crop: Crop{
			Workers:        defaultCropWorkers,
			TimeoutMinutes: defaultCropTimeout,
		},
		Tools: Tools{
			Identify:            defaultIdentifyBinary,
			Convert:             defaultConvertBinary,
			ProbeTimeoutSeconds: defaultProbeTimeout,
		},
		Cache: Cache{
			Books:      defaultCacheBooks,
			TTLSeconds: defaultCacheTTLSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
