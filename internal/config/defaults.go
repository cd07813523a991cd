package config

import "path/filepath"

const (
	defaultDataDir             = "~/.local/share/filterbridge"
	defaultSocketName          = "filterbridge.sock"
	defaultMaxMessageBytes     = 4 << 20
	defaultWriteTimeoutSeconds = 5
	defaultLocale              = "en"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// DefaultAntiBannerFilterIDs mirrors the identifiers the options page knows by
// name.
func DefaultAntiBannerFilterIDs() map[string]int {
	return map[string]int{
		"RUSSIAN_FILTER_ID":               1,
		"ENGLISH_FILTER_ID":               2,
		"TRACKING_FILTER_ID":              3,
		"SOCIAL_FILTER_ID":                4,
		"GERMAN_FILTER_ID":                6,
		"JAPANESE_FILTER_ID":              7,
		"SEARCH_AND_SELF_PROMO_FILTER_ID": 10,
		"MOBILE_ADS_FILTER_ID":            11,
		"ANNOYANCES_FILTER_ID":            14,
		"FRENCH_FILTER_ID":                16,
		"URL_TRACKING_FILTER_ID":          17,
	}
}

// DefaultSocketPath returns the expanded socket location used when no
// configuration overrides it.
func DefaultSocketPath() string {
	path, err := expandPath(filepath.Join(defaultDataDir, defaultSocketName))
	if err != nil {
		return filepath.Join(defaultDataDir, defaultSocketName)
	}
	return path
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		UI: UI{
			MaxMessageBytes:     defaultMaxMessageBytes,
			WriteTimeoutSeconds: defaultWriteTimeoutSeconds,
		},
		Environment: Environment{
			IsMacOS: true,
			Locale:  defaultLocale,
		},
		Filters: Filters{
			AntiBannerIDs: DefaultAntiBannerFilterIDs(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
