package config

import "strings"

// Config is the root configuration for sentidash.
type Config struct {
	App     AppConfig     `toml:"app"`
	Service ServiceConfig `toml:"service"`
	Schema  SchemaConfig  `toml:"schema"`
	Journal JournalConfig `toml:"journal"`
}

type AppConfig struct {
	Env         string `toml:"env"`
	LogLevel    string `toml:"log_level"`
	HTTPAddr    string `toml:"http_addr"`
	LogPath     string `toml:"log_path"`
	PayloadLog  string `toml:"payload_log_path"`
	DumpPayload bool   `toml:"dump_payload"`
}

// ServiceConfig describes how to reach the remote classification service.
type ServiceConfig struct {
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds <= 0 leaves the transport default in place.
	TimeoutSeconds int             `toml:"timeout_seconds"`
	Endpoints      EndpointsConfig `toml:"endpoints"`
}

// EndpointsConfig holds the request paths relative to BaseURL.
// PlatformPrefix is joined with the platform id, e.g. /predict-all-imdb.
type EndpointsConfig struct {
	PlatformPrefix string `toml:"platform_prefix"`
	AllPlatforms   string `toml:"all_platforms"`
	GlobalCombined string `toml:"global_combined"`
}

// PlatformPath returns the per-platform prediction path.
func (e EndpointsConfig) PlatformPath(platform string) string {
	return e.PlatformPrefix + strings.ToLower(strings.TrimSpace(platform))
}

// SchemaConfig points at an optional YAML file of response schemas.
// Empty Path uses the embedded defaults.
type SchemaConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// JournalConfig controls the in-memory dispatch journal.
type JournalConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// keySet tracks which dotted paths were explicitly present in the config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}
