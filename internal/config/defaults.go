package config

import "strings"

const (
	defaultAppEnv             = "dev"
	defaultAppLogLevel        = "info"
	defaultAppHTTPAddr        = ":8088"
	defaultServiceBaseURL     = "http://127.0.0.1:5000"
	defaultPlatformPrefix     = "/predict-all-"
	defaultAllPlatformsPath   = "/predict-all"
	defaultGlobalCombinedPath = "/predict-combined"
	defaultJournalMaxEntries  = 500
)

// Default returns a configuration with every default applied and nothing read from disk.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(nil)
	return &cfg
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Service.applyDefaults(keys)
	c.Journal.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (s *ServiceConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("service.base_url", &s.BaseURL, defaultServiceBaseURL),
		stringFieldDefault("service.endpoints.platform_prefix", &s.Endpoints.PlatformPrefix, defaultPlatformPrefix),
		stringFieldDefault("service.endpoints.all_platforms", &s.Endpoints.AllPlatforms, defaultAllPlatformsPath),
		stringFieldDefault("service.endpoints.global_combined", &s.Endpoints.GlobalCombined, defaultGlobalCombinedPath),
	)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
}

func (j *JournalConfig) applyDefaults(keys keySet) {
	if j == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("journal.enabled", &j.Enabled, true),
		fieldDefault{
			key:   "journal.max_entries",
			need:  func() bool { return j.MaxEntries <= 0 },
			apply: func() { j.MaxEntries = defaultJournalMaxEntries },
		},
	)
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
