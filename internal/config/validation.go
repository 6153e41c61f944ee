package config

import (
	"fmt"
	"net/url"
	"strings"

	"sentidash/internal/logger"
)

func validate(c *Config) error {
	if _, ok := logger.ParseLevel(c.App.LogLevel); !ok {
		return fmt.Errorf("app.log_level must be debug, info, warn or error, got %q", c.App.LogLevel)
	}
	if err := c.Service.validate(); err != nil {
		return err
	}
	if c.Journal.MaxEntries < 0 {
		return fmt.Errorf("journal.max_entries must be >= 0")
	}
	return nil
}

func (s *ServiceConfig) validate() error {
	raw := strings.TrimSpace(s.BaseURL)
	if raw == "" {
		return fmt.Errorf("service.base_url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("service.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("service.base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("service.base_url is missing a host")
	}
	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("service.timeout_seconds must be >= 0")
	}
	for name, path := range map[string]string{
		"service.endpoints.platform_prefix": s.Endpoints.PlatformPrefix,
		"service.endpoints.all_platforms":   s.Endpoints.AllPlatforms,
		"service.endpoints.global_combined": s.Endpoints.GlobalCombined,
	} {
		if !strings.HasPrefix(strings.TrimSpace(path), "/") {
			return fmt.Errorf("%s must start with '/'", name)
		}
	}
	return nil
}
