package app

import (
	"fmt"

	"sentidash/internal/config"
	"sentidash/internal/logger"
	"sentidash/internal/platform"
	"sentidash/internal/schema"
)

type StartupSummary struct {
	HTTPAddr  string
	BaseURL   string
	Endpoints map[string]string
	Schemas   string
	Journal   string
}

func newStartupSummary(cfg *config.Config, schemas *schema.Registry) *StartupSummary {
	s := &StartupSummary{
		HTTPAddr:  cfg.App.HTTPAddr,
		BaseURL:   cfg.Service.BaseURL,
		Endpoints: make(map[string]string),
		Schemas:   "embedded",
		Journal:   "disabled",
	}
	for _, id := range platform.All() {
		s.Endpoints[id.String()] = cfg.Service.Endpoints.PlatformPath(id.String())
	}
	s.Endpoints["all"] = cfg.Service.Endpoints.AllPlatforms
	s.Endpoints["global"] = cfg.Service.Endpoints.GlobalCombined
	if schemas != nil {
		if src := schemas.Snapshot().Source; src != "" {
			s.Schemas = src
		}
	}
	if cfg.Journal.Enabled {
		s.Journal = fmt.Sprintf("in-memory, max %d entries", cfg.Journal.MaxEntries)
	}
	return s
}

// Print logs the summary as one startup section.
func (s *StartupSummary) Print() {
	logger.Section("startup", s.Lines())
}

func (s *StartupSummary) Lines() []string {
	lines := []string{
		"api: " + s.HTTPAddr,
		"service: " + s.BaseURL,
	}
	for _, target := range s.targets() {
		lines = append(lines, fmt.Sprintf("endpoint %s: %s", target, s.Endpoints[target]))
	}
	return append(lines, "schemas: "+s.Schemas, "journal: "+s.Journal)
}

func (s *StartupSummary) targets() []string {
	out := make([]string, 0, len(s.Endpoints))
	for _, id := range platform.All() {
		out = append(out, id.String())
	}
	return append(out, "all", "global")
}
