// Package schema keeps the JSON Schemas used to spot malformed service responses.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"sentidash/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Shape names one response layout.
type Shape string

const (
	ShapeSingle Shape = "single"
	ShapeBundle Shape = "bundle"
	ShapeGlobal Shape = "global"
)

//go:embed default_schemas.yaml
var defaultSchemas []byte

// FileConfig maps the schema YAML. Top-level keys other than "schemas" are
// allowed so files can hold YAML anchors.
type FileConfig struct {
	Schemas map[string]map[string]any `yaml:"schemas"`
}

// Snapshot is the compiled set in effect.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Source   string
	schemas  map[Shape]*jsonschema.Schema
}

// Registry compiles response schemas and optionally reloads them when the file changes.
type Registry struct {
	path string

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewRegistry loads schemas from path, or the embedded defaults when path is empty.
// With watch set, edits to the file are picked up without a restart.
func NewRegistry(path string, watch bool) (*Registry, error) {
	r := &Registry{path: strings.TrimSpace(path)}
	if err := r.reload(); err != nil {
		return nil, err
	}
	if r.path == "" || !watch {
		return r, nil
	}
	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schema file failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("response schema reload failed (%s): %v", evt.Name, err)
		}
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot returns the metadata of the active schema set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Check validates raw against the schema for shape and returns one line per
// violation. Unknown shapes and unparsable bodies are reported, not panicked on.
func (r *Registry) Check(shape Shape, raw []byte) []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	sch := r.snapshot.schemas[shape]
	r.mu.RUnlock()
	if sch == nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return []string{fmt.Sprintf("body is not JSON: %v", err)}
	}
	err := sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	collectViolations(ve, &out)
	sort.Strings(out)
	return out
}

func collectViolations(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}

func (r *Registry) reload() error {
	raw := defaultSchemas
	source := "embedded"
	if r.path != "" {
		data, err := os.ReadFile(r.path)
		if err != nil {
			return fmt.Errorf("read schema file failed: %w", err)
		}
		raw = data
		source = filepath.Base(r.path)
	}
	cfg, err := decodeFile(raw)
	if err != nil {
		return err
	}
	compiled := make(map[Shape]*jsonschema.Schema, len(cfg.Schemas))
	for name, doc := range cfg.Schemas {
		shape := Shape(strings.ToLower(strings.TrimSpace(name)))
		sch, err := compileSchema(string(shape), doc)
		if err != nil {
			return fmt.Errorf("compile schema %s failed: %w", shape, err)
		}
		compiled[shape] = sch
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Source:   source,
		schemas:  compiled,
	}
	r.mu.Unlock()
	logger.Infof("response schemas loaded: %d shapes from %s", len(compiled), source)
	return nil
}

func decodeFile(raw []byte) (FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse schema file failed: %w", err)
	}
	if len(cfg.Schemas) == 0 {
		return FileConfig{}, fmt.Errorf("schema file defines no schemas")
	}
	return cfg, nil
}

func compileSchema(name string, doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}
