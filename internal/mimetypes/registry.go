// Package mimetypes maps file names to media types using an embedded table.
package mimetypes

import (
	_ "embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/types.yaml
var typesFile []byte

// fileFormat is the YAML layout of config/types.yaml
type fileFormat struct {
	Default string              `yaml:"default"`
	Types   map[string][]string `yaml:"types"`
}

// Registry resolves media types by extension
type Registry struct {
	mu          sync.RWMutex
	byExt       map[string]string
	defaultType string
}

// NewRegistry loads the embedded extension table
func NewRegistry() (*Registry, error) {
	r, err := parse(typesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load media types: %w", err)
	}
	return r, nil
}

func parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal types: %w", err)
	}
	if f.Default == "" {
		return nil, fmt.Errorf("default media type is required")
	}

	r := &Registry{
		byExt:       make(map[string]string),
		defaultType: f.Default,
	}
	for mediaType, exts := range f.Types {
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if existing, ok := r.byExt[ext]; ok {
				return nil, fmt.Errorf("extension %q mapped to both %s and %s", ext, existing, mediaType)
			}
			r.byExt[ext] = mediaType
		}
	}
	return r, nil
}

// Lookup returns the media type registered for name's extension
func (r *Registry) Lookup(name string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	mediaType, ok := r.byExt[ext]
	return mediaType, ok
}

// Detect picks the media type for an upload. A declared type wins unless it
// is empty or the generic default.
func (r *Registry) Detect(name, declared string) string {
	if declared != "" && declared != r.defaultType {
		return declared
	}
	if mediaType, ok := r.Lookup(name); ok {
		return mediaType
	}
	return r.defaultType
}

// Register adds or replaces an extension mapping
func (r *Registry) Register(ext, mediaType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))] = mediaType
}
