package core

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ParseFunc turns a raw payload into a gated batch.
type ParseFunc func(data []byte, rules Rules) (*Batch, error)

// FormatDefinition describes one importable file format.
type FormatDefinition struct {
	Format      Format
	Kind        ImportKind
	Label       string
	Extensions  []string // Lowercase, with leading dot
	ContentType string   // Used for template downloads
	Parse       ParseFunc
	Template    func() ([]byte, error)
}

var (
	registry   = make(map[Format]FormatDefinition)
	registryMu sync.RWMutex
)

// Register adds a format definition to the registry.
// Panics if the format or one of its extensions is already registered.
func Register(def FormatDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Format]; exists {
		panic(fmt.Sprintf("format already registered: %s", def.Format))
	}
	for _, other := range registry {
		for _, ext := range def.Extensions {
			for _, taken := range other.Extensions {
				if ext == taken {
					panic(fmt.Sprintf("extension %s already registered by %s", ext, other.Format))
				}
			}
		}
	}

	registry[def.Format] = def
}

// Get returns a format definition by format name.
// Returns false if not found.
func Get(format Format) (FormatDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[format]
	return def, ok
}

// DetectFormat picks the format for a file name by its extension.
// Matching ignores case; a name without a known extension is unsupported.
func DetectFormat(fileName string) (FormatDefinition, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	registryMu.RLock()
	defer registryMu.RUnlock()

	if ext != "" {
		for _, def := range registry {
			for _, e := range def.Extensions {
				if e == ext {
					return def, nil
				}
			}
		}
	}

	return FormatDefinition{}, newImportError(KindUnsupportedFormat, nil, "Unsupported file type: %q", fileName)
}

// All returns all registered format definitions sorted by format name.
func All() []FormatDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormatDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Format < result[j].Format
	})

	return result
}

// Extensions returns every accepted extension, sorted.
func Extensions() []string {
	var exts []string
	for _, def := range All() {
		exts = append(exts, def.Extensions...)
	}
	sort.Strings(exts)
	return exts
}

// Clear removes all registered formats.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[Format]FormatDefinition)
}
