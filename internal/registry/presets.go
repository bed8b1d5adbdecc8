// Package registry resolves human-friendly preset aliases to concrete model
// identifiers. A built-in table covers every modality; a YAML file can extend
// or override it.
package registry

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"modelhostd/internal/common/fsutil"
	"modelhostd/internal/scale"
)

// builtin maps the default preset for each modality. Tokens that match no
// alias are treated as concrete model identifiers and pass through.
var builtin = map[string]string{
	"default-chat":       scale.ModelChatLight,
	"default-completion": scale.ModelCompletionLight,
	"default-embedding":  "embedding-mini",
	"default-stt":        "stt-base",
	"default-tts":        "tts-base",
	"default-ocr":        "ocr-base",
}

// Presets is a read-mostly alias table. Safe for concurrent use.
type Presets struct {
	mu      sync.RWMutex
	aliases map[string]string
}

// Defaults returns a table holding only the built-in aliases.
func Defaults() *Presets {
	aliases := make(map[string]string, len(builtin))
	for k, v := range builtin {
		aliases[k] = v
	}
	return &Presets{aliases: aliases}
}

// Load reads a YAML alias file (flat map of preset -> model id) and merges it
// over the built-ins. An empty path returns the defaults.
func Load(path string) (*Presets, error) {
	p := Defaults()
	if path == "" {
		return p, nil
	}
	abs, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var file map[string]string
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for k, v := range file {
		if k == "" || v == "" {
			return nil, fmt.Errorf("presets: empty alias or target in %s", path)
		}
		p.aliases[k] = v
	}
	return p, nil
}

// Resolve maps a preset alias to its concrete model id. Unknown tokens pass
// through unchanged.
func (p *Presets) Resolve(token string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if id, ok := p.aliases[token]; ok {
		return id
	}
	return token
}

// List returns a copy of the alias table.
func (p *Presets) List() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.aliases))
	for k, v := range p.aliases {
		out[k] = v
	}
	return out
}
