package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// FilePreferences persists preferences as a JSON object in a single file.
// Every Set and Delete rewrites the file.
type FilePreferences struct {
	path   string
	values map[string]string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFilePreferences opens (or lazily creates) the preference file at path.
func NewFilePreferences(path string, logger *slog.Logger) (*FilePreferences, error) {
	p := &FilePreferences{
		path:   path,
		values: make(map[string]string),
		logger: logger.With("component", "file_preferences"),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &p.values); err != nil {
			return nil, fmt.Errorf("decode preferences %s: %w", path, err)
		}
	}
	return p, nil
}

func (p *FilePreferences) Name() string { return "file" }

func (p *FilePreferences) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *FilePreferences) Set(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return p.flush()
}

func (p *FilePreferences) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.values[key]; !ok {
		return nil
	}
	delete(p.values, key)
	return p.flush()
}

func (p *FilePreferences) All(_ context.Context) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.values), nil
}

func (p *FilePreferences) Close() error { return nil }

// flush writes to a temp file, then renames it over the target. Caller holds mu.
func (p *FilePreferences) flush() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("rename preferences: %w", err)
	}

	p.logger.Debug("preferences written", "path", p.path, "keys", len(p.values))
	return nil
}
