package preferences

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const preferencesFileName = "preferences.yaml"

// FileBackend keeps preferences in a flat YAML mapping on disk.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// DefaultPath resolves the preferences file inside the user config dir.
func DefaultPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, preferencesFileName), nil
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.readLocked()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set rewrites the file with key updated. An unreadable file is replaced.
func (b *FileBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.readLocked()
	if err != nil {
		values = map[string]string{}
	}
	values[key] = value

	serialized, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal preferences yaml: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o600); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

// readLocked returns scalar entries only; nested values are treated as absent.
func (b *FileBackend) readLocked() (map[string]string, error) {
	values := map[string]string{}

	rawData, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal(rawData, &nodes); err != nil {
		return nil, fmt.Errorf("parse preferences yaml: %w", err)
	}
	for key, node := range nodes {
		if node.Kind == yaml.ScalarNode {
			values[key] = node.Value
		}
	}
	return values, nil
}
