package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore persists snapshots as JSON files under a base directory, one file
// per meeting.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a filesystem-backed snapshot store rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (fs *FileStore) Put(ctx context.Context, key string, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := fs.keyToPath(key)

	// Write to a temp file and rename so readers never see a partial snapshot.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

func (fs *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s", key)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

func (fs *FileStore) Delete(ctx context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.keyToPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (fs *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key := pathToKey(strings.TrimSuffix(entry.Name(), ".json"))
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (fs *FileStore) Close() error {
	return nil
}

// keyToPath maps a key to a flat file name; colons in keys are not portable
// across filesystems, so they become double underscores.
func (fs *FileStore) keyToPath(key string) string {
	safe := strings.ReplaceAll(key, ":", "__")
	return filepath.Join(fs.basePath, safe+".json")
}

func pathToKey(name string) string {
	return strings.ReplaceAll(name, "__", ":")
}
