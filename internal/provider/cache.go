package provider

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Cache remembers which provider kind was last used, so the next Connect can
// skip the choice.
type Cache interface {
	Load() (Kind, bool)
	Store(Kind) error
	Clear() error
}

// FileCache keeps the marker in the per-user cache directory.
//
//	macOS:   ~/Library/Caches/w3link/provider.json
//	Linux:   ~/.cache/w3link/provider.json
//	Windows: %LocalAppData%\w3link\provider.json
type FileCache struct {
	path string
}

// NewFileCache returns a cache at the default location.
func NewFileCache() *FileCache {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &FileCache{path: filepath.Join(dir, "w3link", "provider.json")}
}

// FileCacheAt returns a cache stored at path.
func FileCacheAt(path string) *FileCache {
	return &FileCache{path: path}
}

type cacheFile struct {
	Provider Kind `json:"provider"`
}

// Load returns the cached kind. A missing or unreadable file means none.
func (c *FileCache) Load() (Kind, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", false
	}
	k, err := ParseKind(string(f.Provider))
	if err != nil {
		return "", false
	}
	return k, true
}

func (c *FileCache) Store(k Kind) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(cacheFile{Provider: k})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}

func (c *FileCache) Clear() error {
	err := os.Remove(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemCache is a process-local Cache.
type MemCache struct {
	mu   sync.Mutex
	kind Kind
}

func (c *MemCache) Load() (Kind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind, c.kind != ""
}

func (c *MemCache) Store(k Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = k
	return nil
}

func (c *MemCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = ""
	return nil
}
