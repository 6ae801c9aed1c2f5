// Package cache stores rendered analysis results keyed by target file. An
// entry is valid only while the target, every followed import, and the tool
// version are unchanged.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides file-based caching of analysis output.
type Cache struct {
	dir     string
	version string
	enabled bool
}

// Entry is one cached result with everything needed to check its validity.
type Entry struct {
	Hash      string            `json:"hash"`
	Imports   map[string]string `json:"imports,omitempty"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Data      []byte            `json:"data"`
}

// New creates a cache rooted at dir. A disabled cache accepts every call
// and stores nothing.
func New(dir, version string, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, version: version, enabled: true}, nil
}

// HashFile computes a BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Get returns the cached data for a target if every recorded hash still
// matches the files on disk.
func (c *Cache) Get(target string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	raw, err := os.ReadFile(c.entryPath(target))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}

	if entry.Version != c.version {
		return nil, false
	}
	if hash, err := HashFile(target); err != nil || hash != entry.Hash {
		return nil, false
	}
	for path, recorded := range entry.Imports {
		if hash, err := HashFile(path); err != nil || hash != recorded {
			return nil, false
		}
	}
	return entry.Data, true
}

// Set stores data for a target along with the hashes of the files it was
// derived from. imports maps each followed file path to its content hash.
func (c *Cache) Set(target string, imports map[string]string, data []byte) error {
	if !c.enabled {
		return nil
	}

	hash, err := HashFile(target)
	if err != nil {
		return err
	}
	entry := Entry{
		Hash:      hash,
		Imports:   imports,
		Version:   c.version,
		Timestamp: time.Now(),
		Data:      data,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(c.entryPath(target), raw, 0600)
}

// Invalidate removes the entry for a target.
func (c *Cache) Invalidate(target string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.entryPath(target))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// entryPath hashes the absolute target path into a filename, avoiding
// collisions between targets of the same basename.
func (c *Cache) entryPath(target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	hash := blake3.Sum256([]byte(abs))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats summarises the cache contents.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats walks the cache directory and returns its statistics.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
