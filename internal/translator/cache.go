package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheEntry is one stored translation.
type CacheEntry struct {
	Key         string    `json:"key"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

// CacheFile is the on-disk cache format.
type CacheFile struct {
	Version string       `json:"version"`
	Entries []CacheEntry `json:"entries"`
}

// Key derives the cache key for a translation request. The key covers
// everything that changes the output: source text, language pair and
// model, so a model or target-language switch never serves a stale
// translation.
func Key(text, langIn, langOut, modelID string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(langIn))
	h.Write([]byte{0})
	h.Write([]byte(langOut))
	h.Write([]byte{0})
	h.Write([]byte(modelID))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache stores translations keyed by content hash. Entries are written
// once and never overwritten or evicted; a key's translation is stable
// for the life of the cache. Resolve collapses concurrent misses for the
// same key into a single producer call.
type Cache struct {
	cachePath string
	entries   map[string]CacheEntry
	mu        sync.RWMutex
	group     singleflight.Group
}

// NewCache creates an empty cache persisting to cachePath. An empty path
// disables persistence.
func NewCache(cachePath string) *Cache {
	return &Cache{
		cachePath: cachePath,
		entries:   make(map[string]CacheEntry),
	}
}

// Get returns the cached translation for a key, if present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	return entry.Translation, true
}

// Resolve returns the translation for key, calling produce at most once
// across all concurrent callers when the key is absent. The first
// successful production wins and is stored; later Resolve calls for the
// same key return the stored value without calling produce. A failed
// production stores nothing, so the key can be retried.
func (c *Cache) Resolve(key string, produce func() (string, error)) (string, error) {
	if translation, ok := c.Get(key); ok {
		return translation, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the group: another caller may have produced and
		// stored the value between our Get and Do.
		if translation, ok := c.Get(key); ok {
			return translation, nil
		}

		translation, err := produce()
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		if existing, ok := c.entries[key]; ok {
			translation = existing.Translation
		} else {
			c.entries[key] = CacheEntry{
				Key:         key,
				Translation: translation,
				CreatedAt:   time.Now(),
			}
		}
		c.mu.Unlock()

		return translation, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Load reads the cache file. A missing file starts an empty cache.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachePath == "" {
		return nil
	}
	if _, err := os.Stat(c.cachePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return err
	}

	var cacheFile CacheFile
	if err := json.Unmarshal(data, &cacheFile); err != nil {
		return err
	}

	c.entries = make(map[string]CacheEntry, len(cacheFile.Entries))
	for _, entry := range cacheFile.Entries {
		c.entries[entry.Key] = entry
	}

	return nil
}

// Save writes the cache file.
func (c *Cache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachePath == "" {
		return nil
	}

	entries := make([]CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}

	cacheFile := CacheFile{
		Version: "1.0",
		Entries: entries,
	}

	data, err := json.MarshalIndent(cacheFile, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.cachePath, data, 0644)
}

// Size returns the number of cached translations.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
