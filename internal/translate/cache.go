package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"substream/internal/logging"
)

// Cache persists chunk translations keyed by text plus language pair so a
// re-translated file costs no network calls. A Cache with an empty path is
// a functional no-op.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]string
}

// NewCache loads the cache file if present. Load failures start an empty
// cache rather than failing the daemon.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Cache{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "translatecache"),
		entries: make(map[string]string),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		c.logger.Warn("failed to load translation cache",
			logging.String(logging.FieldEventType, "translation_cache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"))
	}
	return c
}

func cacheKey(text, source, target string) string {
	return source + "|" + target + "|" + text
}

// Lookup returns the cached translation for a chunk if present.
func (c *Cache) Lookup(text, source, target string) (string, bool) {
	if c.path == "" {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	translated, found := c.entries[cacheKey(text, source, target)]
	return translated, found
}

// Store records a translation and persists the file.
func (c *Cache) Store(text, source, target, translated string) error {
	if text == "" {
		return errors.New("cache key text cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(text, source, target)] = translated
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Len reports how many translations are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return fmt.Errorf("parse cache: %w", err)
	}
	return nil
}

// save writes atomically: temp file in the same directory, then rename.
// Caller holds the write lock.
func (c *Cache) save() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".translations-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
