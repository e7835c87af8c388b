package exportcache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"orxport/internal/destpath"
	"orxport/internal/fileutil"
	"orxport/internal/logging"
	"orxport/internal/manifest"
	"orxport/internal/services"
)

// ErrNotCacheable marks a format and license mode combination that is never
// stored.
var ErrNotCacheable = errors.New("not cacheable")

// Cache is a content-addressed store of exported files rooted at one directory.
type Cache struct {
	root             string
	unlicensedVector bool
	logger           *slog.Logger

	mu   sync.Mutex
	dirs map[string]struct{}
}

// Option customizes New.
type Option func(*Cache)

// WithLogger routes cache diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logging.NewComponentLogger(logger, "exportcache")
	}
}

// WithUnlicensedVector also caches vector outputs that carry no license.
func WithUnlicensedVector(enabled bool) Option {
	return func(c *Cache) {
		c.unlicensedVector = enabled
	}
}

// New opens the cache at root, creating the directory if needed.
func New(root string, opts ...Option) (*Cache, error) {
	c := &Cache{
		root:   root,
		logger: logging.NewNop(),
		dirs:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

// Init creates the cache root. It fails when something other than a
// directory already exists there.
func (c *Cache) Init() error {
	info, err := os.Stat(c.root)
	switch {
	case err == nil && !info.IsDir():
		return services.Wrap(services.ErrConfiguration, "exportcache", "init",
			fmt.Sprintf("cache path %s exists but is not a directory", c.root), nil)
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrIO, "exportcache", "init", "inspect cache directory", err)
	}
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "exportcache", "init",
			fmt.Sprintf("failed to create cache directory %s", c.root), err)
	}
	return nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

// Mode returns the license mode an output is cached under. Raster outputs
// are always cached unlicensed.
func Mode(f destpath.Format, licensed bool) bool {
	return licensed && f.IsVector()
}

func (c *Cache) key(e *manifest.Emoji, f destpath.Format, licensed bool) (string, bool) {
	keys, ok := e.CacheKeys()
	if !ok {
		return "", false
	}
	if !f.IsVector() {
		if licensed {
			return "", false
		}
		return keys.Base, true
	}
	if licensed {
		if key, ok := keys.Licensed[manifest.LicenseSVG]; ok {
			return key, true
		}
	}
	// The document carries no license payload.
	if !c.unlicensedVector {
		return "", false
	}
	return keys.Base, true
}

// PathFor returns the cache entry path for e in format f. It reports false
// when the combination is not cached or e has no keys yet. The format
// directory is created on first use.
func (c *Cache) PathFor(e *manifest.Emoji, f destpath.Format, licensed bool) (string, bool, error) {
	key, ok := c.key(e, f, licensed)
	if !ok {
		return "", false, nil
	}
	dir := filepath.Join(c.root, f.Name)
	if err := c.ensureDir(dir); err != nil {
		return "", false, err
	}
	return filepath.Join(dir, key), true, nil
}

func (c *Cache) ensureDir(dir string) error {
	c.mu.Lock()
	_, done := c.dirs[dir]
	c.mu.Unlock()
	if done {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "exportcache", "mkdir",
			fmt.Sprintf("failed to create cache directory %s", dir), err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrIO, "exportcache", "mkdir", "inspect cache directory", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrIO, "exportcache", "mkdir",
			fmt.Sprintf("cache path %s exists but is not a directory", dir), nil)
	}
	c.mu.Lock()
	c.dirs[dir] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Exists reports whether a cache entry is present for e in format f.
func (c *Cache) Exists(e *manifest.Emoji, f destpath.Format, licensed bool) (bool, error) {
	path, ok, err := c.PathFor(e, f, licensed)
	if err != nil || !ok {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, services.Wrap(services.ErrIO, "exportcache", "exists", "inspect cache entry", err)
	}
	return info.Mode().IsRegular(), nil
}

// Store copies the exported file at artifact into the cache. Combinations
// that are not cached are ignored.
func (c *Cache) Store(e *manifest.Emoji, f destpath.Format, licensed bool, artifact string) error {
	path, ok, err := c.PathFor(e, f, licensed)
	if err != nil || !ok {
		return err
	}
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("%w: could not find exported emoji '%s' at '%s': %w", services.ErrNotFound, e.Label(), artifact, err)
	}
	if err := fileutil.CopyFileAtomic(artifact, path); err != nil {
		return fmt.Errorf("%w: unable to save '%s' to cache: %w", services.ErrIO, e.Label(), err)
	}
	c.logger.Debug("stored cache entry",
		logging.String(logging.FieldEmoji, e.Label()),
		logging.String("format", f.Name),
		logging.String("cache_path", path),
	)
	return nil
}

// Load copies the cache entry for e into dest, creating dest's directory.
func (c *Cache) Load(e *manifest.Emoji, f destpath.Format, licensed bool, dest string) error {
	path, ok, err := c.PathFor(e, f, licensed)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: '%s' as %s", ErrNotCacheable, e.Label(), f.Name)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: unable to retrieve '%s' from cache: %w", services.ErrIO, e.Label(), err)
	}
	if err := fileutil.CopyFileAtomic(path, dest); err != nil {
		marker := services.ErrIO
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return fmt.Errorf("%w: unable to retrieve '%s' from cache: %w", marker, e.Label(), err)
	}
	return nil
}
