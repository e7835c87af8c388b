package exportcache

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"orxport/internal/services"
)

const lockFile = ".lock"

// ErrLocked is returned when another process holds the cache lock.
var ErrLocked = fmt.Errorf("%w: export cache is in use by another orxport process", services.ErrConfiguration)

// Lock acquires the exclusive cache lock without waiting. The returned
// function releases it.
func (c *Cache) Lock() (func() error, error) {
	path := filepath.Join(c.root, lockFile)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "exportcache", "lock", "acquire "+path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return lock.Unlock, nil
}
