package exportcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"orxport/internal/destpath"
	"orxport/internal/logging"
	"orxport/internal/services"
)

// FormatStats summarizes the entries stored for one format.
type FormatStats struct {
	Format  string `json:"format"`
	Entries int    `json:"entries"`
	Bytes   int64  `json:"bytes"`
}

// Stats describes current cache usage.
type Stats struct {
	Root    string        `json:"root"`
	Entries int           `json:"entries"`
	Bytes   int64         `json:"bytes"`
	Formats []FormatStats `json:"formats"`
}

// Stats walks the cache and reports entry counts and sizes per format,
// sorted by format name.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{Root: c.root}
	dirs, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, services.Wrap(services.ErrIO, "exportcache", "stats", "read cache directory", err)
	}
	for _, dir := range dirs {
		if !dir.IsDir() || hidden(dir.Name()) {
			continue
		}
		st, err := formatStats(filepath.Join(c.root, dir.Name()))
		if err != nil {
			return stats, err
		}
		st.Format = dir.Name()
		stats.Formats = append(stats.Formats, st)
		stats.Entries += st.Entries
		stats.Bytes += st.Bytes
	}
	sort.Slice(stats.Formats, func(i, j int) bool {
		return stats.Formats[i].Format < stats.Formats[j].Format
	})
	return stats, nil
}

func formatStats(dir string) (FormatStats, error) {
	var out FormatStats
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out, services.Wrap(services.ErrIO, "exportcache", "stats", "read "+dir, err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || hidden(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out.Entries++
		out.Bytes += info.Size()
	}
	return out, nil
}

// Clear removes the entries of the named formats, or of every format when
// none are named, and returns how many entries were removed. It takes the
// cache lock for the duration.
func (c *Cache) Clear(formats ...string) (int, error) {
	for _, name := range formats {
		if _, err := destpath.ParseFormat(name); err != nil {
			return 0, err
		}
	}
	unlock, err := c.Lock()
	if err != nil {
		return 0, err
	}
	defer func() { _ = unlock() }()

	if len(formats) == 0 {
		stats, err := c.Stats()
		if err != nil {
			return 0, err
		}
		for _, f := range stats.Formats {
			formats = append(formats, f.Format)
		}
	}

	removed := 0
	for _, name := range formats {
		dir := filepath.Join(c.root, name)
		st, err := formatStats(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, err
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, services.Wrap(services.ErrIO, "exportcache", "clear", fmt.Sprintf("remove %s", dir), err)
		}
		removed += st.Entries
		c.mu.Lock()
		delete(c.dirs, dir)
		c.mu.Unlock()
		c.logger.Info("cleared cache format",
			logging.String("format", name),
			logging.Int("entries", st.Entries),
		)
	}
	return removed, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
