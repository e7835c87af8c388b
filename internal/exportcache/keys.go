package exportcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"slices"

	"orxport/internal/manifest"
	"orxport/internal/svg"
)

// KeysFor computes the cache keys of e and attaches them to the record.
// Later calls return the attached keys without hashing again.
func KeysFor(e *manifest.Emoji, m *manifest.Manifest, source []byte, licenseEnabled bool) manifest.CacheKeys {
	if keys, ok := e.CacheKeys(); ok {
		return keys
	}
	keys := computeKeys(e, m, source, licenseEnabled)
	e.SetCacheKeys(keys)
	return keys
}

func computeKeys(e *manifest.Emoji, m *manifest.Manifest, source []byte, licenseEnabled bool) manifest.CacheKeys {
	h := sha256.New()
	writeDigest(h, "src", source)
	changed := changedColors(e, m, source)
	if len(changed) == 0 {
		_, _ = io.WriteString(h, "colors:none\n")
	} else {
		_, _ = io.WriteString(h, "colors:")
		for _, c := range changed {
			_, _ = fmt.Fprintf(h, "%s:%s>%s;", c.Slot, c.From, c.Color)
		}
		_, _ = io.WriteString(h, "\n")
	}
	keys := manifest.CacheKeys{Base: hex.EncodeToString(h.Sum(nil))}
	if !licenseEnabled || m == nil || len(m.Licenses) == 0 {
		return keys
	}

	kinds := make([]string, 0, len(m.Licenses))
	for kind := range m.Licenses {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	keys.Licensed = make(map[string]string, len(kinds))
	for _, kind := range kinds {
		lh := sha256.New()
		_, _ = io.WriteString(lh, keys.Base+"\n")
		writeDigest(lh, "license:"+kind, m.Licenses[kind].Payload())
		keys.Licensed[kind] = hex.EncodeToString(lh.Sum(nil))
	}
	return keys
}

func writeDigest(h hash.Hash, label string, data []byte) {
	sum := sha256.Sum256(data)
	_, _ = fmt.Fprintf(h, "%s:%x\n", label, sum)
}

func changedColors(e *manifest.Emoji, m *manifest.Manifest, source []byte) []svg.SlotColor {
	if m == nil {
		return nil
	}
	from, to, ok := m.ColorPalettes(e)
	if !ok {
		return nil
	}
	return svg.ChangedColors(source, from, to)
}
