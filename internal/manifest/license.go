package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"orxport/internal/services"
)

const (
	LicenseSVG  = "svg"
	LicenseEXIF = "exif"
)

// MetadataField is one tag written into raster metadata.
type MetadataField struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// License is a payload attached to exported files. SVG licenses carry raw
// markup; EXIF licenses carry tag/value pairs sorted by tag.
type License struct {
	Kind   string
	Path   string
	Text   string
	Fields []MetadataField
}

// Payload returns the canonical bytes of the license used for cache keys.
func (l License) Payload() []byte {
	if l.Kind == LicenseSVG {
		return []byte(l.Text)
	}
	data, err := json.Marshal(l.Fields)
	if err != nil {
		return nil
	}
	return data
}

func licenseKind(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "svg":
		return LicenseSVG, true
	case "exif", "png":
		return LicenseEXIF, true
	default:
		return "", false
	}
}

func loadLicense(kind, path string) (License, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		marker := services.ErrIO
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return License{}, fmt.Errorf("%w: failed to load license file %s: %w", marker, path, err)
	}
	license := License{Kind: kind, Path: path}
	if kind == LicenseSVG {
		license.Text = string(data)
		return license, nil
	}
	fields, err := parseMetadata(data)
	if err != nil {
		return License{}, fmt.Errorf("%w: failed to parse metadata in %s: %w", ErrInvalidValue, filepath.Base(path), err)
	}
	license.Fields = fields
	return license, nil
}

// parseMetadata reads a JSON or YAML mapping of tag to value. List values
// produce one field per element.
func parseMetadata(data []byte) ([]MetadataField, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("metadata must be a mapping of tag to value")
	}
	tags := make([]string, 0, len(raw))
	for tag := range raw {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	fields := make([]MetadataField, 0, len(tags))
	for _, tag := range tags {
		switch value := raw[tag].(type) {
		case []any:
			for _, item := range value {
				fields = append(fields, MetadataField{Tag: tag, Value: scalarString(item)})
			}
		case map[string]any:
			return nil, fmt.Errorf("tag %s: nested mappings are not supported", tag)
		default:
			fields = append(fields, MetadataField{Tag: tag, Value: scalarString(value)})
		}
	}
	return fields, nil
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
