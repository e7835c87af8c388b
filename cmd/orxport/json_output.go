package main

import (
	"encoding/json"
	"io"
)

// writeJSON encodes v as two-space indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
