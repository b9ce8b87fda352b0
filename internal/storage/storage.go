// Package storage provides JSON file loading and saving for the scraper.
//
// Documents are written pretty-printed with two-space indentation, UTF-8
// encoded with non-ASCII and HTML-significant characters left unescaped.
// Saving creates missing parent directories and overwrites existing files.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Robinson-45/soundcloud-artists-scraper/internal/artist"
)

// LoadJSON reads the file at path and unmarshals it into v.
func LoadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// SaveJSON marshals v and writes it to path, creating parent directories as
// needed.
func SaveJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ExportArtists writes the final artist records as a JSON array. An empty
// input writes a file containing "[]".
func ExportArtists(artists []*artist.Artist, path string) error {
	if artists == nil {
		artists = []*artist.Artist{}
	}
	return SaveJSON(path, artists)
}
