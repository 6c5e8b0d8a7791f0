// Package extract flattens translated PO catalog entries into a single
// source → translation mapping written as a JSON file.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/localehub/potool/pofile"
)

// Ext is the catalog file extension scanned for in directory mode.
const Ext = ".po"

// Extract builds the mapping for path, which is either one catalog file
// or a directory scanned (non-recursively) for catalog files. Only
// entries where both source and translation are non-empty are included.
// When the same source text appears in several files, the file processed
// last wins; files are visited in sorted name order so the result is
// deterministic.
func Extract(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %s: %w", path, err)
	}

	var files []string
	switch {
	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), Ext) {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
	case strings.HasSuffix(path, Ext):
		files = []string{path}
	default:
		return nil, fmt.Errorf("invalid input path %s: not a %s file or directory", path, Ext)
	}

	mapping := make(map[string]string)
	for _, file := range files {
		catalog, err := pofile.ParseFile(file)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		merge(mapping, catalog)
	}
	return mapping, nil
}

// merge adds every translated entry of the catalog to the mapping,
// overwriting existing keys. The header entry is never emitted.
func merge(mapping map[string]string, catalog *pofile.Catalog) {
	for _, e := range catalog.Entries {
		if e.MsgID == "" || e.Obsolete {
			continue
		}
		src := strings.TrimSpace(e.MsgID)
		dst := strings.TrimSpace(e.MsgStr)
		if src == "" || dst == "" {
			continue
		}
		mapping[e.MsgID] = e.MsgStr
	}
}

// WriteMapping writes the mapping as pretty-printed UTF-8 JSON, creating
// parent directories as needed.
func WriteMapping(path string, mapping map[string]string) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
