// Package loader reads policy documents from a corpus directory.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/policyqa/policyqa/internal/chunk"
)

// ErrNoDocuments is returned when the corpus directory exists but holds no
// loadable files.
var ErrNoDocuments = errors.New("loader: no .txt or .md documents found")

// loadable reports whether a filename is a supported document type.
func loadable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// Load reads every .txt and .md file directly under dir, in lexicographic
// filename order so fragment IDs are stable across rebuilds. Source is the
// bare filename. Subdirectories and other file types are skipped.
func Load(dir string) ([]chunk.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !loadable(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	docs := make([]chunk.Document, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", name, err)
		}
		docs = append(docs, chunk.Document{
			Source: name,
			Text:   string(data),
		})
	}
	return docs, nil
}
