package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/handiism/signage-viewer/internal/model"
)

// Catalog is the list of media entries in a folder, sorted by file name.
type Catalog []model.MediaEntry

// Scan lists folder and returns its media entries in lexicographic order.
//
// Scan fails closed: when the folder cannot be read the returned catalog is
// empty (never nil) and the error describes why. Directories and files with
// unrecognized extensions are skipped. Paths are made absolute.
func Scan(folder string) (Catalog, error) {
	cat := Catalog{}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return cat, fmt.Errorf("resolve media folder: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return cat, fmt.Errorf("read media folder: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		entry, ok := model.NewMediaEntry(filepath.Join(abs, e.Name()))
		if !ok {
			continue
		}
		cat = append(cat, entry)
	}

	// os.ReadDir already sorts by name; keep the ordering explicit.
	sort.SliceStable(cat, func(i, j int) bool {
		return cat[i].Path < cat[j].Path
	})
	return cat, nil
}

// Paths returns the entry paths in catalog order.
func (c Catalog) Paths() []string {
	paths := make([]string, len(c))
	for i, e := range c {
		paths[i] = e.Path
	}
	return paths
}
