package lifecycle

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Partial is a leftover temp encode.
type Partial struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// FindStalePartials lists temp encodes under root, sorted by path. A missing
// root yields no partials.
func FindStalePartials(root string) ([]Partial, error) {
	var partials []Partial
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !IsPartialName(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		partials = append(partials, Partial{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(partials, func(i, j int) bool { return partials[i].Path < partials[j].Path })
	return partials, nil
}

// RemovePartials deletes partials last modified before cutoff. A zero cutoff
// removes all of them. It returns the partials that were removed.
func RemovePartials(partials []Partial, cutoff time.Time) ([]Partial, error) {
	removed := make([]Partial, 0, len(partials))
	var errs []error
	for _, partial := range partials {
		if !cutoff.IsZero() && !partial.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(partial.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, partial)
	}
	return removed, errors.Join(errs...)
}
