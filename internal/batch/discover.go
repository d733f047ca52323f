package batch

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks root and returns regular files whose extension is in
// extensions, sorted lexicographically. Hidden files and directories are
// skipped, which also hides in-progress temp encodes. Directories equal to
// any of exclude are pruned.
func Discover(root string, extensions []string, exclude ...string) ([]string, error) {
	accepted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		accepted[ext] = struct{}{}
	}
	pruned := make(map[string]struct{}, len(exclude))
	for _, dir := range exclude {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		pruned[filepath.Clean(dir)] = struct{}{}
	}

	root = filepath.Clean(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := pruned[path]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := accepted[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
