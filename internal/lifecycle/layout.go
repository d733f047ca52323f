package lifecycle

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"recoder/internal/services"
)

const partialMarker = ".partial"

// Layout maps a source file under InputRoot to its encoded and archive
// locations, mirroring the relative path.
type Layout struct {
	InputRoot   string
	EncodedRoot string
	ArchiveRoot string
	DateSubdir  bool
}

// Paths are the locations derived for one source file.
type Paths struct {
	Source   string
	Relative string
	Temp     string
	Final    string
	Archive  string
}

// Plan computes the paths for source. It performs no I/O; when DateSubdir is
// set the archive path includes now formatted as YYYY-MM-DD.
func (l Layout) Plan(source string, now time.Time) (Paths, error) {
	source = filepath.Clean(source)
	rel, err := filepath.Rel(filepath.Clean(l.InputRoot), source)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return Paths{}, services.Wrap(services.ErrValidation, "planning", "layout", fmt.Sprintf("%s is not under input root %s", source, l.InputRoot), err)
	}
	final := filepath.Join(l.EncodedRoot, rel)
	archiveRoot := l.ArchiveRoot
	if l.DateSubdir {
		archiveRoot = filepath.Join(archiveRoot, now.Format("2006-01-02"))
	}
	return Paths{
		Source:   source,
		Relative: rel,
		Temp:     TempPath(final),
		Final:    final,
		Archive:  filepath.Join(archiveRoot, rel),
	}, nil
}

// TempPath returns the hidden partial path next to final:
// dir/.<stem>.partial<ext>.
func TempPath(final string) string {
	dir := filepath.Dir(final)
	base := filepath.Base(final)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, "."+stem+partialMarker+ext)
}

// IsPartialName reports whether a file name has the temp encode shape.
func IsPartialName(name string) bool {
	if !strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, partialMarker) {
		return true
	}
	ext := filepath.Ext(name)
	return strings.HasSuffix(strings.TrimSuffix(name, ext), partialMarker)
}
