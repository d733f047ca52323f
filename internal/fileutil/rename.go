package fileutil

import "os"

// renameChecked refuses an existing dst, then renames. The check and rename
// are not atomic.
func renameChecked(src, dst string) error {
	exists, err := Exists(dst)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}
	return os.Rename(src, dst)
}

type linkError struct {
	op  string
	src string
	dst string
	err error
}

func (e *linkError) Error() string {
	return e.op + " " + e.src + " " + e.dst + ": " + e.err.Error()
}

func (e *linkError) Unwrap() error {
	return e.err
}
