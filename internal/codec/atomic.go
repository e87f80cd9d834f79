package codec

import (
	"os"
	"path/filepath"
)

// writeFileAtomic rewrites path through a temp file in the same directory.
// The temp file is synced before the rename so the original is only
// replaced by a fully written copy; any failure leaves the original as is.
func writeFileAtomic(path string, fill func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Path: path, Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := fill(tmp); err != nil {
		return &IOError{Path: path, Op: "write temp", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Path: path, Op: "sync temp", Err: err}
	}
	if info, err := os.Stat(path); err == nil {
		_ = tmp.Chmod(info.Mode())
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Path: path, Op: "close temp", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &IOError{Path: path, Op: "rename temp", Err: err}
	}
	tmpName = ""
	return nil
}

// saveFileAtomic is writeFileAtomic for writers that can only save to a
// path of their own. The writer fills a temp path in the same directory,
// which is then synced and renamed over the original.
func saveFileAtomic(path string, save func(tmpPath string) error) error {
	return writeFileAtomic(path, func(tmp *os.File) error {
		// Writers open the existing temp path with truncate, so the fd
		// held by writeFileAtomic still sees the written bytes for sync.
		return save(tmp.Name())
	})
}
