package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskUsageBytes sums the on-disk size of the store files in paths. Directories are walked,
// missing paths and the sqlite ":memory:" pseudo path count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		n, err := pathSize(p)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func pathSize(p string) (int64, error) {
	if p == "" || p == ":memory:" {
		return 0, nil
	}
	var size int64
	err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil:
			return walkErr
		case d.IsDir():
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		if _, statErr := os.Lstat(p); errors.Is(statErr, fs.ErrNotExist) {
			return 0, nil
		}
	}
	return size, err
}
