package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// sidecars are files SQLite keeps next to a database while it is open or after a crash.
var sidecars = []string{"-wal", "-shm", "-journal"}

// DiskUsageBytes sums the on-disk size of the store artifacts at paths, including any
// SQLite sidecar files. A directory is walked. Empty and missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		n, err := artifactSize(p)
		if err != nil {
			return 0, err
		}
		total += n
		for _, suffix := range sidecars {
			n, err := artifactSize(p + suffix)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

func artifactSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
