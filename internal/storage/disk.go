package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Usage is the on-disk size of one configured path.
type Usage struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// DatabaseFiles returns the SQLite database path followed by its WAL and
// shared-memory sidecars.
func DatabaseFiles(dbPath string) []string {
	if dbPath == "" {
		return nil
	}
	return []string{dbPath, dbPath + "-wal", dbPath + "-shm"}
}

// DiskUsage sizes each path. Directories are summed recursively; empty and
// missing paths are left out of the result.
func DiskUsage(paths ...string) ([]Usage, error) {
	var out []Usage
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		n := info.Size()
		if info.IsDir() {
			if n, err = dirSize(p); err != nil {
				return nil, err
			}
		}
		out = append(out, Usage{Path: p, Bytes: n})
	}
	return out, nil
}

// DiskUsageBytes returns the total size in bytes of the given paths.
func DiskUsageBytes(paths ...string) (int64, error) {
	usage, err := DiskUsage(paths...)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range usage {
		total += u.Bytes
	}
	return total, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
