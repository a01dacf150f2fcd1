package series

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when an input path does not exist.
var ErrNotFound = fs.ErrNotExist

// Discover expands files and directories into a list of series files.
// Directories are walked recursively in lexical order; input order is kept.
func Discover(paths []string) ([]string, error) {
	files := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%s could not be found: %w", path, ErrNotFound)
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return files, nil
}
