// Package filesys provides the small set of filesystem primitives the
// storage engine needs at open time: creating the data directory if it is
// missing, checking whether a path exists, and listing files that match a
// glob pattern (used to discover segment files during recovery).
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	// ErrIsNotDir is returned when a path expected to be a directory turns
	// out to be a regular file.
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at dirPath with the given permission.
//
// If force is false and stat does not report the path as missing, it
// returns stat's error unchanged (nil when the path already exists) without
// creating or changing anything.
//
// If force is true, it returns ErrIsNotDir when the existing path is not a
// directory; otherwise it creates any missing directories and applies
// permission to dirPath, whether or not it already existed.
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force && !os.IsNotExist(err) {
		return err
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// ReadDir returns every path matching the glob pattern dirName. Used to
// discover segment files (`<dir>/*.data`) at open.
func ReadDir(dirName string) ([]string, error) {
	return filepath.Glob(dirName)
}

// Exists reports whether a file or directory exists at the given path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
