// Package filesys provides the small set of file system primitives the
// storage and engine-marker layers build on: directory creation, existence
// checks, and whole-file read/write for the small ENGINE marker file.
package filesys

import (
	"errors"
	"os"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates a directory at the given path with the given
// permissions. If the path already exists and is a directory, it is left
// alone. If it exists and is a plain file, ErrIsNotDir is returned.
func CreateDir(dirPath string, permission os.FileMode) error {
	stat, err := os.Stat(dirPath)
	if err == nil {
		if !stat.IsDir() {
			return ErrIsNotDir
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dirPath, permission)
}

// Exists reports whether a file or directory exists at path.
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

// WriteFile writes contents to path, creating or truncating it.
func WriteFile(path string, permission os.FileMode, contents []byte) error {
	return os.WriteFile(path, contents, permission)
}

// ReadFile reads the entire contents of the file at path.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
