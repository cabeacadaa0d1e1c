package utils

import (
	"os"
)

// FileExist reports whether filePath exists. Paths that can't be checked,
// e.g. for lack of permissions, are reported as missing.
func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// CreateDirIfNotExist creates dir and any missing parents.
func CreateDirIfNotExist(dir string) error {
	if FileExist(dir) {
		return nil
	}

	return os.MkdirAll(dir, 0755)
}
