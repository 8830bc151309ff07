// Package fsutil contains file system helpers.
package fsutil

import (
	"fmt"
	"os"
)

// EnsureDir ensures a directory exists.
func EnsureDir(p string) error {
	info, err := os.Stat(p)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", p)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(p, 0775)
}
