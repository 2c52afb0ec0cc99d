package osutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
)

var (
	lf   = []byte("\n")
	crlf = []byte("\r\n")
)

func CRLF() []byte {
	return crlf
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func LineSep() []byte {
	if IsWindows() {
		return crlf
	} else {
		return lf
	}
}

// Makes sure the given path exists and is a directory, creating it (and its parents) if necessary.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err = os.MkdirAll(path, PermissionOnlyOwnerReadWriteTraverse); err != nil {
			return fmt.Errorf("failed to create the folder '%s': %w", path, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to verify the existence of the folder '%s': %w", path, err)
	} else if !info.IsDir() {
		return fmt.Errorf("'%s' is not a directory", path)
	}

	return nil
}
