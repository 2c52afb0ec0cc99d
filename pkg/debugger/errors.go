// Copyright (c) Microsoft Corporation. All rights reserved.

package debugger

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInvalidExceptionType is returned when the events handler produces a verdict outside of the known set.
	ErrInvalidExceptionType = errors.New("invalid exception type")

	ErrDumpDirectoryRequired = errors.New("a dump directory is required when dump on crash is enabled")

	// ErrUnsupportedPlatform is returned by the OS debug API on platforms without a Win32-style debugger interface.
	ErrUnsupportedPlatform = errors.New("debugging is not supported on this platform")
)

// OSError reports a failure of one of the OS debugging primitives.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OSError) Unwrap() error {
	return e.Err
}

// Code returns the OS error number, if the underlying error carries one.
func (e *OSError) Code() (uint32, bool) {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return uint32(errno), true
	}
	return 0, false
}

func newOSError(op string, err error) error {
	return &OSError{Op: op, Err: err}
}
