// Copyright (c) Microsoft Corporation. All rights reserved.

package process

import (
	"errors"
	"fmt"

	ps "github.com/shirou/gopsutil/v4/process"
)

var (
	// Essentially the same as ps.ErrorProcessNotRunning, but we do not want to
	// expose the ps package outside of this package.
	ErrorProcessNotFound = errors.New("process does not exist")
)

func findPsProcess(pid Pid_t) (*ps.Process, error) {
	osPid, err := PidT_ToUint32(pid)
	if err != nil {
		return nil, err
	}

	proc, procErr := ps.NewProcess(int32(osPid))
	if procErr != nil {
		if errors.Is(procErr, ps.ErrorProcessNotRunning) {
			return nil, fmt.Errorf("process with pid %d does not exist: %w", pid, ErrorProcessNotFound)
		}
		return nil, procErr
	}

	return proc, nil
}

// Returns the full path of the executable for a running process,
// falling back to the bare process name if the path cannot be read.
func ExecutablePath(pid Pid_t) (string, error) {
	proc, err := findPsProcess(pid)
	if err != nil {
		return "", err
	}

	if exe, exeErr := proc.Exe(); exeErr == nil && exe != "" {
		return exe, nil
	}

	name, nameErr := proc.Name()
	if nameErr != nil {
		return "", fmt.Errorf("could not determine executable of process %d: %w", pid, nameErr)
	}
	return name, nil
}
