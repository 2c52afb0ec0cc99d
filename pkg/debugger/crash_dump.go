/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/microsoft/covdbg/pkg/osutil"
	"github.com/microsoft/covdbg/pkg/resiliency"
)

const (
	crashDumpTimestampFormat = "2006-01-02-15-04-05"
)

func crashDumpFileName(processId uint32, t time.Time) string {
	return fmt.Sprintf("crash-%d-%s.dmp", processId, t.Format(crashDumpTimestampFormat))
}

// Creates a new dump file under the dump directory. The name has one second resolution,
// so if a dump for the same process was already written this second, we wait for the next one.
func (d *Debugger) createCrashDumpFile(ctx context.Context, processId uint32) (*os.File, error) {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(250*time.Millisecond),
		backoff.WithMaxInterval(time.Second),
		backoff.WithMaxElapsedTime(3*time.Second),
	)

	return resiliency.RetryGet(ctx, b, func() (*os.File, error) {
		path := filepath.Join(d.cfg.DumpDirectory, crashDumpFileName(processId, d.now()))
		file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, osutil.PermissionOnlyOwnerReadWrite)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return nil, resiliency.Permanent(err)
		}
		return file, err
	})
}

// Writes a minidump for the exception if the policy and configuration ask for one.
// Failures are logged and never change how the exception is continued.
func (d *Debugger) handleCrashDump(ctx context.Context, s *session, ev ExceptionEvent, process Handle, thread Handle, policy crashDumpPolicy) {
	if !policy.shouldDump(d.cfg, ev.Info.FirstChance) {
		return
	}

	log := s.log.WithValues("ProcessID", ev.ProcessId, "ThreadID", ev.ThreadId)

	file, err := d.createCrashDumpFile(ctx, ev.ProcessId)
	if err != nil {
		log.Error(err, "Failed to create minidump")
		return
	}
	path := file.Name()

	writeErr := d.dumper.WriteCrashDump(file, CrashDumpRequest{
		ProcessId: ev.ProcessId,
		ThreadId:  ev.ThreadId,
		Process:   process,
		Thread:    thread,
		Exception: ev.Info.Record,
	})
	closeErr := file.Close()

	if err = errors.Join(writeErr, closeErr); err != nil {
		log.Error(err, "Failed to create minidump", "Path", path)
		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			log.V(1).Info("Could not remove incomplete minidump", "Path", path, "Error", removeErr.Error())
		}
		return
	}

	log.Info("Created minidump", "Path", path)
}
