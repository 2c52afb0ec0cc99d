/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/microsoft/covdbg/pkg/osutil"
)

// Debugger drives a process tree through the OS debug API and reports the exit code of the root process.
// A Debugger runs one session at a time; Debug must not be called concurrently.
type Debugger struct {
	cfg    Config
	api    DebugAPI
	dumper CrashDumper
	log    logr.Logger
	now    func() time.Time
}

func New(cfg Config, api DebugAPI, dumper CrashDumper, log logr.Logger) (*Debugger, error) {
	if cfg.DumpOnCrash && cfg.DumpDirectory == "" {
		return nil, ErrDumpDirectoryRequired
	}
	if api == nil {
		return nil, fmt.Errorf("a debug API implementation is required")
	}
	if cfg.DumpOnCrash && dumper == nil {
		return nil, fmt.Errorf("a crash dump writer is required when dump on crash is enabled")
	}

	return &Debugger{
		cfg:    cfg,
		api:    api,
		dumper: dumper,
		log:    log.WithName("Debugger"),
		now:    time.Now,
	}, nil
}

// Debug launches the program and handles debug events until every traced process has exited.
// It returns the exit code of the root process, possibly replaced by a synthetic code
// (see ExceptionBreakpoint) if an exception verdict produced one first.
//
// The context only bounds auxiliary work such as creating crash dump files.
// Waiting for debug events is not cancellable: the session ends when the traced process tree exits.
func (d *Debugger) Debug(ctx context.Context, startInfo StartInfo, handler DebugEventsHandler) (int32, error) {
	// The Win32 debug API only delivers events to the thread that started the debuggee.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s := newSession(d.log.WithValues("Session", uuid.NewString()))
	startTime := time.Now()

	if err := d.api.StartProcess(startInfo, d.cfg.CoverChildren); err != nil {
		return UnknownExitCode, newOSError("StartProcess", err)
	}
	s.state = SessionStateRunning
	s.log.V(1).Info("Debuggee started", "Path", startInfo.Path, "CoverChildren", d.cfg.CoverChildren)

	for s.shouldContinue() {
		ev, err := d.api.WaitForDebugEvent()
		if err != nil {
			return UnknownExitCode, newOSError("WaitForDebugEvent", err)
		}

		disposition, err := d.handleDebugEvent(ctx, s, ev, handler)
		if err != nil {
			return UnknownExitCode, err
		}

		// Only the first exit code of the root process counts, so that a synthetic
		// EXCEPTION_BREAKPOINT code is not overridden by the real exit code (and vice versa).
		if disposition.ExitCode != nil {
			s.recordExitCode(ev.ProcessID(), *disposition.ExitCode)
		}

		if err = d.api.ContinueDebugEvent(ev.ProcessID(), ev.ThreadID(), disposition.continueStatus()); err != nil {
			return UnknownExitCode, newOSError("ContinueDebugEvent", err)
		}

		s.updateState()
	}

	s.log.V(1).Info("Debug session completed", "ExitCode", *s.exitCode, "Duration", osutil.FormatDuration(time.Since(startTime)))
	return *s.exitCode, nil
}

func (d *Debugger) handleDebugEvent(ctx context.Context, s *session, ev DebugEvent, handler DebugEventsHandler) (Disposition, error) {
	switch e := ev.(type) {
	case CreateProcessEvent:
		return Disposition{}, d.onCreateProcess(s, e, handler)

	case CreateThreadEvent:
		return Disposition{}, s.onCreateThread(e.ThreadId, e.Thread)

	default:
		process, err := s.processes.Get(ev.ProcessID())
		if err != nil {
			return Disposition{}, err
		}
		thread, err := s.threads.Get(ev.ThreadID())
		if err != nil {
			return Disposition{}, err
		}
		return d.handleNonCreationEvent(ctx, s, ev, handler, process, thread)
	}
}

func (d *Debugger) handleNonCreationEvent(
	ctx context.Context,
	s *session,
	ev DebugEvent,
	handler DebugEventsHandler,
	process Handle,
	thread Handle,
) (Disposition, error) {
	switch e := ev.(type) {
	case ExitProcessEvent:
		exitCode, err := s.onExitProcess(e, process, thread, handler)
		if err != nil {
			return Disposition{}, err
		}
		return Disposition{ExitCode: &exitCode}, nil

	case ExitThreadEvent:
		return Disposition{}, s.onExitThread(e.ThreadId)

	case LoadDllEvent:
		defer d.closeEventHandle(s, e.Info.File)
		if err := handler.OnLoadDll(process, thread, e.Info); err != nil {
			return Disposition{}, fmt.Errorf("load dll event handling failed: %w", err)
		}
		return Disposition{}, nil

	case UnloadDllEvent:
		if err := handler.OnUnloadDll(process, thread, e.Info); err != nil {
			return Disposition{}, fmt.Errorf("unload dll event handling failed: %w", err)
		}
		return Disposition{}, nil

	case ExceptionEvent:
		return d.onException(ctx, s, e, handler, process, thread)

	case RipEvent:
		s.log.Error(errors.New("debuggee process terminated unexpectedly"), "RIP event",
			"ProcessID", e.ProcessId, "Type", e.Type, "Error", e.Error)
		return Disposition{}, nil

	case OtherEvent:
		s.log.V(1).Info("Debug event", "Code", e.Code, "ProcessID", e.ProcessId)
		return Disposition{}, nil

	default:
		s.log.V(1).Info("Unrecognized debug event", "Event", fmt.Sprintf("%T", ev))
		return Disposition{}, nil
	}
}

func (d *Debugger) onCreateProcess(s *session, e CreateProcessEvent, handler DebugEventsHandler) error {
	defer d.closeEventHandle(s, e.Info.File)

	s.log.V(1).Info("Create process", "ProcessID", e.ProcessId, "Image", e.Info.ImageName)

	if err := s.trackProcess(e.ProcessId, e.Info.Process); err != nil {
		return err
	}

	info := e.Info
	info.ProcessId = e.ProcessId
	if err := handler.OnCreateProcess(info); err != nil {
		return fmt.Errorf("create process event handling failed: %w", err)
	}

	return s.onCreateThread(e.ThreadId, e.Info.Thread)
}

func (d *Debugger) onException(
	ctx context.Context,
	s *session,
	e ExceptionEvent,
	handler DebugEventsHandler,
	process Handle,
	thread Handle,
) (Disposition, error) {
	verdict, err := handler.OnException(process, thread, e.Info)
	if err != nil {
		return Disposition{}, fmt.Errorf("exception event handling failed: %w", err)
	}

	decision, err := decideException(verdict, d.cfg, e.Info.Record.Code)
	if err != nil {
		return Disposition{}, err
	}

	for _, warning := range decision.warnings {
		s.log.Info(warning, "ProcessID", e.ProcessId, "ExceptionCode", fmt.Sprintf("0x%08X", e.Info.Record.Code))
	}

	d.handleCrashDump(ctx, s, e, process, thread, decision.crashDump)

	return decision.disposition, nil
}

// Releases a handle that is only valid for the duration of a single event.
func (d *Debugger) closeEventHandle(s *session, h Handle) {
	if h == InvalidHandle {
		return
	}
	if err := d.api.CloseHandle(h); err != nil {
		s.log.V(1).Info("Could not close event file handle", "Error", err.Error())
	}
}
