/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"fmt"

	"github.com/go-logr/logr"
)

type SessionState int

const (
	// Debug has not started the debuggee yet.
	SessionStateIdle SessionState = iota

	// The root exit code is not known yet.
	SessionStateRunning

	// The root process exited, but child processes are still traced.
	SessionStateDraining

	// No process is traced and the root exit code is known.
	SessionStateDone
)

func (ss SessionState) String() string {
	switch ss {
	case SessionStateIdle:
		return "Idle"
	case SessionStateRunning:
		return "Running"
	case SessionStateDraining:
		return "Draining"
	case SessionStateDone:
		return "Done"
	default:
		return fmt.Sprintf("SessionState(%d)", int(ss))
	}
}

// session holds the state of a single Debug call.
type session struct {
	log       logr.Logger
	processes *HandleRegistry
	threads   *HandleRegistry
	state     SessionState

	rootProcessId *uint32
	exitCode      *int32
}

func newSession(log logr.Logger) *session {
	return &session{
		log:       log,
		processes: NewHandleRegistry("process"),
		threads:   NewHandleRegistry("thread"),
		state:     SessionStateIdle,
	}
}

func (s *session) shouldContinue() bool {
	return s.exitCode == nil || s.processes.Count() > 0
}

func (s *session) updateState() {
	switch {
	case s.exitCode == nil:
		s.state = SessionStateRunning
	case s.processes.Count() > 0:
		s.state = SessionStateDraining
	default:
		s.state = SessionStateDone
	}
}

// The first process seen while nothing is tracked becomes the root, once per session.
func (s *session) trackProcess(processId uint32, process Handle) error {
	if s.rootProcessId == nil && s.processes.Count() == 0 {
		s.rootProcessId = &processId
	}

	return s.processes.Insert(processId, process)
}

func (s *session) isRoot(processId uint32) bool {
	return s.rootProcessId != nil && *s.rootProcessId == processId
}

// Adopts the exit code candidate if it comes from the root process and no code was recorded yet.
func (s *session) recordExitCode(processId uint32, exitCode int32) {
	if s.exitCode != nil || !s.isRoot(processId) {
		return
	}
	s.exitCode = &exitCode
}

func (s *session) onCreateThread(threadId uint32, thread Handle) error {
	s.log.V(1).Info("Create thread", "ThreadID", threadId)
	return s.threads.Insert(threadId, thread)
}

func (s *session) onExitThread(threadId uint32) error {
	s.log.V(1).Info("Exit thread", "ThreadID", threadId)
	_, err := s.threads.Remove(threadId)
	return err
}

func (s *session) onExitProcess(e ExitProcessEvent, process Handle, thread Handle, handler DebugEventsHandler) (int32, error) {
	if err := s.onExitThread(e.ThreadId); err != nil {
		return UnknownExitCode, err
	}

	s.log.V(1).Info("Exit process", "ProcessID", e.ProcessId, "ExitCode", e.Info.ExitCode)

	if err := handler.OnExitProcess(process, thread, e.Info); err != nil {
		return UnknownExitCode, fmt.Errorf("exit process event handling failed: %w", err)
	}

	if _, err := s.processes.Remove(e.ProcessId); err != nil {
		return UnknownExitCode, err
	}

	return int32(e.Info.ExitCode), nil
}
