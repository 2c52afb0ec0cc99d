/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package coverage

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/go-logr/logr"

	"github.com/microsoft/covdbg/pkg/debugger"
	"github.com/microsoft/covdbg/pkg/exceptions"
	"github.com/microsoft/covdbg/pkg/process"
)

// Module is a module loaded by a traced process and selected by the filters.
type Module struct {
	Path        string
	BaseAddress uintptr
}

// ProcessSummary describes what was recorded for a single traced process.
type ProcessSummary struct {
	ProcessId uint32
	Path      string

	// Nil if the process was still running when the summary was taken.
	ExitCode *uint32

	// Selected modules that were loaded, sorted by path. Unloaded modules are not listed.
	Modules []Module

	SkippedModules int
}

type processRecord struct {
	summary ProcessSummary
	modules map[uintptr]Module
}

// Recorder is the debug events handler of a coverage run. It keeps track of the modules
// loaded by each traced process that the filters select, and classifies exceptions.
type Recorder struct {
	log        logr.Logger
	filters    *FilterManager
	classifier *exceptions.Classifier

	live    map[debugger.Handle]*processRecord
	records []*processRecord

	executablePath func(pid process.Pid_t) (string, error)
}

func NewRecorder(log logr.Logger, filters *FilterManager, classifier *exceptions.Classifier) *Recorder {
	return &Recorder{
		log:            log.WithName("CoverageRecorder"),
		filters:        filters,
		classifier:     classifier,
		live:           map[debugger.Handle]*processRecord{},
		executablePath: process.ExecutablePath,
	}
}

var _ debugger.DebugEventsHandler = (*Recorder)(nil)

func (r *Recorder) OnCreateProcess(info debugger.CreateProcessInfo) error {
	imagePath := info.ImageName
	if imagePath == "" {
		p, err := r.executablePath(process.Uint32_ToPidT(info.ProcessId))
		if err != nil {
			r.log.V(1).Info("Could not determine process image", "ProcessID", info.ProcessId, "Error", err.Error())
		}
		imagePath = p
	}

	rec := &processRecord{
		summary: ProcessSummary{ProcessId: info.ProcessId, Path: imagePath},
		modules: map[uintptr]Module{},
	}
	r.live[info.Process] = rec
	r.records = append(r.records, rec)

	r.recordModule(rec, imagePath, info.BaseOfImage)
	return nil
}

func (r *Recorder) OnExitProcess(processHandle debugger.Handle, _ debugger.Handle, info debugger.ExitProcessInfo) error {
	rec, err := r.liveProcess(processHandle)
	if err != nil {
		return err
	}

	exitCode := info.ExitCode
	rec.summary.ExitCode = &exitCode
	delete(r.live, processHandle)
	r.classifier.ForgetProcess(processHandle)
	return nil
}

func (r *Recorder) OnLoadDll(processHandle debugger.Handle, _ debugger.Handle, info debugger.LoadDllInfo) error {
	rec, err := r.liveProcess(processHandle)
	if err != nil {
		return err
	}
	r.recordModule(rec, info.ImageName, info.BaseOfDll)
	return nil
}

func (r *Recorder) OnUnloadDll(processHandle debugger.Handle, _ debugger.Handle, info debugger.UnloadDllInfo) error {
	rec, err := r.liveProcess(processHandle)
	if err != nil {
		return err
	}
	if m, found := rec.modules[info.BaseOfDll]; found {
		r.log.V(1).Info("Module unloaded", "ProcessID", rec.summary.ProcessId, "Module", m.Path)
		delete(rec.modules, info.BaseOfDll)
	}
	return nil
}

func (r *Recorder) OnException(processHandle debugger.Handle, _ debugger.Handle, info debugger.ExceptionInfo) (debugger.ExceptionType, error) {
	if _, err := r.liveProcess(processHandle); err != nil {
		return debugger.ExceptionTypeError, err
	}
	return r.classifier.Classify(processHandle, info), nil
}

// Summary returns the recorded processes in creation order.
func (r *Recorder) Summary() []ProcessSummary {
	summaries := make([]ProcessSummary, 0, len(r.records))
	for _, rec := range r.records {
		s := rec.summary
		s.Modules = slices.SortedFunc(maps.Values(rec.modules), func(a, b Module) int {
			return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.BaseAddress, b.BaseAddress))
		})
		if s.ExitCode != nil {
			exitCode := *s.ExitCode
			s.ExitCode = &exitCode
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func (r *Recorder) recordModule(rec *processRecord, path string, baseAddress uintptr) {
	if path == "" || !r.filters.IsModuleSelected(path) {
		rec.summary.SkippedModules++
		r.log.V(1).Info("Module skipped", "ProcessID", rec.summary.ProcessId, "Module", path)
		return
	}

	rec.modules[baseAddress] = Module{Path: path, BaseAddress: baseAddress}
	r.log.V(1).Info("Module selected", "ProcessID", rec.summary.ProcessId, "Module", path)
}

func (r *Recorder) liveProcess(processHandle debugger.Handle) (*processRecord, error) {
	rec, found := r.live[processHandle]
	if !found {
		return nil, fmt.Errorf("no process is recorded for handle 0x%X", uintptr(processHandle))
	}
	return rec, nil
}
