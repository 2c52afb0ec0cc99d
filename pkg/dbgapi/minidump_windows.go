//go:build windows

/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"encoding/binary"
	"errors"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/microsoft/covdbg/pkg/debugger"
)

const lptr = 0x0040 // LMEM_FIXED | LMEM_ZEROINIT

var (
	dbghelp               = windows.NewLazySystemDLL("dbghelp.dll")
	procMiniDumpWriteDump = dbghelp.NewProc("MiniDumpWriteDump")
	procGetThreadContext  = kernel32.NewProc("GetThreadContext")
)

// Native memory for everything MiniDumpWriteDump dereferences.
// The structures hold raw pointers to each other, so they live outside of the Go heap.
type nativeBlock struct {
	ptr  uintptr
	size uint32
}

func allocNative(size uint32) (nativeBlock, error) {
	ptr, err := windows.LocalAlloc(lptr, size)
	if err != nil {
		return nativeBlock{}, err
	}
	return nativeBlock{ptr: ptr, size: size}, nil
}

func (b nativeBlock) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(b.ptr)), b.size)
}

func (b nativeBlock) free() {
	_, _ = windows.LocalFree(windows.Handle(b.ptr))
}

func (MiniDumpWriter) WriteCrashDump(file *os.File, request debugger.CrashDumpRequest) error {
	if err := procMiniDumpWriteDump.Find(); err != nil {
		return err
	}

	// CONTEXT must be 16-byte aligned on 64-bit platforms; LocalAlloc only guarantees 8 on some versions.
	contextBlock, err := allocNative(contextSize + contextAlignment)
	if err != nil {
		return err
	}
	defer contextBlock.free()
	contextPtr := alignUp(contextBlock.ptr, contextAlignment)
	ctx := unsafe.Slice((*byte)(unsafe.Pointer(contextPtr)), contextSize)
	binary.LittleEndian.PutUint32(ctx[contextFlagsOffset:], contextAll)

	retval, _, err := procGetThreadContext.Call(uintptr(request.Thread), contextPtr)
	if retval == 0 {
		return err
	}

	recordBlock, err := allocNative(uint32(unsafe.Sizeof(exceptionRecord{})))
	if err != nil {
		return err
	}
	defer recordBlock.free()
	record := (*exceptionRecord)(unsafe.Pointer(recordBlock.ptr))
	record.ExceptionCode = request.Exception.Code
	record.ExceptionFlags = request.Exception.Flags
	record.ExceptionAddress = request.Exception.Address
	record.NumberParameters = uint32(copy(record.ExceptionInformation[:], request.Exception.Parameters))

	// EXCEPTION_POINTERS followed by MINIDUMP_EXCEPTION_INFORMATION, which is packed on 4 bytes:
	// ThreadId at 0, ExceptionPointers at 4, ClientPointers right after the pointer.
	const ptrSize = uint32(unsafe.Sizeof(uintptr(0)))
	const exceptionInfoSize = 4 + ptrSize + 4
	pointersBlock, err := allocNative(2*ptrSize + exceptionInfoSize)
	if err != nil {
		return err
	}
	defer pointersBlock.free()
	buf := pointersBlock.bytes()
	putPointer(buf[0:], recordBlock.ptr)
	putPointer(buf[ptrSize:], contextPtr)
	exceptionInfo := buf[2*ptrSize:]
	binary.LittleEndian.PutUint32(exceptionInfo[0:], request.ThreadId)
	putPointer(exceptionInfo[4:], pointersBlock.ptr)
	binary.LittleEndian.PutUint32(exceptionInfo[4+ptrSize:], 0) // ClientPointers = FALSE

	retval, _, err = procMiniDumpWriteDump.Call(
		uintptr(request.Process),
		uintptr(request.ProcessId),
		file.Fd(),
		uintptr(crashDumpType),
		pointersBlock.ptr+uintptr(2*ptrSize),
		0,
		0,
	)
	if retval == 0 {
		if err == nil || errors.Is(err, windows.ERROR_SUCCESS) {
			err = errors.New("MiniDumpWriteDump failed")
		}
		return err
	}

	return nil
}

func putPointer(b []byte, p uintptr) {
	if unsafe.Sizeof(p) == 8 {
		binary.LittleEndian.PutUint64(b, uint64(p))
	} else {
		binary.LittleEndian.PutUint32(b, uint32(p))
	}
}

func alignUp(p uintptr, alignment uintptr) uintptr {
	return (p + alignment - 1) &^ (alignment - 1)
}
