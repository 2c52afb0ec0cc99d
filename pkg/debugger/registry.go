/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"fmt"
)

// Handle is an opaque OS handle owned by the debug session (a Win32 HANDLE on Windows).
type Handle uintptr

const InvalidHandle Handle = 0

// DuplicateIdError is returned when an id that is already tracked is inserted again.
// For processes and threads this means the OS reused an id while we still track it.
type DuplicateIdError struct {
	Kind string
	Id   uint32
}

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("%s id %d already exists", e.Kind, e.Id)
}

// UnknownIdError is returned when an id that is not tracked is looked up or removed.
type UnknownIdError struct {
	Kind string
	Id   uint32
}

func (e *UnknownIdError) Error() string {
	return fmt.Sprintf("cannot find %s id %d", e.Kind, e.Id)
}

// HandleRegistry maps process or thread ids to the handles the session owns for them.
// An entry being present in the registry is what "owning" the handle means.
// Not safe for concurrent use; the debug loop is the only accessor.
type HandleRegistry struct {
	kind    string
	handles map[uint32]Handle
}

func NewHandleRegistry(kind string) *HandleRegistry {
	return &HandleRegistry{
		kind:    kind,
		handles: make(map[uint32]Handle),
	}
}

func (r *HandleRegistry) Insert(id uint32, h Handle) error {
	if _, found := r.handles[id]; found {
		return &DuplicateIdError{Kind: r.kind, Id: id}
	}
	r.handles[id] = h
	return nil
}

// Remove deletes the entry and hands the handle back to the caller.
func (r *HandleRegistry) Remove(id uint32) (Handle, error) {
	h, found := r.handles[id]
	if !found {
		return InvalidHandle, &UnknownIdError{Kind: r.kind, Id: id}
	}
	delete(r.handles, id)
	return h, nil
}

// Get returns the handle tracked for the id. The handle stays owned by the registry.
func (r *HandleRegistry) Get(id uint32) (Handle, error) {
	h, found := r.handles[id]
	if !found {
		return InvalidHandle, &UnknownIdError{Kind: r.kind, Id: id}
	}
	return h, nil
}

func (r *HandleRegistry) Count() int {
	return len(r.handles)
}

func (r *HandleRegistry) Clear() {
	clear(r.handles)
}
