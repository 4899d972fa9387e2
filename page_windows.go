// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package alloc

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// newPage reserves and commits a fresh anonymous region sized for
// payloadBytes and returns its start header. VirtualAlloc needs no handle
// table the way CreateFileMapping-based approaches do: it reserves and
// commits address space directly, which is the Windows analogue of
// mmap(MAP_ANON) on the unix side.
func newPage(payloadBytes int, first bool) (*header, error) {
	size := pageMappingSize(payloadBytes)
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, ErrOutOfMemory
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return initPage(b), nil
}

// releasePage returns the page whose start header is start back to the OS.
// VirtualFree with MEM_RELEASE requires the original base address and a
// zero size, so length (needed by the unix Munmap equivalent) goes unused
// here.
func releasePage(start *header, length uintptr) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(start)), 0, windows.MEM_RELEASE)
}
