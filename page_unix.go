// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

package alloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// newPage maps a fresh, zero-filled anonymous region sized for
// payloadBytes and returns its start header. first is unused: the heap
// descriptor lives in ordinary Go memory, never embedded in the mapped
// arena, so there is nothing page-placement-sensitive to special-case for
// the very first page.
func newPage(payloadBytes int, first bool) (*header, error) {
	size := pageMappingSize(payloadBytes)
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, ErrOutOfMemory
	}

	return initPage(b), nil
}

// releasePage returns the page whose start header is start (byte length
// taken from its end sentinel) back to the OS.
func releasePage(start *header, length uintptr) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(start)), length)
	return unix.Munmap(b)
}
