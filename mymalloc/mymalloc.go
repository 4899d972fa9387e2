// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mymalloc provides malloc/free/calloc/realloc-style entry points
// backed by a single lazily-initialised, process-wide *alloc.Heap.
package mymalloc

import (
	"sync"
	"sync/atomic"
	"unsafe"

	alloc "github.com/FaysouRGB/double-linked-list-allocator"
)

var (
	global  atomic.Pointer[alloc.Heap]
	initing sync.Mutex
)

func heap() *alloc.Heap {
	if h := global.Load(); h != nil {
		return h
	}

	initing.Lock()
	defer initing.Unlock()

	if h := global.Load(); h != nil {
		return h
	}

	h, err := alloc.Init()
	if err != nil {
		// The only failure mode of Init is the OS refusing the very first
		// page mapping, which leaves the process unable to make forward
		// progress regardless of what this package does about it.
		panic(err)
	}
	global.Store(h)
	return h
}

// MyMalloc allocates n bytes and returns a pointer to them, or nil if n
// overflows or the OS refuses a mapping.
func MyMalloc(n int) unsafe.Pointer {
	p, _ := heap().Alloc(n)
	return p
}

// MyFree releases the block at p. MyFree(nil) is a no-op; a corrupted
// header is silently ignored.
func MyFree(p unsafe.Pointer) {
	_ = heap().Free(p)
}

// MyCalloc allocates a zero-filled block of count*elemSize bytes, or
// returns nil if the product overflows.
func MyCalloc(count, elemSize int) unsafe.Pointer {
	p, _ := heap().Calloc(count, elemSize)
	return p
}

// MyRealloc resizes the block at p to n bytes, or returns nil (leaving p
// untouched) if the resize cannot succeed.
func MyRealloc(p unsafe.Pointer, n int) unsafe.Pointer {
	r, _ := heap().Realloc(p, n)
	return r
}
