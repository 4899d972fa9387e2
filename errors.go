// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "errors"

var (
	// ErrOutOfMemory is returned when the OS refuses a page mapping. The
	// heap is left exactly as it was before the call.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrSizeOverflow is returned when a requested size, or count*elemSize,
	// overflows the size type. The heap is left exactly as it was before
	// the call.
	ErrSizeOverflow = errors.New("alloc: size overflow")

	// ErrCorruptedHeader is returned by Free/Realloc when the supplied
	// pointer's header fails its checksum. The heap is left untouched: a
	// corrupted header cannot safely be used to navigate the registry or
	// the free list.
	ErrCorruptedHeader = errors.New("alloc: corrupted header")

	// ErrClosed is returned by Alloc, Free, Realloc, Calloc and Destroy on a
	// Heap after Destroy (Alloc(0) and Free(nil) still return nil).
	ErrClosed = errors.New("alloc: heap is closed")
)
