// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alloc implements a general-purpose dynamic memory allocator
// backed directly by the operating system's anonymous page mapping
// facility. It carves fixed-size OS-backed pages into a double-linked list
// of variable-sized blocks, maintains an auxiliary free-block list,
// performs worst-fit selection, splits oversized blocks, coalesces freed
// neighbours, and releases fully-free pages back to the OS — all while
// maintaining per-block header checksums used to detect corruption and
// double-free.
package alloc

import (
	"fmt"
	"os"
	"sync"
	"unsafe"
)

// trace gates a per-call debug trace to stderr. It is a compile-time
// constant so the tracing branches fold away entirely in a normal build;
// flip it to true locally when chasing a heap corruption.
const trace = false

// Heap is the top-level allocator object: the registry head, the free-list
// head, the mutex serialising every public operation, and the cumulative
// mapped byte count. Exactly one Heap should back a given arena; its zero
// value is not ready for use — obtain one from Init.
type Heap struct {
	mu sync.Mutex

	registryHead   *header
	freeHead       *header
	firstPageStart *header

	mappedBytes uintptr
	closed      bool
}

// Init creates a fresh Heap, mapping its first page immediately so the
// first Alloc never pays for a page fault under the lock. It fails only if
// the OS refuses the initial mapping.
func Init() (h *Heap, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Init() %p, %v\n", h, err) }()
	}

	h = &Heap{}
	if _, err := h.grow(0); err != nil {
		return nil, err
	}
	return h, nil
}

// Destroy releases every mapped page, including the first, and marks h
// closed. After Destroy, Alloc, Free, Realloc, Calloc and Destroy return
// ErrClosed, except Alloc(0) and Free(nil), which return before the heap is
// consulted.
func (h *Heap) Destroy() (err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Destroy() %v\n", err) }()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	for cur := h.registryHead; cur != nil; {
		end := cur
		for !end.isEndSentinel() && end.next != nil {
			end = end.next
		}
		next := end.next
		pageLen := end.garbage

		if e := releasePage(cur, pageLen); e != nil && err == nil {
			err = e
		}
		cur = next
	}

	*h = Heap{closed: true}
	return err
}

// Alloc returns a payload pointer to at least n bytes, aligned to the host's
// widest scalar width, or nil and an error if n overflows or the OS refuses
// a page mapping. Alloc panics for n < 0 and returns (nil, nil) for n == 0.
func (h *Heap) Alloc(n int) (p unsafe.Pointer, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Alloc(%#x) %p, %v\n", n, p, err) }()
	}

	if n == 0 {
		return nil, nil
	}

	size, err := alignSize(n)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	blk, err := h.allocate(size)
	if err != nil {
		return nil, err
	}
	return blk.payload(), nil
}

// Free deallocates the block at p, which must have been returned by Alloc,
// Calloc or Realloc on the same Heap. Free(nil) is a no-op. A checksum
// mismatch on p's header is reported as ErrCorruptedHeader and otherwise
// ignored: the heap is left exactly as it was.
func (h *Heap) Free(p unsafe.Pointer) (err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Free(%p) %v\n", p, err) }()
	}

	if p == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	return h.deallocate(headerOf(p))
}

// Realloc changes the size of the block at p to n bytes, preserving the
// contents up to the smaller of the old and new sizes, and returns a
// pointer to the (possibly relocated) block. Realloc(nil, n) is Alloc(n);
// Realloc(p, 0) is Free(p), returning nil. If the reallocation cannot
// succeed, p is left completely untouched and nil is returned alongside the
// error.
func (h *Heap) Realloc(p unsafe.Pointer, n int) (r unsafe.Pointer, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Realloc(%p, %#x) %p, %v\n", p, n, r, err) }()
	}

	if p == nil {
		return h.Alloc(n)
	}
	if n == 0 {
		return nil, h.Free(p)
	}

	size, err := alignSize(n)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	blk := headerOf(p)
	if !checksumValid(blk) || blk.isFree {
		return nil, ErrCorruptedHeader
	}

	newBlk, err := h.reallocate(blk, size)
	if err != nil {
		return nil, err
	}
	return newBlk.payload(), nil
}

// Calloc returns a zero-filled payload pointer of count*elemSize bytes, or
// nil and ErrSizeOverflow if the product overflows before any mapping is
// attempted.
func (h *Heap) Calloc(count, elemSize int) (p unsafe.Pointer, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Calloc(%#x, %#x) %p, %v\n", count, elemSize, p, err) }()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	blk, err := h.countAllocate(count, elemSize)
	if err != nil {
		return nil, err
	}
	if blk == nil {
		return nil, nil
	}
	return blk.payload(), nil
}

// MappedBytes reports the cumulative number of bytes currently mapped from
// the OS across every page the Heap owns.
func (h *Heap) MappedBytes() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mappedBytes
}
