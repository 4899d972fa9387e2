// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

// AllocBytes is like Alloc except it returns a Go []byte spanning the
// allocated payload instead of a raw unsafe.Pointer, for callers who would
// rather not do their own pointer arithmetic. It's fine to reslice the
// result, but anything produced by appending to it must not be passed to
// FreeBytes or ReallocBytes — append may have moved it to a different
// backing array.
func (h *Heap) AllocBytes(n int) ([]byte, error) {
	p, err := h.Alloc(n)
	if err != nil || p == nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(p), n), nil
}

// FreeBytes is like Free except its argument is a []byte previously
// obtained from AllocBytes, CallocBytes or ReallocBytes.
func (h *Heap) FreeBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return h.Free(unsafe.Pointer(&b[0]))
}

// ReallocBytes is like Realloc except both its argument and its result are
// []byte.
func (h *Heap) ReallocBytes(b []byte, n int) ([]byte, error) {
	var p unsafe.Pointer
	if len(b) != 0 {
		p = unsafe.Pointer(&b[0])
	}

	r, err := h.Realloc(p, n)
	if err != nil || r == nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(r), n), nil
}

// CallocBytes is like Calloc except it returns a zero-filled []byte.
func (h *Heap) CallocBytes(count, elemSize int) ([]byte, error) {
	p, err := h.Calloc(count, elemSize)
	if err != nil || p == nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(p), count*elemSize), nil
}
