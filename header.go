// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

const (
	// alignment is the byte width every header and every payload pointer
	// handed back to a caller must respect. It must be >= 16 to cover the
	// widest scalar on every host this package targets.
	alignment = 16
)

// header is the fixed-layout block header placed immediately before a
// block's payload bytes. It doubles as a registry-list node and, when
// is_free is true, as a free-list node.
//
// header never crosses a page boundary and is never moved once written;
// only its fields mutate. It is always reached by pointer arithmetic over
// an mmap'd byte arena, never copied by value across page boundaries.
type header struct {
	checksum uint32

	next *header
	prev *header

	nextFree *header
	prevFree *header

	size    uintptr // payload length in bytes; 0 on the end sentinel
	garbage uintptr // page byte-length; non-zero iff this is an end sentinel
	isFree  bool
}

var headerSize = roundup(int(unsafe.Sizeof(header{})), alignment)

// roundup returns the smallest multiple of m that is >= n. m must be a
// power of 2.
func roundup(n, m int) int { return (n + m - 1) &^ (m - 1) }

// isEndSentinel reports whether h closes a page. The end sentinel is the
// only header that ever carries a non-zero garbage field.
func (h *header) isEndSentinel() bool { return h.garbage != 0 }

// isStartHeader reports whether h is the first real header of a page:
// either the very first header in the whole registry, or immediately
// preceded by the previous page's end sentinel.
func (h *header) isStartHeader() bool {
	return h.prev == nil || h.prev.isEndSentinel()
}

// payload returns the pointer to h's payload bytes.
func (h *header) payload() unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + uintptr(headerSize))
}

// headerOf recovers the header immediately preceding a payload pointer.
func headerOf(p unsafe.Pointer) *header {
	return (*header)(unsafe.Pointer(uintptr(p) - uintptr(headerSize)))
}

// checksumOf sums every byte of h's memory image except the checksum field
// itself. It is a corruption guard, not a security primitive: its job is
// catching double-frees and wild writes into header memory, not defeating
// an adversary who can forge 32 bits of sum.
func checksumOf(h *header) uint32 {
	b := unsafe.Slice((*byte)(unsafe.Pointer(h)), headerSize)
	var sum uint32
	for _, c := range b[unsafe.Sizeof(h.checksum):] {
		sum += uint32(c)
	}
	return sum
}

// reseal recomputes and stores h's checksum. Every mutation of a header's
// fields must be followed by reseal before the header is next navigated.
func reseal(h *header) {
	if h == nil {
		return
	}
	h.checksum = checksumOf(h)
}

// checksumValid reports whether h's stored checksum matches its current
// contents.
func checksumValid(h *header) bool {
	return h.checksum == checksumOf(h)
}
