// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"os"
	"unsafe"
)

// systemPageSize is the host's native page size. Every region obtained from
// the OS is a whole multiple of it.
var systemPageSize = os.Getpagesize()

// pageMappingSize returns the smallest multiple of systemPageSize able to
// hold a start header, an end sentinel, and payloadBytes of aligned
// payload.
func pageMappingSize(payloadBytes int) int {
	need := 2*headerSize + alignUp(payloadBytes)
	return roundup(need, systemPageSize)
}

// initPage writes a page's start header and end sentinel into a freshly
// mapped, zero-filled region b, and returns the start header. b's length
// must already be a multiple of systemPageSize, as produced by
// pageMappingSize.
func initPage(b []byte) *header {
	base := unsafe.Pointer(&b[0])
	start := (*header)(base)
	start.size = uintptr(len(b) - 2*headerSize)
	start.isFree = true

	end := (*header)(unsafe.Pointer(uintptr(base) + uintptr(len(b)-headerSize)))
	end.isFree = false
	end.size = 0
	end.garbage = uintptr(len(b))
	end.prev = start

	start.next = end

	reseal(start)
	reseal(end)
	return start
}

// alignUp returns the smallest multiple of alignment that is >= n. It is
// only ever called in pageMappingSize with a size that has already passed
// through engine.go's alignSize overflow check, so it never needs to detect
// overflow itself.
func alignUp(n int) int { return roundup(n, alignment) }
