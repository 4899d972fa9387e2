// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

// alignSize returns the smallest multiple of alignment that is >= n, as a
// uintptr, or ErrSizeOverflow if rounding up would overflow. n must be >= 0;
// a negative byte count is a programmer error, not a runtime condition, so it
// panics rather than turning every call site into another error check.
func alignSize(n int) (uintptr, error) {
	if n < 0 {
		panic("alloc: negative size")
	}

	aligned := roundup(n, alignment)
	if aligned < n {
		return 0, ErrSizeOverflow
	}
	return uintptr(aligned), nil
}

// selectFree implements a worst-fit policy: among all free blocks with
// size >= need, pick the one maximising size-need. Worst-fit leaves the
// largest possible remainder after a split, trading fragmentation of small
// blocks for keeping large ones available longer; this is a deliberate
// policy choice here, not a bug standing in for best-fit. If none is
// adequate (including an empty free list), grow the heap and return the
// fresh block.
func (h *Heap) selectFree(need uintptr) (*header, error) {
	var best *header
	for blk := h.freeHead; blk != nil; blk = blk.nextFree {
		if blk.size < need {
			continue
		}
		if best == nil || blk.size-need > best.size-need {
			best = blk
		}
	}

	if best != nil {
		return best, nil
	}

	return h.grow(need)
}

// grow maps a fresh page sized for need bytes of payload, links it onto the
// registry tail, and inserts its sole block into the free list.
func (h *Heap) grow(need uintptr) (*header, error) {
	start, err := newPage(int(need), h.registryHead == nil)
	if err != nil {
		return nil, err
	}

	pageLen := start.next.garbage

	h.spliceInPage(start)
	h.insertFree(start)
	reseal(start)

	if h.firstPageStart == nil {
		h.firstPageStart = start
	}

	h.mappedBytes += pageLen
	return start, nil
}

// split divides blk into a leading block of exactly size bytes and a
// trailing free remainder, provided blk is large enough to hold both a new
// header and a minimally-sized aligned payload. The caller inserts the
// remainder into the free list and then seals its checksum.
func (h *Heap) split(blk *header, size uintptr) *header {
	remainder := (*header)(unsafe.Pointer(uintptr(unsafe.Pointer(blk)) + uintptr(headerSize) + size))
	*remainder = header{
		size:   blk.size - size - uintptr(headerSize),
		isFree: true,
		prev:   blk,
		next:   blk.next,
	}

	if remainder.next != nil {
		remainder.next.prev = remainder
		reseal(remainder.next)
	}

	blk.next = remainder
	blk.size = size
	return remainder
}

// splittable reports whether blk is large enough that carving size bytes
// off its front still leaves room for a header and a minimum aligned
// payload in the remainder.
func splittable(blk *header, size uintptr) bool {
	return blk.size >= size+uintptr(headerSize)+alignment
}

// allocate returns a block of at least size bytes, marked in-use, chosen per
// selectFree and split if the candidate is large enough to leave a usable
// remainder; otherwise the whole candidate is handed out.
func (h *Heap) allocate(size uintptr) (*header, error) {
	blk, err := h.selectFree(size)
	if err != nil {
		return nil, err
	}

	if splittable(blk, size) {
		remainder := h.split(blk, size)
		h.insertFree(remainder)
		reseal(remainder)
	}

	h.removeFree(blk)
	blk.isFree = false
	reseal(blk)
	return blk, nil
}

// coalesce merges blk with an immediately-adjacent free predecessor and/or
// successor within the same page (the non-free end sentinel always stops
// the chain at a page boundary) and returns the surviving block. An absorbed
// header's memory is left untouched by the merge itself, so a later Free
// through a stale pointer into it only fails checksumValid once something
// else has written over that memory; it is not a guarantee on its own.
// deallocate's explicit is_free check covers the remaining case.
func (h *Heap) coalesce(blk *header) *header {
	if blk.prev != nil && blk.prev.isFree && !blk.prev.isEndSentinel() {
		prev := blk.prev
		h.removeFree(prev)

		prev.next = blk.next
		if prev.next != nil {
			prev.next.prev = prev
			reseal(prev.next)
		}
		prev.size += blk.size + uintptr(headerSize)
		blk = prev
	}

	if blk.next != nil && blk.next.isFree && !blk.next.isEndSentinel() {
		next := blk.next
		h.removeFree(next)

		blk.next = next.next
		if blk.next != nil {
			blk.next.prev = blk
			reseal(blk.next)
		}
		blk.size += next.size + uintptr(headerSize)
	}

	return blk
}

// tryReleasePage returns blk's whole page to the OS if, after coalescing,
// blk together with its end sentinel is the entirety of the page: blk.next
// is an end sentinel and blk itself is a start header. The heap's first
// page is pinned and never released, so there is always at least one
// mapping to hand out from without touching the OS.
func (h *Heap) tryReleasePage(blk *header) error {
	if blk == h.firstPageStart {
		return nil
	}
	if blk.next == nil || !blk.next.isEndSentinel() {
		return nil
	}
	if !blk.isStartHeader() {
		return nil
	}

	end := blk.next
	pageLen := end.garbage

	h.removeFree(blk)
	h.spliceOutPage(blk, end)
	h.mappedBytes -= pageLen

	return releasePage(blk, pageLen)
}

// deallocate validates blk's checksum and is_free state, marks it free,
// coalesces it with any free neighbours, inserts the survivor into the free
// list, and attempts to release its page. A checksum mismatch or an
// already-free block leaves the heap untouched.
func (h *Heap) deallocate(blk *header) error {
	if !checksumValid(blk) {
		return ErrCorruptedHeader
	}

	// A block that is already free has a self-consistent checksum — the
	// first Free resealed it — so checksum validity alone cannot catch a
	// double-free once nothing has written over the block in between.
	// is_free is the deterministic half of the guard, alongside (or in
	// place of) the incidental staleness a coalesced-away header is left
	// with.
	if blk.isFree {
		return ErrCorruptedHeader
	}

	blk.isFree = true
	blk = h.coalesce(blk)
	h.insertFree(blk)
	reseal(blk)

	return h.tryReleasePage(blk)
}

// reallocate resizes blk to newSize. If blk is already big enough it is
// returned unchanged. Otherwise, if a neighbour is free and coalescing
// would be big enough, the coalesced (and possibly re-split) block is
// returned — note its address may differ from blk's if the merge absorbed
// the previous block, in which case the old payload is moved to the new
// address. Otherwise a fresh block is allocated, the old payload
// copied in, and the old block freed; if the fresh allocation fails, blk is
// left completely untouched and the zero header/error is returned.
func (h *Heap) reallocate(blk *header, newSize uintptr) (*header, error) {
	if blk.size >= newSize {
		return blk, nil
	}

	prevFree := blk.prev != nil && blk.prev.isFree && !blk.prev.isEndSentinel()
	nextFree := blk.next != nil && blk.next.isFree && !blk.next.isEndSentinel()

	if prevFree || nextFree {
		potential := blk.size
		if prevFree {
			potential += blk.prev.size + uintptr(headerSize)
		}
		if nextFree {
			potential += blk.next.size + uintptr(headerSize)
		}

		if potential >= newSize {
			oldSize := blk.size
			oldPayload := blk.payload()
			merged := h.coalesce(blk)
			if merged != blk {
				// Absorbed into the previous block: move the payload down to
				// the merged block's start (copy handles the overlap).
				dst := unsafe.Slice((*byte)(merged.payload()), oldSize)
				copy(dst, unsafe.Slice((*byte)(oldPayload), oldSize))
			}
			if splittable(merged, newSize) {
				remainder := h.split(merged, newSize)
				h.insertFree(remainder)
				reseal(remainder)
			}
			merged.isFree = false
			reseal(merged)
			return merged, nil
		}
	}

	fresh, err := h.allocate(newSize)
	if err != nil {
		return nil, err
	}

	dst := unsafe.Slice((*byte)(fresh.payload()), blk.size)
	src := unsafe.Slice((*byte)(blk.payload()), blk.size)
	copy(dst, src)

	if err := h.deallocate(blk); err != nil {
		return nil, err
	}

	return fresh, nil
}

// allocateZeroed allocates size bytes and zero-fills exactly size of them.
func (h *Heap) allocateZeroed(size uintptr) (*header, error) {
	blk, err := h.allocate(size)
	if err != nil {
		return nil, err
	}

	b := unsafe.Slice((*byte)(blk.payload()), size)
	for i := range b {
		b[i] = 0
	}
	return blk, nil
}

// countAllocate computes count*elemSize with overflow detection performed
// before any allocation is attempted, then behaves as allocateZeroed. The
// product is computed with Go's wrapping integer arithmetic and the
// overflow is detected by dividing it back by count.
func (h *Heap) countAllocate(count, elemSize int) (*header, error) {
	if count < 0 || elemSize < 0 {
		panic("alloc: negative count or element size")
	}
	if count == 0 || elemSize == 0 {
		return nil, nil
	}

	total := count * elemSize
	if total/count != elemSize {
		return nil, ErrSizeOverflow
	}

	size, err := alignSize(total)
	if err != nil {
		return nil, err
	}
	return h.allocateZeroed(size)
}
