// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// insertFree pushes blk onto the head of h's free list (LIFO). blk must not
// be a sentinel and must already be marked free; the caller reseals blk's
// own checksum afterwards.
func (h *Heap) insertFree(blk *header) {
	blk.nextFree = h.freeHead
	blk.prevFree = nil
	if h.freeHead != nil {
		h.freeHead.prevFree = blk
		reseal(h.freeHead)
	}
	h.freeHead = blk
}

// removeFree unlinks blk from the free list, whatever its position, and
// restores the checksums of whichever neighbours it had. blk's own
// nextFree/prevFree are nulled so it can be safely re-inserted elsewhere or
// promoted to in-use.
func (h *Heap) removeFree(blk *header) {
	switch {
	case h.freeHead == blk:
		h.freeHead = blk.nextFree
		if h.freeHead != nil {
			h.freeHead.prevFree = nil
			reseal(h.freeHead)
		}
	case blk.nextFree != nil:
		blk.prevFree.nextFree = blk.nextFree
		reseal(blk.prevFree)

		blk.nextFree.prevFree = blk.prevFree
		reseal(blk.nextFree)
	default:
		blk.prevFree.nextFree = nil
		reseal(blk.prevFree)
	}

	blk.nextFree = nil
	blk.prevFree = nil
}
