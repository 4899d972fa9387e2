// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// lastSentinel walks next from h's registry head until it finds the header
// with a nil next pointer — the end sentinel of the most recently mapped
// page. This walk is linear by design: growth is rare relative to
// allocate/free, and the registry is not expected to be so deep that the
// walk dominates.
func (h *Heap) lastSentinel() *header {
	cur := h.registryHead
	for cur.next != nil {
		cur = cur.next
	}
	return cur
}

// spliceInPage links a freshly mapped page's start header onto the tail of
// the registry, after the current last end sentinel.
func (h *Heap) spliceInPage(start *header) {
	if h.registryHead == nil {
		h.registryHead = start
		return
	}

	last := h.lastSentinel()
	last.next = start
	start.prev = last
	reseal(last)
	reseal(start)
}

// spliceOutPage removes a page's start header and its end sentinel from the
// registry, connecting the previous page's end sentinel (or nil, if this
// was the first page) directly to the next page's start header (or nil, if
// this was the last page).
func (h *Heap) spliceOutPage(start, end *header) {
	before := start.prev
	after := end.next

	switch {
	case before == nil:
		h.registryHead = after
	default:
		before.next = after
		reseal(before)
	}

	if after != nil {
		after.prev = before
		reseal(after)
	}

	start.prev, start.next = nil, nil
	end.prev, end.next = nil, nil
}
