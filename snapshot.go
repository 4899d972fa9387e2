// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// BlockInfo describes one header in the registry, for diagnostic use.
type BlockInfo struct {
	Size          uintptr
	IsFree        bool
	IsSentinel    bool
	ChecksumValid bool
}

// PageInfo groups the blocks of one mapped page together with the page's
// total byte length.
type PageInfo struct {
	Length uintptr
	Blocks []BlockInfo
}

// Snapshot is a point-in-time, read-only view of every page and block the
// Heap owns, for an external diagnostic dumper to render.
type Snapshot struct {
	MappedBytes uintptr
	Pages       []PageInfo
}

// Snapshot walks the registry under the lock and returns a description of
// every page and block currently owned by h. It performs no mutation and
// is safe to call at any time.
func (h *Heap) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := Snapshot{MappedBytes: h.mappedBytes}

	var page *PageInfo
	for cur := h.registryHead; cur != nil; cur = cur.next {
		if cur.isStartHeader() {
			snap.Pages = append(snap.Pages, PageInfo{})
			page = &snap.Pages[len(snap.Pages)-1]
		}

		page.Blocks = append(page.Blocks, BlockInfo{
			Size:          cur.size,
			IsFree:        cur.isFree,
			IsSentinel:    cur.isEndSentinel(),
			ChecksumValid: checksumValid(cur),
		})

		if cur.isEndSentinel() {
			page.Length = cur.garbage
		}
	}

	return snap
}
