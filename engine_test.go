// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"testing"
	"unsafe"
)

func TestAlignSizeRoundsUp(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0},
		{1, alignment},
		{alignment, alignment},
		{alignment + 1, 2 * alignment},
		{alignment - 1, alignment},
	}

	for _, c := range cases {
		got, err := alignSize(c.n)
		if err != nil {
			t.Fatalf("alignSize(%d): %v", c.n, err)
		}
		if int(got) != c.want {
			t.Errorf("alignSize(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestAlignSizeOverflow(t *testing.T) {
	huge := int(^uint(0) >> 1) // math.MaxInt
	if _, err := alignSize(huge); err != ErrSizeOverflow {
		t.Fatalf("alignSize(MaxInt): got %v, want ErrSizeOverflow", err)
	}
}

func TestAlignSizeNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("alignSize(-1) did not panic")
		}
	}()
	alignSize(-1)
}

func TestSplittable(t *testing.T) {
	blk := &header{size: 256}

	if !splittable(blk, 64) {
		t.Error("a 256-byte block should be splittable at 64 bytes")
	}
	if splittable(blk, 256) {
		t.Error("splitting off the entire block should not be splittable")
	}
	if splittable(blk, 256-uintptr(headerSize)-alignment+1) {
		t.Error("a remainder one byte short of header+alignment should not be splittable")
	}
}

// TestWorstFitPicksLargestAdequate exercises selectFree directly: among
// several free blocks of different sizes, it must return the one that
// maximises size-need, not the first or smallest adequate one.
func TestWorstFitPicksLargestAdequate(t *testing.T) {
	h, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer h.Destroy()

	// Sizes at even indices are freed; odd indices stay allocated so the
	// freed blocks remain non-adjacent and cannot coalesce into one another.
	sizes := []int{64, 512, 128, 2048, 256}
	var blocks []unsafe.Pointer
	for _, s := range sizes {
		p, err := h.Alloc(s)
		if err != nil {
			t.Fatalf("Alloc(%d): %v", s, err)
		}
		blocks = append(blocks, p)
	}
	for i, p := range blocks {
		if i%2 != 0 {
			continue
		}
		if err := h.Free(p); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
	checkInvariants(t, h)

	h.mu.Lock()
	var best *header
	for blk := h.freeHead; blk != nil; blk = blk.nextFree {
		if best == nil || blk.size > best.size {
			best = blk
		}
	}
	largest := best
	h.mu.Unlock()

	got, err := h.selectFree(1)
	if err != nil {
		t.Fatalf("selectFree: %v", err)
	}
	if got != largest {
		t.Fatalf("selectFree(1) did not pick the largest free block")
	}
}

// TestCoalesceDoesNotCrossPageBoundary verifies that a block at the very end
// of one page does not merge with the start header of a different page, even
// though both may independently be free.
func TestCoalesceDoesNotCrossPageBoundary(t *testing.T) {
	h, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer h.Destroy()

	// Force a second page to be mapped by requesting more than the first
	// page's remaining free capacity.
	p, err := h.Alloc(4 * systemPageSize)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	h.mu.Lock()
	pages := 0
	for cur := h.registryHead; cur != nil; cur = cur.next {
		if cur.isStartHeader() {
			pages++
		}
	}
	h.mu.Unlock()
	if pages < 2 {
		t.Fatal("test setup did not produce a second page")
	}

	if err := h.Free(p); err != nil {
		t.Fatalf("Free: %v", err)
	}
	checkInvariants(t, h)
}
