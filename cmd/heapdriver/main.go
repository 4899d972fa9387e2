// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command heapdriver exercises the heap end to end: it runs a fixed battery
// of allocator scenarios and reports pass/fail for each.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	alloc "github.com/FaysouRGB/double-linked-list-allocator"
	"github.com/FaysouRGB/double-linked-list-allocator/diag"
)

type scenario struct {
	name string
	run  func(h *alloc.Heap) error
}

var scenarios = []scenario{
	{"alloc-free-realloc-calloc-roundtrip", scenario1},
	{"free-reuse-under-worst-fit", scenario2},
	{"double-free-is-silently-ignored", scenario3},
	{"large-page-released-on-free", scenario4},
	{"calloc-zeroes-payload", scenario5},
	{"calloc-overflow-returns-nil", scenario6},
}

func main() {
	only := flag.String("scenario", "", "run only the named scenario (default: all)")
	verbose := flag.Bool("v", false, "dump the heap snapshot after each scenario")
	flag.Parse()

	failed := 0
	for _, s := range scenarios {
		if *only != "" && s.name != *only {
			continue
		}

		h, err := alloc.Init()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: Init: %v\n", s.name, err)
			failed++
			continue
		}

		if err := s.run(h); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", s.name, err)
			failed++
		} else {
			fmt.Printf("PASS %s\n", s.name)
		}

		if *verbose {
			diag.Dump(os.Stdout, h.Snapshot())
		}
		h.Destroy()
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func scenario1(h *alloc.Heap) error {
	p1, err := h.Alloc(1000)
	if err != nil {
		return err
	}
	p2, err := h.Alloc(5000)
	if err != nil {
		return err
	}
	if err := h.Free(p2); err != nil {
		return err
	}
	if p1, err = h.Realloc(p1, 4000); err != nil {
		return err
	}
	if p2, err = h.Calloc(10000, 1); err != nil {
		return err
	}
	p3, err := h.Alloc(2 * os.Getpagesize())
	if err != nil {
		return err
	}
	if err := h.Free(p1); err != nil {
		return err
	}
	if err := h.Free(p2); err != nil {
		return err
	}
	return h.Free(p3)
}

func scenario2(h *alloc.Heap) error {
	if _, err := h.Alloc(50); err != nil {
		return err
	}
	b, err := h.Alloc(120)
	if err != nil {
		return err
	}
	if err := h.Free(b); err != nil {
		return err
	}
	c, err := h.Alloc(120)
	if err != nil {
		return err
	}
	if c != b {
		return fmt.Errorf("expected worst-fit to reuse %p, got %p", b, c)
	}
	return nil
}

func scenario3(h *alloc.Heap) error {
	a, err := h.Alloc(50)
	if err != nil {
		return err
	}
	if err := h.Free(a); err != nil {
		return err
	}

	// The second Free must neither panic nor corrupt the heap. a's header
	// is already marked free, so this is rejected as ErrCorruptedHeader
	// without touching the free list a second time.
	if err := h.Free(a); err != alloc.ErrCorruptedHeader {
		return fmt.Errorf("expected ErrCorruptedHeader on double free, got %v", err)
	}

	for _, page := range h.Snapshot().Pages {
		for _, blk := range page.Blocks {
			if !blk.ChecksumValid {
				return fmt.Errorf("heap corrupted after double free: block size=%d free=%v", blk.Size, blk.IsFree)
			}
		}
	}
	return nil
}

func scenario4(h *alloc.Heap) error {
	before := h.MappedBytes()
	p, err := h.Alloc(10 * os.Getpagesize())
	if err != nil {
		return err
	}
	if err := h.Free(p); err != nil {
		return err
	}
	after := h.MappedBytes()
	if after != before {
		return fmt.Errorf("expected mapped bytes to return to %d, got %d", before, after)
	}
	return nil
}

func scenario5(h *alloc.Heap) error {
	p, err := h.Calloc(100, 10)
	if err != nil {
		return err
	}
	b := unsafe.Slice((*byte)(p), 1000)
	for i, c := range b {
		if c != 0 {
			return fmt.Errorf("byte %d not zero", i)
		}
	}
	return nil
}

func scenario6(h *alloc.Heap) error {
	before := h.MappedBytes()
	p, err := h.Calloc(int(^uint(0)>>1), 2)
	if err != alloc.ErrSizeOverflow {
		return fmt.Errorf("expected ErrSizeOverflow, got %v", err)
	}
	if p != nil {
		return fmt.Errorf("expected nil pointer on overflow")
	}
	if h.MappedBytes() != before {
		return fmt.Errorf("overflow must not map anything")
	}
	return nil
}
