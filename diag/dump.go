// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag renders an alloc.Heap's Snapshot as text. The core package
// owns no formatting or output concerns of its own, only the Snapshot
// accessor this package consumes.
package diag

import (
	"fmt"
	"io"
	"text/tabwriter"

	alloc "github.com/FaysouRGB/double-linked-list-allocator"
)

// Dump writes a human-readable rendering of snap to w: one line per page
// giving its byte length, followed by one indented line per block giving
// its size, free/in-use state, and checksum validity.
func Dump(w io.Writer, snap alloc.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "mapped\t%d bytes\n", snap.MappedBytes)

	for i, page := range snap.Pages {
		fmt.Fprintf(tw, "page %d\t%d bytes\n", i, page.Length)
		for j, blk := range page.Blocks {
			state := "in-use"
			switch {
			case blk.IsSentinel:
				state = "sentinel"
			case blk.IsFree:
				state = "free"
			}

			checksum := "ok"
			if !blk.ChecksumValid {
				checksum = "CORRUPT"
			}

			fmt.Fprintf(tw, "  block %d\tsize=%d\t%s\tchecksum=%s\n", j, blk.Size, state, checksum)
		}
	}

	return tw.Flush()
}
