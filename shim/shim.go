// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

// Package shim exports malloc/free/realloc/calloc with platform-standard C
// signatures so a cgo-linked binary can substitute this allocator for the
// platform's own. It is a thin cgo facade over mymalloc and carries none of
// the allocation logic itself.
package shim

/*
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"github.com/FaysouRGB/double-linked-list-allocator/mymalloc"
)

//export malloc
func malloc(size C.size_t) unsafe.Pointer {
	return mymalloc.MyMalloc(int(size))
}

//export free
func free(p unsafe.Pointer) {
	mymalloc.MyFree(p)
}

//export realloc
func realloc(p unsafe.Pointer, size C.size_t) unsafe.Pointer {
	return mymalloc.MyRealloc(p, int(size))
}

//export calloc
func calloc(nmemb, size C.size_t) unsafe.Pointer {
	// A size_t above the largest int converts to a negative int; such a
	// product cannot be represented, so report it as an overflow.
	if int(nmemb) < 0 || int(size) < 0 {
		return nil
	}
	return mymalloc.MyCalloc(int(nmemb), int(size))
}
