// Copyright 2026 The Blockheap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"math"
	"testing"
	"unsafe"

	"github.com/cznic/mathutil"
)

// These three fuzz harnesses share a common shape: a seeded PRNG drives an
// allocate phase up to a byte quota, a replay of the same seed verifies the
// payloads round-tripped correctly, and a free phase (in shuffled or
// interleaved order) drains the heap back to its pinned first page.
// checkInvariants runs at phase boundaries (test1 after allocating and after
// freeing, test2 after freeing) or, in test3, every 64 iterations and at the
// end.

const (
	fuzzQuota  = 4 << 20
	smallMax   = 2 * 4096
	bigMax     = 256 * 1024
)

// unsafeBytesFromKey recovers a []byte of length n whose first byte is *key.
// It exists only so test3 can key its live-block map by address (a []byte is
// not itself comparable) while still operating on real []byte values.
func unsafeBytesFromKey(key *byte, n int) []byte {
	return unsafe.Slice(key, n)
}

func test1(t *testing.T, max int) {
	h, err := Init()
	if err != nil {
		t.Fatal(err)
	}
	defer h.Destroy()

	initial := h.MappedBytes()
	rem := fuzzQuota
	var a [][]byte

	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	if err != nil {
		t.Fatal(err)
	}
	rng.Seed(42)
	pos := rng.Pos()

	for rem > 0 {
		size := rng.Next()%max + 1
		rem -= size

		b, err := h.AllocBytes(size)
		if err != nil {
			t.Fatal(err)
		}
		a = append(a, b)
		for i := range b {
			b[i] = byte(rng.Next())
		}
	}
	checkInvariants(t, h)

	rng.Seek(pos)
	for i, b := range a {
		if g, e := len(b), rng.Next()%max+1; g != e {
			t.Fatalf("block %d: len %d, want %d", i, g, e)
		}
		for j, g := range b {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("block %d byte %d: %#02x, want %#02x", i, j, g, e)
			}
		}
	}

	for i := range a {
		j := rng.Next() % len(a)
		a[i], a[j] = a[j], a[i]
	}

	for _, b := range a {
		if err := h.FreeBytes(b); err != nil {
			t.Fatal(err)
		}
	}
	checkInvariants(t, h)

	if mapped := h.MappedBytes(); mapped != initial {
		t.Fatalf("heap maps %d bytes after draining every allocation, want the first page's %d", mapped, initial)
	}
}

func Test1Small(t *testing.T) { test1(t, smallMax) }
func Test1Big(t *testing.T)   { test1(t, bigMax) }

func test2(t *testing.T, max int) {
	h, err := Init()
	if err != nil {
		t.Fatal(err)
	}
	defer h.Destroy()

	initial := h.MappedBytes()
	rem := fuzzQuota
	var a [][]byte

	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	if err != nil {
		t.Fatal(err)
	}
	rng.Seed(42)
	pos := rng.Pos()

	for rem > 0 {
		size := rng.Next()%max + 1
		rem -= size

		b, err := h.AllocBytes(size)
		if err != nil {
			t.Fatal(err)
		}
		a = append(a, b)
		for i := range b {
			b[i] = byte(rng.Next())
		}
	}

	rng.Seek(pos)
	for i, b := range a {
		if g, e := len(b), rng.Next()%max+1; g != e {
			t.Fatalf("block %d: len %d, want %d", i, g, e)
		}
		for j, g := range b {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("block %d byte %d: %#02x, want %#02x", i, j, g, e)
			}
		}
		if err := h.FreeBytes(b); err != nil {
			t.Fatal(err)
		}
	}
	checkInvariants(t, h)

	if mapped := h.MappedBytes(); mapped != initial {
		t.Fatalf("heap maps %d bytes after draining every allocation, want the first page's %d", mapped, initial)
	}
}

func Test2Small(t *testing.T) { test2(t, smallMax) }
func Test2Big(t *testing.T)   { test2(t, bigMax) }

// test3 interleaves allocation and free at random (2/3 allocate, 1/3 free a
// random live block), tracking each live block's expected contents in a map
// keyed by its backing array's address. It is the stress case most likely to
// exercise coalescing and page release mid-run.
func test3(t *testing.T, max int) {
	h, err := Init()
	if err != nil {
		t.Fatal(err)
	}
	defer h.Destroy()

	initial := h.MappedBytes()
	rem := fuzzQuota
	live := map[*byte][]byte{}

	rng, err := mathutil.NewFC32(1, max, true)
	if err != nil {
		t.Fatal(err)
	}

	iterations := 0
	for rem > 0 {
		iterations++
		switch rng.Next() % 3 {
		case 0, 1: // allocate
			size := rng.Next()
			rem -= size

			b, err := h.AllocBytes(size)
			if err != nil {
				t.Fatal(err)
			}
			for i := range b {
				b[i] = byte(rng.Next())
			}
			live[&b[0]] = append([]byte(nil), b...)
		default: // free one live block
			for key, want := range live {
				b := unsafeBytesFromKey(key, len(want))
				if string(b) != string(want) {
					t.Fatal("live block contents diverged from expectation before free")
				}
				rem += len(b)
				if err := h.FreeBytes(b); err != nil {
					t.Fatal(err)
				}
				delete(live, key)
				break
			}
		}

		if iterations%64 == 0 {
			checkInvariants(t, h)
		}
	}

	for key, want := range live {
		b := unsafeBytesFromKey(key, len(want))
		if string(b) != string(want) {
			t.Fatal("corrupted heap: live block contents diverged from expectation")
		}
		if err := h.FreeBytes(b); err != nil {
			t.Fatal(err)
		}
	}
	checkInvariants(t, h)

	if mapped := h.MappedBytes(); mapped != initial {
		t.Fatalf("heap maps %d bytes after draining every allocation, want the first page's %d", mapped, initial)
	}
}

func Test3Small(t *testing.T) { test3(t, smallMax) }
func Test3Big(t *testing.T)   { test3(t, bigMax) }
