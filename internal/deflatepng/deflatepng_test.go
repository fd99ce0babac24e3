// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package deflatepng

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/eyaler/ztml/internal/testutil"
)

func bitsFromInts(n int, max int, seed int) []int {
	r := testutil.NewRand(seed)
	out := make([]int, n)
	for i := range out {
		out[i] = r.Intn(max)
	}
	return out
}

func TestShapeFitsDimensionBounds(t *testing.T) {
	lens := []int{0, 1, 2, 3, 7, 8, 97, 100, 10000, 123457}
	for _, n := range lens {
		bits := bitsFromInts(n, 2, n+1)
		width, height, padded := Shape(bits)
		if n == 0 {
			if width != 0 || height != 0 {
				t.Errorf("Shape(0 bits) = %d x %d, want 0x0", width, height)
			}
			continue
		}
		if width <= 0 || height <= 0 {
			t.Fatalf("Shape(%d bits) = %d x %d, want positive dimensions", n, width, height)
		}
		if width > MaxDimension || height > MaxDimension {
			t.Errorf("Shape(%d bits) = %d x %d, exceeds MaxDimension %d", n, width, height, MaxDimension)
		}
		if width*height > MaxPixels {
			t.Errorf("Shape(%d bits) = %d x %d, exceeds MaxPixels %d", n, width, height, MaxPixels)
		}
		if len(padded) != width*height {
			t.Errorf("Shape(%d bits): padded len %d != width*height %d", n, len(padded), width*height)
		}
		if len(padded) < n {
			t.Errorf("Shape(%d bits): padded shrank to %d", n, len(padded))
		}
		if diff := cmp.Diff(bits, padded[:n]); diff != "" {
			t.Errorf("Shape(%d bits): original bits not preserved as a prefix (-want +got):\n%s", n, diff)
		}
		for _, b := range padded[n:] {
			if b != 0 {
				t.Errorf("Shape(%d bits): padding bit is non-zero", n)
			}
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]int{
		{0},
		{1},
		{0, 1, 1, 0, 1, 0, 0, 1},
		bitsFromInts(10000, 2, 7),
		bitsFromInts(1, 2, 9999), // degenerate 1x1 image
	}
	cases[0] = nil // empty bit sequence, the degenerate all-zero-fallback case

	for i, bits := range cases {
		png, err := Encode(bits, true)
		if err != nil {
			t.Fatalf("case %d: Encode: %v", i, err)
		}
		decoded, width, height, err := Decode(png)
		if err != nil {
			t.Fatalf("case %d: Decode: %v", i, err)
		}
		if width*height != len(decoded) {
			t.Fatalf("case %d: decoded %d bits but width*height=%d", i, len(decoded), width*height)
		}
		decoded = decoded[:len(bits)]
		if diff := cmp.Diff(bits, decoded, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestEncodeStripsIEND(t *testing.T) {
	bits := bitsFromInts(500, 2, 11)
	stripped, err := Encode(bits, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	full, err := Encode(bits, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(full) <= len(stripped) {
		t.Fatalf("expected stripping IEND to shrink the file: stripped=%d full=%d", len(stripped), len(full))
	}
	if got := StripIEND(full); len(got) != len(stripped) {
		t.Errorf("StripIEND(full) len = %d, want %d", len(got), len(stripped))
	}
	// Decode must tolerate both the IEND-stripped and the full form.
	if _, _, _, err := Decode(stripped); err != nil {
		t.Errorf("Decode(stripped): %v", err)
	}
	if _, _, _, err := Decode(full); err != nil {
		t.Errorf("Decode(full): %v", err)
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	if _, _, _, err := Decode([]byte("not a png")); err == nil {
		t.Error("expected error for missing PNG signature")
	}
}
