// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bwtmtf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func codePoints(s string) []int {
	out := make([]int, 0, len(s))
	for _, r := range s {
		out = append(out, int(r))
	}
	return out
}

// TestEncodeBWTConvention locks in the exact last-column/primary-index
// arrangement bwtInvertFunc expects (§3, §4.2): unlike a textbook BWT last
// column, the rotation starting at position 0 is never read off at its
// sorted rank; its predecessor is unconditionally prepended, and ptr marks
// the rank it was skipped at.
func TestEncodeBWTConvention(t *testing.T) {
	buf := []int{2, 1, 3}
	ptr := EncodeBWT(buf)
	if diff := cmp.Diff([]int{3, 2, 1}, buf); diff != "" {
		t.Errorf("EncodeBWT([2,1,3]) transform mismatch (-want +got):\n%s", diff)
	}
	if ptr != 1 {
		t.Errorf("EncodeBWT([2,1,3]) ptr = %d, want 1", ptr)
	}
}

func TestBWT(t *testing.T) {
	var vectors = []struct {
		input string
		ptr   int
	}{
		{input: ""},
		{input: "Hello, world!"},
		{input: "SIX.MIXED.PIXIES.SIFT.SIXTY.PIXIE.DUST.BOXES"},
		{input: "banana"},
	}

	for i, v := range vectors {
		buf := codePoints(v.input)
		orig := append([]int{}, buf...)
		ptr := EncodeBWT(buf)
		DecodeBWT(buf, ptr)
		if diff := cmp.Diff(orig, buf); diff != "" {
			t.Errorf("test %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}
