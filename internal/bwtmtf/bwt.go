// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bwtmtf implements the Burrows-Wheeler transform and the family of
// move-to-front update policies used by the ztml encoding pipeline (§4.2).
//
// Unlike dsnet/compress/bzip2, which transforms byte sequences, this package
// transforms sequences of Unicode code points: ztml's payload is text, and
// folding it down to bytes before the transform would throw away exactly
// the redundancy the transform is meant to exploit.
package bwtmtf

import (
	"sort"

	"github.com/eyaler/ztml/internal/sais"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "bwtmtf: " + string(e) }

// MaxCodePoint is the largest code point the transform will accept; it
// mirrors the Unicode ceiling used throughout the spec.
const MaxCodePoint = 0x10FFFF

// EncodeBWT computes the Burrows-Wheeler transform of buf in place and
// returns the primary index, in the exact arrangement the synthesized JS
// decoder's bwtInvertFunc expects (§3, §4.2): buf's suffixes are sorted
// with a suffix array built by induced sorting, which orders a suffix before
// any longer suffix it is a prefix of, so no explicit sentinel is required.
// The output is buf[n-1] followed by buf[i-1] for every suffix i in sorted
// order; the suffix starting at 0 has no predecessor and is never read off
// at its sorted rank, and ptr records the rank it was skipped at.
// bwtInvertFunc's cycle-following walk is built around that exact
// convention, so this layout must not be "simplified" back to the
// standard sorted-rotation last-column form.
func EncodeBWT(buf []int) (ptr int) {
	if len(buf) == 0 {
		return -1
	}
	for _, c := range buf {
		if c < 0 || c > MaxCodePoint {
			panic(Error("code point out of range"))
		}
	}

	n := len(buf)
	t := append([]int(nil), buf...)
	sa := make([]int, n)

	sais.ComputeSA(t, sa, MaxCodePoint+1)

	trans := make([]int, 1, n)
	trans[0] = t[n-1]

	for rank, i := range sa {
		if i == 0 {
			ptr = rank
		} else {
			trans = append(trans, t[i-1])
		}
	}
	copy(buf, trans)
	return ptr
}

// DecodeBWT inverts EncodeBWT in place, given the primary index it
// returned. It is a direct port of the synthesized JS decoder's
// bwtInvertFunc (internal/decodersynth.bwtInvertFunc) rather than an
// independently-derived inverse, so that a mismatch between the two always
// shows up as a failing test instead of two self-consistent but
// incompatible conventions.
func DecodeBWT(buf []int, ptr int) {
	n := len(buf)
	if n == 0 {
		return
	}

	type pair struct{ c, idx int }
	s := make([]pair, n)
	for i, c := range buf {
		idx := i
		if i <= ptr {
			idx--
		}
		s[i] = pair{c, idx}
	}
	sort.SliceStable(s, func(a, b int) bool { return s[a].c < s[b].c })

	out := make([]int, n)
	k := ptr
	for j := range out {
		out[j] = s[k].c
		k = s[k].idx
	}
	copy(buf, out)
}
