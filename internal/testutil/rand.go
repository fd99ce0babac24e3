// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package testutil provides the deterministic generators the round-trip
// property tests of §8 draw their inputs from (SPEC_FULL.md §A: hand-rolled
// generators in the corpus's own style, rather than testing/quick).
package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand implements a deterministic pseudo-random number generator. This
// differs from math/rand in that the exact output sequence is guaranteed
// stable across Go versions, so a fixed seed reproduces the same failing
// case every run.
type Rand struct {
	cipher.Block
	blk [aes.BlockSize]byte
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	r, _ := aes.NewCipher(key[:])
	return &Rand{Block: r}
}

func (r *Rand) Int() (x int) {
	r.Encrypt(r.blk[:], r.blk[:])
	x |= int(r.blk[0]) << 0
	x |= int(r.blk[1]) << 8
	x |= int(r.blk[2]) << 16
	x |= int(r.blk[3]) << 24
	x |= int(r.blk[4]) << 32
	x |= int(r.blk[5]) << 40
	x |= int(r.blk[6]) << 48
	x |= int(r.blk[7]&0x3f) << 56
	return x
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	x := r.Int() % n
	if x < 0 {
		x += n
	}
	return x
}

func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	bb := b
	for len(bb) > 0 {
		r.Encrypt(r.blk[:], r.blk[:])
		cnt := copy(bb, r.blk[:])
		bb = bb[cnt:]
	}
	return b
}

// asciiLetters is the alphabet CodePoints draws from when asked for a plain
// word-like sequence, biased toward what the bwtmtf/huffman round-trip
// tests want to exercise: low code points, occasional spaces and newlines,
// and a long tail of runs that reward MTF.
const asciiLetters = "abcdefghijklmnopqrstuvwxyz ABCDEFGHIJKLMNOPQRSTUVWXYZ\n.,'\""

// CodePoints generates n pseudo-random code points, mostly drawn from
// asciiLetters but occasionally (1 in 32) an arbitrary code point up to max,
// excluding the UTF-16 surrogate range (§3's MTF invariant) so the result is
// always a legal bwtmtf.Encode input.
func (r *Rand) CodePoints(n, max int) []int {
	out := make([]int, n)
	for i := range out {
		if r.Intn(32) != 0 {
			out[i] = int(asciiLetters[r.Intn(len(asciiLetters))])
			continue
		}
		for {
			c := r.Intn(max + 1)
			if c < 0xD800 || c > 0xDFFF {
				out[i] = c
				break
			}
		}
	}
	return out
}

// Text renders n code points (as produced by CodePoints bounded to max
// 0x2FFFF, comfortably inside the BMP and a couple of astral planes) as a
// string, for feeding directly into textprep/bwtmtf/huffman round-trip
// tests.
func (r *Rand) Text(n int) string {
	cps := r.CodePoints(n, 0x2FFFF)
	rs := make([]rune, n)
	for i, c := range cps {
		rs[i] = rune(c)
	}
	return string(rs)
}
