// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bwtmtf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/eyaler/ztml/internal/testutil"
)

// TestTransformRoundTripRandom exercises §8 property 3 (decode(encode(s)) ==
// s) over a much larger, randomized input space than TestTransformRoundTrip's
// fixed table, including code points well outside ASCII.
func TestTransformRoundTripRandom(t *testing.T) {
	policies := []Policy{Policy0, Policy1, Policy2, Policy50, Policy52, Policy60, Policy70, Policy80, Policy90, PolicyNone}
	r := testutil.NewRand(42)

	for trial := 0; trial < 30; trial++ {
		n := r.Intn(500)
		cps := r.CodePoints(n, MaxCodePoint)
		for _, vowel := range []bool{false, true} {
			for _, policy := range policies {
				opts := Options{Policy: policy, VowelReorder: vowel}
				ranks, primary, maxSym := Encode(cps, opts)
				out := Decode(ranks, primary, maxSym, opts)
				if diff := cmp.Diff(cps, out, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("trial=%d n=%d policy=%v vowel=%v: round trip mismatch (-want +got):\n%s",
						trial, n, policy, vowel, diff)
				}
			}
		}
	}
}
