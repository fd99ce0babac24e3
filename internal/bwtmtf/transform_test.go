// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bwtmtf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTransformRoundTrip(t *testing.T) {
	policies := []Policy{Policy0, Policy1, Policy2, Policy50, Policy52, Policy60, Policy70, Policy80, Policy90, PolicyNone}
	inputs := []string{
		"",
		"hello",
		"the quick brown fox jumps over the lazy dog",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}

	for _, vowel := range []bool{false, true} {
		for _, policy := range policies {
			for _, in := range inputs {
				opts := Options{Policy: policy, VowelReorder: vowel}
				cps := codePoints(in)
				ranks, primary, maxSym := Encode(cps, opts)
				out := Decode(ranks, primary, maxSym, opts)
				if diff := cmp.Diff(cps, out); diff != "" {
					t.Errorf("policy=%v vowel=%v input=%q: round trip mismatch (-want +got):\n%s",
						policy, vowel, in, diff)
				}
			}
		}
	}
}

func TestMTFPolicies(t *testing.T) {
	for _, policy := range []Policy{Policy0, Policy1, Policy2, Policy50, Policy52, Policy60, Policy70, Policy80, Policy90} {
		m := New(policy, 10)
		in := []int{5, 5, 0, 7, 3, 3, 3, 9, 0}
		enc := m.Encode(in)

		m2 := New(policy, 10)
		dec := m2.Decode(enc)
		if diff := cmp.Diff(in, dec); diff != "" {
			t.Errorf("policy %v: round trip mismatch (-want +got):\n%s", policy, diff)
		}
	}
}
