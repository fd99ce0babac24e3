// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bwtmtf

// Policy selects the insertion-index rule applied after a rank is emitted;
// see the MTF state section of §3. PolicyNone bypasses the transform
// entirely (the "mtf=none" CLI option).
type Policy int

const (
	Policy0   Policy = 0  // classic MTF: always reinsert at 0
	Policy1   Policy = 1  // reinsert at 0 for ranks 0,1; else 1
	Policy2   Policy = 2  // reinsert depends on previous emitted rank
	Policy50  Policy = 50 // reinsert at floor(k/2)
	Policy52  Policy = 52 // floor(k/2) for k>1, else policy-2-like for k<=1
	Policy60  Policy = 60 // round-half-up(k*0.6)
	Policy70  Policy = 70
	Policy80  Policy = 80
	Policy90  Policy = 90
	PolicyNone Policy = -1
)

// surrogateLo and surrogateHi bound the UTF-16 surrogate range that an
// emitted rank must never land in, because the decoder reconstructs the
// rank list via String.fromCodePoint on UTF-16 code units.
const (
	surrogateLo = 0xD800
	surrogateHi = 0xDFFF
	surrogateShift = 0xE000 - 0xD800 // 0x800
)

// MTF applies the selected move-to-front policy over a code-point alphabet.
type MTF struct {
	policy Policy
	dict   []int
}

// New returns an MTF codec whose dictionary is the contiguous range
// [0, maxSymbol], per the MTF state definition in §3: the alphabet is not
// the subset of symbols that happen to occur, but every value up to the
// largest one that can occur, so the decoder never needs an explicit
// dictionary transmitted alongside the bit stream.
func New(policy Policy, maxSymbol int) *MTF {
	if policy != PolicyNone && maxSymbol > MaxCodePoint-surrogateShift-1 {
		panic(Error("max symbol too large for MTF with surrogate shifting"))
	}
	dict := make([]int, maxSymbol+1)
	for i := range dict {
		dict[i] = i
	}
	return &MTF{policy: policy, dict: dict}
}

// insertIndex returns the splice position for rank k given the previously
// emitted rank p (p is -1 before the first symbol).
func insertIndex(policy Policy, k, p int) int {
	switch policy {
	case Policy0:
		return 0
	case Policy1:
		if k > 1 {
			return 1
		}
		return 0
	case Policy2:
		if p > 0 {
			if k > 0 {
				return 1
			}
			return 0
		}
		if k > 1 {
			return 1
		}
		return 0
	case Policy50:
		return k / 2
	case Policy52:
		if k > 1 {
			return k / 2
		}
		if p > 0 {
			if k > 0 {
				return 1
			}
			return 0
		}
		return 0
	case Policy60, Policy70, Policy80, Policy90:
		frac := float64(policy) / 100
		return int(float64(k)*frac + 0.5) // round-half-up, matching JS Math.round
	default:
		return 0
	}
}

// Encode runs the forward MTF transform over syms, emitting one rank per
// input symbol and reinserting the symbol at the policy's chosen index.
// Emitted ranks at or above the UTF-16 surrogate range are shifted up by
// 0x800 so they never collide with it (§3).
func (m *MTF) Encode(syms []int) []int {
	if m.policy == PolicyNone {
		out := make([]int, len(syms))
		copy(out, syms)
		return out
	}

	out := make([]int, len(syms))
	prev := -1
	for i, s := range syms {
		k := indexOf(m.dict, s)
		out[i] = k
		idx := insertIndex(m.policy, k, prev)
		splice(m.dict, k, idx)
		prev = k
	}
	for i, r := range out {
		if r >= surrogateLo {
			out[i] = r + surrogateShift
		}
	}
	return out
}

// Decode inverts Encode given the rank sequence produced by it.
func (m *MTF) Decode(ranks []int) []int {
	if m.policy == PolicyNone {
		out := make([]int, len(ranks))
		copy(out, ranks)
		return out
	}

	unshifted := make([]int, len(ranks))
	for i, r := range ranks {
		if r >= surrogateLo+surrogateShift {
			unshifted[i] = r - surrogateShift
		} else {
			unshifted[i] = r
		}
	}

	out := make([]int, len(unshifted))
	prev := -1
	for i, k := range unshifted {
		s := m.dict[k]
		out[i] = s
		idx := insertIndex(m.policy, k, prev)
		splice(m.dict, k, idx)
		prev = k
	}
	return out
}

func indexOf(dict []int, v int) int {
	for i, d := range dict {
		if d == v {
			return i
		}
	}
	panic(Error("symbol not in alphabet"))
}

// splice removes the element at position from and reinserts it at position
// to within dict, shifting the intervening elements.
func splice(dict []int, from, to int) {
	v := dict[from]
	if to < from {
		copy(dict[to+1:from+1], dict[to:from])
		dict[to] = v
	} else if to > from {
		copy(dict[from:to], dict[from+1:to+1])
		dict[to] = v
	}
}
