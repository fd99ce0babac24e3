package huffman

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eyaler/ztml/internal/bitbuf"
)

func histogram(symbols []int) map[int]int {
	freq := make(map[int]int)
	for _, s := range symbols {
		freq[s]++
	}
	return freq
}

func TestRoundTrip(t *testing.T) {
	vectors := [][]int{
		{},
		{7},
		{7, 7, 7, 7},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{0, 0, 0, 1, 1, 2, 3, 3, 3, 3, 3, 3, 3, 4},
	}

	for i, syms := range vectors {
		cb, err := Build(histogram(syms))
		if err != nil {
			t.Fatalf("test %d: Build error: %v", i, err)
		}
		bits, err := cb.EncodeSymbols(syms)
		if err != nil {
			t.Fatalf("test %d: EncodeSymbols error: %v", i, err)
		}
		charset, table := cb.Serialize()
		out, err := DecodeSymbols(bits, charset, table, len(syms))
		if err != nil {
			t.Fatalf("test %d: DecodeSymbols error: %v", i, err)
		}
		if diff := cmp.Diff(syms, out); diff != "" {
			t.Errorf("test %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSingleSymbolIsOneBit(t *testing.T) {
	cb, err := Build(histogram([]int{42, 42, 42}))
	if err != nil {
		t.Fatal(err)
	}
	if got := cb.Len(42); got != 1 {
		t.Errorf("single-symbol codeword length = %d, want 1", got)
	}
}

func TestEmptyInput(t *testing.T) {
	cb, err := Build(histogram(nil))
	if err != nil {
		t.Fatal(err)
	}
	bits, err := cb.EncodeSymbols(nil)
	if err != nil {
		t.Fatal(err)
	}
	if bits.Len() != 0 {
		t.Errorf("expected empty bit sequence, got %d bits", bits.Len())
	}
}

func TestCanonicalProperty(t *testing.T) {
	// Codes of equal length must be consecutive integers, and all codes of
	// length L must end strictly before any code of length L+1 begins, once
	// compared within the same bit width.
	syms := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	freq := map[int]int{0: 50, 1: 30, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 1, 10: 1}
	cb, err := Build(freq)
	if err != nil {
		t.Fatal(err)
	}
	_ = syms
	for s := range freq {
		if cb.Len(s) == 0 {
			t.Errorf("symbol %d missing a codeword", s)
		}
	}

	byLen := make(map[int][]uint32)
	for _, c := range cb.codes {
		byLen[c.len] = append(byLen[c.len], c.val)
	}
	prevEnd, prevLen := uint32(0), 0
	for l := 1; l <= cb.maxLen; l++ {
		vals := byLen[l]
		if len(vals) == 0 {
			continue
		}
		sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
		for i := 1; i < len(vals); i++ {
			if vals[i] != vals[i-1]+1 {
				t.Errorf("length %d: codes %d and %d are not consecutive", l, vals[i-1], vals[i])
			}
		}
		if prevLen > 0 && vals[0] < prevEnd<<uint(l-prevLen) {
			t.Errorf("length %d: first code %d overlaps codes of length %d", l, vals[0], prevLen)
		}
		prevEnd, prevLen = vals[len(vals)-1]+1, l
	}
}

func TestBitbufIntegration(t *testing.T) {
	b := bitbuf.NewBuffer(4)
	b.PushBits(0b101, 3)
	r := bitbuf.NewReader(b)
	var got int
	for i := 0; i < 3; i++ {
		bit, ok := r.Next()
		if !ok {
			t.Fatal("unexpected EOF")
		}
		got = got<<1 | bit
	}
	if got != 0b101 {
		t.Errorf("got %b, want 101", got)
	}
}
