package bwtmtf

// Options configures a single BWT+MTF round (§4.2).
type Options struct {
	Policy       Policy
	VowelReorder bool
}

// Encode runs the full transform: optional vowel reorder, BWT, then MTF.
// It returns the rank sequence ready for the Huffman stage, the BWT primary
// index needed to invert it, and the maximum symbol value seen (needed to
// reconstruct the MTF dictionary on decode).
func Encode(codePoints []int, opts Options) (ranks []int, primary, maxSymbol int) {
	work := make([]int, len(codePoints))
	copy(work, codePoints)
	if opts.VowelReorder {
		work = NewVowelReorder().Encode(work)
	}

	primary = EncodeBWT(work)

	maxSymbol = 0
	for _, v := range work {
		if v > maxSymbol {
			maxSymbol = v
		}
	}

	if opts.Policy == PolicyNone {
		return work, primary, maxSymbol
	}

	mtf := New(opts.Policy, maxSymbol)
	ranks = mtf.Encode(work)
	return ranks, primary, maxSymbol
}

// Decode inverts Encode, given the primary index and maxSymbol it returned.
func Decode(ranks []int, primary, maxSymbol int, opts Options) []int {
	work := ranks
	if opts.Policy != PolicyNone {
		mtf := New(opts.Policy, maxSymbol)
		work = mtf.Decode(ranks)
	}

	out := make([]int, len(work))
	copy(out, work)
	DecodeBWT(out, primary)

	if opts.VowelReorder {
		out = NewVowelReorder().Decode(out)
	}
	return out
}
