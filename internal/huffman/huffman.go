// Package huffman builds a canonical Huffman codebook from a symbol
// histogram, encodes a symbol sequence to a bitbuf.Buffer, and serializes the
// codebook into the compact (charset, table) form described in §4.3/§3 of
// the spec: a symbol list ordered by decreasing codeword length, and a
// per-length (base, offset) pair that lets both this package's own decoder
// and the synthesized JavaScript decoder recover a symbol in O(1) work per
// bit consumed.
package huffman

import (
	"container/heap"
	"sort"

	"github.com/eyaler/ztml/internal/bitbuf"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "huffman: " + string(e) }

// MaxBits bounds codeword length; it is generous enough that real alphabets
// never come close, since every table integer must fit a single UTF-16 code
// unit (21 bits) once packed by the synthesizer.
const MaxBits = 20

// code records the canonical assignment for one symbol.
type code struct {
	sym  int
	cnt  int
	len  int
	val  uint32
}

// Codebook is a built canonical Huffman code, ready to encode symbols or to
// be serialized via Serialize.
type Codebook struct {
	codes  map[int]code // by symbol
	maxLen int
}

// treeNode is a node of the Huffman tree used only to derive code lengths;
// the canonical codes themselves are assigned afterward from the lengths.
type treeNode struct {
	weight   int
	sym      int // valid only if leaf
	leaf     bool
	children [2]*treeNode
}

type nodeHeap []*treeNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	// Break ties deterministically so repeated builds are reproducible.
	return minSym(h[i]) < minSym(h[j])
}
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*treeNode)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func minSym(n *treeNode) int {
	if n.leaf {
		return n.sym
	}
	a, b := minSym(n.children[0]), minSym(n.children[1])
	if a < b {
		return a
	}
	return b
}

// Build constructs a canonical Huffman codebook from a symbol -> frequency
// histogram. A single-symbol alphabet is assigned a 1-bit codeword (§8
// boundary property), never a 0-bit one.
func Build(freq map[int]int) (*Codebook, error) {
	if len(freq) == 0 {
		return &Codebook{codes: map[int]code{}}, nil
	}

	syms := make([]int, 0, len(freq))
	for s := range freq {
		syms = append(syms, s)
	}
	sort.Ints(syms)

	if len(syms) == 1 {
		s := syms[0]
		return &Codebook{
			codes:  map[int]code{s: {sym: s, cnt: freq[s], len: 1, val: 0}},
			maxLen: 1,
		}, nil
	}

	h := make(nodeHeap, 0, len(syms))
	for _, s := range syms {
		h = append(h, &treeNode{weight: freq[s], sym: s, leaf: true})
	}
	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(*treeNode)
		b := heap.Pop(&h).(*treeNode)
		heap.Push(&h, &treeNode{weight: a.weight + b.weight, children: [2]*treeNode{a, b}})
	}
	root := h[0]

	lengths := make(map[int]int, len(syms))
	var walk func(n *treeNode, depth int)
	walk = func(n *treeNode, depth int) {
		if n.leaf {
			if depth == 0 {
				depth = 1
			}
			lengths[n.sym] = depth
			return
		}
		walk(n.children[0], depth+1)
		walk(n.children[1], depth+1)
	}
	walk(root, 0)

	limitLengths(lengths, syms, MaxBits)

	return assignCanonical(freq, lengths)
}

// limitLengths clamps the Huffman-tree-derived lengths to maxBits using the
// classical "overflow donation" technique: any symbol whose length exceeds
// maxBits is pulled up to maxBits, and the resulting Kraft-inequality slack
// is repaid by lengthening the shortest remaining codes by one bit each,
// starting from the least frequent symbols.
func limitLengths(lengths map[int]int, syms []int, maxBits int) {
	overflow := false
	for _, s := range syms {
		if lengths[s] > maxBits {
			overflow = true
			break
		}
	}
	if !overflow {
		return
	}

	ordered := append([]int(nil), syms...)
	sort.Slice(ordered, func(i, j int) bool { return lengths[ordered[i]] < lengths[ordered[j]] })

	for _, s := range ordered {
		if lengths[s] > maxBits {
			lengths[s] = maxBits
		}
	}

	kraft := func() float64 {
		var sum float64
		for _, s := range syms {
			sum += 1.0 / float64(int(1)<<uint(lengths[s]))
		}
		return sum
	}
	for kraft() > 1.0 {
		for i := len(ordered) - 1; i >= 0 && kraft() > 1.0; i-- {
			s := ordered[i]
			if lengths[s] < maxBits {
				lengths[s]++
			}
		}
	}
}

// assignCanonical turns a symbol -> length map into the canonical code
// assignment: symbols are ordered by (length, symbol) ascending, and codes
// are assigned as consecutive integers within each length, per RFC 1951
// §3.2.2.
func assignCanonical(freq, lengths map[int]int) (*Codebook, error) {
	syms := make([]int, 0, len(lengths))
	maxLen := 0
	for s, l := range lengths {
		syms = append(syms, s)
		if l > maxLen {
			maxLen = l
		}
	}
	sort.Slice(syms, func(i, j int) bool {
		if lengths[syms[i]] != lengths[syms[j]] {
			return lengths[syms[i]] < lengths[syms[j]]
		}
		return syms[i] < syms[j]
	})

	blCount := make([]int, maxLen+1)
	for _, s := range syms {
		blCount[lengths[s]]++
	}

	firstCode := make([]uint32, maxLen+1)
	var c uint32
	for l := 1; l <= maxLen; l++ {
		c = (c + uint32(blCount[l-1])) << 1
		firstCode[l] = c
	}

	next := append([]uint32(nil), firstCode...)
	codes := make(map[int]code, len(syms))
	for _, s := range syms {
		l := lengths[s]
		codes[s] = code{sym: s, cnt: freq[s], len: l, val: next[l]}
		next[l]++
	}

	return &Codebook{codes: codes, maxLen: maxLen}, nil
}

// MaxLen reports the longest codeword length in the codebook.
func (cb *Codebook) MaxLen() int { return cb.maxLen }

// Len reports the codeword length assigned to sym, or 0 if sym is unknown.
func (cb *Codebook) Len(sym int) int { return cb.codes[sym].len }

// EncodeSymbols writes the codeword for each symbol, most-significant bit
// first, into a fresh bit buffer.
func (cb *Codebook) EncodeSymbols(symbols []int) (*bitbuf.Buffer, error) {
	b := bitbuf.NewBuffer(len(symbols) * 8)
	for _, s := range symbols {
		c, ok := cb.codes[s]
		if !ok {
			return nil, Error("symbol not in codebook")
		}
		b.PushBits(uint64(c.val), uint(c.len))
	}
	return b, nil
}

// TableEntry is one length's (base, offset) pair in the serialized table.
// Base and Offset are both representable in 21 bits, per §3.
type TableEntry struct {
	Base   int
	Offset int
}

// sentinelEntry is emitted for lengths with no codewords, so
// that the decode loop's base comparison can never succeed for them (§3).
func sentinelEntry(l int) TableEntry {
	return TableEntry{Base: (1 << uint(l)) + 1, Offset: 1}
}

// Serialize returns the charset and table as described in §3: charset holds
// the symbol sequence in order of decreasing codeword length (and,
// within a length, decreasing code value, so that a single (base, offset)
// pair can index into it by subtracting the running bit value from the
// length's maximum code); table[L] holds the (base, offset) pair for every
// length from 0 up to MaxLen, with sentinels at lengths that have no
// codewords.
func (cb *Codebook) Serialize() (charset []int, table []TableEntry) {
	maxLen := cb.maxLen
	byLen := make([][]code, maxLen+1)
	for _, c := range cb.codes {
		byLen[c.len] = append(byLen[c.len], c)
	}
	for l := range byLen {
		sort.Slice(byLen[l], func(i, j int) bool { return byLen[l][i].val < byLen[l][j].val })
	}

	table = make([]TableEntry, maxLen+1)
	var total int
	for l := maxLen; l >= 0; l-- {
		group := byLen[l]
		// Append in decreasing code-value order, matching the decode walk
		// (running value c decreases from maxCode[l] to firstCode[l] as the
		// symbol walk advances from offset[l]+0 to offset[l]+count[l]-1).
		for i := len(group) - 1; i >= 0; i-- {
			charset = append(charset, group[i].sym)
		}
		if len(group) == 0 {
			table[l] = sentinelEntry(l)
			continue
		}
		maxCode := group[len(group)-1].val
		base := (1 << uint(l)) - int(maxCode)
		offset := total
		table[l] = TableEntry{Base: base, Offset: offset}
		total += len(group)
	}
	return charset, table
}

// DecodeFromTable reads one symbol from r using only the serialized
// charset/table — the same algorithm the synthesized JavaScript decoder
// runs, so a Go-side round trip through this function exercises exactly the
// logic that will be re-expressed as JS (§4.3, §8 property 4).
func DecodeFromTable(r *bitbuf.Reader, charset []int, table []TableEntry) (int, error) {
	var c int
	for l := 1; l < len(table); l++ {
		bit, ok := r.Next()
		if !ok {
			return 0, Error("unexpected end of bit stream")
		}
		c = c<<1 | bit
		base := table[l].Base
		idx := (1 << uint(l)) - base - c
		if idx < 0 {
			continue
		}
		pos := table[l].Offset + idx
		if pos < 0 || pos >= len(charset) {
			continue
		}
		return charset[pos], nil
	}
	return 0, Error("no codeword matched bit stream")
}

// DecodeSymbols decodes n symbols from buf using charset/table.
func DecodeSymbols(buf *bitbuf.Buffer, charset []int, table []TableEntry, n int) ([]int, error) {
	r := bitbuf.NewReader(buf)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		sym, err := DecodeFromTable(r, charset, table)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}
