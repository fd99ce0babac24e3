package decodersynth

import (
	"fmt"

	"github.com/eyaler/ztml/internal/huffman"
	"github.com/eyaler/ztml/internal/webify"
)

// serializedTableString packs each (base, offset) pair into two UTF-16 code
// units per length, matching huffman.Codebook.Serialize's layout (§3).
func serializedTableString(table []huffman.TableEntry) string {
	runes := make([]rune, 0, 2*len(table))
	for _, e := range table {
		runes = append(runes, rune(e.Base), rune(e.Offset))
	}
	return string(runes)
}

func serializedCharsetString(charset []int) string {
	runes := make([]rune, len(charset))
	for i, c := range charset {
		runes[i] = rune(c)
	}
	return string(runes)
}

// HuffmanDecoder renders the canonical-Huffman decode loop of §4.3: it
// reads one bit at a time into a binary-string accumulator c, and at each
// length l checks whether 2^l - table[l].base - c has gone non-negative; on
// success it looks up charset[table[l].offset + that value]. Both charset
// and table are escaped for safe template-literal embedding, including NUL
// (the charset may contain it as a real symbol, and bitbuf.Buffer never
// produces it as padding noise here because the table's own integers can
// still be zero).
func HuffmanDecoder(charset []int, table []huffman.TableEntry, bitsVar, textVar string) Stage {
	charsetLit := webify.EscapeString(serializedCharsetString(charset), true)
	tableLit := webify.EscapeString(serializedTableString(table), true)
	js := fmt.Sprintf("s=[...`%s`]\nd=[...`%s`]\nfor(j=%s='';j<%s.length;%s+=s[d[k*2-1].codePointAt()+m])for(k=c='0b0';(m=2**k-d[k++*2].codePointAt()-c)<0;)c+=%s[j++]\n",
		charsetLit, tableLit, textVar, bitsVar, textVar, bitsVar)
	return Stage{Name: "huffman", JS: js}
}
