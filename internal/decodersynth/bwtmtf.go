package decodersynth

import (
	"fmt"

	"github.com/eyaler/ztml/internal/bwtmtf"
)

// bwtInvertFunc is the shared JS closure that inverts a single BWT round in
// place, given the transformed array and its primary index: for each
// element it pairs (value, adjusted original index), sorts by value, and
// walks the permutation cycle. Sorting numerically (not lexicographically)
// keeps code points above the BMP ordered correctly (§4.2).
const bwtInvertFunc = `B=(d,k)=>{for(s=d.map((c,i)=>[c,i-(i<=k)]).sort((a,b)=>a[0]-b[0]),j=0;j<s.length;)[d[j++],k]=s[k]}
`

// surrogateLo and surrogateShift mirror bwtmtf's constants; the decoder
// needs them to unshift ranks that were pushed out of the UTF-16 surrogate
// range on encode.
const (
	surrogateLo    = 0xD800
	surrogateShift = 0x800
)

// BitsBWTDecoder inverts the second, bits-level BWT round of §4.4 (no MTF,
// no vowel reorder: it runs over the raw 0/1 sequence). It also defines the
// shared bwt-invert function that the symbol-level decoder reuses. numBits
// is the bit count before the PNG stage's zero-padding, since that padding
// was appended after this BWT ran at encode time and must be dropped
// before inverting it.
func BitsBWTDecoder(primary, numBits int, bitsVar string) Stage {
	js := bwtInvertFunc
	js += fmt.Sprintf("%s=%s.slice(0,%d)\n", bitsVar, bitsVar, numBits)
	js += fmt.Sprintf("B(%s,%d)\n", bitsVar, primary)
	return Stage{Name: "bits-bwt", JS: js}
}

// mtfInsertIndexExpr returns the JS expression computing the splice
// insertion index for rank k given the previously emitted rank q, one
// formula per bwtmtf.Policy (§3's MTF state policies).
func mtfInsertIndexExpr(policy bwtmtf.Policy) string {
	switch policy {
	case bwtmtf.Policy0:
		return "0"
	case bwtmtf.Policy1:
		return "+(k>1)"
	case bwtmtf.Policy2:
		return "q>0?+(k>0):+(k>1)"
	case bwtmtf.Policy50:
		return "k>>1"
	case bwtmtf.Policy52:
		return "k>1?k>>1:(q>0?+(k>0):0)"
	case bwtmtf.Policy60:
		return "Math.round(.6*k)"
	case bwtmtf.Policy70:
		return "Math.round(.7*k)"
	case bwtmtf.Policy80:
		return "Math.round(.8*k)"
	case bwtmtf.Policy90:
		return "Math.round(.9*k)"
	default:
		return "0"
	}
}

// vowelUnpermute returns a JS statement reassigning codePointsVar with each
// code point mapped back through the inverse of the vowel-clustering
// permutation (§4.2); codePointsVar holds the (already BWT-decoded) array
// of integers.
func vowelUnpermute(codePointsVar string) string {
	const from = "AOUIEVWXYZaouievwxyz"
	const to = "VWXYZAOUIEvwxyzaouie"
	return fmt.Sprintf("%s=%s.map(c=>(i=`%s`.indexOf(String.fromCodePoint(c)),i<0?c:`%s`.codePointAt(i)))\n", codePointsVar, codePointsVar, to, from)
}

// SymbolBWTMTFDecoder inverts the symbol-level BWT+MTF round of §4.2: MTF
// splice-decode (skipped when policy is bwtmtf.PolicyNone), BWT inversion
// via the shared B function defined by BitsBWTDecoder, and an optional
// vowel un-permute, finishing with the result joined back into textVar as a
// string.
func SymbolBWTMTFDecoder(primary, maxSymbol int, policy bwtmtf.Policy, vowelReorder bool, textVar string) Stage {
	var js string
	js += fmt.Sprintf("%s=[...%s].map(c=>c.codePointAt())\n", textVar, textVar)

	if policy != bwtmtf.PolicyNone {
		js += fmt.Sprintf("%s=%s.map(r=>r>=%d?r-%d:r)\n", textVar, textVar, surrogateLo+surrogateShift, surrogateShift)
		js += fmt.Sprintf("d=[...Array(%d).keys()]\n", maxSymbol+1)
		idx := mtfInsertIndexExpr(policy)
		js += fmt.Sprintf("q=-1\nfor(j=0;j<%s.length;j++)k=%s[j],%s[j]=d[k],d.splice(%s,0,d.splice(k,1)[0]),q=k\n", textVar, textVar, textVar, idx)
	}

	js += fmt.Sprintf("B(%s,%d)\n", textVar, primary)

	if vowelReorder {
		js += vowelUnpermute(textVar)
	}

	js += fmt.Sprintf("%s=%s.map(i=>String.fromCodePoint(i)).join('')\n", textVar, textVar)
	return Stage{Name: "symbol-bwt-mtf", JS: js}
}
