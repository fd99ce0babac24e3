// Package deflatepng shapes a bit sequence into a near-square 1-bpp PNG and
// runs it through a DEFLATE re-optimizer, so that a browser's native PNG
// decoder can be used to recover the bits (§4.4). It also knows how to peel
// the bit sequence back out of a decoded PNG, for the property tests in §8.
package deflatepng

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "deflatepng: " + string(e) }

// MaxDimension is the largest width or height the PNG geometry search will
// ever choose (§3: width ≤ 32767; height ≤ 32767).
const MaxDimension = 32767

// MaxPixels bounds the total pixel count of the resulting image (§3).
const MaxPixels = 11180 * 11180

// Shape picks a width/height rectangle for len(bits) bits, padding bits with
// zeros as needed, following §3's search: height starts at floor(sqrt(len))
// and decreases while the remainder is non-zero and decreasing once more
// still keeps the resulting width within MaxDimension; whenever the search
// exhausts height candidates, one more zero bit is appended (repeating the
// last written value would apply only to depths above 1 bpp) and the search
// restarts.
func Shape(bits []int) (width, height int, padded []int) {
	padded = append([]int(nil), bits...)
	const maxPad = 1 << 16 // safety bound; realistic payloads settle in a few bits
	for pad := 0; ; pad++ {
		n := len(padded)
		if n == 0 {
			return 0, 0, padded
		}
		h := isqrt(n)
		if h < 1 {
			h = 1
		}
		for h > 1 && n%h != 0 && n/(h-1) <= MaxDimension {
			h--
		}
		if n%h == 0 {
			w := n / h
			if w <= MaxDimension && h <= MaxDimension && w*h <= MaxPixels {
				return w, h, padded
			}
		}
		if pad >= maxPad {
			panic(Error("no PNG rectangle fits this bit sequence within the dimension bounds"))
		}
		padded = append(padded, 0)
	}
}

func isqrt(n int) int {
	if n < 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
