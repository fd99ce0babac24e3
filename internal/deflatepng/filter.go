package deflatepng

import "math"

// FilterType is a PNG scanline filter type (RFC 2083 §6.2).
type FilterType byte

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

// Strategy selects how filter types are chosen across the scanlines of one
// image, mirroring the Zopfli-equivalent re-optimizer's cycling described in
// §4.4. The five PNG filter types can each be applied uniformly, or a
// per-row heuristic can pick the locally best one.
type Strategy int

const (
	StrategyFixed0 Strategy = iota // every row uses FilterNone
	StrategyFixed1                 // every row uses FilterSub
	StrategyFixed2                 // every row uses FilterUp
	StrategyFixed3                 // every row uses FilterAverage
	StrategyFixed4                 // every row uses FilterPaeth
	StrategyMinSum                 // per row: filter minimizing sum of absolute filtered bytes
	StrategyEntropy                // per row: filter minimizing Shannon entropy of filtered bytes
	StrategyPredict                // per row: filter minimizing filtered-byte variance
	StrategyBrute                  // per row: filter minimizing that row's own trial-deflated size
)

// AllStrategies is the cycling order referenced by §4.4.
var AllStrategies = []Strategy{
	StrategyFixed0, StrategyFixed1, StrategyFixed2, StrategyFixed3, StrategyFixed4,
	StrategyMinSum, StrategyEntropy, StrategyPredict, StrategyBrute,
}

func paethPredictor(a, b, c byte) byte {
	pa := absInt(int(b) - int(c))
	pb := absInt(int(a) - int(c))
	pc := absInt(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// filterRow applies ft to raw (the current scanline) given prior (the
// previous scanline, or an all-zero row for the first scanline), with
// bpp=1 since every bit depth ztml uses here (1 bpp) defines the PNG filter
// byte distance as 1 regardless of sub-byte pixels (RFC 2083 §6.3).
func filterRow(ft FilterType, raw, prior []byte) []byte {
	out := make([]byte, len(raw))
	for i, x := range raw {
		var a, b, c byte
		if i > 0 {
			a = raw[i-1]
		}
		if prior != nil {
			b = prior[i]
		}
		if i > 0 && prior != nil {
			c = prior[i-1]
		}
		switch ft {
		case FilterNone:
			out[i] = x
		case FilterSub:
			out[i] = x - a
		case FilterUp:
			out[i] = x - b
		case FilterAverage:
			out[i] = x - byte((int(a)+int(b))/2)
		case FilterPaeth:
			out[i] = x - paethPredictor(a, b, c)
		}
	}
	return out
}

func unfilterRow(ft FilterType, filtered, prior []byte) []byte {
	out := make([]byte, len(filtered))
	for i, x := range filtered {
		var a, b, c byte
		if i > 0 {
			a = out[i-1]
		}
		if prior != nil {
			b = prior[i]
		}
		if i > 0 && prior != nil {
			c = prior[i-1]
		}
		switch ft {
		case FilterNone:
			out[i] = x
		case FilterSub:
			out[i] = x + a
		case FilterUp:
			out[i] = x + b
		case FilterAverage:
			out[i] = x + byte((int(a)+int(b))/2)
		case FilterPaeth:
			out[i] = x + paethPredictor(a, b, c)
		}
	}
	return out
}

func sumAbs(row []byte) int {
	var s int
	for _, b := range row {
		v := int(b)
		if v > 127 {
			v = 256 - v
		}
		s += v
	}
	return s
}

func entropy(row []byte) float64 {
	var hist [256]int
	for _, b := range row {
		hist[b]++
	}
	var h float64
	n := float64(len(row))
	if n == 0 {
		return 0
	}
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

func variance(row []byte) float64 {
	if len(row) == 0 {
		return 0
	}
	var mean float64
	for _, b := range row {
		mean += float64(b)
	}
	mean /= float64(len(row))
	var v float64
	for _, b := range row {
		d := float64(b) - mean
		v += d * d
	}
	return v / float64(len(row))
}
