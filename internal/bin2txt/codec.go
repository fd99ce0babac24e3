// Package bin2txt implements the three binary-to-text codecs of §4.5:
// Base64, Base125 (a refinement of Base122), and crEnc (a minimal yEnc).
// Each codec turns an arbitrary byte sequence into bytes safe to embed
// inside a JavaScript template literal, and can sweep every modular byte
// offset to find the shortest encoding. Per §5 the offset sweep is
// embarrassingly parallel, so OptimizeEncode runs it across a worker pool.
package bin2txt

import (
	"runtime"
	"sync"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "bin2txt: " + string(e) }

// Codec is implemented by each of the three binary-to-text encodings.
type Codec interface {
	// Encode encodes data with every byte first shifted by offset (mod 256).
	Encode(data []byte, offset int) []byte
	// Decode is the exact inverse of Encode, given the same offset.
	Decode(encoded []byte, offset int) ([]byte, error)
	// JSDecoder returns the full decoder fragment, including the embedded
	// literal, that assigns outputVar to a Uint8Array equal to data.
	JSDecoder(data []byte, offset int, outputVar string) []byte
}

// OptimizeEncode sweeps every offset in [0,256) and returns the shortest
// encoding, the offset that produced it, and the bytes saved relative to
// offset 0. Ties are broken by the smallest offset.
func OptimizeEncode(c Codec, data []byte) (encoded []byte, bestOffset int, saved int) {
	lengths := make([]int, 256)
	results := make([][]byte, 256)

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for offset := 0; offset < 256; offset++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(offset int) {
			defer wg.Done()
			defer func() { <-sem }()
			out := c.Encode(data, offset)
			results[offset] = out
			lengths[offset] = len(out)
		}(offset)
	}
	wg.Wait()

	bestOffset = 0
	bestLength := lengths[0]
	for offset := 1; offset < 256; offset++ {
		if lengths[offset] < bestLength {
			bestLength = lengths[offset]
			bestOffset = offset
		}
	}
	return results[bestOffset], bestOffset, lengths[0] - bestLength
}

func shiftBytes(data []byte, offset int) []byte {
	if offset == 0 {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = byte((int(b) + offset) & 255)
	}
	return out
}

func unshiftBytes(data []byte, offset int) []byte {
	if offset == 0 {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		v := (int(b) - offset) % 256
		if v < 0 {
			v += 256
		}
		out[i] = byte(v)
	}
	return out
}
