package deflatepng

import (
	"bytes"
	"encoding/binary"
	"hash/adler32"
	"hash/crc32"
	"io"
	"math"

	"github.com/dsnet/golib/hashutil"
	"github.com/klauspost/compress/flate"
)

var pngSignature = []byte{137, 80, 78, 71, 13, 10, 26, 10}

// packRow packs width 1-bit pixels (0/1 ints) into a byte-aligned scanline,
// MSB first, zero-padding the final partial byte.
func packRow(bits []int) []byte {
	row := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			row[i/8] |= 1 << uint(7-i%8)
		}
	}
	return row
}

func unpackRow(row []byte, width int) []int {
	out := make([]int, width)
	for i := range out {
		out[i] = int((row[i/8] >> uint(7-i%8)) & 1)
	}
	return out
}

// chunkTypeCRC caches the CRC-32 of each 4-byte chunk tag, since the same
// few tags (IHDR, IDAT, IEND) recur across every encode.
var chunkTypeCRC = map[string]uint32{}

func crcOfType(typ string) uint32 {
	if c, ok := chunkTypeCRC[typ]; ok {
		return c
	}
	c := crc32.ChecksumIEEE([]byte(typ))
	chunkTypeCRC[typ] = c
	return c
}

// buildChunk assembles one PNG chunk. The chunk CRC covers tag+data; rather
// than rehash the tag every call, it combines the cached per-tag CRC with a
// fresh CRC of data alone, the same running-CRC-combination trick
// dsnet/compress/bzip2 uses for its per-block CRCs (bzip2/common.go
// combineCRC) — here IDAT bodies dominate chunk size, so skipping the
// 4-byte tag's contribution to a full rehash is a real, if small, saving.
func buildChunk(typ string, data []byte) []byte {
	out := make([]byte, 0, 12+len(data))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	out = append(out, lenBuf[:]...)
	out = append(out, typ...)
	out = append(out, data...)

	crc := hashutil.CombineCRC32(crc32.IEEE, crcOfType(typ), crc32.ChecksumIEEE(data), int64(len(data)))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	out = append(out, crcBuf[:]...)
	return out
}

func ihdr(width, height int) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, uint32(width))
	binary.Write(&b, binary.BigEndian, uint32(height))
	b.WriteByte(1) // bit depth
	b.WriteByte(0) // color type: greyscale
	b.WriteByte(0) // compression method
	b.WriteByte(0) // filter method
	b.WriteByte(0) // interlace method
	return b.Bytes()
}

// filteredStream applies strategy across all scanlines and returns the
// concatenated filter-tag+filtered-row stream fed to DEFLATE.
func filteredStream(rows [][]byte, strategy Strategy) []byte {
	var out bytes.Buffer
	var prior []byte
	for _, raw := range rows {
		ft := chooseFilter(strategy, raw, prior)
		out.WriteByte(byte(ft))
		out.Write(filterRow(ft, raw, prior))
		prior = raw
	}
	return out.Bytes()
}

func chooseFilter(strategy Strategy, raw, prior []byte) FilterType {
	switch strategy {
	case StrategyFixed0:
		return FilterNone
	case StrategyFixed1:
		return FilterSub
	case StrategyFixed2:
		return FilterUp
	case StrategyFixed3:
		return FilterAverage
	case StrategyFixed4:
		return FilterPaeth
	}

	candidates := []FilterType{FilterNone, FilterSub, FilterUp, FilterAverage, FilterPaeth}
	best := FilterNone
	bestScore := math.Inf(1)
	for _, ft := range candidates {
		filtered := filterRow(ft, raw, prior)
		var score float64
		switch strategy {
		case StrategyMinSum:
			score = float64(sumAbs(filtered))
		case StrategyEntropy:
			score = entropy(filtered)
		case StrategyPredict:
			score = variance(filtered)
		case StrategyBrute:
			score = float64(deflatedSize(filtered))
		}
		if score < bestScore {
			bestScore, best = score, ft
		}
	}
	return best
}

func deflatedSize(b []byte) int {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestCompression)
	w.Write(b)
	w.Close()
	return buf.Len()
}

func zlibWrap(deflated []byte, raw []byte) []byte {
	var out bytes.Buffer
	out.WriteByte(0x78) // CMF: deflate, 32K window
	out.WriteByte(0x01) // FLG, chosen so (CMF*256+FLG)%31==0, no dict, fastest
	out.Write(deflated)
	var sumBuf [4]byte
	binary.BigEndian.PutUint32(sumBuf[:], adler32.Checksum(raw))
	out.Write(sumBuf[:])
	return out.Bytes()
}

// Encode builds a 1-bpp greyscale PNG containing bits, laid out as width x
// height by Shape, re-optimized across every Strategy in AllStrategies and
// keeping whichever yields the smallest file (the Zopfli-equivalent
// re-optimization of §4.4). stripIEND removes the trailing IEND chunk
// (§4.4); the IDAT's zlib Adler-32 and CRC are never touched, since Safari's
// PNG decoder verifies both.
func Encode(bits []int, stripIEND bool) ([]byte, error) {
	width, height, padded := Shape(bits)
	if width == 0 || height == 0 {
		width, height = 1, 1
		padded = []int{0}
	}

	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		rows[y] = packRow(padded[y*width : (y+1)*width])
	}

	var best []byte
	for _, strategy := range AllStrategies {
		raw := filteredStream(rows, strategy)
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			return nil, Error(err.Error())
		}
		if _, err := w.Write(raw); err != nil {
			return nil, Error(err.Error())
		}
		if err := w.Close(); err != nil {
			return nil, Error(err.Error())
		}
		idatData := zlibWrap(buf.Bytes(), raw)
		if best == nil || len(idatData) < len(best) {
			best = idatData
		}
	}

	var out bytes.Buffer
	out.Write(pngSignature)
	out.Write(buildChunk("IHDR", ihdr(width, height)))
	out.Write(buildChunk("IDAT", best))
	if !stripIEND {
		out.Write(buildChunk("IEND", nil))
	}
	return out.Bytes(), nil
}

// inflateZlib strips the 2-byte zlib header, inflates the DEFLATE stream,
// and verifies the trailing Adler-32 checksum.
func inflateZlib(z []byte) ([]byte, error) {
	if len(z) < 6 {
		return nil, Error("zlib stream too short")
	}
	body := z[2 : len(z)-4]
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, Error(err.Error())
	}
	want := binary.BigEndian.Uint32(z[len(z)-4:])
	if adler32.Checksum(raw) != want {
		return nil, Error("adler-32 checksum mismatch")
	}
	return raw, nil
}

// StripIEND removes a well-formed trailing IEND chunk (12 bytes: 4-byte
// zero length, 4-byte "IEND" tag, 4-byte CRC), returning the input
// unchanged if no IEND chunk is present at the end.
func StripIEND(png []byte) []byte {
	if len(png) < 12 {
		return png
	}
	tail := png[len(png)-12:]
	if string(tail[4:8]) == "IEND" {
		return png[:len(png)-12]
	}
	return png
}

// Decode parses a PNG produced by Encode (optionally missing its IEND
// chunk) and recovers the packed bit sequence, mirroring what the
// synthesized JS decoder's canvas read-back does in the browser.
func Decode(png []byte) (bits []int, width, height int, err error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return nil, 0, 0, Error("missing PNG signature")
	}
	pos := len(pngSignature)
	var idat []byte
	for pos+8 <= len(png) {
		length := binary.BigEndian.Uint32(png[pos : pos+4])
		typ := string(png[pos+4 : pos+8])
		dataStart := pos + 8
		dataEnd := dataStart + int(length)
		if dataEnd+4 > len(png) {
			break
		}
		data := png[dataStart:dataEnd]
		switch typ {
		case "IHDR":
			width = int(binary.BigEndian.Uint32(data[0:4]))
			height = int(binary.BigEndian.Uint32(data[4:8]))
		case "IDAT":
			idat = append(idat, data...)
		}
		pos = dataEnd + 4
		if typ == "IEND" {
			break
		}
	}
	if idat == nil || width == 0 || height == 0 {
		return nil, 0, 0, Error("incomplete PNG stream")
	}

	raw, err := inflateZlib(idat)
	if err != nil {
		return nil, 0, 0, err
	}

	rowBytes := (width + 7) / 8
	bits = make([]int, 0, width*height)
	var prior []byte
	pos = 0
	for y := 0; y < height; y++ {
		if pos >= len(raw) {
			return nil, 0, 0, Error("truncated scanline data")
		}
		ft := FilterType(raw[pos])
		pos++
		filtered := raw[pos : pos+rowBytes]
		pos += rowBytes
		row := unfilterRow(ft, filtered, prior)
		bits = append(bits, unpackRow(row, width)...)
		prior = row
	}
	return bits, width, height, nil
}
