// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package ztml produces a single self-extracting HTML (or JS) artifact that
// renders an original text or binary payload when loaded by a browser (§1).
// It is the "pipeline" component of the overview table: it wires every
// other package in dependency order and dispatches by mode (text/image/raw).
package ztml

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/eyaler/ztml/internal/bin2txt"
	"github.com/eyaler/ztml/internal/bwtmtf"
	"github.com/eyaler/ztml/internal/decodersynth"
	"github.com/eyaler/ztml/internal/deflatepng"
	"github.com/eyaler/ztml/internal/huffman"
	"github.com/eyaler/ztml/internal/textprep"
	"github.com/eyaler/ztml/internal/webify"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "ztml: " + string(e) }

// errRecover turns a panicked error value into a returned error, exactly
// mirroring bzip2/common.go's idiom for "input shape violation" assertions
// (§7). A runtime.Error or a non-error panic value is re-panicked.
func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// no panic
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

// Payload is the tagged variant at the public boundary (§9 "polymorphic
// encode signatures"): the input is either text to run through the full
// text-prep/bwt-mtf/huffman pipeline, or an opaque byte sequence (image
// mode) that skips straight to bin2txt.
type Payload struct {
	Text  string
	Bytes []byte
	IsRaw bool // Bytes holds a raw payload (image mode) rather than Text
}

// TextPayload wraps text input (the common case: text/raw render modes).
func TextPayload(s string) Payload { return Payload{Text: s} }

// BytesPayload wraps an opaque byte sequence (image mode).
func BytesPayload(b []byte) Payload { return Payload{Bytes: b, IsRaw: true} }

// Offset models bin2txt's "optional int with sweep-on-None" parameter (§9)
// as an explicit enum instead of a nilable integer.
type Offset struct {
	fixed bool
	value byte
}

// SweepOptimal sweeps all 256 modular offsets and keeps the shortest
// encoding (the default).
func SweepOptimal() Offset { return Offset{} }

// FixedOffset pins the bin2txt modular byte offset instead of sweeping.
func FixedOffset(b byte) Offset { return Offset{fixed: true, value: b} }

// Bin2txtCodec selects which of the three text-safe codecs of §4.5 carries
// the compressed bit stream.
type Bin2txtCodec int

const (
	CrEnc Bin2txtCodec = iota
	Base64
	Base125
)

func (c Bin2txtCodec) codec() bin2txt.Codec {
	switch c {
	case Base64:
		return bin2txt.Base64Codec{}
	case Base125:
		return bin2txt.Base125Codec{}
	default:
		return bin2txt.CrEncCodec{}
	}
}

// Options is the single configuration struct populated by the caller (§9
// "global mutable defaults" -> configuration struct; SPEC_FULL.md §A). The
// core never reads process-wide state; a CLI collaborator (out of scope
// here, §1) is responsible for populating this from flags.
type Options struct {
	// Text preprocessing (§4.1, §6.1).
	ReduceWhitespace bool
	UnixNewline      bool
	FixPunct         bool
	Caps             textprep.CapsMode

	// BWT+MTF (§4.2).
	MTF          bwtmtf.Policy
	VowelReorder bool

	// bin2txt (§4.5, §6.1).
	Bin2txt Bin2txtCodec
	Offset  Offset

	// Rendering (§6.1, SPEC_FULL.md §D).
	ElementID string
	Raw       bool
	Image     bool

	// Artifact framing (§6.1, §6.2).
	JS             bool
	Uglify         bool
	MinAliasCount  int
	PreventGrow    bool
	AddUsedAliases bool
	Lang           string
	Mobile         bool
	Title          string

	// Validation (§7, SPEC_FULL.md §E): called with the finished artifact
	// after encode when non-nil; the pipeline never implements the browser
	// oracle itself.
	Validate func([]byte) error

	// Logger receives informational fallback/codec-warning events (§7).
	// Defaults to a no-op logger.
	Logger zerolog.Logger
}

const (
	payloadVar = "P"
	textVar    = "t"
	bitsVar    = "a"
	bytesVar   = "u"
	imageVar   = "i"
	pixelsVar  = "s"
)

// Encode runs the full pipeline over payload and returns the finished
// artifact: an HTML document, or (when opts.JS is set) a bare script.
func Encode(payload Payload, opts Options) (artifact []byte, err error) {
	defer errRecover(&err)

	if opts.MinAliasCount == 0 {
		opts.MinAliasCount = 2
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}

	if payload.IsRaw || opts.Image {
		return encodeImage(payload.Bytes, opts)
	}
	return encodeText(payload.Text, opts)
}

// encodeText runs the text/raw render-mode pipeline: text-prep ->
// bwt-mtf(symbols) -> huffman -> bwt(bits) -> deflate-png -> bin2txt ->
// webify (§2's data-flow table, text-mode row).
func encodeText(input string, opts Options) ([]byte, error) {
	log := opts.Logger

	text := textprep.Normalize(input, opts.ReduceWhitespace, opts.UnixNewline, opts.FixPunct)

	folded, effectiveCaps, fellBack := textprep.Fold(text, opts.Caps, log)
	if fellBack {
		log.Info().Msg("ztml: auto caps fallback to raw")
	}

	condensed, theApplied := textprep.ElideThe(folded)
	if !theApplied {
		log.Debug().Msg("ztml: the-elision skipped")
	}

	quCost := len(decodersynth.QuSuffixJS(effectiveCaps))
	condensed, quApplied := textprep.ElideQu(condensed, quCost)
	if !quApplied {
		log.Debug().Msg("ztml: qu-elision skipped")
	}

	codePoints := []int(nil)
	for _, r := range condensed {
		codePoints = append(codePoints, int(r))
	}

	symRanks, symPrimary, symMax := bwtmtf.Encode(codePoints, bwtmtf.Options{
		Policy:       opts.MTF,
		VowelReorder: opts.VowelReorder,
	})

	freq := make(map[int]int)
	for _, r := range symRanks {
		freq[r]++
	}
	codebook, err := huffman.Build(freq)
	if err != nil {
		return nil, err
	}
	bitBuf, err := codebook.EncodeSymbols(symRanks)
	if err != nil {
		return nil, err
	}
	charset, table := codebook.Serialize()

	bits := bitBuf.Bits()
	numBits := len(bits)
	bitsPrimary := bwtmtf.EncodeBWT(bits)

	png, err := deflatepng.Encode(bits, true)
	if err != nil {
		return nil, err
	}

	stages := []decodersynth.Stage{
		decodersynth.BitsBWTDecoder(bitsPrimary, numBits, bitsVar),
		decodersynth.HuffmanDecoder(charset, table, bitsVar, textVar),
		decodersynth.SymbolBWTMTFDecoder(symPrimary, symMax, opts.MTF, opts.VowelReorder, textVar),
		decodersynth.TextPrepDecoder(effectiveCaps, theApplied, quApplied, textVar),
	}

	mode := "text"
	if opts.Raw {
		mode = "raw"
	}
	stages = append(stages, decodersynth.Renderer(mode, textVar, imageVar, opts.ElementID))

	decoderBody := decodersynth.Render(stages)

	return assemble(png, decoderBody, false, opts)
}

// encodeImage runs the image-mode pipeline: the raw byte payload skips
// stages 2-4 and feeds bin2txt directly (§2, §4 "image mode", SPEC_FULL.md
// §D). bin2txt=base64 takes a simpler direct data-URL path; base125/crenc
// decode the bin2txt literal back into a byte array first, then reuse the
// same deflate-png image-to-bits decoder as the non-image pipeline. Either
// way the PNG that reaches the browser is only a 1-bpp compression
// vehicle; ImagePayloadDecoder repacks the bits recovered from it back
// into the original payload bytes and swaps imageVar over to a Blob of
// those bytes before the renderer stage displays it.
func encodeImage(data []byte, opts Options) ([]byte, error) {
	bits, err := bitsFromBytes(data)
	if err != nil {
		return nil, err
	}

	png, err := deflatepng.Encode(bits, true)
	if err != nil {
		return nil, err
	}

	base64Direct := opts.Bin2txt == Base64

	var stages []decodersynth.Stage
	if base64Direct {
		stages = append(stages, base64ImageStage(png, imageVar))
	} else {
		stages = append(stages, decodersynth.CreateImage(bytesVar, imageVar))
	}
	payload := decodersynth.ImagePayloadDecoder(bitsVar, len(bits), imageVar)
	renderer := decodersynth.Renderer("image", textVar, imageVar, opts.ElementID)
	stages = append(stages, decodersynth.ImageToBits(imageVar, pixelsVar, bitsVar, payload.JS+renderer.JS))

	decoderBody := decodersynth.Render(stages)

	return assemble(png, decoderBody, base64Direct, opts)
}

// base64ImageStage builds the simpler direct data-URL image fragment the
// original source uses only for bin2txt=base64: the PNG bytes are embedded
// as a data:image/png;base64 URL on a plain Image assignment, with no Blob
// indirection (unlike base125/crenc, which go through CreateImage).
func base64ImageStage(png []byte, imageVar string) decodersynth.Stage {
	encoded := bin2txt.Base64Codec{}.Encode(png, 0)
	js := fmt.Sprintf("%s=new Image\n%s.src='data:image/png;base64,%s'\n", imageVar, imageVar, encoded)
	return decodersynth.Stage{Name: "create-image-base64", JS: js}
}

// bitsFromBytes turns an opaque byte sequence into the 0/1 bit sequence
// deflatepng.Encode expects, MSB first per byte.
func bitsFromBytes(data []byte) ([]int, error) {
	if len(data) == 0 {
		return nil, Error("image payload must not be empty")
	}
	bits := make([]int, 0, 8*len(data))
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, int((b>>uint(i))&1))
		}
	}
	return bits, nil
}

// assemble picks the bin2txt offset (fixed or swept, §9's Offset enum),
// emits the literal+decoder fragment (skipped when the base64 image path
// already embedded its own data URL), appends the shared decoder body, and
// finally hands the script to webify (uglify + HTML wrap, or a bare .js
// script) per §4.6/§4.7/§6.2.
func assemble(png []byte, decoderBody string, skipLiteral bool, opts Options) ([]byte, error) {
	var script string
	if !skipLiteral {
		codec := opts.Bin2txt.codec()

		offset := 0
		if opts.Offset.fixed {
			offset = int(opts.Offset.value)
		} else {
			_, bestOffset, _ := bin2txt.OptimizeEncode(codec, png)
			offset = bestOffset
		}
		script += string(codec.JSDecoder(png, offset, bytesVar))
	}
	script += decoderBody

	charset := "utf-8"
	if opts.Bin2txt == CrEnc {
		charset = "cp1252"
	}

	aliases := ""
	if opts.Uglify {
		aliases = webify.DefaultAliases
	}

	var out []byte
	if opts.JS {
		out = []byte(script)
	} else {
		out = webify.HTMLWrap(script, aliases, opts.MinAliasCount, opts.AddUsedAliases, opts.PreventGrow, opts.Lang, charset, opts.Title, opts.Mobile, opts.Logger)
	}
	return out, runValidate(out, opts)
}

// runValidate invokes the caller-supplied round-trip oracle (§7, SPEC_FULL.md
// §E) over the finished artifact; the pipeline never renders a browser
// itself.
func runValidate(artifact []byte, opts Options) error {
	if opts.Validate == nil {
		return nil
	}
	return opts.Validate(artifact)
}
