// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package ztml

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/eyaler/ztml/internal/bin2txt"
	"github.com/eyaler/ztml/internal/bitbuf"
	"github.com/eyaler/ztml/internal/bwtmtf"
	"github.com/eyaler/ztml/internal/decodersynth"
	"github.com/eyaler/ztml/internal/deflatepng"
	"github.com/eyaler/ztml/internal/huffman"
	"github.com/eyaler/ztml/internal/testutil"
	"github.com/eyaler/ztml/internal/textprep"
)

// runPipeline drives the same stage sequence encodeText does, but instead of
// handing the decode half to the synthesized JS decoder, it inverts every
// stage in process using the packages' own Decode/Unelide functions. This
// lets property 1 of §8 (decode(encode(x)) == normalize(x)) be checked
// without a browser, while still exercising the exact component wiring
// encodeText uses. For the lower, upper and simple caps modes, normalize(x)
// includes the case folding the decoder cannot undo.
func runPipeline(t *testing.T, input string, opts Options) (decoded, normalized string) {
	t.Helper()

	text := textprep.Normalize(input, opts.ReduceWhitespace, opts.UnixNewline, opts.FixPunct)
	folded, effectiveCaps, _ := textprep.Fold(text, opts.Caps, opts.Logger)
	condensed, theApplied := textprep.ElideThe(folded)
	quCost := len(decodersynth.QuSuffixJS(effectiveCaps))
	condensed, quApplied := textprep.ElideQu(condensed, quCost)

	var codePoints []int
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
		t.Fatalf("huffman.Build: %v", err)
	}
	bitBuf, err := codebook.EncodeSymbols(symRanks)
	if err != nil {
		t.Fatalf("EncodeSymbols: %v", err)
	}
	charset, table := codebook.Serialize()

	bits := bitBuf.Bits()
	numBits := len(bits)
	bitsPrimary := bwtmtf.EncodeBWT(bits)

	png, err := deflatepng.Encode(bits, true)
	if err != nil {
		t.Fatalf("deflatepng.Encode: %v", err)
	}

	// Invert: PNG -> bits -> bit-BWT -> Huffman -> symbol-BWT/MTF -> text-prep.
	decodedBits, _, _, err := deflatepng.Decode(png)
	if err != nil {
		t.Fatalf("deflatepng.Decode: %v", err)
	}
	decodedBits = decodedBits[:numBits]
	bwtmtf.DecodeBWT(decodedBits, bitsPrimary)

	buf := bitbuf.FromBits(decodedBits)
	decodedSyms, err := huffman.DecodeSymbols(buf, charset, table, len(symRanks))
	if err != nil {
		t.Fatalf("DecodeSymbols: %v", err)
	}

	decodedCodePoints := bwtmtf.Decode(decodedSyms, symPrimary, symMax, bwtmtf.Options{
		Policy:       opts.MTF,
		VowelReorder: opts.VowelReorder,
	})

	rs := make([]rune, len(decodedCodePoints))
	for i, c := range decodedCodePoints {
		rs[i] = rune(c)
	}
	out := string(rs)

	if quApplied {
		out = textprep.UnelideQu(out, effectiveCaps)
	}
	if theApplied {
		out = textprep.UnelideThe(out)
	}
	switch effectiveCaps {
	case textprep.CapsAuto, textprep.CapsSimple:
		out = textprep.AutoUpper(out)
	case textprep.CapsUpper:
		out = strings.ToUpper(out)
	}
	want := text
	switch effectiveCaps {
	case textprep.CapsLower, textprep.CapsUpper:
		want = folded
	case textprep.CapsSimple:
		want = textprep.AutoUpper(folded)
	}
	return out, want
}

func TestPipelineRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"The quick brown fox jumps over the lazy dog.",
		"queen quit acquire equal quiz squash",
		strings.Repeat("a", 10000),
	}
	rnd := testutil.NewRand(1)
	for i := 0; i < 20; i++ {
		inputs = append(inputs, rnd.Text(50+i*7))
	}

	policies := []bwtmtf.Policy{bwtmtf.Policy0, bwtmtf.Policy52, bwtmtf.Policy80, bwtmtf.PolicyNone}
	capsModes := []textprep.CapsMode{textprep.CapsRaw, textprep.CapsLower, textprep.CapsUpper, textprep.CapsSimple, textprep.CapsAuto}

	for _, in := range inputs {
		for _, policy := range policies {
			for _, caps := range capsModes {
				for _, vowel := range []bool{false, true} {
					opts := Options{
						Caps:         caps,
						MTF:          policy,
						VowelReorder: vowel,
						Logger:       zerolog.Nop(),
					}
					decoded, normalized := runPipeline(t, in, opts)
					if diff := cmp.Diff(normalized, decoded); diff != "" {
						t.Errorf("input=%q caps=%v policy=%v vowel=%v: round trip mismatch (-want +got):\n%s",
							in, caps, policy, vowel, diff)
					}
				}
			}
		}
	}
}

func TestBitsFromBytes(t *testing.T) {
	bits, err := bitsFromBytes([]byte{0xA5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 0, 1, 0, 0, 1, 0, 1}
	if diff := cmp.Diff(want, bits); diff != "" {
		t.Errorf("bitsFromBytes mismatch (-want +got):\n%s", diff)
	}

	if _, err := bitsFromBytes(nil); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestEncodeTextSmoke(t *testing.T) {
	out, err := Encode(TextPayload("hello, world"), Options{Caps: textprep.CapsAuto, Bin2txt: CrEnc, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty artifact")
	}
	if !strings.Contains(string(out), "<html") {
		t.Errorf("expected an HTML wrapper by default, got %q", truncate(string(out)))
	}
}

func TestEncodeJSMode(t *testing.T) {
	out, err := Encode(TextPayload("hello"), Options{JS: true, Bin2txt: Base125, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(out), "<html") {
		t.Errorf("JS mode should not emit an HTML wrapper, got %q", truncate(string(out)))
	}
}

func TestEncodeImageModeBase64(t *testing.T) {
	data := []byte{0xFF, 0x00, 0xAB, 0xCD}
	out, err := Encode(BytesPayload(data), Options{Bin2txt: Base64, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(out), "data:image/png;base64,") {
		t.Errorf("expected a direct base64 data URL, got %q", truncate(string(out)))
	}
}

func TestEncodeImageModeRejectsEmptyPayload(t *testing.T) {
	if _, err := Encode(BytesPayload(nil), Options{Logger: zerolog.Nop()}); err == nil {
		t.Error("expected error for empty image payload")
	}
}

func TestEncodeValidateHookReceivesArtifact(t *testing.T) {
	var seen []byte
	_, err := Encode(TextPayload("x"), Options{
		Logger: zerolog.Nop(),
		Validate: func(artifact []byte) error {
			seen = artifact
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(seen) == 0 {
		t.Error("expected Validate to observe the finished artifact")
	}
}

func TestEncodeValidateHookPropagatesError(t *testing.T) {
	want := Error("boom")
	_, err := Encode(TextPayload("x"), Options{
		Logger:   zerolog.Nop(),
		Validate: func([]byte) error { return want },
	})
	if err != want {
		t.Errorf("got err %v, want %v", err, want)
	}
}

func TestBin2txtCodecSelection(t *testing.T) {
	cases := []struct {
		c    Bin2txtCodec
		want bin2txt.Codec
	}{
		{CrEnc, bin2txt.CrEncCodec{}},
		{Base64, bin2txt.Base64Codec{}},
		{Base125, bin2txt.Base125Codec{}},
	}
	for _, tc := range cases {
		if got := tc.c.codec(); got != tc.want {
			t.Errorf("%v.codec() = %#v, want %#v", tc.c, got, tc.want)
		}
	}
}

func truncate(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
