// Package decodersynth builds the JavaScript decoder that inverts, stage by
// stage, everything the encoding pipeline did to a payload (§4.6). Each
// exported function renders one pipeline stage's inverse as a Stage; Render
// concatenates them in the fixed order the browser must run them in:
// bits-BWT, Huffman, symbol-BWT-MTF, text-prep, then the renderer.
package decodersynth

// Stage is a single named fragment of synthesized decoder JavaScript. The
// AST is intentionally shallow (§9's "represent as a small AST" note): each
// stage's JS body is fully rendered at construction time by its own
// constructor function, so Render only ever concatenates finished text and
// never needs to know a stage's internal parameters.
type Stage struct {
	Name string
	JS   string
}

// Render concatenates stages in order, producing the full decoder script
// body (not yet HTML-wrapped or uglified).
func Render(stages []Stage) string {
	total := 0
	for _, s := range stages {
		total += len(s.JS)
	}
	out := make([]byte, 0, total)
	for _, s := range stages {
		out = append(out, s.JS...)
	}
	return string(out)
}
