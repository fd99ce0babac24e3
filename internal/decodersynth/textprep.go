package decodersynth

import (
	"fmt"

	"github.com/eyaler/ztml/internal/textprep"
)

// newlineClassJS and friends mirror text_prep's pattern pieces, expressed
// as JS regex source (these run through the browser's own RE2-unconstrained
// engine, so lookahead is fine here even though the Go-side round-trip
// checks in internal/textprep cannot use it, design note in the spec).
const (
	newlineClassJS = `\n\v\f\r\x85\u2028\u2029`
	eosClassJS     = `[!.?]`
	nonwordClassJS = `\p{L}\p{M}\p{N}`
	aposClassJS    = `['’]`
)

// capsRegexJS reproduces text_prep.py's caps_regex: a lookahead-based,
// lookbehind-free pattern matching the first letter of the text, of each
// paragraph, after sentence-ending punctuation, and the standalone word
// "i".
func capsRegexJS() string {
	return fmt.Sprintf(`(((?=(\r\n|[%s]))\3){2,}|^|%s)\P{L}*.|(^|[^%s])i(?![%s])`, newlineClassJS, eosClassJS, nonwordClassJS, nonwordClassJS)
}

// quRegexJS reproduces text_prep.py's get_qu_regex: caseLetter selects
// which Unicode general category the lookahead must avoid ("l"/"u" for the
// raw-caps encode/decode passes, "" when the text has already been folded
// to lowercase so case no longer matters).
func quRegexJS(caseLetter string) string {
	u := "u"
	if caseLetter == "u" {
		u = "U"
	}
	return fmt.Sprintf(`(?=%s?[^%s\P{L%s}])`, aposClassJS, u, caseLetter)
}

// QuSuffixJS returns just the qu-elision reversal fragment a decoder would
// chain onto textVar, with no leading assignment. ztml.go measures its byte
// length as the decoderCost argument to textprep.ElideQu, exactly mirroring
// text_prep.py's get_quq_js_decoder used for the same size comparison.
func QuSuffixJS(caps textprep.CapsMode) string {
	if caps == textprep.CapsRaw {
		return fmt.Sprintf(".replace(/[Qq]%s/gu,'$&u').replace(/Q%s/gu,'QU')", quRegexJS("l"), quRegexJS("u"))
	}
	return fmt.Sprintf(".replace(/q%s/gu,'qu')", quRegexJS(""))
}

// TextPrepDecoder renders the inverse of §4.1's text preprocessing: qu-
// elision reversal, then "the"-reinsertion, then case restoration, exactly
// mirroring text_prep.py's get_js_decoder ordering. Any step whose
// corresponding encode-side transform was skipped (because it didn't pay
// for itself, §4.1's fallback rules) is simply omitted here.
func TextPrepDecoder(caps textprep.CapsMode, theApplied, quApplied bool, textVar string) Stage {
	var suffix string
	if quApplied {
		suffix += QuSuffixJS(caps)
	}
	if theApplied {
		suffix += `.replace(/(^| ) /gm,'$1the ')`
	}
	switch caps {
	case textprep.CapsAuto, textprep.CapsSimple:
		suffix += fmt.Sprintf(`.replace(/%s/gu,s=>s.toUpperCase())`, capsRegexJS())
	case textprep.CapsUpper:
		suffix += `.toUpperCase()`
	case textprep.CapsLower, textprep.CapsRaw:
		// no restoration needed: lower stays lower, raw was never folded.
	}

	if suffix == "" {
		return Stage{Name: "text-prep"}
	}
	js := fmt.Sprintf("%s=%s%s\n", textVar, textVar, suffix)
	return Stage{Name: "text-prep", JS: js}
}
