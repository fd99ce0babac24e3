// Package textprep normalizes and condenses text before the BWT+MTF stage
// (§4.1): whitespace/BOM/punctuation cleanup, case folding with a
// Safari-safe auto-capitalization rule, "the"-elision, and "qu"-elision.
// Each transform is paired with the logic that reverses it, mirrored
// in-process here so the `auto` caps fallback decision and the round-trip
// property tests exercise the same semantics the synthesized JS decoder
// implements (the JS decoder itself is free to use lookahead, which Go's
// RE2-based regexp package cannot express; these Go-side equivalents use
// explicit rune scans instead).
package textprep

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "textprep: " + string(e) }

// CapsMode selects how case folding is applied and reversed.
type CapsMode int

const (
	CapsRaw CapsMode = iota
	CapsLower
	CapsUpper
	CapsSimple
	CapsAuto
)

const newlineClass = "\n\v\f\r  "

var (
	paragraphRe = regexp.MustCompile(`\s*[` + newlineClass + `]\s*[` + newlineClass + `]\s*`)
	singleNLRe  = regexp.MustCompile(`[^\S` + newlineClass + `]*[` + newlineClass + `][^\S` + newlineClass + `]*`)
	runSpaceRe  = regexp.MustCompile(`[^\S` + newlineClass + `]+`)
	crlfRe      = regexp.MustCompile(`\r\n?`)

	dashRe    = regexp.MustCompile(`\p{Pd}`)
	singleQRe = regexp.MustCompile(`[\x{2018}-\x{201b}\x{05f3}\x{ff07}]`)
	doubleQRe = regexp.MustCompile(`[\x{201c}-\x{201f}\x{05f4}\x{ff02}]`)
)

const ellipsisChar = "…"

// Normalize applies the always-on/optional whitespace and punctuation passes
// of §4.1, and unconditionally strips a leading BOM.
func Normalize(text string, reduceWhitespace, unixNewline, fixPunct bool) string {
	if reduceWhitespace {
		text = paragraphRe.ReplaceAllString(text, "\n\n")
		text = singleNLRe.ReplaceAllString(text, "\n")
		text = runSpaceRe.ReplaceAllString(text, " ")
		text = strings.TrimSpace(text)
	} else if unixNewline {
		text = crlfRe.ReplaceAllString(text, "\n")
	}
	if fixPunct {
		text = dashRe.ReplaceAllString(text, "-")
		text = singleQRe.ReplaceAllString(text, "'")
		text = doubleQRe.ReplaceAllString(text, "\"")
		text = strings.ReplaceAll(text, ellipsisChar, "...")
	}
	return strings.TrimPrefix(text, "\uFEFF")
}

// Fold applies case folding and returns the folded text together with
// whether an `auto` request fell back to `raw` because the auto-uppercase
// rule could not recover the original case exactly (§4.1, §9 Open Question
// #1: "treat the existing behavior as the contract").
func Fold(text string, mode CapsMode, log zerolog.Logger) (folded string, effectiveMode CapsMode, fellBack bool) {
	switch mode {
	case CapsRaw:
		return text, CapsRaw, false
	case CapsLower:
		return strings.ToLower(text), CapsLower, false
	case CapsUpper:
		return strings.ToUpper(text), CapsUpper, false
	case CapsSimple:
		return strings.ToLower(text), CapsSimple, false
	case CapsAuto:
		lower := strings.ToLower(text)
		recon := AutoUpper(lower)
		if recon == text {
			return lower, CapsAuto, false
		}
		log.Info().Msg("textprep: auto caps fallback to raw, round trip mismatch")
		return text, CapsRaw, true
	default:
		panic(Error("unknown caps mode"))
	}
}

func isNewlineRune(r rune) bool {
	switch r {
	case '\n', '\v', '\f', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func isEOSRune(r rune) bool {
	switch r {
	case '!', '.', '?':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}

// AutoUpper re-capitalizes the first letter of each paragraph (two or more
// consecutive newline-class runes) and each sentence (after `!`, `.`, or
// `?`), the very first letter of the text, and every standalone "i" token
// (§4.1 `auto`/`simple` caps decoding).
func AutoUpper(text string) string {
	rs := []rune(text)
	capitalizeNext := true
	newlineRun := 0
	for i, r := range rs {
		switch {
		case isNewlineRune(r):
			newlineRun++
			if newlineRun >= 2 {
				capitalizeNext = true
			}
			continue
		case isEOSRune(r):
			newlineRun = 0
			capitalizeNext = true
			continue
		default:
			newlineRun = 0
		}
		if !capitalizeNext {
			continue
		}
		if unicode.IsLetter(r) {
			rs[i] = unicode.ToUpper(r)
			capitalizeNext = false
		}
	}
	for i, r := range rs {
		if r != 'i' {
			continue
		}
		prevOK := i == 0 || !isWordRune(rs[i-1])
		nextOK := i == len(rs)-1 || !isWordRune(rs[i+1])
		if prevOK && nextOK {
			rs[i] = 'I'
		}
	}
	return string(rs)
}

// theAmbiguous reports whether the text already contains two consecutive
// spaces, or a line starting with a single space, either of which would
// make the "the"-elision marker (two spaces) ambiguous on decode.
func theAmbiguous(text string) bool {
	if strings.Contains(text, "  ") {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "  ") {
			return true
		}
	}
	return false
}

var theRe = regexp.MustCompile(`(?m)(^| )the `)
var theInverseRe = regexp.MustCompile(`(?m)(^| ) `)

// ElideThe drops "the " following a line start or space, replacing it with a
// second space so the decoder can find the marker unambiguously. It is
// skipped when the source already contains that marker naturally.
func ElideThe(text string) (out string, applied bool) {
	if theAmbiguous(text) {
		return text, false
	}
	return theRe.ReplaceAllString(text, "$1 "), true
}

// UnelideThe is the in-process inverse of ElideThe.
func UnelideThe(text string) string {
	return theInverseRe.ReplaceAllString(text, "${1}the ")
}

func isApos(r rune) bool { return r == '\'' || r == '’' }

// elideQu drops the "u" in "qu" and the "U" in "QU" wherever an
// apostrophe-skippable lookahead shows a following letter of matching case
// that is not itself u/U (so "quit" -> "qit" but "equus" keeps its second
// u). Mixed-case "Qu" is left unchanged.
func elideQu(text string) string {
	rs := []rune(text)
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); {
		r := rs[i]
		if (r == 'q' || r == 'Q') && i+1 < len(rs) {
			wantNext := byte('u')
			if r == 'Q' {
				wantNext = 'U'
			}
			if rune(wantNext) == rs[i+1] {
				j := i + 2
				var aposRune rune
				hasApos := false
				if j < len(rs) && isApos(rs[j]) {
					aposRune, hasApos = rs[j], true
					j++
				}
				if j < len(rs) {
					ok := false
					if r == 'q' {
						ok = unicode.IsLower(rs[j]) && rs[j] != 'u'
					} else {
						ok = unicode.IsUpper(rs[j]) && rs[j] != 'U'
					}
					if ok {
						out = append(out, r)
						if hasApos {
							out = append(out, aposRune)
						}
						i = j
						continue
					}
				}
			}
		}
		out = append(out, r)
		i++
	}
	return string(out)
}

// ElideQu applies elideQu and reports whether it was judged worthwhile: the
// savings must exceed decoderCost, the byte length of the inverse fragment
// the decoder would need to carry.
func ElideQu(text string, decoderCost int) (out string, applied bool) {
	candidate := elideQu(text)
	if len(text)-len(candidate) <= decoderCost {
		return text, false
	}
	return candidate, true
}

// UnelideQu is the in-process inverse of ElideQu. When caps is CapsRaw both
// "q"/"Q" markers must be distinguished by the case of the following
// letter; otherwise (folded text) only the lowercase marker can occur.
func UnelideQu(text string, caps CapsMode) string {
	rs := []rune(text)
	out := make([]rune, 0, len(rs)+len(rs)/8)
	for i := 0; i < len(rs); {
		r := rs[i]
		matched := false
		if caps == CapsRaw && (r == 'q' || r == 'Q') {
			j := i + 1
			var aposRune rune
			hasApos := false
			if j < len(rs) && isApos(rs[j]) {
				aposRune, hasApos = rs[j], true
				j++
			}
			if j < len(rs) {
				if r == 'q' && unicode.IsLower(rs[j]) && rs[j] != 'u' {
					out = append(out, r, 'u')
					matched = true
				} else if r == 'Q' && unicode.IsUpper(rs[j]) && rs[j] != 'U' {
					out = append(out, r, 'U')
					matched = true
				}
			}
			if matched {
				if hasApos {
					out = append(out, aposRune)
				}
				i = j
				continue
			}
		} else if caps != CapsRaw && r == 'q' {
			j := i + 1
			var aposRune rune
			hasApos := false
			if j < len(rs) && isApos(rs[j]) {
				aposRune, hasApos = rs[j], true
				j++
			}
			if j < len(rs) && unicode.IsLetter(rs[j]) && rs[j] != 'u' {
				out = append(out, r, 'u')
				if hasApos {
					out = append(out, aposRune)
				}
				i = j
				continue
			}
		}
		out = append(out, r)
		i++
	}
	return string(out)
}
