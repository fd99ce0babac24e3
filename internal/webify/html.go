package webify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// NormalizeCharset maps the two accepted short aliases to their canonical
// HTML charset name (§6.2); anything else passes through unchanged.
func NormalizeCharset(name string) string {
	switch strings.ToLower(name) {
	case "utf8":
		return "utf-8"
	case "l1":
		return "iso-8859-1"
	default:
		return name
	}
}

// cp1252Special maps the 27 Windows-1252 code points in 0x80-0x9F that
// diverge from Latin-1 (the 5 left unassigned by cp1252 - 0x81, 0x8D, 0x8F,
// 0x90, 0x9D - round-trip through HTML5 as their raw Latin-1 byte value
// instead, so they are not in this table) to the byte that encodes them.
var cp1252Special = map[rune]byte{
	'€': 0x80, '‚': 0x82, 'ƒ': 0x83, '„': 0x84,
	'…': 0x85, '†': 0x86, '‡': 0x87, 'ˆ': 0x88,
	'‰': 0x89, 'Š': 0x8A, '‹': 0x8B, 'Œ': 0x8C,
	'Ž': 0x8E, '‘': 0x91, '’': 0x92, '“': 0x93,
	'”': 0x94, '•': 0x95, '–': 0x96, '—': 0x97,
	'˜': 0x98, '™': 0x99, 'š': 0x9A, '›': 0x9B,
	'œ': 0x9C, 'ž': 0x9E, 'Ÿ': 0x9F,
}

var cp1252Safe = map[rune]bool{0x81: true, 0x8D: true, 0x8F: true, 0x90: true, 0x9D: true}

// EncodeCharset serializes text into the bytes charset would put on the
// wire, escaping anything the charset cannot represent as a JS \u{...}
// literal rather than failing (§6.3's "encoding-aware serialization of
// non-UTF-8 text"). utf-8 (and its aliases) always succeeds byte-for-byte;
// iso-8859-1/cp1252 fall back to \u{...} escapes outside their repertoire,
// except the five bytes HTML5 still passes through raw despite cp1252
// leaving them unassigned.
func EncodeCharset(text, charset string) []byte {
	switch NormalizeCharset(charset) {
	case "iso-8859-1":
		return encodeSingleByte(text, false)
	case "cp1252", "windows-1252":
		return encodeSingleByte(text, true)
	default:
		return []byte(text)
	}
}

func encodeSingleByte(text string, cp1252 bool) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		switch {
		case r < 0x80:
			out = append(out, byte(r))
		case cp1252 && cp1252Safe[r]:
			out = append(out, byte(r))
		case cp1252 && cp1252Special[r] != 0:
			out = append(out, cp1252Special[r])
		case r >= 0xA0 && r <= 0xFF:
			out = append(out, byte(r))
		default:
			out = append(out, []byte(fmt.Sprintf(`\u{%x}`, r))...)
		}
	}
	return out
}

// HTMLWrap frames script in the HTML artifact shell of §6.2: doctype, a
// lang-tagged html element, a charset meta, an optional viewport meta for
// mobile, an optional title, and the script itself inside <body><script>.
// When aliases is non-empty the script is uglified first.
func HTMLWrap(script, aliases string, minCnt int, addUsedAliases, preventGrow bool, lang, charset, title string, mobile bool, log zerolog.Logger) []byte {
	if lang == "" {
		lang = "en"
	}
	charset = NormalizeCharset(charset)
	if charset == "" {
		charset = "utf-8"
	}
	if aliases != "" {
		script = Uglify(script, aliases, minCnt, addUsedAliases, preventGrow, log)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html lang=")
	b.WriteString(lang)
	b.WriteString("><head><meta charset=")
	b.WriteString(charset)
	b.WriteString(">")
	if mobile {
		b.WriteString(`<meta name=viewport content="width=device-width,initial-scale=1">`)
	}
	if title != "" {
		b.WriteString("<title>")
		b.WriteString(title)
		b.WriteString("</title>")
	}
	b.WriteString("</head><body><script>")
	header := b.String()
	footer := "</script></body></html>"

	out := EncodeCharset(header+"\n"+strings.TrimSpace(script)+"\n"+footer, charset)
	return out
}
