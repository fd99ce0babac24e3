package bin2txt

import (
	"fmt"

	"github.com/eyaler/ztml/internal/webify"
)

// CrEncCodec implements the minimal yEnc variant of §4.5: when the HTML
// charset is cp1252/latin1, only CR is always illegal inside the template
// literal; backslash, backtick, and "${" are escaped for the literal
// itself.
type CrEncCodec struct{}

func (CrEncCodec) Encode(data []byte, offset int) []byte {
	shifted := shiftBytes(data, offset)
	return webify.Escape(shifted, false)
}

func (CrEncCodec) Decode(encoded []byte, offset int) ([]byte, error) {
	return unshiftBytes(webify.Unescape(encoded), offset), nil
}

// cp1252Overrides lists, starting at code point 0x81, the characters
// HTML5's charref-override table remaps high bytes 0x80-0x9F to; a space
// marks a byte with no override (§4.5, §9 Open Question #2: encode
// unconditionally and rely on the decoder's translation table being
// exhaustive).
const cp1252Overrides = " \x82\x83\x84\x85\x86\x87\x88\x89\x8a\x8b\x8c \x8e  \x91\x92\x93\x94\x95\x96\x97\x98\x99\x9a\x9b\x9c \x9e\x9f"

func (c CrEncCodec) JSDecoder(data []byte, offset int, outputVar string) []byte {
	encoded := c.Encode(data, offset)
	function := fmt.Sprintf("(i=c.charCodeAt()%%65533)>>8?129+'%s'.indexOf(c):i", cp1252Overrides)
	if offset != 0 {
		function = fmt.Sprintf("(%s)-%d", function, offset)
	}
	out := []byte(fmt.Sprintf("%s=Uint8Array.from(`", outputVar))
	out = append(out, encoded...)
	out = append(out, []byte(fmt.Sprintf("`,c=>%s)\n", function))...)
	return out
}
