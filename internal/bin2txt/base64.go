package bin2txt

import (
	"encoding/base64"
	"fmt"
)

// Base64Codec implements standard RFC 4648 base64. Present for benchmarking
// per §4.5: shifting input bytes before base64 cannot change the encoded
// length, so its offset sweep always settles on offset 0.
type Base64Codec struct{}

func (Base64Codec) Encode(data []byte, offset int) []byte {
	shifted := shiftBytes(data, offset)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(shifted)))
	base64.StdEncoding.Encode(out, shifted)
	return out
}

func (Base64Codec) Decode(encoded []byte, offset int) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(out, encoded)
	if err != nil {
		return nil, Error(err.Error())
	}
	return unshiftBytes(out[:n], offset), nil
}

func (c Base64Codec) JSDecoder(data []byte, offset int, outputVar string) []byte {
	encoded := c.Encode(data, offset)
	mapFn := "c=>c.charCodeAt()"
	if offset != 0 {
		mapFn = fmt.Sprintf("c=>c.charCodeAt()-%d&255", offset)
	}
	return []byte(fmt.Sprintf("%s=Uint8Array.from(atob(`%s`),%s)\n", outputVar, encoded, mapFn))
}
