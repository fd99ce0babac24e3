package webify

import (
	"bytes"
	"testing"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	vectors := [][]byte{
		{},
		[]byte("plain text"),
		[]byte("back\\slash"),
		[]byte("back`tick"),
		[]byte("carriage\rreturn"),
		[]byte("dollar${brace}"),
		[]byte("dollar$ alone, no brace"),
		{0, 1, 2},
		[]byte("mix \\ ` \r ${ all at once"),
	}
	for _, v := range vectors {
		for _, escapeNUL := range []bool{false, true} {
			enc := Escape(v, escapeNUL)
			if ContainsUnescapedBacktick(enc) {
				t.Errorf("Escape(%q, %v) left an unescaped backtick: %q", v, escapeNUL, enc)
			}
			dec := Unescape(enc)
			if !bytes.Equal(dec, v) {
				t.Errorf("Unescape(Escape(%q, %v)) = %q, want %q", v, escapeNUL, dec, v)
			}
		}
	}
}

func TestEscapeNULOnlyWhenRequested(t *testing.T) {
	data := []byte{0, 'a', 0}
	if !bytes.Equal(Escape(data, false), data) {
		t.Errorf("Escape with escapeNUL=false altered NUL bytes: %q", Escape(data, false))
	}
	enc := Escape(data, true)
	if bytes.Equal(enc, data) {
		t.Errorf("Escape with escapeNUL=true left NUL bytes unescaped: %q", enc)
	}
	dec := Unescape(enc)
	if !bytes.Equal(dec, data) {
		t.Errorf("Unescape(Escape(data, true)) = %q, want %q", dec, data)
	}
}

func TestEscapeStringMatchesEscape(t *testing.T) {
	s := "a`b\\c${d\re"
	if EscapeString(s, false) != string(Escape([]byte(s), false)) {
		t.Errorf("EscapeString diverged from Escape for %q", s)
	}
}
