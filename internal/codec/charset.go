package codec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var replacement = []byte(string(utf8.RuneError))

// DecodeCharset strictly decodes b from the charset named by label. Unlike
// Lookup it accepts every encoding x/text implements, multi-byte ones
// included, since the result never has to be written back byte for byte.
// A UTF-16 byte order mark overrides the label's byte order.
func DecodeCharset(label string, b []byte) (string, error) {
	enc, canonical, err := resolve(label)
	if err != nil {
		return "", err
	}
	if c, ok := codecFor(enc, canonical); ok {
		return c.DecodeStrict(b)
	}

	var t transform.Transformer = enc.NewDecoder()
	if strings.HasPrefix(canonical, "utf-16") {
		t = unicode.BOMOverride(t)
	}
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", fmt.Errorf("%s codec: %w", canonical, err)
	}

	// x/text decoders substitute U+FFFD for invalid input. Any U+FFFD the
	// source does not spell out itself marks such a substitution.
	if n := bytes.Count(out, replacement); n > 0 && n > spelledReplacements(enc, b) {
		return "", &DecodeError{Encoding: canonical, Offset: -1}
	}
	return string(out), nil
}

// spelledReplacements counts the U+FFFD characters encoded literally in b.
func spelledReplacements(enc encoding.Encoding, b []byte) int {
	seq, err := enc.NewEncoder().Bytes(replacement)
	if err != nil || len(seq) == 0 {
		return 0
	}
	// Encoders that write a byte order mark emit it ahead of the character.
	if len(seq) > 2 {
		if p := seq[:2]; bytes.Equal(p, []byte{0xFE, 0xFF}) || bytes.Equal(p, []byte{0xFF, 0xFE}) {
			seq = seq[2:]
		}
	}
	return bytes.Count(b, seq)
}
