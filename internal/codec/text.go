package codec

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf16"
	"unicode/utf8"
)

var errNotString = errors.New("codec: JSON value is not a string")

// Text is decoded filesystem text. Unlike a Go string it can hold lone
// surrogates, which carry escaped bytes between Decode and Encode.
type Text []rune

// FromString converts a Go string to Text.
func FromString(s string) Text {
	return Text([]rune(s))
}

// String renders t for display. Escape placeholders become U+FFFD.
func (t Text) String() string {
	return string(t)
}

// Compare orders texts by code point.
func Compare(a, b Text) int {
	return slices.Compare(a, b)
}

// MarshalJSON writes t as a JSON string. Surrogates are emitted as \uXXXX
// escapes so clients see exactly what Encode will accept back.
func (t Text) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(t)+2)
	buf = append(buf, '"')
	for _, r := range t {
		switch {
		case r == '"':
			buf = append(buf, '\\', '"')
		case r == '\\':
			buf = append(buf, '\\', '\\')
		case r == '\n':
			buf = append(buf, '\\', 'n')
		case r == '\r':
			buf = append(buf, '\\', 'r')
		case r == '\t':
			buf = append(buf, '\\', 't')
		case r < 0x20, utf16.IsSurrogate(r), r == '\u2028', r == '\u2029':
			buf = fmt.Appendf(buf, `\u%04x`, r)
		case !utf8.ValidRune(r):
			buf = append(buf, `\ufffd`...)
		default:
			buf = utf8.AppendRune(buf, r)
		}
	}
	buf = append(buf, '"')
	return buf, nil
}

// UnmarshalJSON reads a JSON string, keeping unpaired surrogate escapes as
// code points instead of replacing them with U+FFFD.
func (t *Text) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errNotString
	}
	s := data[1 : len(data)-1]
	out := make(Text, 0, len(s))

	for i := 0; i < len(s); {
		if s[i] != '\\' {
			r, size := utf8.DecodeRune(s[i:])
			out = append(out, r)
			i += size
			continue
		}
		if i+1 >= len(s) {
			return fmt.Errorf("codec: truncated escape at offset %d", i)
		}

		switch c := s[i+1]; c {
		case '"', '\\', '/':
			out = append(out, rune(c))
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r, ok := hex4(s[i+2:])
			if !ok {
				return fmt.Errorf("codec: invalid unicode escape at offset %d", i)
			}
			i += 6
			if utf16.IsSurrogate(r) && r < 0xDC00 && i+6 <= len(s) && s[i] == '\\' && s[i+1] == 'u' {
				if lo, ok := hex4(s[i+2:]); ok && lo >= 0xDC00 && lo <= 0xDFFF {
					out = append(out, utf16.DecodeRune(r, lo))
					i += 6
					continue
				}
			}
			out = append(out, r)
			continue
		default:
			return fmt.Errorf("codec: invalid escape %q at offset %d", c, i)
		}
		i += 2
	}

	*t = out
	return nil
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		switch {
		case '0' <= c && c <= '9':
			c -= '0'
		case 'a' <= c && c <= 'f':
			c = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
