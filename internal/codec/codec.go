package codec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Escape placeholders occupy the low-surrogate block: byte b becomes U+DC00+b.
const (
	escapeBase = 0xDC00
	escapeMax  = 0xDCFF
	escapeHigh = 0xDC80
)

// ErrUnknownEncoding is returned by Lookup for names that do not resolve to a
// supported encoding.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Spellings that neither the IANA nor the WHATWG index resolves the way a
// file system user means them. WHATWG maps "ascii" to windows-1252.
var aliases = map[string]string{
	"utf_8":     "utf-8",
	"u8":        "utf-8",
	"ascii":     "us-ascii",
	"646":       "us-ascii",
	"latin-1":   "iso-8859-1",
	"latin_1":   "iso-8859-1",
	"iso8859-1": "iso-8859-1",
	"iso8859_1": "iso-8859-1",
}

// EncodingError reports a character that has no representation in the target
// encoding.
type EncodingError struct {
	Encoding string
	Index    int
	Rune     rune
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s codec cannot encode %U at position %d", e.Encoding, e.Rune, e.Index)
}

// DecodeError reports a byte sequence that is invalid in the source encoding.
// Offset is -1 when the position is unknown.
type DecodeError struct {
	Encoding string
	Offset   int
	Byte     byte
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s codec cannot decode input: invalid byte sequence", e.Encoding)
	}
	return fmt.Sprintf("%s codec cannot decode byte 0x%02x at offset %d", e.Encoding, e.Byte, e.Offset)
}

// Codec converts between raw bytes and Text for one character encoding.
// A nil charmap means UTF-8, or 7-bit ASCII when ascii is set.
type Codec struct {
	name    string
	ascii   bool
	charmap *charmap.Charmap
}

var (
	utf8Codec  = &Codec{name: "utf-8"}
	asciiCodec = &Codec{name: "us-ascii", ascii: true}
)

// UTF8 returns the UTF-8 codec.
func UTF8() *Codec {
	return utf8Codec
}

// Lookup resolves an encoding label to a Codec. UTF-8, US-ASCII and the
// single-byte code pages are supported; other encodings resolve but are
// rejected because a byte cannot be escaped on its own in them.
func Lookup(name string) (*Codec, error) {
	enc, canonical, err := resolve(name)
	if err != nil {
		return nil, err
	}
	if c, ok := codecFor(enc, canonical); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q is not a supported file encoding", ErrUnknownEncoding, name)
}

// resolve maps a label to an x/text encoding and its canonical lower-case
// name. IANA names are tried first, then WHATWG labels.
func resolve(name string) (encoding.Encoding, string, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		return nil, "", fmt.Errorf("%w: empty name", ErrUnknownEncoding)
	}
	if alias, ok := aliases[label]; ok {
		label = alias
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		_, whatwg := charset.Lookup(label)
		if whatwg == "" {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
		label = whatwg
		// charset.Lookup wraps its result for HTML output, so fetch the
		// plain encoding by its canonical name.
		if enc, err = ianaindex.IANA.Encoding(whatwg); err != nil {
			enc, err = htmlindex.Get(whatwg)
		}
	}
	if err != nil || enc == nil {
		return nil, "", fmt.Errorf("%w: %q is not implemented", ErrUnknownEncoding, name)
	}

	canonical := label
	if n, err := ianaindex.MIME.Name(enc); err == nil && n != "" {
		canonical = strings.ToLower(n)
	} else if n, err := ianaindex.IANA.Name(enc); err == nil && n != "" {
		canonical = strings.ToLower(n)
	}
	return enc, canonical, nil
}

func codecFor(enc encoding.Encoding, canonical string) (*Codec, bool) {
	switch {
	case enc == unicode.UTF8 || canonical == "utf-8":
		return utf8Codec, true
	case canonical == "us-ascii":
		return asciiCodec, true
	}
	if cm, ok := enc.(*charmap.Charmap); ok {
		return &Codec{name: canonical, charmap: cm}, true
	}
	return nil, false
}

// MustLookup is like Lookup but panics on error.
func MustLookup(name string) *Codec {
	c, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the canonical lower-case name of the encoding.
func (c *Codec) Name() string {
	return c.name
}

// Decode converts b to Text. It never fails: bytes that are invalid in the
// encoding become escape placeholders, so Encode(Decode(b)) equals b.
func (c *Codec) Decode(b []byte) Text {
	t := make(Text, 0, len(b))
	if c.singleByte() {
		for _, x := range b {
			r := c.decodeByte(x)
			if r == utf8.RuneError {
				r = escapeBase + rune(x)
			}
			t = append(t, r)
		}
		return t
	}

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			t = append(t, escapeBase+rune(b[0]))
			b = b[1:]
			continue
		}
		t = append(t, r)
		b = b[size:]
	}
	return t
}

// DecodeString is Decode for string input.
func (c *Codec) DecodeString(s string) Text {
	return c.Decode([]byte(s))
}

// DecodeStrict converts b to a string, failing on the first invalid byte.
func (c *Codec) DecodeStrict(b []byte) (string, error) {
	if !c.singleByte() {
		if utf8.Valid(b) {
			return string(b), nil
		}
		for off := 0; off < len(b); {
			r, size := utf8.DecodeRune(b[off:])
			if r == utf8.RuneError && size <= 1 {
				return "", &DecodeError{Encoding: c.name, Offset: off, Byte: b[off]}
			}
			off += size
		}
		return "", &DecodeError{Encoding: c.name}
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for off, x := range b {
		r := c.decodeByte(x)
		if r == utf8.RuneError {
			return "", &DecodeError{Encoding: c.name, Offset: off, Byte: x}
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

// Encode converts t back to bytes. Escape placeholders are written back as the
// byte they stand for; any other surrogate or unmappable rune is an
// *EncodingError.
func (c *Codec) Encode(t Text) ([]byte, error) {
	out := make([]byte, 0, len(t))
	for i, r := range t {
		if b, ok := c.escapedByte(r); ok {
			out = append(out, b)
			continue
		}
		if utf16.IsSurrogate(r) {
			return nil, &EncodingError{Encoding: c.name, Index: i, Rune: r}
		}
		if !c.singleByte() {
			if !utf8.ValidRune(r) {
				return nil, &EncodingError{Encoding: c.name, Index: i, Rune: r}
			}
			out = utf8.AppendRune(out, r)
			continue
		}
		b, ok := c.encodeRune(r)
		if !ok {
			return nil, &EncodingError{Encoding: c.name, Index: i, Rune: r}
		}
		out = append(out, b)
	}
	return out, nil
}

// escapedByte reports whether r is a placeholder this codec writes back as a
// raw byte. U+DC80..U+DCFF always are; placeholders below that only when the
// byte is itself undecodable in this encoding.
func (c *Codec) escapedByte(r rune) (byte, bool) {
	if r < escapeBase || r > escapeMax {
		return 0, false
	}
	b := byte(r - escapeBase)
	if r >= escapeHigh {
		return b, true
	}
	if c.singleByte() && c.decodeByte(b) == utf8.RuneError {
		return b, true
	}
	return 0, false
}

func (c *Codec) singleByte() bool {
	return c.ascii || c.charmap != nil
}

// decodeByte returns utf8.RuneError for bytes the encoding leaves undefined.
func (c *Codec) decodeByte(x byte) rune {
	if c.ascii {
		if x >= utf8.RuneSelf {
			return utf8.RuneError
		}
		return rune(x)
	}
	return c.charmap.DecodeByte(x)
}

func (c *Codec) encodeRune(r rune) (byte, bool) {
	if c.ascii {
		return byte(r), r >= 0 && r < utf8.RuneSelf
	}
	return c.charmap.EncodeRune(r)
}

// FromPath decodes a percent-decoded URL path. URLs carry UTF-8 by
// convention; invalid bytes are escaped so that %FF addresses byte 0xFF.
func FromPath(p string) Text {
	return utf8Codec.DecodeString(p)
}
