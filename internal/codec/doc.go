/*
Package codec converts between raw filesystem bytes and text.

Bytes that are not valid in the configured encoding are not an error on the
way in: each one is carried as the placeholder code point U+DC00+byte and is
written back unchanged on the way out. File names and file contents therefore
survive a read-modify-write cycle through JSON even when they are not valid
text.

	c, _ := codec.Lookup("latin1")
	t := c.Decode(raw)       // never fails
	b, err := c.Encode(t)    // b == raw
*/
package codec
