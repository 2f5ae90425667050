// Package encoding provides text encoding utilities for WAD lump names and text-mode screens.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// FixedName converts a fixed-size NUL-padded name field to a string.
// The name ends at the first NUL byte or at the end of the field.
// Case and whitespace are preserved as stored.
func FixedName(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data)
}

// NameToFixed converts a name to a NUL-padded field of the given size.
// Names longer than size are truncated.
func NameToFixed(name string, size int) []byte {
	result := make([]byte, size)
	copy(result, name)
	return result
}

// CP437ToUTF8 converts DOS code page 437 bytes to a UTF-8 string.
// Returns the raw bytes as a string if conversion fails.
func CP437ToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.CodePage437.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// CP437Rune returns the Unicode rune for a single code page 437 byte.
func CP437Rune(b byte) rune {
	return charmap.CodePage437.DecodeByte(b)
}
