// Package cursor provides bounds-checked little-endian reads over an in-memory byte buffer.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/Faultbox/wadkit/pkg/encoding"
)

// ErrTruncated is returned when a read would run past the end of the buffer.
var ErrTruncated = errors.New("truncated data")

// Cursor reads fixed-width values from a byte slice, advancing an offset.
// The first failed read is sticky: later reads return zero values and Err
// reports the original failure.
type Cursor struct {
	buf []byte
	off int
	err error
}

// New returns a cursor over buf positioned at off.
func New(buf []byte, off int) *Cursor {
	return &Cursor{buf: buf, off: off}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes, or 0 when past the end.
func (c *Cursor) Remaining() int {
	if c.off >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.off
}

// Seek moves the read position. Bounds are checked by the next read.
func (c *Cursor) Seek(off int) {
	c.off = off
}

// Err returns the first error encountered, if any.
func (c *Cursor) Err() error {
	return c.err
}

// need checks that n bytes are available at the current offset.
func (c *Cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if c.off < 0 || n < 0 || c.off > len(c.buf)-n {
		c.err = fmt.Errorf("%w: need %d bytes at offset %d, buffer is %d bytes", ErrTruncated, n, c.off, len(c.buf))
		return false
	}
	return true
}

// Skip advances the offset by n bytes.
func (c *Cursor) Skip(n int) {
	if c.need(n) {
		c.off += n
	}
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.buf[c.off]
	c.off++
	return v
}

// Uint16 reads a little-endian uint16.
func (c *Cursor) Uint16() uint16 {
	if !c.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v
}

// Int16 reads a little-endian int16.
func (c *Cursor) Int16() int16 {
	return int16(c.Uint16())
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v
}

// Int32 reads a little-endian int32.
func (c *Cursor) Int32() int32 {
	return int32(c.Uint32())
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b
}

// Name8 reads an 8-byte NUL-padded lump name.
func (c *Cursor) Name8() string {
	b := c.Bytes(8)
	if b == nil {
		return ""
	}
	return encoding.FixedName(b)
}

// SplitTag separates a flag bit from a fixed-width field, returning the
// field with the bit cleared and whether the bit was set.
func SplitTag[T constraints.Unsigned](v T, bit uint) (T, bool) {
	mask := T(1) << bit
	return v &^ mask, v&mask != 0
}
