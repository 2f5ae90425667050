package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestCursor_Reads(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.WriteByte(0x7F)
	binary.Write(buf, binary.LittleEndian, int16(-2))
	binary.Write(buf, binary.LittleEndian, uint16(0xFFFF))
	binary.Write(buf, binary.LittleEndian, int32(-100000))
	binary.Write(buf, binary.LittleEndian, uint32(0xDEADBEEF))
	buf.WriteString("LINEDEFS")
	buf.WriteString("E1M1\x00\x00\x00\x00")

	c := New(buf.Bytes(), 0)
	if v := c.Uint8(); v != 0x7F {
		t.Errorf("Uint8: expected 0x7F, got 0x%x", v)
	}
	if v := c.Int16(); v != -2 {
		t.Errorf("Int16: expected -2, got %d", v)
	}
	if v := c.Uint16(); v != 0xFFFF {
		t.Errorf("Uint16: expected 0xFFFF, got 0x%x", v)
	}
	if v := c.Int32(); v != -100000 {
		t.Errorf("Int32: expected -100000, got %d", v)
	}
	if v := c.Uint32(); v != 0xDEADBEEF {
		t.Errorf("Uint32: expected 0xDEADBEEF, got 0x%x", v)
	}
	if v := c.Name8(); v != "LINEDEFS" {
		t.Errorf("Name8: expected LINEDEFS, got %q", v)
	}
	if v := c.Name8(); v != "E1M1" {
		t.Errorf("Name8: expected E1M1, got %q", v)
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
	if c.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", c.Remaining())
	}
}

func TestCursor_TruncationIsChecked(t *testing.T) {
	tests := []struct {
		name string
		read func(c *Cursor)
		size int
	}{
		{"uint8", func(c *Cursor) { c.Uint8() }, 0},
		{"uint16", func(c *Cursor) { c.Uint16() }, 1},
		{"int16", func(c *Cursor) { c.Int16() }, 1},
		{"uint32", func(c *Cursor) { c.Uint32() }, 3},
		{"int32", func(c *Cursor) { c.Int32() }, 3},
		{"name8", func(c *Cursor) { c.Name8() }, 7},
		{"bytes", func(c *Cursor) { c.Bytes(5) }, 4},
		{"skip", func(c *Cursor) { c.Skip(2) }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(make([]byte, tt.size), 0)
			tt.read(c)
			if !errors.Is(c.Err(), ErrTruncated) {
				t.Errorf("expected ErrTruncated, got %v", c.Err())
			}
		})
	}
}

func TestCursor_StickyError(t *testing.T) {
	c := New([]byte{1, 2, 3}, 0)
	c.Uint32()
	first := c.Err()
	if first == nil {
		t.Fatal("expected error")
	}

	// Later reads that would fit must not succeed after a failure.
	c.Seek(0)
	if v := c.Uint8(); v != 0 {
		t.Errorf("expected zero value after failure, got %d", v)
	}
	if c.Err() != first {
		t.Error("expected the first error to be kept")
	}
}

func TestCursor_NegativeOffset(t *testing.T) {
	c := New([]byte{1, 2, 3, 4}, -2)
	c.Uint16()
	if !errors.Is(c.Err(), ErrTruncated) {
		t.Errorf("expected ErrTruncated for negative offset, got %v", c.Err())
	}
}

func TestSplitTag(t *testing.T) {
	v16, leaf := SplitTag(uint16(0x8005), 15)
	if !leaf || v16 != 5 {
		t.Errorf("bit 15: expected (5, true), got (%d, %v)", v16, leaf)
	}

	v16, leaf = SplitTag(uint16(0x0005), 15)
	if leaf || v16 != 5 {
		t.Errorf("bit 15 clear: expected (5, false), got (%d, %v)", v16, leaf)
	}

	v32, ext := SplitTag(uint32(1<<30|42), 30)
	if !ext || v32 != 42 {
		t.Errorf("bit 30: expected (42, true), got (%d, %v)", v32, ext)
	}

	v32, ext = SplitTag(uint32(1<<31|42), 30)
	if ext || v32 != 1<<31|42 {
		t.Errorf("bit 31 tested at 30: expected untouched value, got (%d, %v)", v32, ext)
	}
}
