package wad

import (
	"fmt"

	"github.com/Faultbox/wadkit/pkg/cursor"
)

// Archive magics.
const (
	MagicIWAD = "IWAD"
	MagicPWAD = "PWAD"
)

const (
	headerSize = 12
	entrySize  = 16
)

// Header is the fixed WAD header.
type Header struct {
	Magic     string
	LumpCount int32
	DirOffset int32
}

// IsIWAD reports whether the archive is a main game archive.
func (h Header) IsIWAD() bool { return h.Magic == MagicIWAD }

// Entry is one directory record.
type Entry struct {
	Name   string // Up to 8 characters, case-sensitive
	Offset uint32
	Size   uint32
	Index  int // Position in the directory
}

// IsMarker reports whether the entry carries no data.
func (e Entry) IsMarker() bool { return e.Size == 0 }

// ReadDirectory parses the header and directory of a WAD held in buf.
// Every entry's byte range is checked against the buffer.
func ReadDirectory(buf []byte) (Header, []Entry, error) {
	var h Header

	c := cursor.New(buf, 0)
	magic := c.Bytes(4)
	h.LumpCount = c.Int32()
	h.DirOffset = c.Int32()
	if err := c.Err(); err != nil {
		return h, nil, fmt.Errorf("reading header: %w", err)
	}

	h.Magic = string(magic)
	if h.Magic != MagicIWAD && h.Magic != MagicPWAD {
		return h, nil, fmt.Errorf("%w: %q", ErrInvalidMagic, h.Magic)
	}
	if h.LumpCount < 0 || h.DirOffset < 0 {
		return h, nil, fmt.Errorf("%w: %d lumps at offset %d", ErrInvalidHeader, h.LumpCount, h.DirOffset)
	}
	if int64(h.DirOffset)+int64(h.LumpCount)*entrySize > int64(len(buf)) {
		return h, nil, fmt.Errorf("%w: directory of %d entries at offset %d, archive is %d bytes",
			ErrTruncatedArchive, h.LumpCount, h.DirOffset, len(buf))
	}

	entries := make([]Entry, h.LumpCount)
	c.Seek(int(h.DirOffset))
	for i := range entries {
		off := c.Int32()
		size := c.Int32()
		name := c.Name8()
		if err := c.Err(); err != nil {
			return h, nil, fmt.Errorf("reading directory entry %d: %w", i, err)
		}
		if off < 0 || size < 0 || int64(off)+int64(size) > int64(len(buf)) {
			return h, nil, fmt.Errorf("%w: lump %d %q spans [%d, %d), archive is %d bytes",
				ErrTruncatedArchive, i, name, off, int64(off)+int64(size), len(buf))
		}
		entries[i] = Entry{Name: name, Offset: uint32(off), Size: uint32(size), Index: i}
	}
	return h, entries, nil
}
