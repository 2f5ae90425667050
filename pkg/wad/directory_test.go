package wad

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestReadDirectory(t *testing.T) {
	data := buildWAD(MagicIWAD, []testLump{
		{"PLAYPAL", make([]byte, 768)},
		marker("E1M1"),
		{"things", []byte{1, 2}},
		{"A B", []byte{3}},
		{"FULLNAME", []byte{4}},
	})

	h, entries, err := ReadDirectory(data)
	if err != nil {
		t.Fatalf("ReadDirectory failed: %v", err)
	}
	if !h.IsIWAD() || h.LumpCount != 5 {
		t.Errorf("unexpected header %+v", h)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	want := []struct {
		name   string
		size   uint32
		marker bool
	}{
		{"PLAYPAL", 768, false},
		{"E1M1", 0, true},
		{"things", 2, false},
		{"A B", 1, false},
		{"FULLNAME", 1, false},
	}
	for i, w := range want {
		e := entries[i]
		if e.Name != w.name || e.Size != w.size || e.IsMarker() != w.marker || e.Index != i {
			t.Errorf("entry %d: expected %s/%d, got %+v", i, w.name, w.size, e)
		}
	}
	if entries[0].Offset != 12 {
		t.Errorf("expected first lump at offset 12, got %d", entries[0].Offset)
	}
}

func TestReadDirectory_Errors(t *testing.T) {
	valid := buildWAD(MagicPWAD, []testLump{{"DATA", []byte{1, 2, 3, 4}}})

	tests := []struct {
		name string
		data func() []byte
		want error
	}{
		{"empty", func() []byte { return nil }, ErrTruncatedArchive},
		{"short header", func() []byte { return valid[:10] }, ErrTruncatedArchive},
		{"bad magic", func() []byte {
			d := append([]byte(nil), valid...)
			copy(d, "JWAD")
			return d
		}, ErrInvalidMagic},
		{"negative count", func() []byte {
			d := append([]byte(nil), valid...)
			binary.LittleEndian.PutUint32(d[4:], 0xFFFFFFFF)
			return d
		}, ErrInvalidHeader},
		{"directory past end", func() []byte {
			d := append([]byte(nil), valid...)
			binary.LittleEndian.PutUint32(d[4:], 2)
			return d
		}, ErrTruncatedArchive},
		{"lump past end", func() []byte {
			d := append([]byte(nil), valid...)
			dir := binary.LittleEndian.Uint32(d[8:])
			binary.LittleEndian.PutUint32(d[dir+4:], 1000)
			return d
		}, ErrTruncatedArchive},
		{"negative lump offset", func() []byte {
			d := append([]byte(nil), valid...)
			dir := binary.LittleEndian.Uint32(d[8:])
			binary.LittleEndian.PutUint32(d[dir:], 0xFFFFFFF0)
			return d
		}, ErrTruncatedArchive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadDirectory(tt.data())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
