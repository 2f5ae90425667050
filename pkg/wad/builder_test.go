package wad

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type testLump struct {
	name string
	data []byte
}

// marker returns a zero-size lump.
func marker(name string) testLump { return testLump{name: name} }

// buildWAD lays out a header, the lump data, then the directory.
func buildWAD(magic string, lumps []testLump) []byte {
	body := new(bytes.Buffer)
	offsets := make([]int32, len(lumps))
	for i, l := range lumps {
		offsets[i] = int32(12 + body.Len())
		body.Write(l.data)
	}

	buf := new(bytes.Buffer)
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, int32(len(lumps)))
	binary.Write(buf, binary.LittleEndian, int32(12+body.Len()))
	buf.Write(body.Bytes())
	for i, l := range lumps {
		binary.Write(buf, binary.LittleEndian, offsets[i])
		binary.Write(buf, binary.LittleEndian, int32(len(l.data)))
		var name [8]byte
		copy(name[:], l.name)
		buf.Write(name[:])
	}
	return buf.Bytes()
}

// le writes values little-endian.
func le(values ...any) []byte {
	buf := new(bytes.Buffer)
	for _, v := range values {
		if s, ok := v.(string); ok {
			buf.WriteString(s)
			continue
		}
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func name8(s string) [8]byte {
	var b [8]byte
	copy(b[:], s)
	return b
}

// twoRoomOptions varies the two-room fixture.
type twoRoomOptions struct {
	minisegFirst  bool   // First GL seg of subsector 1 is a miniseg
	noGL          bool   // Omit GL lumps
	badSideSector uint16 // Sector of sidedef 7, 1 when zero
}

// twoRoomLevel returns the lumps of a level with two 64x64 rooms side by
// side: sector 0 spans x 0-64 and sector 1 spans x 64-128, joined by the
// two-sided line 1 at x=64.
//
//	v3 ---- v2 ---- v5
//	|   s0  |L1  s1  |
//	v0 ---- v1 ---- v4
func twoRoomLevel(opts twoRoomOptions) []testLump {
	things := le(
		int16(32), int16(32), int16(0), uint16(1), uint16(7),
		int16(96), int16(32), int16(90), uint16(3001), uint16(7),
		int16(500), int16(500), int16(0), uint16(2014), uint16(7),
	)

	vertexes := le(
		int16(0), int16(0), // v0
		int16(64), int16(0), // v1
		int16(64), int16(64), // v2
		int16(0), int16(64), // v3
		int16(128), int16(0), // v4
		int16(128), int16(64), // v5
	)

	const none = uint16(0xFFFF)
	line := func(start, end, flags, front, back uint16) []byte {
		return le(start, end, flags, uint16(0), uint16(0), front, back)
	}
	var linedefs []byte
	for _, l := range [][]byte{
		line(0, 1, 1, 0, none),
		line(1, 2, 4, 1, 2),
		line(2, 3, 1, 3, none),
		line(3, 0, 1, 4, none),
		line(1, 4, 1, 5, none),
		line(4, 5, 1, 6, none),
		line(5, 2, 1, 7, none),
	} {
		linedefs = append(linedefs, l...)
	}

	lastSector := uint16(1)
	if opts.badSideSector != 0 {
		lastSector = opts.badSideSector
	}
	var sidedefs []byte
	for _, sec := range []uint16{0, 0, 1, 0, 0, 1, 1, lastSector} {
		sidedefs = append(sidedefs, le(int16(0), int16(0), name8("-"), name8("STARTAN3"), name8("-"), sec)...)
	}

	sectors := le(
		int16(0), int16(128), name8("FLOOR4_8"), name8("CEIL3_5"), int16(160), uint16(0), uint16(0),
		int16(16), int16(128), name8("FLOOR0_1"), name8("CEIL3_5"), int16(192), uint16(0), uint16(0),
	)

	// One node splitting at x=64; +X is on its right.
	nodes := le(
		int16(64), int16(0), int16(0), int16(64),
		int16(64), int16(0), int16(64), int16(128),
		int16(64), int16(0), int16(0), int16(64),
		uint16(0x8000|1), uint16(0x8000|0),
	)
	segs := le(
		uint16(0), uint16(1), int16(0), uint16(0), uint16(0), int16(0),
		uint16(1), uint16(4), int16(0), uint16(4), uint16(0), int16(0),
	)
	ssectors := le(uint16(1), uint16(0), uint16(1), uint16(1))

	lumps := []testLump{
		{"THINGS", things},
		{"LINEDEFS", linedefs},
		{"SIDEDEFS", sidedefs},
		{"VERTEXES", vertexes},
		{"SEGS", segs},
		{"SSECTORS", ssectors},
		{"NODES", nodes},
		{"SECTORS", sectors},
		{"REJECT", []byte{0}},
		{"BLOCKMAP", []byte{0, 0}},
	}
	if opts.noGL {
		return lumps
	}

	glseg := func(start, end, line, dir uint16) []byte {
		return le(start, end, line, dir, none)
	}
	firstLine, firstDir := uint16(1), uint16(1)
	if opts.minisegFirst {
		firstLine, firstDir = none, 0
	}
	var glsegs []byte
	for _, s := range [][]byte{
		// Subsector 0: the left room.
		glseg(0, 1, 0, 0),
		glseg(1, 2, 1, 0),
		glseg(2, 3, 2, 0),
		glseg(3, 0, 3, 0),
		// Subsector 1: the right room, starting on the back of line 1.
		glseg(2, 1, firstLine, firstDir),
		glseg(1, 4, 4, 0),
		glseg(4, 5, 5, 0),
		glseg(5, 2, 6, 0),
	} {
		glsegs = append(glsegs, s...)
	}

	return append(lumps,
		testLump{"GL_VERT", le("gNd2")},
		testLump{"GL_SEGS", glsegs},
		testLump{"GL_SSECT", le(uint16(4), uint16(0), uint16(4), uint16(4))},
	)
}

// parseTestWAD parses lumps into an archive.
func parseTestWAD(t *testing.T, magic string, lumps []testLump) *Archive {
	t.Helper()
	a, err := ParseArchive("test.wad", buildWAD(magic, lumps))
	if err != nil {
		t.Fatalf("ParseArchive failed: %v", err)
	}
	return a
}

// loadTwoRooms parses a WAD holding one two-room level and loads it.
func loadTwoRooms(t *testing.T, opts twoRoomOptions) *LevelMap {
	t.Helper()
	lumps := append([]testLump{marker("MAP01")}, twoRoomLevel(opts)...)
	a := parseTestWAD(t, MagicPWAD, lumps)
	m, err := a.Level("MAP01")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return m
}
