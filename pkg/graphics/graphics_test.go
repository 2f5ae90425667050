package graphics

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/Faultbox/wadkit/pkg/formats"
)

// testPalette maps index i to (i, 255-i, i/2).
func testPalette() *formats.Palette {
	var pal formats.Palette
	for i := range pal {
		pal[i] = color.RGBA{uint8(i), uint8(255 - i), uint8(i / 2), 255}
	}
	return &pal
}

type post struct {
	top    byte
	pixels []byte
}

// createTestPatch builds a patch lump. A nil column is a single end marker.
func createTestPatch(width, height int16, columns [][]post) []byte {
	body := new(bytes.Buffer)
	offsets := make([]uint32, len(columns))
	base := 8 + 4*len(columns)
	for i, col := range columns {
		offsets[i] = uint32(base + body.Len())
		for _, p := range col {
			body.WriteByte(p.top)
			body.WriteByte(byte(len(p.pixels)))
			body.WriteByte(0)
			body.Write(p.pixels)
			body.WriteByte(0)
		}
		body.WriteByte(postEnd)
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, []int16{width, height, 0, 0})
	binary.Write(buf, binary.LittleEndian, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// memSource is an in-memory Source.
type memSource struct {
	pal    *formats.Palette
	pnames *formats.PatchNames
	tables []*formats.TextureDefinitions
	lumps  map[string][]byte

	mu    sync.Mutex
	reads map[string]int
}

func (s *memSource) Palette() *formats.Palette                   { return s.pal }
func (s *memSource) PatchNames() *formats.PatchNames             { return s.pnames }
func (s *memSource) TextureTables() []*formats.TextureDefinitions { return s.tables }

func (s *memSource) LumpData(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reads == nil {
		s.reads = make(map[string]int)
	}
	s.reads[name]++
	data, ok := s.lumps[name]
	return data, ok
}

func TestDecodeFlat_FlipsRows(t *testing.T) {
	data := make([]byte, FlatSize)
	for i := range data {
		data[i] = byte(i / FlatWidth) // row index
	}
	pal := testPalette()

	img, err := DecodeFlat(data, pal)
	if err != nil {
		t.Fatalf("DecodeFlat failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 64) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	for y := 0; y < FlatHeight; y++ {
		for x := 0; x < FlatWidth; x++ {
			want := pal[FlatHeight-1-y]
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
	// Source row 0 lands on image row 63.
	if img.RGBAAt(0, 63) != pal[0] {
		t.Errorf("expected row 63 to hold source row 0")
	}
}

func TestDecodeFlat_InvalidSize(t *testing.T) {
	for _, n := range []int{0, 4095, 4097, 8192} {
		_, err := DecodeFlat(make([]byte, n), testPalette())
		if !errors.Is(err, ErrInvalidFlatSize) {
			t.Errorf("%d bytes: expected ErrInvalidFlatSize, got %v", n, err)
		}
	}
}

func TestDecodeFlat_NoPalette(t *testing.T) {
	img, err := DecodeFlat(make([]byte, FlatSize), nil)
	if err != nil {
		t.Fatalf("DecodeFlat failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.RGBAAt(10, 10).A != 0 {
		t.Error("expected a transparent 64x64 placeholder")
	}
}

func TestDecodePatch(t *testing.T) {
	data := createTestPatch(3, 4, [][]post{
		{{top: 0, pixels: []byte{10, 11}}, {top: 3, pixels: []byte{12}}},
		nil, // end marker first: nothing painted
		{{top: 2, pixels: []byte{20, 21, 22, 23}}}, // runs past the bottom
	})
	pal := testPalette()

	p, err := DecodePatch(data, pal)
	if err != nil {
		t.Fatalf("DecodePatch failed: %v", err)
	}
	if p.Width != 3 || p.Height != 4 {
		t.Fatalf("unexpected size %dx%d", p.Width, p.Height)
	}

	img := p.Image
	checks := []struct {
		x, y   int
		index  int
		opaque bool
	}{
		{0, 0, 10, true},
		{0, 1, 11, true},
		{0, 2, 0, false},
		{0, 3, 12, true},
		{2, 2, 20, true},
		{2, 3, 21, true},
	}
	for _, c := range checks {
		got := img.RGBAAt(c.x, c.y)
		if !c.opaque {
			if got.A != 0 {
				t.Errorf("(%d,%d): expected transparent, got %v", c.x, c.y, got)
			}
			continue
		}
		if got != pal[c.index] {
			t.Errorf("(%d,%d): expected %v, got %v", c.x, c.y, pal[c.index], got)
		}
	}

	for y := 0; y < 4; y++ {
		if img.RGBAAt(1, y).A != 0 {
			t.Errorf("column 1 row %d should be empty", y)
		}
	}
}

func TestDecodePatch_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{1, 0, 1}},
		{"zero width", createTestPatch(0, 4, nil)},
		{"offset past end", func() []byte {
			d := createTestPatch(1, 1, [][]post{nil})
			binary.LittleEndian.PutUint32(d[8:], 1000)
			return d
		}()},
		{"unterminated column", func() []byte {
			d := createTestPatch(1, 8, [][]post{{{top: 0, pixels: []byte{1, 2, 3}}}})
			return d[:len(d)-3]
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePatch(tt.data, testPalette())
			if !errors.Is(err, ErrInvalidPatch) {
				t.Errorf("expected ErrInvalidPatch, got %v", err)
			}
		})
	}
}

func solidPatch(w, h int16, index byte) []byte {
	cols := make([][]post, w)
	for i := range cols {
		px := bytes.Repeat([]byte{index}, int(h))
		cols[i] = []post{{top: 0, pixels: px}}
	}
	return createTestPatch(w, h, cols)
}

func textureTable(t *testing.T, defs ...formats.TextureDef) *formats.TextureDefinitions {
	t.Helper()

	header := new(bytes.Buffer)
	body := new(bytes.Buffer)
	binary.Write(header, binary.LittleEndian, uint32(len(defs)))
	base := 4 + 4*len(defs)
	for _, d := range defs {
		binary.Write(header, binary.LittleEndian, int32(base+body.Len()))
		var name [8]byte
		copy(name[:], d.Name)
		binary.Write(body, binary.LittleEndian, name)
		binary.Write(body, binary.LittleEndian, int32(0))
		binary.Write(body, binary.LittleEndian, d.Width)
		binary.Write(body, binary.LittleEndian, d.Height)
		binary.Write(body, binary.LittleEndian, int32(0))
		binary.Write(body, binary.LittleEndian, int16(len(d.Patches)))
		for _, p := range d.Patches {
			binary.Write(body, binary.LittleEndian, p)
		}
	}

	table, err := formats.ParseTextureDefinitions("TEXTURE1", append(header.Bytes(), body.Bytes()...))
	if err != nil {
		t.Fatalf("building texture table: %v", err)
	}
	return table
}

func TestCache_TextureComposite(t *testing.T) {
	pal := testPalette()
	src := &memSource{
		pal:    pal,
		pnames: &formats.PatchNames{Names: []string{"WALLA", "wallb"}},
		lumps: map[string][]byte{
			"WALLA": solidPatch(4, 4, 1),
			"WALLB": solidPatch(2, 2, 2), // PNAMES lists it in lower case
		},
	}
	src.tables = []*formats.TextureDefinitions{
		textureTable(t, formats.TextureDef{Name: "MIXED", Width: 6, Height: 4, Patches: []formats.PatchPlacement{
			{OriginX: 0, OriginY: 0, Patch: 0},
			{OriginX: 3, OriginY: 1, Patch: 1}, // overlaps WALLA column 3
			{OriginX: 0, OriginY: 0, Patch: 7}, // not in PNAMES
		}}),
	}

	cache := NewCache(src)
	img, err := cache.Texture("MIXED")
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	if img.RGBAAt(0, 0) != pal[1] {
		t.Errorf("expected WALLA at (0,0), got %v", img.RGBAAt(0, 0))
	}
	if img.RGBAAt(3, 1) != pal[2] {
		t.Errorf("expected later WALLB over WALLA at (3,1), got %v", img.RGBAAt(3, 1))
	}
	if img.RGBAAt(3, 0) != pal[1] {
		t.Errorf("expected WALLA at (3,0), got %v", img.RGBAAt(3, 0))
	}
	if img.RGBAAt(5, 3).A != 0 {
		t.Errorf("expected uncovered pixel to stay transparent, got %v", img.RGBAAt(5, 3))
	}
}

func TestCache_Memoizes(t *testing.T) {
	flat := make([]byte, FlatSize)
	src := &memSource{pal: testPalette(), lumps: map[string][]byte{"FLOOR0_1": flat}}
	cache := NewCache(src)

	var wg sync.WaitGroup
	results := make([]*image.RGBA, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := cache.Flat("FLOOR0_1")
			if err != nil {
				t.Errorf("Flat failed: %v", err)
			}
			results[i] = img
		}(i)
	}
	wg.Wait()

	for i, img := range results {
		if img != results[0] {
			t.Errorf("result %d is a different image", i)
		}
	}
	if src.reads["FLOOR0_1"] != 1 {
		t.Errorf("expected one lump read, got %d", src.reads["FLOOR0_1"])
	}

	// Failures are memoized too.
	for i := 0; i < 3; i++ {
		if _, err := cache.Flat("NOPE"); !errors.Is(err, ErrImageNotFound) {
			t.Errorf("expected ErrImageNotFound, got %v", err)
		}
	}
	if src.reads["NOPE"] != 1 {
		t.Errorf("expected one lookup of NOPE, got %d", src.reads["NOPE"])
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 cached keys, got %d", cache.Len())
	}
}

func TestCache_KindsAreSeparate(t *testing.T) {
	src := &memSource{pal: testPalette(), lumps: map[string][]byte{
		"SHARED": solidPatch(2, 2, 5),
	}}
	cache := NewCache(src)

	if _, err := cache.Patch("SHARED"); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	// The same bytes are not a valid flat.
	if _, err := cache.Flat("SHARED"); !errors.Is(err, ErrInvalidFlatSize) {
		t.Errorf("expected ErrInvalidFlatSize, got %v", err)
	}
	if _, err := cache.Image(KindTexture, "SHARED"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
}

func TestCache_NoPalettePlaceholders(t *testing.T) {
	src := &memSource{
		pnames: &formats.PatchNames{Names: []string{"WALLA"}},
		lumps:  map[string][]byte{"WALLA": solidPatch(4, 4, 1)},
	}
	src.tables = []*formats.TextureDefinitions{
		textureTable(t, formats.TextureDef{Name: "PLAIN", Width: 8, Height: 8, Patches: []formats.PatchPlacement{{Patch: 0}}}),
	}
	cache := NewCache(src)

	img, err := cache.Texture("PLAIN")
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("unexpected placeholder size %v", img.Bounds())
	}
	for _, px := range []image.Point{{0, 0}, {3, 3}, {7, 7}} {
		if img.RGBAAt(px.X, px.Y).A != 0 {
			t.Errorf("expected transparent pixel at %v", px)
		}
	}
}

func TestWithPalette(t *testing.T) {
	src := &memSource{
		pal:   testPalette(),
		lumps: map[string][]byte{"FLOOR": bytes.Repeat([]byte{5}, FlatSize)},
	}
	maps := &formats.ColorMaps{Items: make([]formats.ColorMap, 2)}
	for i := range maps.Items[1] {
		maps.Items[1][i] = byte(255 - i)
	}
	lit, ok := maps.Lit(src.pal, 1)
	if !ok {
		t.Fatal("expected lit palette")
	}

	dark, err := NewCache(WithPalette(src, lit)).Flat("FLOOR")
	if err != nil {
		t.Fatalf("Flat failed: %v", err)
	}
	if got := dark.RGBAAt(0, 0); got != src.pal[250] {
		t.Errorf("expected remapped color %v, got %v", src.pal[250], got)
	}

	plain, err := NewCache(src).Flat("FLOOR")
	if err != nil {
		t.Fatalf("Flat failed: %v", err)
	}
	if got := plain.RGBAAt(0, 0); got != src.pal[5] {
		t.Errorf("expected unlit color %v, got %v", src.pal[5], got)
	}
}

func TestScale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})

	if Scale(img, 1) != img {
		t.Error("factor 1 should return the input")
	}

	big := Scale(img, 3)
	if big.Bounds() != image.Rect(0, 0, 6, 3) {
		t.Fatalf("unexpected bounds %v", big.Bounds())
	}
	if big.RGBAAt(2, 2) != (color.RGBA{255, 0, 0, 255}) || big.RGBAAt(3, 0) != (color.RGBA{0, 0, 255, 255}) {
		t.Error("unexpected nearest-neighbour sampling")
	}
}

func TestWriteFile(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	dir := t.TempDir()

	for _, format := range []string{"png", "bmp"} {
		path, err := WriteFile(dir, "FLAT", format, img)
		if err != nil {
			t.Fatalf("%s: WriteFile failed: %v", format, err)
		}
		if path == "" {
			t.Errorf("%s: empty path", format)
		}
	}

	if _, err := WriteFile(dir, "FLAT", "gif", img); err == nil {
		t.Error("expected error for unsupported format")
	}
}
