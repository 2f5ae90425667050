package formats

import (
	"image/color"

	"github.com/Faultbox/wadkit/pkg/cursor"
)

// Palette and colormap sizes.
const (
	PaletteColors = 256
	PaletteSize   = PaletteColors * 3
	ColorMapSize  = 256
)

// Palette maps a palette index to an opaque color.
type Palette [PaletteColors]color.RGBA

// Palettes is a decoded PLAYPAL lump. Only palette 0 is used for images;
// the rest are damage and pickup flashes.
type Palettes struct {
	Items []Palette
}

// Kind implements Lump.
func (*Palettes) Kind() Kind { return KindPalettes }

// Len implements Lump.
func (p *Palettes) Len() int { return len(p.Items) }

// Default returns palette 0, or nil when the lump holds no palette.
func (p *Palettes) Default() *Palette {
	if p == nil || len(p.Items) == 0 {
		return nil
	}
	return &p.Items[0]
}

// ParsePalettes parses a PLAYPAL lump.
func ParsePalettes(data []byte) (*Palettes, error) {
	pals := &Palettes{Items: make([]Palette, len(data)/PaletteSize)}
	c := cursor.New(data, 0)
	for i := range pals.Items {
		for j := range pals.Items[i] {
			rgb := c.Bytes(3)
			if rgb == nil {
				return nil, c.Err()
			}
			pals.Items[i][j] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
		}
	}
	return pals, nil
}

// ColorMap remaps palette indexes for one light level.
type ColorMap [ColorMapSize]byte

// ColorMaps is a decoded COLORMAP lump. Maps 0-31 go from full bright
// to dark, 32 is the invulnerability map.
type ColorMaps struct {
	Items []ColorMap
}

// Kind implements Lump.
func (*ColorMaps) Kind() Kind { return KindColorMaps }

// Len implements Lump.
func (m *ColorMaps) Len() int { return len(m.Items) }

// Apply remaps index through map n. Out of range maps leave index unchanged.
func (m *ColorMaps) Apply(n int, index byte) byte {
	if n < 0 || n >= len(m.Items) {
		return index
	}
	return m.Items[n][index]
}

// Lit returns pal with every index remapped through map n, so images
// decoded with it are shaded for that light level. It reports false for
// a nil palette or an out of range map.
func (m *ColorMaps) Lit(pal *Palette, n int) (*Palette, bool) {
	if m == nil || pal == nil || n < 0 || n >= len(m.Items) {
		return nil, false
	}
	out := new(Palette)
	for i := range out {
		out[i] = pal[m.Items[n][i]]
	}
	return out, true
}

// LightColorMap returns the colormap for a sector light level, clamped
// to 0-255. Full light uses map 0 and each 8 steps down darken by one map.
func LightColorMap(light int) int {
	light = max(0, min(255, light))
	return (255 - light) >> 3
}

// ParseColorMaps parses a COLORMAP lump.
func ParseColorMaps(data []byte) (*ColorMaps, error) {
	maps := &ColorMaps{Items: make([]ColorMap, len(data)/ColorMapSize)}
	for i := range maps.Items {
		copy(maps.Items[i][:], data[i*ColorMapSize:])
	}
	return maps, nil
}
