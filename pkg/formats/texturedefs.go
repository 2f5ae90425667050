package formats

import (
	"fmt"

	"github.com/Faultbox/wadkit/pkg/cursor"
)

// PatchPlacementSize is the on-disk size of one patch placement.
const PatchPlacementSize = 10

// PatchPlacement positions one patch inside a texture.
type PatchPlacement struct {
	OriginX, OriginY int16
	Patch            int16 // Index into PNAMES
	StepDir          int16 // Unused
	ColorMap         int16 // Unused
}

// TextureDef is a named composite of patches.
type TextureDef struct {
	Name    string
	Masked  bool
	Width   int16
	Height  int16
	Patches []PatchPlacement
}

// TextureDefinitions is a decoded TEXTUREn lump.
type TextureDefinitions struct {
	Table    string // Lump name, e.g. TEXTURE1
	Textures []TextureDef
	// PatchNames is the PNAMES table the patch indexes refer to. Archives
	// bind it after loading; nil means the caller's current PNAMES.
	PatchNames *PatchNames
	index      map[string]int
}

// Kind implements Lump.
func (*TextureDefinitions) Kind() Kind { return KindTextureDefinitions }

// Len implements Lump.
func (t *TextureDefinitions) Len() int { return len(t.Textures) }

// Find returns the definition named name. Within one table a later
// duplicate replaces an earlier one.
func (t *TextureDefinitions) Find(name string) (*TextureDef, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.Textures[i], true
}

// FindTexture looks name up in tables from last to first, so a table
// loaded later overrides earlier ones.
func FindTexture(tables []*TextureDefinitions, name string) (*TextureDef, bool) {
	_, def, ok := FindTextureTable(tables, name)
	return def, ok
}

// FindTextureTable is FindTexture that also returns the defining table.
func FindTextureTable(tables []*TextureDefinitions, name string) (*TextureDefinitions, *TextureDef, bool) {
	for i := len(tables) - 1; i >= 0; i-- {
		if def, ok := tables[i].Find(name); ok {
			return tables[i], def, true
		}
	}
	return nil, nil, false
}

// ParseTextureDefinitions parses a TEXTURE1/TEXTURE2 lump.
func ParseTextureDefinitions(table string, data []byte) (*TextureDefinitions, error) {
	c := cursor.New(data, 0)
	count := c.Uint32()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if int64(count)*4 > int64(c.Remaining()) {
		return nil, fmt.Errorf("%w: %s declares %d textures in %d bytes", ErrInvalidTextureTable, table, count, len(data))
	}

	offsets := make([]int32, count)
	for i := range offsets {
		offsets[i] = c.Int32()
	}

	defs := &TextureDefinitions{
		Table:    table,
		Textures: make([]TextureDef, count),
		index:    make(map[string]int, count),
	}
	for i, off := range offsets {
		if off < 0 {
			return nil, fmt.Errorf("%w: %s texture %d at negative offset %d", ErrInvalidTextureTable, table, i, off)
		}
		c.Seek(int(off))

		def := &defs.Textures[i]
		def.Name = c.Name8()
		def.Masked = c.Int32() != 0
		def.Width = c.Int16()
		def.Height = c.Int16()
		c.Skip(4) // column directory, obsolete
		n := c.Int16()
		if n < 0 {
			return nil, fmt.Errorf("%w: %s texture %q has %d patches", ErrInvalidTextureTable, table, def.Name, n)
		}

		def.Patches = make([]PatchPlacement, n)
		for j := range def.Patches {
			def.Patches[j] = PatchPlacement{
				OriginX:  c.Int16(),
				OriginY:  c.Int16(),
				Patch:    c.Int16(),
				StepDir:  c.Int16(),
				ColorMap: c.Int16(),
			}
		}
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s texture %d: %w", table, i, err)
		}
		defs.index[def.Name] = i
	}
	return defs, nil
}
