// Package graphics decodes palette-indexed WAD images into RGBA.
//
// Flats are raw 64x64 index grids, patches are column-encoded sprites and
// wall pieces, and textures are composites of patches placed by a
// TEXTUREn definition.
package graphics

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/wadkit/pkg/formats"
)

// Kind is an image type.
type Kind int

// Image kinds.
const (
	KindFlat Kind = iota
	KindPatch
	KindTexture
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindPatch:
		return "patch"
	case KindTexture:
		return "texture"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Errors.
var (
	ErrImageNotFound   = errors.New("image not found")
	ErrInvalidFlatSize = errors.New("invalid flat size")
	ErrInvalidPatch    = errors.New("invalid patch")
)

// Source supplies the lumps images are built from. Archives and archive
// stacks implement it.
type Source interface {
	// Palette returns palette 0, or nil when the source has no PLAYPAL.
	Palette() *formats.Palette
	// PatchNames returns the PNAMES table, or nil.
	PatchNames() *formats.PatchNames
	// TextureTables returns TEXTUREn tables in load order.
	TextureTables() []*formats.TextureDefinitions
	// LumpData returns the raw bytes of the named lump.
	LumpData(name string) ([]byte, bool)
}

type paletteSource struct {
	Source
	pal *formats.Palette
}

func (s paletteSource) Palette() *formats.Palette { return s.pal }

// WithPalette returns src with its palette replaced by pal, for example a
// palette lit through a COLORMAP. Images are cached per Cache, so use a
// separate Cache for each palette.
func WithPalette(src Source, pal *formats.Palette) Source {
	return paletteSource{Source: src, pal: pal}
}

// placeholder returns a fully transparent image.
func placeholder(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
