package graphics

import (
	"fmt"
	"image"

	"github.com/Faultbox/wadkit/pkg/cursor"
	"github.com/Faultbox/wadkit/pkg/formats"
)

// postEnd terminates a patch column.
const postEnd = 0xFF

// maxPatchSide bounds patch dimensions to reject garbage headers.
const maxPatchSide = 4096

// PatchHeader is the fixed header of a patch lump.
type PatchHeader struct {
	Width, Height int16
	LeftOffset    int16 // Pixels left of the origin
	TopOffset     int16 // Pixels above the origin
}

// Patch is a decoded patch.
type Patch struct {
	PatchHeader
	Image *image.RGBA
}

// ReadPatchHeader reads and validates a patch header.
func ReadPatchHeader(data []byte) (PatchHeader, error) {
	c := cursor.New(data, 0)
	h := PatchHeader{
		Width:      c.Int16(),
		Height:     c.Int16(),
		LeftOffset: c.Int16(),
		TopOffset:  c.Int16(),
	}
	if err := c.Err(); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	if h.Width <= 0 || h.Height <= 0 || h.Width > maxPatchSide || h.Height > maxPatchSide {
		return h, fmt.Errorf("%w: size %dx%d", ErrInvalidPatch, h.Width, h.Height)
	}
	return h, nil
}

// DecodePatch converts a column-encoded patch to RGBA. Every read is bounds
// checked and rows outside the image are clipped. A nil palette yields a
// transparent placeholder of the patch size.
func DecodePatch(data []byte, pal *formats.Palette) (*Patch, error) {
	h, err := ReadPatchHeader(data)
	if err != nil {
		return nil, err
	}

	p := &Patch{PatchHeader: h, Image: placeholder(int(h.Width), int(h.Height))}
	if pal == nil {
		return p, nil
	}

	c := cursor.New(data, 8)
	offsets := make([]uint32, h.Width)
	for i := range offsets {
		offsets[i] = c.Uint32()
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%w: column offsets: %w", ErrInvalidPatch, err)
	}

	height := int(h.Height)
	for x, off := range offsets {
		if off > uint32(len(data)) {
			return nil, fmt.Errorf("%w: column %d offset %d past end", ErrInvalidPatch, x, off)
		}
		c.Seek(int(off))
		for {
			top := c.Uint8()
			if c.Err() != nil || top == postEnd {
				break
			}
			n := int(c.Uint8())
			c.Skip(1)
			pixels := c.Bytes(n)
			c.Skip(1)
			if c.Err() != nil {
				break
			}
			for k, idx := range pixels {
				y := int(top) + k
				if y >= height {
					break
				}
				p.Image.SetRGBA(x, y, pal[idx])
			}
		}
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%w: column %d: %w", ErrInvalidPatch, x, err)
		}
	}
	return p, nil
}
