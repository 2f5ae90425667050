package graphics

import (
	"fmt"
	"image"

	"github.com/Faultbox/wadkit/pkg/formats"
)

// Flat dimensions.
const (
	FlatWidth  = 64
	FlatHeight = 64
	FlatSize   = FlatWidth * FlatHeight
)

// DecodeFlat converts a 4096-byte flat to RGBA. Source row y lands on
// image row 63-y. A nil palette yields a transparent placeholder.
func DecodeFlat(data []byte, pal *formats.Palette) (*image.RGBA, error) {
	if len(data) != FlatSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidFlatSize, len(data), FlatSize)
	}

	img := placeholder(FlatWidth, FlatHeight)
	if pal == nil {
		return img, nil
	}

	for y := 0; y < FlatHeight; y++ {
		row := data[y*FlatWidth : (y+1)*FlatWidth]
		dy := FlatHeight - 1 - y
		for x, idx := range row {
			img.SetRGBA(x, dy, pal[idx])
		}
	}
	return img, nil
}
