package graphics

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/wadkit/pkg/formats"
)

// PatchLookup resolves a patch lump name to its decoded image.
type PatchLookup func(name string) (*image.RGBA, error)

// ComposeTexture builds a texture from its definition. Patches are resolved
// through pnames and painted at their origins in list order, later patches
// over earlier ones. A patch that cannot be resolved is reported through
// missing and skipped.
func ComposeTexture(def *formats.TextureDef, pnames *formats.PatchNames, lookup PatchLookup, missing func(patch string, err error)) (*image.RGBA, error) {
	if def.Width <= 0 || def.Height <= 0 {
		return nil, fmt.Errorf("%w: texture %q has size %dx%d", ErrImageNotFound, def.Name, def.Width, def.Height)
	}

	canvas := placeholder(int(def.Width), int(def.Height))
	for _, pl := range def.Patches {
		name, ok := pnames.Name(int(pl.Patch))
		if !ok {
			missing(fmt.Sprintf("#%d", pl.Patch), fmt.Errorf("%w: patch index %d not in PNAMES", ErrImageNotFound, pl.Patch))
			continue
		}

		src, err := resolvePatch(name, lookup)
		if err != nil {
			missing(name, err)
			continue
		}

		origin := image.Pt(int(pl.OriginX), int(pl.OriginY))
		dst := src.Bounds().Sub(src.Bounds().Min).Add(origin)
		draw.Draw(canvas, dst, src, src.Bounds().Min, draw.Over)
	}
	return canvas, nil
}

// resolvePatch tries the stored name first, then its upper-cased form.
func resolvePatch(name string, lookup PatchLookup) (*image.RGBA, error) {
	var firstErr error
	for _, n := range formats.LookupNames(name) {
		img, err := lookup(n)
		if err == nil {
			return img, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
