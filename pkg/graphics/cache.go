package graphics

import (
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/formats"
)

type cacheKey struct {
	kind Kind
	name string
}

type cacheEntry struct {
	once sync.Once
	img  *image.RGBA
	err  error
}

// Cache memoizes decoded images by kind and name. Each key is decoded at
// most once, including failures, and the result is shared read-only.
// Safe for concurrent use.
type Cache struct {
	src Source

	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry

	warnOnce sync.Once
}

// NewCache returns an empty cache over src.
func NewCache(src Source) *Cache {
	return &Cache{
		src:     src,
		entries: make(map[cacheKey]*cacheEntry),
	}
}

// Len returns the number of keys requested so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(kind Kind, name string, decode func() (*image.RGBA, error)) (*image.RGBA, error) {
	k := cacheKey{kind: kind, name: name}

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &cacheEntry{}
		c.entries[k] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.img, e.err = decode()
	})
	return e.img, e.err
}

// palette returns the source palette, warning once when there is none.
func (c *Cache) palette() *formats.Palette {
	pal := c.src.Palette()
	if pal == nil {
		c.warnOnce.Do(func() {
			logger.Named("graphics").Warn("no PLAYPAL, images decode as transparent placeholders")
		})
	}
	return pal
}

// Flat returns the named flat.
func (c *Cache) Flat(name string) (*image.RGBA, error) {
	return c.get(KindFlat, name, func() (*image.RGBA, error) {
		data, ok := c.src.LumpData(name)
		if !ok {
			return nil, fmt.Errorf("%w: flat %q", ErrImageNotFound, name)
		}
		img, err := DecodeFlat(data, c.palette())
		if err != nil {
			return nil, fmt.Errorf("flat %q: %w", name, err)
		}
		return img, nil
	})
}

// Patch returns the named patch lump as an image.
func (c *Cache) Patch(name string) (*image.RGBA, error) {
	return c.get(KindPatch, name, func() (*image.RGBA, error) {
		data, ok := c.src.LumpData(name)
		if !ok {
			return nil, fmt.Errorf("%w: patch %q", ErrImageNotFound, name)
		}
		p, err := DecodePatch(data, c.palette())
		if err != nil {
			return nil, fmt.Errorf("patch %q: %w", name, err)
		}
		return p.Image, nil
	})
}

// Texture returns the named composite texture. The latest TEXTUREn
// definition of the name wins.
func (c *Cache) Texture(name string) (*image.RGBA, error) {
	return c.get(KindTexture, name, func() (*image.RGBA, error) {
		table, def, ok := formats.FindTextureTable(c.src.TextureTables(), name)
		if !ok {
			return nil, fmt.Errorf("%w: texture %q", ErrImageNotFound, name)
		}
		pnames := table.PatchNames
		if pnames == nil {
			pnames = c.src.PatchNames()
		}

		log := logger.Named("graphics")
		missing := func(patch string, err error) {
			log.Warn("skipping texture patch",
				zap.String("texture", name),
				zap.String("patch", patch),
				zap.Error(err))
		}
		// Resolve the palette before compositing so a missing one is reported
		// even for textures without patches.
		c.palette()
		return ComposeTexture(def, pnames, c.Patch, missing)
	})
}

// Image returns the image of the given kind.
func (c *Cache) Image(kind Kind, name string) (*image.RGBA, error) {
	switch kind {
	case KindFlat:
		return c.Flat(name)
	case KindPatch:
		return c.Patch(name)
	case KindTexture:
		return c.Texture(name)
	default:
		return nil, fmt.Errorf("%w: unknown kind %v", ErrImageNotFound, kind)
	}
}
