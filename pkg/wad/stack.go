package wad

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/formats"
	"github.com/Faultbox/wadkit/pkg/graphics"
)

// Stack overlays archives in load order, usually an IWAD followed by
// PWADs. Lookups return the last archive's version of a resource and a
// level from a later archive replaces a same-named earlier one.
type Stack struct {
	archives   []*Archive
	levels     []*LevelMap
	levelIndex map[string]int
	textures   []*formats.TextureDefinitions
	images     *graphics.Cache
}

// LoadStack loads the archives at paths in order.
func LoadStack(paths ...string) (*Stack, error) {
	archives := make([]*Archive, 0, len(paths))
	for _, p := range paths {
		a, err := LoadArchive(p)
		if err != nil {
			return nil, err
		}
		archives = append(archives, a)
	}
	return NewStack(archives...), nil
}

// NewStack overlays already parsed archives.
func NewStack(archives ...*Archive) *Stack {
	s := &Stack{
		archives:   archives,
		levelIndex: make(map[string]int),
	}
	for _, a := range archives {
		for _, m := range a.levels {
			if i, ok := s.levelIndex[m.Name]; ok {
				logger.Named("wad").Debug("level replaced",
					zap.String("level", m.Name),
					zap.String("by", a.name))
				s.levels[i] = m
				continue
			}
			s.levelIndex[m.Name] = len(s.levels)
			s.levels = append(s.levels, m)
		}
		s.textures = append(s.textures, a.textures...)
	}
	s.images = graphics.NewCache(s)
	return s
}

// Archives returns the archives in load order.
func (s *Stack) Archives() []*Archive { return s.archives }

// Levels returns every level, in first-seen order.
func (s *Stack) Levels() []*LevelMap { return s.levels }

// Level returns the latest level called name.
func (s *Stack) Level(name string) (*LevelMap, error) {
	i, ok := s.levelIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}
	return s.levels[i], nil
}

// LoadLevels loads every level; see Archive.LoadLevels.
func (s *Stack) LoadLevels(workers int) error {
	return loadLevels(s.levels, workers)
}

// LumpData returns the bytes of the latest lump called name.
func (s *Stack) LumpData(name string) ([]byte, bool) {
	for i := len(s.archives) - 1; i >= 0; i-- {
		if data, ok := s.archives[i].LumpData(name); ok {
			return data, true
		}
	}
	return nil, false
}

// Palette returns palette 0 of the latest archive with a PLAYPAL.
func (s *Stack) Palette() *formats.Palette {
	for i := len(s.archives) - 1; i >= 0; i-- {
		if p := s.archives[i].Palette(); p != nil {
			return p
		}
	}
	return nil
}

// ColorMaps returns the latest COLORMAP, or nil.
func (s *Stack) ColorMaps() *formats.ColorMaps {
	for i := len(s.archives) - 1; i >= 0; i-- {
		if m := s.archives[i].ColorMaps(); m != nil {
			return m
		}
	}
	return nil
}

// PatchNames returns the latest PNAMES.
func (s *Stack) PatchNames() *formats.PatchNames {
	for i := len(s.archives) - 1; i >= 0; i-- {
		if p := s.archives[i].PatchNames(); p != nil {
			return p
		}
	}
	return nil
}

// TextureTables returns every archive's TEXTUREn tables in load order.
func (s *Stack) TextureTables() []*formats.TextureDefinitions { return s.textures }

// Endoom returns the latest ENDOOM, or nil.
func (s *Stack) Endoom() *formats.Endoom {
	for i := len(s.archives) - 1; i >= 0; i-- {
		if e := s.archives[i].Endoom(); e != nil {
			return e
		}
	}
	return nil
}

// Images returns the stack's image cache.
func (s *Stack) Images() *graphics.Cache { return s.images }

// FlatImage returns the latest flat called name.
func (s *Stack) FlatImage(name string) (*image.RGBA, error) { return s.images.Flat(name) }

// TextureImage returns the latest texture called name.
func (s *Stack) TextureImage(name string) (*image.RGBA, error) { return s.images.Texture(name) }

// PatchImage returns the latest patch called name.
func (s *Stack) PatchImage(name string) (*image.RGBA, error) { return s.images.Patch(name) }
