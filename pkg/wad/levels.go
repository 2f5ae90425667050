package wad

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/formats"
)

// assembleLevels groups the directory into levels and decodes global
// resources in directory order.
//
// A marker opens a level named after it and closes any open one. Level
// lumps attach to the open level; any other lump closes it. A GL_<name>
// marker directly inside level <name> keeps the level open so inline GL
// nodes join the level they were built for. A zero-size entry with a
// fixed level lump name is a lump, not a marker. Levels without lumps are
// dropped.
func (a *Archive) assembleLevels() error {
	log := logger.Named("wad")

	var open *LevelMap
	closeLevel := func() {
		if open != nil && len(open.order) > 0 {
			a.addLevel(open)
		}
		open = nil
	}

	for _, e := range a.entries {
		switch {
		case e.IsMarker():
			if open != nil && e.Name == formats.GLPrefix+open.Name {
				continue
			}
			// Empty REJECT or BLOCKMAP lumps have a marker's size.
			if open != nil && formats.IsFixedLevelLump(e.Name) {
				open.attach(e)
				continue
			}
			closeLevel()
			open = newLevelMap(a, e.Name)

		case open != nil && formats.IsLevelLump(e.Name):
			open.attach(e)

		default:
			closeLevel()
			if formats.IsGlobalResource(e.Name) {
				if err := a.decodeGlobal(e); err != nil {
					return err
				}
			}
		}
	}
	closeLevel()

	for _, t := range a.textures {
		t.PatchNames = a.pnames
	}

	log.Debug("assembled levels", zap.String("archive", a.name), zap.Int("levels", len(a.levels)))
	return nil
}

func (a *Archive) addLevel(m *LevelMap) {
	if i, ok := a.levelIndex[m.Name]; ok {
		a.levels[i] = m
		return
	}
	a.levelIndex[m.Name] = len(a.levels)
	a.levels = append(a.levels, m)
}

// decodeGlobal decodes an archive-wide resource. A later lump of the same
// kind replaces an earlier one, except texture tables which accumulate.
func (a *Archive) decodeGlobal(e Entry) error {
	lump, err := formats.Decode(e.Name, a.Data(e), formats.DecodeContext{})
	if err != nil {
		return fmt.Errorf("decoding %s (lump %d): %w", e.Name, e.Index, err)
	}

	switch l := lump.(type) {
	case *formats.Palettes:
		a.palettes = l
	case *formats.ColorMaps:
		a.colorMaps = l
	case *formats.PatchNames:
		a.pnames = l
	case *formats.TextureDefinitions:
		a.textures = append(a.textures, l)
	case *formats.Endoom:
		a.endoom = l
	}
	logger.Named("wad").Debug("decoded global lump",
		zap.String("lump", e.Name),
		zap.Int("records", lump.Len()))
	return nil
}
