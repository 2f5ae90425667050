// Package wad reads Doom WAD archives and the levels inside them.
//
// An Archive holds the whole file in memory. Levels are found when the
// archive is parsed but their geometry is decoded only by LevelMap.Load.
package wad

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/formats"
	"github.com/Faultbox/wadkit/pkg/graphics"
)

// Archive is a parsed WAD. The byte buffer is never modified after load.
type Archive struct {
	name    string
	buf     []byte
	header  Header
	entries []Entry
	byName  map[string]int // Last directory index per name

	levels     []*LevelMap
	levelIndex map[string]int

	palettes  *formats.Palettes
	colorMaps *formats.ColorMaps
	pnames    *formats.PatchNames
	textures  []*formats.TextureDefinitions
	endoom    *formats.Endoom

	images *graphics.Cache
}

// LoadArchive reads and parses the WAD at path.
func LoadArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	a, err := ParseArchive(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ParseArchive parses a WAD held in memory. The archive takes ownership
// of data.
func ParseArchive(name string, data []byte) (*Archive, error) {
	header, entries, err := ReadDirectory(data)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		name:       name,
		buf:        data,
		header:     header,
		entries:    entries,
		byName:     make(map[string]int, len(entries)),
		levelIndex: make(map[string]int),
	}
	for _, e := range entries {
		a.byName[e.Name] = e.Index
	}
	a.images = graphics.NewCache(a)

	if err := a.assembleLevels(); err != nil {
		return nil, err
	}

	logger.Named("wad").Info("loaded archive",
		zap.String("name", name),
		zap.String("type", header.Magic),
		zap.Int("lumps", len(entries)),
		zap.Int("levels", len(a.levels)),
		zap.Int("textureTables", len(a.textures)))
	return a, nil
}

// Name returns the archive file name.
func (a *Archive) Name() string { return a.name }

// Header returns the archive header.
func (a *Archive) Header() Header { return a.header }

// Size returns the archive size in bytes.
func (a *Archive) Size() int { return len(a.buf) }

// Entries returns the directory in order.
func (a *Archive) Entries() []Entry { return a.entries }

// Entry returns the last directory entry called name.
func (a *Archive) Entry(name string) (Entry, bool) {
	i, ok := a.byName[name]
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Data returns the bytes of e without copying. Callers must not modify them.
func (a *Archive) Data(e Entry) []byte {
	return a.buf[e.Offset : e.Offset+e.Size : e.Offset+e.Size]
}

// LumpData returns the bytes of the last lump called name.
func (a *Archive) LumpData(name string) ([]byte, bool) {
	e, ok := a.Entry(name)
	if !ok {
		return nil, false
	}
	return a.Data(e), true
}

// Levels returns the levels in directory order.
func (a *Archive) Levels() []*LevelMap { return a.levels }

// Level returns the level called name.
func (a *Archive) Level(name string) (*LevelMap, error) {
	i, ok := a.levelIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrLevelNotFound, name, a.name)
	}
	return a.levels[i], nil
}

// Palettes returns the decoded PLAYPAL, or nil.
func (a *Archive) Palettes() *formats.Palettes { return a.palettes }

// Palette returns palette 0, or nil when the archive has no PLAYPAL.
func (a *Archive) Palette() *formats.Palette { return a.palettes.Default() }

// ColorMaps returns the decoded COLORMAP, or nil.
func (a *Archive) ColorMaps() *formats.ColorMaps { return a.colorMaps }

// PatchNames returns the decoded PNAMES, or nil.
func (a *Archive) PatchNames() *formats.PatchNames { return a.pnames }

// TextureTables returns the TEXTUREn tables in directory order.
func (a *Archive) TextureTables() []*formats.TextureDefinitions { return a.textures }

// Endoom returns the decoded ENDOOM, or nil.
func (a *Archive) Endoom() *formats.Endoom { return a.endoom }

// Images returns the archive's image cache.
func (a *Archive) Images() *graphics.Cache { return a.images }

// FlatImage returns the named flat.
func (a *Archive) FlatImage(name string) (*image.RGBA, error) { return a.images.Flat(name) }

// TextureImage returns the named composite texture.
func (a *Archive) TextureImage(name string) (*image.RGBA, error) { return a.images.Texture(name) }

// PatchImage returns the named patch.
func (a *Archive) PatchImage(name string) (*image.RGBA, error) { return a.images.Patch(name) }

// LoadLevels loads every level using up to workers goroutines. A failed
// level does not stop the others; all failures are returned together.
func (a *Archive) LoadLevels(workers int) error {
	return loadLevels(a.levels, workers)
}

func loadLevels(levels []*LevelMap, workers int) error {
	if workers < 1 {
		workers = 1
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
		sem  = make(chan struct{}, workers)
	)
	for _, m := range levels {
		wg.Add(1)
		sem <- struct{}{}
		go func(m *LevelMap) {
			defer func() {
				<-sem
				wg.Done()
			}()
			if err := m.Load(); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}(m)
	}
	wg.Wait()
	return errs
}
