package formats

import (
	"strings"
)

// decoder turns the bytes of one lump into a typed collection.
type decoder func(name string, data []byte, ctx DecodeContext) (Lump, error)

// wrap adapts a context-free parser to a decoder.
func wrap[T Lump](parse func([]byte) (T, error)) decoder {
	return func(_ string, data []byte, _ DecodeContext) (Lump, error) {
		v, err := parse(data)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var decoders = map[string]decoder{
	LumpThings:     wrap(ParseThings),
	LumpVertexes:   wrap(ParseVertexes),
	LumpLineDefs:   wrap(ParseLineDefs),
	LumpSideDefs:   wrap(ParseSideDefs),
	LumpSectors:    wrap(ParseSectors),
	LumpSegs:       wrap(ParseSegs),
	LumpSubSectors: wrap(ParseSubSectors),
	LumpNodes:      wrap(ParseNodes),

	LumpGLVertexes: wrap(ParseGLVertexes),
	LumpGLSegs: func(_ string, data []byte, ctx DecodeContext) (Lump, error) {
		segs, err := ParseGLSegs(data, ctx.GLVertexVersion)
		if err != nil {
			return nil, err
		}
		return segs, nil
	},
	LumpGLSubSectors: func(_ string, data []byte, ctx DecodeContext) (Lump, error) {
		subs, err := ParseGLSubSectors(data, ctx.GLVertexVersion)
		if err != nil {
			return nil, err
		}
		return subs, nil
	},

	LumpPalette:    wrap(ParsePalettes),
	LumpColorMap:   wrap(ParseColorMaps),
	LumpPatchNames: wrap(ParsePatchNames),
	LumpEndoom:     wrap(ParseEndoom),
}

func decodeTextures(name string, data []byte, _ DecodeContext) (Lump, error) {
	defs, err := ParseTextureDefinitions(name, data)
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// IsTextureTable reports whether name is TEXTURE followed by one digit.
func IsTextureTable(name string) bool {
	return len(name) == len(TexturePrefix)+1 &&
		strings.HasPrefix(name, TexturePrefix) &&
		name[len(TexturePrefix)] >= '0' && name[len(TexturePrefix)] <= '9'
}

func lookup(name string) (decoder, bool) {
	if d, ok := decoders[name]; ok {
		return d, true
	}
	if IsTextureTable(name) {
		return decodeTextures, true
	}
	return nil, false
}

// Known reports whether Decode has a decoder for name.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Decode decodes the lump called name. Unknown names return a nil lump
// and no error; a directory commonly holds resources nothing here reads.
// GL_SEGS and GL_SSECT need ctx.GLVertexVersion from the level's GL_VERT.
func Decode(name string, data []byte, ctx DecodeContext) (Lump, error) {
	d, ok := lookup(name)
	if !ok {
		return nil, nil
	}
	return d(name, data, ctx)
}

var levelLumps = map[string]bool{
	LumpThings:     true,
	LumpLineDefs:   true,
	LumpSideDefs:   true,
	LumpVertexes:   true,
	LumpSegs:       true,
	LumpSubSectors: true,
	LumpNodes:      true,
	LumpSectors:    true,
	LumpReject:     true,
	LumpBlockmap:   true,
}

// IsLevelLump reports whether name belongs to a level's lump group.
func IsLevelLump(name string) bool {
	return levelLumps[name] || strings.HasPrefix(name, GLPrefix)
}

// IsFixedLevelLump reports whether name is one of the fixed level lump
// names, GL ones included. Unlike IsLevelLump it excludes GL_<map>
// markers, so a zero-size entry with a fixed name can still be told apart
// from a level marker.
func IsFixedLevelLump(name string) bool {
	switch name {
	case LumpGLVertexes, LumpGLSegs, LumpGLSubSectors, LumpGLNodes, LumpGLPVS:
		return true
	}
	return levelLumps[name]
}

// IsGlobalResource reports whether name is an archive-wide resource that
// is decoded as soon as it is found.
func IsGlobalResource(name string) bool {
	switch name {
	case LumpPalette, LumpColorMap, LumpPatchNames, LumpEndoom:
		return true
	}
	return IsTextureTable(name)
}
