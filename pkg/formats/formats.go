// Package formats provides parsers for Doom WAD lump formats.
//
// Every parser takes the raw bytes of one lump and returns a typed
// collection. Fixed-width record lumps hold len(data)/recordSize records;
// trailing bytes that do not form a whole record are ignored.
package formats

import (
	"errors"
	"fmt"
)

// MapScale converts map units to world units.
const MapScale = 1.0 / 32.0

// NoIndex marks an absent side, sector or partner reference in a 16-bit field.
const NoIndex = 0xFFFF

// Lump name constants.
const (
	LumpThings     = "THINGS"
	LumpLineDefs   = "LINEDEFS"
	LumpSideDefs   = "SIDEDEFS"
	LumpVertexes   = "VERTEXES"
	LumpSegs       = "SEGS"
	LumpSubSectors = "SSECTORS"
	LumpNodes      = "NODES"
	LumpSectors    = "SECTORS"
	LumpReject     = "REJECT"
	LumpBlockmap   = "BLOCKMAP"

	LumpGLVertexes   = "GL_VERT"
	LumpGLSegs       = "GL_SEGS"
	LumpGLSubSectors = "GL_SSECT"
	LumpGLNodes      = "GL_NODES"
	LumpGLPVS        = "GL_PVS"

	LumpPalette    = "PLAYPAL"
	LumpColorMap   = "COLORMAP"
	LumpPatchNames = "PNAMES"
	LumpEndoom     = "ENDOOM"

	// GLPrefix starts the name of every GL node lump, including the
	// GL_<mapname> marker that some node builders emit.
	GLPrefix = "GL_"

	// TexturePrefix starts TEXTURE1, TEXTURE2 and so on.
	TexturePrefix = "TEXTURE"
)

// Kind identifies the type of a decoded lump.
type Kind int

// Lump kinds.
const (
	KindThings Kind = iota
	KindVertexes
	KindLineDefs
	KindSideDefs
	KindSectors
	KindSegs
	KindSubSectors
	KindNodes
	KindGLVertexes
	KindGLSegs
	KindGLSubSectors
	KindPalettes
	KindColorMaps
	KindPatchNames
	KindTextureDefinitions
	KindEndoom
)

var kindNames = [...]string{
	KindThings:             "Things",
	KindVertexes:           "Vertexes",
	KindLineDefs:           "LineDefs",
	KindSideDefs:           "SideDefs",
	KindSectors:            "Sectors",
	KindSegs:               "Segs",
	KindSubSectors:         "SubSectors",
	KindNodes:              "Nodes",
	KindGLVertexes:         "GLVertexes",
	KindGLSegs:             "GLSegs",
	KindGLSubSectors:       "GLSubSectors",
	KindPalettes:           "Palettes",
	KindColorMaps:          "ColorMaps",
	KindPatchNames:         "PatchNames",
	KindTextureDefinitions: "TextureDefinitions",
	KindEndoom:             "Endoom",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Lump is a decoded lump.
type Lump interface {
	Kind() Kind
	// Len returns the number of records in the lump.
	Len() int
}

// DecodeContext carries state from previously decoded lumps of the same
// level that later decoders depend on.
type DecodeContext struct {
	// GLVertexVersion is the version detected on the level's GL_VERT lump.
	GLVertexVersion GLVersion
}

// Format errors.
var (
	ErrUnsupportedGLVersion = errors.New("unsupported GL nodes version")
	ErrInvalidTextureTable  = errors.New("invalid texture definition table")
)
