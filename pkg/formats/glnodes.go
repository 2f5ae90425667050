package formats

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/cursor"
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// GLVersion is a GL nodes format version.
type GLVersion int

// Known GL nodes versions.
const (
	GLLegacy GLVersion = 0 // No magic, 16-bit fields
	GLV2     GLVersion = 2 // "gNd2" fixed-point vertexes
	GLV3     GLVersion = 3 // "gNd3" 32-bit segs and subsectors
	GLV5     GLVersion = 5 // "gNd5" vertexes, unprefixed 32-bit segs and subsectors
)

// String returns "legacy" or "vN".
func (v GLVersion) String() string {
	if v == GLLegacy {
		return "legacy"
	}
	return fmt.Sprintf("v%d", int(v))
}

// GL lump magics.
var (
	glMagicPrefix = []byte("gNd")
	glMagicV2     = []byte("gNd2")
	glMagicV3     = []byte("gNd3")
	glMagicV5     = []byte("gNd5")
	// Some builders write the v5 vertex magic with a capital D.
	glMagicV5Alt  = []byte("gND5")
)

// GLLayout describes the on-disk record layout of one GL nodes version.
type GLLayout struct {
	Version GLVersion
	// HeaderSize is the number of magic bytes consumed before the records.
	HeaderSize    int
	VertexSize    int
	SegSize       int
	SubSectorSize int
	// ExtendedBit flags a seg endpoint that indexes GL_VERT instead of VERTEXES.
	ExtendedBit uint
}

// Wide reports whether seg and subsector fields are 32-bit.
func (l GLLayout) Wide() bool { return l.SegSize == 16 }

// Layout descriptors. Vertex lumps only distinguish legacy from
// fixed-point; segs and subsectors distinguish all three.
var (
	LayoutLegacy = GLLayout{Version: GLLegacy, HeaderSize: 0, VertexSize: 4, SegSize: 10, SubSectorSize: 4, ExtendedBit: 15}
	LayoutV2     = GLLayout{Version: GLV2, HeaderSize: 4, VertexSize: 8, SegSize: 10, SubSectorSize: 4, ExtendedBit: 15}
	LayoutV3     = GLLayout{Version: GLV3, HeaderSize: 4, VertexSize: 8, SegSize: 16, SubSectorSize: 8, ExtendedBit: 30}
	LayoutV5     = GLLayout{Version: GLV5, HeaderSize: 0, VertexSize: 8, SegSize: 16, SubSectorSize: 8, ExtendedBit: 31}
)

// glMagic returns the 4-byte magic if data starts with a GL magic prefix.
func glMagic(data []byte) ([]byte, bool) {
	if len(data) < 4 {
		return nil, false
	}
	if !bytes.HasPrefix(data, glMagicPrefix) && !bytes.HasPrefix(data, glMagicV5Alt) {
		return nil, false
	}
	return data[:4], true
}

// VertexLayout selects the GL_VERT layout from the lump magic.
// An unrecognized GL magic returns the legacy layout and ErrUnsupportedGLVersion.
func VertexLayout(data []byte) (GLLayout, error) {
	magic, ok := glMagic(data)
	switch {
	case !ok:
		return LayoutLegacy, nil
	case bytes.Equal(magic, glMagicV2):
		return LayoutV2, nil
	case bytes.Equal(magic, glMagicV3):
		return LayoutV3, nil
	case bytes.Equal(magic, glMagicV5), bytes.Equal(magic, glMagicV5Alt):
		// v5 vertexes keep the 4-byte magic even though v5 segs do not.
		l := LayoutV5
		l.HeaderSize = 4
		return l, nil
	default:
		return LayoutLegacy, fmt.Errorf("%w: GL_VERT magic %q", ErrUnsupportedGLVersion, magic)
	}
}

// SegLayout selects the GL_SEGS / GL_SSECT layout from the lump magic and
// the version reported by the level's GL_VERT lump.
func SegLayout(data []byte, vertexVersion GLVersion) (GLLayout, error) {
	magic, ok := glMagic(data)
	switch {
	case ok && bytes.Equal(magic, glMagicV3):
		return LayoutV3, nil
	case ok:
		return LayoutLegacy, fmt.Errorf("%w: magic %q", ErrUnsupportedGLVersion, magic)
	case vertexVersion == GLV5:
		return LayoutV5, nil
	default:
		return LayoutLegacy, nil
	}
}

// warnUnsupported logs a layout fallback.
func warnUnsupported(lump string, err error) {
	logger.Warn("falling back to legacy GL layout",
		zap.String("lump", lump),
		zap.Error(err))
}

// GLVertexes is a decoded GL_VERT lump, in map units.
type GLVertexes struct {
	Layout GLLayout
	Items  []mathx.Vec2
}

// Kind implements Lump.
func (*GLVertexes) Kind() Kind { return KindGLVertexes }

// Len implements Lump.
func (v *GLVertexes) Len() int { return len(v.Items) }

// Version returns the detected format version.
func (v *GLVertexes) Version() GLVersion { return v.Layout.Version }

// ParseGLVertexes parses a GL_VERT lump.
func ParseGLVertexes(data []byte) (*GLVertexes, error) {
	layout, err := VertexLayout(data)
	if err != nil {
		warnUnsupported(LumpGLVertexes, err)
	}

	body := len(data) - layout.HeaderSize
	verts := &GLVertexes{
		Layout: layout,
		Items:  make([]mathx.Vec2, body/layout.VertexSize),
	}

	c := cursor.New(data, layout.HeaderSize)
	for i := range verts.Items {
		if layout.VertexSize == 8 {
			// 16.16 fixed point
			x := c.Int32()
			y := c.Int32()
			verts.Items[i] = mathx.V2(float64(x)/65536, float64(y)/65536)
		} else {
			x := c.Int16()
			y := c.Int16()
			verts.Items[i] = mathx.V2(float64(x), float64(y))
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return verts, nil
}

// VertexRef is a seg endpoint: an index into either VERTEXES or GL_VERT.
type VertexRef struct {
	index    uint32
	extended bool
}

// BaseVertex references VERTEXES.
func BaseVertex(index uint32) VertexRef { return VertexRef{index: index} }

// ExtendedVertex references GL_VERT.
func ExtendedVertex(index uint32) VertexRef { return VertexRef{index: index, extended: true} }

// IsExtended reports whether the endpoint indexes GL_VERT.
func (r VertexRef) IsExtended() bool { return r.extended }

// Index returns the index into the referenced table.
func (r VertexRef) Index() int { return int(r.index) }

// String returns "base(n)" or "gl(n)".
func (r VertexRef) String() string {
	if r.extended {
		return fmt.Sprintf("gl(%d)", r.index)
	}
	return fmt.Sprintf("base(%d)", r.index)
}

// NoPartner marks a GL seg without a partner on the other side of its line.
const NoPartner = -1

// GLSeg is a boundary edge of a GL subsector.
type GLSeg struct {
	Start, End VertexRef
	Line       uint16 // NoIndex for minisegs
	Direction  uint16 // 0 front side, otherwise back side
	Partner    int    // Index of the seg on the other side, or NoPartner
}

// IsMiniseg reports whether the seg lies along no linedef.
func (s *GLSeg) IsMiniseg() bool { return s.Line == NoIndex }

// GLSegs is a decoded GL_SEGS lump.
type GLSegs struct {
	Layout GLLayout
	Items  []GLSeg
}

// Kind implements Lump.
func (*GLSegs) Kind() Kind { return KindGLSegs }

// Len implements Lump.
func (s *GLSegs) Len() int { return len(s.Items) }

// ParseGLSegs parses a GL_SEGS lump. vertexVersion is the version of the
// level's GL_VERT lump, which must be decoded first.
func ParseGLSegs(data []byte, vertexVersion GLVersion) (*GLSegs, error) {
	layout, err := SegLayout(data, vertexVersion)
	if err != nil {
		warnUnsupported(LumpGLSegs, err)
	}

	body := len(data) - layout.HeaderSize
	segs := &GLSegs{
		Layout: layout,
		Items:  make([]GLSeg, body/layout.SegSize),
	}

	c := cursor.New(data, layout.HeaderSize)
	for i := range segs.Items {
		s := &segs.Items[i]
		if layout.Wide() {
			s.Start = wideVertexRef(c.Uint32(), layout.ExtendedBit)
			s.End = wideVertexRef(c.Uint32(), layout.ExtendedBit)
			s.Line = c.Uint16()
			s.Direction = c.Uint16()
			s.Partner = partner32(c.Uint32())
		} else {
			s.Start = narrowVertexRef(c.Uint16(), layout.ExtendedBit)
			s.End = narrowVertexRef(c.Uint16(), layout.ExtendedBit)
			s.Line = c.Uint16()
			s.Direction = c.Uint16()
			s.Partner = partner16(c.Uint16())
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

func wideVertexRef(raw uint32, bit uint) VertexRef {
	index, ext := cursor.SplitTag(raw, bit)
	return VertexRef{index: index, extended: ext}
}

func narrowVertexRef(raw uint16, bit uint) VertexRef {
	index, ext := cursor.SplitTag(raw, bit)
	return VertexRef{index: uint32(index), extended: ext}
}

func partner16(raw uint16) int {
	if raw == NoIndex {
		return NoPartner
	}
	return int(raw)
}

func partner32(raw uint32) int {
	if raw == 0xFFFFFFFF {
		return NoPartner
	}
	return int(raw)
}

// GLSubSector is a convex polygon made of Count consecutive GL segs.
type GLSubSector struct {
	Count uint32
	First uint32
}

// GLSubSectors is a decoded GL_SSECT lump.
type GLSubSectors struct {
	Layout GLLayout
	Items  []GLSubSector
}

// Kind implements Lump.
func (*GLSubSectors) Kind() Kind { return KindGLSubSectors }

// Len implements Lump.
func (s *GLSubSectors) Len() int { return len(s.Items) }

// ParseGLSubSectors parses a GL_SSECT lump.
func ParseGLSubSectors(data []byte, vertexVersion GLVersion) (*GLSubSectors, error) {
	layout, err := SegLayout(data, vertexVersion)
	if err != nil {
		warnUnsupported(LumpGLSubSectors, err)
	}

	body := len(data) - layout.HeaderSize
	subs := &GLSubSectors{
		Layout: layout,
		Items:  make([]GLSubSector, body/layout.SubSectorSize),
	}

	c := cursor.New(data, layout.HeaderSize)
	for i := range subs.Items {
		if layout.Wide() {
			subs.Items[i] = GLSubSector{Count: c.Uint32(), First: c.Uint32()}
		} else {
			subs.Items[i] = GLSubSector{Count: uint32(c.Uint16()), First: uint32(c.Uint16())}
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
