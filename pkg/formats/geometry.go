package formats

import (
	"github.com/Faultbox/wadkit/pkg/cursor"
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// Record sizes for the base level geometry lumps.
const (
	VertexSize  = 4
	LineDefSize = 14
	SideDefSize = 30
	SectorSize  = 26
)

// LineDef flag bits.
const (
	LineBlocking      = 0x0001
	LineBlockMonsters = 0x0002
	LineTwoSided      = 0x0004
	LineUpperUnpegged = 0x0008
	LineLowerUnpegged = 0x0010
	LineSecret        = 0x0020
	LineBlockSound    = 0x0040
	LineNeverMap      = 0x0080
	LineAlwaysMap     = 0x0100
)

// Vertex is a map-space point.
type Vertex struct {
	X, Y int16
}

// Vec returns the vertex as a Vec2 in map units.
func (v Vertex) Vec() mathx.Vec2 {
	return mathx.V2(float64(v.X), float64(v.Y))
}

// Vertexes is a decoded VERTEXES lump.
type Vertexes struct {
	Items []Vertex
}

// Kind implements Lump.
func (*Vertexes) Kind() Kind { return KindVertexes }

// Len implements Lump.
func (v *Vertexes) Len() int { return len(v.Items) }

// ParseVertexes parses a VERTEXES lump.
func ParseVertexes(data []byte) (*Vertexes, error) {
	verts := &Vertexes{Items: make([]Vertex, len(data)/VertexSize)}
	c := cursor.New(data, 0)
	for i := range verts.Items {
		verts.Items[i] = Vertex{X: c.Int16(), Y: c.Int16()}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return verts, nil
}

// LineDef is a wall or boundary between two vertexes.
type LineDef struct {
	Start, End uint16
	Flags      uint16
	Special    uint16
	Tag        uint16
	Front      uint16 // Side index or NoIndex
	Back       uint16 // Side index or NoIndex
}

// HasFront reports whether the line has a front side.
func (l *LineDef) HasFront() bool { return l.Front != NoIndex }

// HasBack reports whether the line has a back side.
func (l *LineDef) HasBack() bool { return l.Back != NoIndex }

// TwoSided reports whether both sides are present.
func (l *LineDef) TwoSided() bool { return l.HasFront() && l.HasBack() }

// Is reports whether all the given flag bits are set.
func (l *LineDef) Is(flags uint16) bool { return l.Flags&flags == flags }

// LineDefs is a decoded LINEDEFS lump.
type LineDefs struct {
	Items []LineDef
}

// Kind implements Lump.
func (*LineDefs) Kind() Kind { return KindLineDefs }

// Len implements Lump.
func (l *LineDefs) Len() int { return len(l.Items) }

// ParseLineDefs parses a LINEDEFS lump.
func ParseLineDefs(data []byte) (*LineDefs, error) {
	lines := &LineDefs{Items: make([]LineDef, len(data)/LineDefSize)}
	c := cursor.New(data, 0)
	for i := range lines.Items {
		lines.Items[i] = LineDef{
			Start:   c.Uint16(),
			End:     c.Uint16(),
			Flags:   c.Uint16(),
			Special: c.Uint16(),
			Tag:     c.Uint16(),
			Front:   c.Uint16(),
			Back:    c.Uint16(),
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// SideDef holds the textures for one facing of a line.
type SideDef struct {
	XOffset, YOffset int16
	Top              string
	Mid              string
	Lower            string
	Sector           uint16
}

// Offset returns the texture offset in world units.
func (s *SideDef) Offset() mathx.Vec2 {
	return mathx.V2(float64(s.XOffset), float64(s.YOffset)).Scale(MapScale)
}

// SideDefs is a decoded SIDEDEFS lump.
type SideDefs struct {
	Items []SideDef
}

// Kind implements Lump.
func (*SideDefs) Kind() Kind { return KindSideDefs }

// Len implements Lump.
func (s *SideDefs) Len() int { return len(s.Items) }

// ParseSideDefs parses a SIDEDEFS lump.
func ParseSideDefs(data []byte) (*SideDefs, error) {
	sides := &SideDefs{Items: make([]SideDef, len(data)/SideDefSize)}
	c := cursor.New(data, 0)
	for i := range sides.Items {
		sides.Items[i] = SideDef{
			XOffset: c.Int16(),
			YOffset: c.Int16(),
			Top:     c.Name8(),
			Mid:     c.Name8(),
			Lower:   c.Name8(),
			Sector:  c.Uint16(),
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return sides, nil
}

// Sector is a region with a floor and ceiling.
type Sector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   string
	CeilingTexture string
	LightLevel     int16
	Special        uint16
	Tag            uint16
}

// Floor returns the floor height in world units.
func (s *Sector) Floor() float64 { return float64(s.FloorHeight) * MapScale }

// Ceiling returns the ceiling height in world units.
func (s *Sector) Ceiling() float64 { return float64(s.CeilingHeight) * MapScale }

// Sectors is a decoded SECTORS lump.
type Sectors struct {
	Items []Sector
}

// Kind implements Lump.
func (*Sectors) Kind() Kind { return KindSectors }

// Len implements Lump.
func (s *Sectors) Len() int { return len(s.Items) }

// ParseSectors parses a SECTORS lump.
func ParseSectors(data []byte) (*Sectors, error) {
	sectors := &Sectors{Items: make([]Sector, len(data)/SectorSize)}
	c := cursor.New(data, 0)
	for i := range sectors.Items {
		sectors.Items[i] = Sector{
			FloorHeight:    c.Int16(),
			CeilingHeight:  c.Int16(),
			FloorTexture:   c.Name8(),
			CeilingTexture: c.Name8(),
			LightLevel:     c.Int16(),
			Special:        c.Uint16(),
			Tag:            c.Uint16(),
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return sectors, nil
}
