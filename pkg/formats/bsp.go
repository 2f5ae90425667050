package formats

import (
	"fmt"

	"github.com/Faultbox/wadkit/pkg/cursor"
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// Record sizes for the BSP lumps.
const (
	SegSize       = 12
	SubSectorSize = 4
	NodeSize      = 28
)

// childLeafBit flags a node child that refers to a subsector.
const childLeafBit = 15

// Seg is a piece of a linedef bounding a subsector.
type Seg struct {
	Start, End uint16
	Angle      int16 // Binary angle, full circle is 65536
	Line       uint16
	Direction  uint16 // 0 runs along the linedef, 1 runs against it
	Offset     int16  // Distance along the linedef to the seg start
}

// Segs is a decoded SEGS lump.
type Segs struct {
	Items []Seg
}

// Kind implements Lump.
func (*Segs) Kind() Kind { return KindSegs }

// Len implements Lump.
func (s *Segs) Len() int { return len(s.Items) }

// ParseSegs parses a SEGS lump.
func ParseSegs(data []byte) (*Segs, error) {
	segs := &Segs{Items: make([]Seg, len(data)/SegSize)}
	c := cursor.New(data, 0)
	for i := range segs.Items {
		segs.Items[i] = Seg{
			Start:     c.Uint16(),
			End:       c.Uint16(),
			Angle:     c.Int16(),
			Line:      c.Uint16(),
			Direction: c.Uint16(),
			Offset:    c.Int16(),
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

// SubSector is a run of segs forming a BSP leaf.
type SubSector struct {
	Count uint16
	First uint16
}

// SubSectors is a decoded SSECTORS lump.
type SubSectors struct {
	Items []SubSector
}

// Kind implements Lump.
func (*SubSectors) Kind() Kind { return KindSubSectors }

// Len implements Lump.
func (s *SubSectors) Len() int { return len(s.Items) }

// ParseSubSectors parses a SSECTORS lump.
func ParseSubSectors(data []byte) (*SubSectors, error) {
	subs := &SubSectors{Items: make([]SubSector, len(data)/SubSectorSize)}
	c := cursor.New(data, 0)
	for i := range subs.Items {
		subs.Items[i] = SubSector{Count: c.Uint16(), First: c.Uint16()}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// ChildRef is a node child: either another node or a leaf subsector.
type ChildRef struct {
	index uint16
	leaf  bool
}

// NodeChild returns a reference to another node.
func NodeChild(index uint16) ChildRef { return ChildRef{index: index} }

// LeafChild returns a reference to a subsector.
func LeafChild(index uint16) ChildRef { return ChildRef{index: index, leaf: true} }

// decodeChild splits the on-disk leaf flag from a child reference.
func decodeChild(raw uint16) ChildRef {
	index, leaf := cursor.SplitTag(raw, childLeafBit)
	return ChildRef{index: index, leaf: leaf}
}

// IsLeaf reports whether the child is a subsector.
func (c ChildRef) IsLeaf() bool { return c.leaf }

// Index returns the node or subsector index.
func (c ChildRef) Index() int { return int(c.index) }

// String returns "leaf(n)" or "node(n)".
func (c ChildRef) String() string {
	if c.leaf {
		return fmt.Sprintf("leaf(%d)", c.index)
	}
	return fmt.Sprintf("node(%d)", c.index)
}

// BBox is a node child bounding box in map units.
type BBox struct {
	Top, Bottom, Left, Right int16
}

// Contains reports whether p lies inside or on the box.
func (b BBox) Contains(p mathx.Vec2) bool {
	return p.X >= float64(b.Left) && p.X <= float64(b.Right) &&
		p.Y >= float64(b.Bottom) && p.Y <= float64(b.Top)
}

// Node is a BSP partition.
type Node struct {
	X, Y     int16 // Partition line start
	DX, DY   int16 // Partition line direction
	RightBox BBox
	LeftBox  BBox
	Right    ChildRef // Front side child
	Left     ChildRef // Back side child
}

// Side returns 0 when p is on the right (front) of the partition line and
// 1 when it is on the left (back) or on the line.
func (n *Node) Side(p mathx.Vec2) int {
	origin := mathx.V2(float64(n.X), float64(n.Y))
	dir := mathx.V2(float64(n.DX), float64(n.DY))
	if mathx.Orient(origin, origin.Add(dir), p) < 0 {
		return 0
	}
	return 1
}

// Child returns the child on the given side.
func (n *Node) Child(side int) ChildRef {
	if side == 0 {
		return n.Right
	}
	return n.Left
}

// Nodes is a decoded NODES lump. The root is the last node.
type Nodes struct {
	Items []Node
}

// Kind implements Lump.
func (*Nodes) Kind() Kind { return KindNodes }

// Len implements Lump.
func (n *Nodes) Len() int { return len(n.Items) }

// Root returns the index of the root node, or -1 when there are no nodes.
func (n *Nodes) Root() int {
	return len(n.Items) - 1
}

// ParseNodes parses a NODES lump.
func ParseNodes(data []byte) (*Nodes, error) {
	nodes := &Nodes{Items: make([]Node, len(data)/NodeSize)}
	c := cursor.New(data, 0)
	readBox := func() BBox {
		return BBox{Top: c.Int16(), Bottom: c.Int16(), Left: c.Int16(), Right: c.Int16()}
	}
	for i := range nodes.Items {
		n := &nodes.Items[i]
		n.X = c.Int16()
		n.Y = c.Int16()
		n.DX = c.Int16()
		n.DY = c.Int16()
		n.RightBox = readBox()
		n.LeftBox = readBox()
		n.Right = decodeChild(c.Uint16())
		n.Left = decodeChild(c.Uint16())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}
