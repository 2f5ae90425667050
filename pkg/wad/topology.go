package wad

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/wadkit/pkg/formats"
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// Edge is one side of a linedef as seen from the sector it faces.
type Edge struct {
	Line int
	// Reverse is set for back sides, which walk the line end to start.
	Reverse bool
	// Side is the sidedef index.
	Side int
	// Destination is the sector across the line, or NoSector for a
	// one-sided wall.
	Destination int
}

// SectorInfo is the derived topology of one sector. Edges may form
// several disjoint loops.
type SectorInfo struct {
	Edges      []Edge
	SubSectors []int
	Things     []int
	Tint       color.RGBA // Display colour, stable per sector index
}

// Neighbours returns the distinct sectors sharing a line with this one.
func (s *SectorInfo) Neighbours() []int {
	var out []int
	seen := make(map[int]bool)
	for _, e := range s.Edges {
		if e.Destination == NoSector || seen[e.Destination] {
			continue
		}
		seen[e.Destination] = true
		out = append(out, e.Destination)
	}
	return out
}

// goldenAngle spreads successive hues around the colour wheel.
const goldenAngle = 137.50776405003785

// sectorTint returns a distinct, deterministic colour for sector i.
func sectorTint(i int) color.RGBA {
	hue := math.Mod(float64(i)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.45, 0.95).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// segLine is a GL seg resolved to map units.
type segLine struct {
	A, B mathx.Vec2
}

type topology struct {
	sectors          []SectorInfo
	subSectorSectors []int
	polygons         [][]segLine
	bspSectors       []int
	leaves           []int
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorruptGeometry}, args...)...)
}

// buildTopology derives sector edges and subsector ownership. Any index
// outside its table fails with ErrCorruptGeometry; nothing is clamped.
func buildTopology(m *LevelMap) (*topology, error) {
	t := &topology{sectors: make([]SectorInfo, len(m.Sectors.Items))}
	for i := range t.sectors {
		t.sectors[i].Tint = sectorTint(i)
	}

	if err := t.addEdges(m); err != nil {
		return nil, err
	}
	if m.Segs != nil && m.SubSectors != nil {
		if err := t.addBSP(m); err != nil {
			return nil, err
		}
	}
	if m.GLSubSectors != nil {
		if err := t.addGLSubSectors(m); err != nil {
			return nil, err
		}
	} else if t.bspSectors != nil {
		t.subSectorSectors = t.bspSectors
		for ss, sec := range t.bspSectors {
			if sec != NoSector {
				t.sectors[sec].SubSectors = append(t.sectors[sec].SubSectors, ss)
			}
		}
	}
	return t, nil
}

// sideSector returns the sector of sidedef side.
func sideSector(m *LevelMap, side uint16) (int, error) {
	if int(side) >= len(m.SideDefs.Items) {
		return 0, corrupt("sidedef %d out of range (%d sidedefs)", side, len(m.SideDefs.Items))
	}
	sector := int(m.SideDefs.Items[side].Sector)
	if sector >= len(m.Sectors.Items) {
		return 0, corrupt("sidedef %d references sector %d (%d sectors)", side, sector, len(m.Sectors.Items))
	}
	return sector, nil
}

// segSector returns the sector on the given side of line: front when
// direction is 0, back otherwise.
func segSector(m *LevelMap, line, direction uint16) (int, error) {
	if int(line) >= len(m.LineDefs.Items) {
		return 0, corrupt("linedef %d out of range (%d linedefs)", line, len(m.LineDefs.Items))
	}
	l := &m.LineDefs.Items[line]
	side := l.Front
	if direction != 0 {
		side = l.Back
	}
	if side == formats.NoIndex {
		return 0, corrupt("seg on missing side of linedef %d", line)
	}
	return sideSector(m, side)
}

// addEdges gives every defined side of every line one edge in its sector.
// The destination is NoSector only when the opposite side is absent.
func (t *topology) addEdges(m *LevelMap) error {
	nverts := len(m.Vertexes.Items)
	for i := range m.LineDefs.Items {
		l := &m.LineDefs.Items[i]
		if int(l.Start) >= nverts || int(l.End) >= nverts {
			return corrupt("linedef %d vertexes %d-%d out of range (%d vertexes)", i, l.Start, l.End, nverts)
		}

		front, back := NoSector, NoSector
		var err error
		if l.HasFront() {
			if front, err = sideSector(m, l.Front); err != nil {
				return fmt.Errorf("linedef %d front: %w", i, err)
			}
		}
		if l.HasBack() {
			if back, err = sideSector(m, l.Back); err != nil {
				return fmt.Errorf("linedef %d back: %w", i, err)
			}
		}

		if l.HasFront() {
			t.sectors[front].Edges = append(t.sectors[front].Edges, Edge{
				Line: i, Reverse: false, Side: int(l.Front), Destination: back,
			})
		}
		if l.HasBack() {
			t.sectors[back].Edges = append(t.sectors[back].Edges, Edge{
				Line: i, Reverse: true, Side: int(l.Back), Destination: front,
			})
		}
	}
	return nil
}

// addGLSubSectors resolves each GL subsector's boundary and assigns it to
// the sector of its first seg that lies on a linedef.
func (t *topology) addGLSubSectors(m *LevelMap) error {
	subs := m.GLSubSectors.Items
	segs := m.GLSegs.Items

	t.subSectorSectors = make([]int, len(subs))
	t.polygons = make([][]segLine, len(subs))
	for i, ss := range subs {
		end := uint64(ss.First) + uint64(ss.Count)
		if end > uint64(len(segs)) {
			return corrupt("GL subsector %d segs [%d, %d) out of range (%d segs)", i, ss.First, end, len(segs))
		}
		run := segs[ss.First:end]

		poly := make([]segLine, len(run))
		for j := range run {
			a, err := m.Vertex(run[j].Start)
			if err != nil {
				return fmt.Errorf("GL seg %d: %w", int(ss.First)+j, err)
			}
			b, err := m.Vertex(run[j].End)
			if err != nil {
				return fmt.Errorf("GL seg %d: %w", int(ss.First)+j, err)
			}
			poly[j] = segLine{A: a, B: b}
		}
		t.polygons[i] = poly

		owner := NoSector
		for j := range run {
			if run[j].IsMiniseg() {
				continue
			}
			sec, err := segSector(m, run[j].Line, run[j].Direction)
			if err != nil {
				return fmt.Errorf("GL seg %d: %w", int(ss.First)+j, err)
			}
			owner = sec
			break
		}
		t.subSectorSectors[i] = owner
		if owner != NoSector {
			t.sectors[owner].SubSectors = append(t.sectors[owner].SubSectors, i)
		}
	}
	return nil
}

// addBSP derives the owner of each SSECTORS subsector from its first seg
// and collects the leaves reachable from the root node.
func (t *topology) addBSP(m *LevelMap) error {
	subs := m.SubSectors.Items
	segs := m.Segs.Items

	t.bspSectors = make([]int, len(subs))
	for i, ss := range subs {
		end := int(ss.First) + int(ss.Count)
		if end > len(segs) {
			return corrupt("subsector %d segs [%d, %d) out of range (%d segs)", i, ss.First, end, len(segs))
		}
		if ss.Count == 0 {
			t.bspSectors[i] = NoSector
			continue
		}
		seg := &segs[ss.First]
		sec, err := segSector(m, seg.Line, seg.Direction)
		if err != nil {
			return fmt.Errorf("seg %d: %w", ss.First, err)
		}
		t.bspSectors[i] = sec
	}

	leaves, err := collectLeaves(m.Nodes, len(subs))
	if err != nil {
		return err
	}
	t.leaves = leaves
	return nil
}

// collectLeaves walks the node tree from the root and returns each
// reachable leaf subsector once. A level without nodes is the single
// subsector 0.
func collectLeaves(nodes *formats.Nodes, nsubs int) ([]int, error) {
	if nodes == nil || len(nodes.Items) == 0 {
		if nsubs > 0 {
			return []int{0}, nil
		}
		return nil, nil
	}

	var leaves []int
	seenLeaf := make(map[int]bool)
	visited := make([]bool, len(nodes.Items))
	stack := []int{nodes.Root()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			return nil, corrupt("node %d reached twice", n)
		}
		visited[n] = true

		node := &nodes.Items[n]
		// Push left first so the right child is visited first.
		for _, child := range []formats.ChildRef{node.Left, node.Right} {
			i := child.Index()
			if child.IsLeaf() {
				if i >= nsubs {
					return nil, corrupt("node %d references subsector %d (%d subsectors)", n, i, nsubs)
				}
				continue
			}
			if i >= len(nodes.Items) {
				return nil, corrupt("node %d references node %d (%d nodes)", n, i, len(nodes.Items))
			}
			stack = append(stack, i)
		}
		for _, child := range []formats.ChildRef{node.Right, node.Left} {
			if child.IsLeaf() && !seenLeaf[child.Index()] {
				seenLeaf[child.Index()] = true
				leaves = append(leaves, child.Index())
			}
		}
	}
	return leaves, nil
}
