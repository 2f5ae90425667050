package wad

import (
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// Location is the result of a point query.
type Location struct {
	Sector    int
	SubSector int
}

// Query returns the sector and GL subsector containing the map-unit point
// (x, y). Sectors are tried in index order and each sector's subsectors in
// list order; each subsector is split into a fan of triangles anchored at
// its first seg's start. Points on an edge count as inside and the first
// match wins. Levels without GL nodes fall back to QueryBSP, which also
// reports false for points outside every sector.
//
// Query reports false before Load has succeeded.
func (m *LevelMap) Query(x, y float64) (Location, bool) {
	if !m.Loaded() {
		return Location{}, false
	}
	return m.locate(mathx.V2(x, y))
}

func (m *LevelMap) queryPoint(p mathx.Vec2) (Location, bool) {
	for sec := range m.Topology {
		for _, ss := range m.Topology[sec].SubSectors {
			if fanContains(m.polygons[ss], p) {
				return Location{Sector: sec, SubSector: ss}, true
			}
		}
	}
	return Location{}, false
}

// fanContains tests p against the triangles (anchor, seg.A, seg.B).
// Degenerate triangles are skipped.
func fanContains(poly []segLine, p mathx.Vec2) bool {
	if len(poly) < 3 {
		return false
	}
	anchor := poly[0].A
	for _, s := range poly {
		if mathx.TriangleArea2(anchor, s.A, s.B) == 0 {
			continue
		}
		if mathx.PointInTriangle(p, anchor, s.A, s.B) {
			return true
		}
	}
	return false
}

// QueryBSP locates (x, y) by descending the NODES tree to a SSECTORS
// leaf. The BSP partitions the whole plane, so the leaf's sector is then
// checked against the sector's boundary lines and points outside it are
// not found. It also reports false when the level has no BSP data or is
// not loaded.
func (m *LevelMap) QueryBSP(x, y float64) (Location, bool) {
	if !m.Loaded() {
		return Location{}, false
	}
	return m.queryBSPPoint(mathx.V2(x, y))
}

func (m *LevelMap) queryBSPPoint(p mathx.Vec2) (Location, bool) {
	if len(m.bspSectors) == 0 {
		return Location{}, false
	}

	ss := 0
	if m.Nodes != nil && len(m.Nodes.Items) > 0 {
		n := m.Nodes.Root()
		// Depth is bounded by the node count; Load rejected cycles.
		for range m.Nodes.Items {
			node := &m.Nodes.Items[n]
			child := node.Child(node.Side(p))
			if child.IsLeaf() {
				ss = child.Index()
				break
			}
			n = child.Index()
		}
	}

	if ss >= len(m.bspSectors) || m.bspSectors[ss] == NoSector {
		return Location{}, false
	}
	sec := m.bspSectors[ss]
	if !m.sectorContains(sec, p) {
		return Location{}, false
	}
	return Location{Sector: sec, SubSector: ss}, true
}

// sectorContains tests p against the sector's edges with the even-odd
// rule, so holes and disjoint loops are handled. Points on an edge count
// as inside. A line with both sides in the sector contributes two edges
// and cancels out.
func (m *LevelMap) sectorContains(sec int, p mathx.Vec2) bool {
	inside := false
	for _, e := range m.Topology[sec].Edges {
		l := &m.LineDefs.Items[e.Line]
		a := m.Vertexes.Items[l.Start].Vec()
		b := m.Vertexes.Items[l.End].Vec()
		if mathx.PointOnSegment(p, a, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
