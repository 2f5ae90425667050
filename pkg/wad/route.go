package wad

import (
	"container/heap"

	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// routeNode is a sector in the A* open set.
type routeNode struct {
	sector int
	g, f   float64 // Cost from start, cost plus heuristic
	parent *routeNode
	index  int // Index in heap
}

type routeHeap []*routeNode

func (h routeHeap) Len() int           { return len(h) }
func (h routeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h routeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *routeHeap) Push(x any) {
	node := x.(*routeNode)
	node.index = len(*h)
	*h = append(*h, node)
}

func (h *routeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// SectorCenter returns the centre of the bounding box of the sector's
// edges, or false for a sector without edges.
func (m *LevelMap) SectorCenter(sector int) (mathx.Vec2, bool) {
	if sector < 0 || sector >= len(m.Topology) {
		return mathx.Vec2{}, false
	}
	b := mathx.EmptyBounds()
	for _, e := range m.Topology[sector].Edges {
		l := &m.LineDefs.Items[e.Line]
		b = b.Extend(m.Vertexes.Items[l.Start].Vec())
		b = b.Extend(m.Vertexes.Items[l.End].Vec())
	}
	if b.Empty() {
		return mathx.Vec2{}, false
	}
	return b.Center(), true
}

// Route finds the shortest chain of sectors from one sector to another,
// crossing only two-sided lines that have none of the blocked flag bits
// (for example formats.LineBlocking). Steps cost the distance between
// sector centres. It returns nil when no route exists or the level is
// not loaded.
func (m *LevelMap) Route(from, to int, blocked uint16) []int {
	if !m.Loaded() {
		return nil
	}
	goal, ok := m.SectorCenter(to)
	if !ok {
		return nil
	}
	start, ok := m.SectorCenter(from)
	if !ok {
		return nil
	}

	centers := make(map[int]mathx.Vec2)
	center := func(s int) (mathx.Vec2, bool) {
		if c, ok := centers[s]; ok {
			return c, true
		}
		c, ok := m.SectorCenter(s)
		if ok {
			centers[s] = c
		}
		return c, ok
	}

	open := &routeHeap{}
	heap.Init(open)
	closed := make(map[int]bool)
	nodes := make(map[int]*routeNode)

	first := &routeNode{sector: from, f: start.Distance(goal)}
	heap.Push(open, first)
	nodes[from] = first

	for open.Len() > 0 {
		current := heap.Pop(open).(*routeNode)
		if current.sector == to {
			return current.path()
		}
		closed[current.sector] = true

		here, _ := center(current.sector)
		for _, e := range m.Topology[current.sector].Edges {
			next := e.Destination
			if next == NoSector || closed[next] {
				continue
			}
			if blocked != 0 && m.LineDefs.Items[e.Line].Flags&blocked != 0 {
				continue
			}
			there, ok := center(next)
			if !ok {
				continue
			}

			g := current.g + here.Distance(there)
			neighbor, exists := nodes[next]
			if !exists {
				neighbor = &routeNode{sector: next, g: g, f: g + there.Distance(goal), parent: current}
				nodes[next] = neighbor
				heap.Push(open, neighbor)
			} else if g < neighbor.g {
				neighbor.f += g - neighbor.g
				neighbor.g = g
				neighbor.parent = current
				heap.Fix(open, neighbor.index)
			}
		}
	}
	return nil
}

// path walks parents back to the start, returning sectors start first.
func (n *routeNode) path() []int {
	var out []int
	for ; n != nil; n = n.parent {
		out = append(out, n.sector)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
