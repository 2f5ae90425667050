package wad

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/wadkit/internal/logger"
	"github.com/Faultbox/wadkit/pkg/formats"
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// NoSector marks the absence of a sector: the far side of a one-sided
// wall, or a point outside every subsector.
const NoSector = -1

// LevelMap is one level of an archive. Its lumps are decoded by Load;
// fields other than Name are nil until Load succeeds.
//
// Fields are read-only once loaded and safe for concurrent readers.
type LevelMap struct {
	Name string

	archive *Archive       // Not owned
	entries map[string]int // Lump name to directory index
	order   []int          // Directory indexes in directory order
	store   *LumpStore

	Things       *formats.Things
	Vertexes     *formats.Vertexes
	LineDefs     *formats.LineDefs
	SideDefs     *formats.SideDefs
	Sectors      *formats.Sectors
	Segs         *formats.Segs
	SubSectors   *formats.SubSectors
	Nodes        *formats.Nodes
	GLVertexes   *formats.GLVertexes
	GLSegs       *formats.GLSegs
	GLSubSectors *formats.GLSubSectors

	// Topology holds one SectorInfo per sector.
	Topology []SectorInfo
	// SubSectorSectors maps each GL subsector (or BSP subsector when the
	// level has no GL nodes) to its owning sector, or NoSector.
	SubSectorSectors []int
	// ThingSectors maps each thing to its containing sector, or NoSector.
	ThingSectors []int
	// Leaves lists the BSP subsectors reachable from the root node.
	Leaves []int

	polygons   [][]segLine // Resolved GL subsector boundaries
	bspSectors []int       // Owner of each SSECTORS subsector

	mu      sync.Mutex
	loaded  bool
	loadErr error
}

func newLevelMap(a *Archive, name string) *LevelMap {
	return &LevelMap{
		Name:    name,
		archive: a,
		entries: make(map[string]int),
		store:   NewLumpStore(a.buf),
	}
}

func (m *LevelMap) attach(e Entry) {
	if _, ok := m.entries[e.Name]; !ok {
		m.order = append(m.order, e.Index)
	}
	m.entries[e.Name] = e.Index
}

// Archive returns the archive the level belongs to.
func (m *LevelMap) Archive() *Archive { return m.archive }

// Entries returns the level's lumps in directory order.
func (m *LevelMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, i := range m.order {
		e := m.archive.entries[i]
		if m.entries[e.Name] == i {
			out = append(out, e)
		}
	}
	return out
}

// Entry returns the level lump called name.
func (m *LevelMap) Entry(name string) (Entry, bool) {
	i, ok := m.entries[name]
	if !ok {
		return Entry{}, false
	}
	return m.archive.entries[i], true
}

// HasGLNodes reports whether the level carries GL_VERT, GL_SEGS and GL_SSECT.
func (m *LevelMap) HasGLNodes() bool {
	for _, name := range []string{formats.LumpGLVertexes, formats.LumpGLSegs, formats.LumpGLSubSectors} {
		if _, ok := m.entries[name]; !ok {
			return false
		}
	}
	return true
}

// Store returns the level's lump store.
func (m *LevelMap) Store() *LumpStore { return m.store }

// Loaded reports whether Load has succeeded.
func (m *LevelMap) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded && m.loadErr == nil
}

// Load decodes the level's lumps and derives its topology. It runs once;
// later calls return the first result.
func (m *LevelMap) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.loadErr
	}
	m.loaded = true
	if err := m.load(); err != nil {
		m.loadErr = fmt.Errorf("level %s: %w", m.Name, err)
		logger.Named("wad").Warn("level failed to load", zap.String("level", m.Name), zap.Error(err))
	}
	return m.loadErr
}

func (m *LevelMap) load() error {
	if err := m.decodeLumps(); err != nil {
		return err
	}

	if m.Vertexes == nil || m.LineDefs == nil || m.SideDefs == nil || m.Sectors == nil {
		return fmt.Errorf("%w: missing VERTEXES, LINEDEFS, SIDEDEFS or SECTORS", ErrCorruptGeometry)
	}
	if m.Things == nil {
		m.Things = &formats.Things{ByType: map[uint16][]int{}}
	}

	topo, err := buildTopology(m)
	if err != nil {
		return err
	}

	m.Topology = topo.sectors
	m.SubSectorSectors = topo.subSectorSectors
	m.polygons = topo.polygons
	m.bspSectors = topo.bspSectors
	m.Leaves = topo.leaves
	m.ThingSectors = m.assignThings()

	logger.Named("wad").Debug("loaded level",
		zap.String("level", m.Name),
		zap.Int("sectors", len(m.Topology)),
		zap.Int("lines", len(m.LineDefs.Items)),
		zap.Int("things", len(m.Things.Items)),
		zap.Bool("glNodes", m.GLSubSectors != nil))
	return nil
}

// decodeLumps decodes GL_VERT first so GL_SEGS and GL_SSECT see its version.
func (m *LevelMap) decodeLumps() error {
	var ctx formats.DecodeContext
	if e, ok := m.Entry(formats.LumpGLVertexes); ok {
		lump, err := m.store.Load(e, ctx)
		if err != nil {
			return err
		}
		ctx.GLVertexVersion = lump.(*formats.GLVertexes).Version()
	}

	for _, e := range m.Entries() {
		if _, err := m.store.Load(e, ctx); err != nil {
			return err
		}
	}

	m.Things = lumpAs[*formats.Things](m.store, formats.LumpThings)
	m.Vertexes = lumpAs[*formats.Vertexes](m.store, formats.LumpVertexes)
	m.LineDefs = lumpAs[*formats.LineDefs](m.store, formats.LumpLineDefs)
	m.SideDefs = lumpAs[*formats.SideDefs](m.store, formats.LumpSideDefs)
	m.Sectors = lumpAs[*formats.Sectors](m.store, formats.LumpSectors)
	m.Segs = lumpAs[*formats.Segs](m.store, formats.LumpSegs)
	m.SubSectors = lumpAs[*formats.SubSectors](m.store, formats.LumpSubSectors)
	m.Nodes = lumpAs[*formats.Nodes](m.store, formats.LumpNodes)
	m.GLVertexes = lumpAs[*formats.GLVertexes](m.store, formats.LumpGLVertexes)
	m.GLSegs = lumpAs[*formats.GLSegs](m.store, formats.LumpGLSegs)
	m.GLSubSectors = lumpAs[*formats.GLSubSectors](m.store, formats.LumpGLSubSectors)

	// GL segs and subsectors are useless without each other and the vertexes.
	if m.GLVertexes == nil || m.GLSegs == nil || m.GLSubSectors == nil {
		m.GLVertexes, m.GLSegs, m.GLSubSectors = nil, nil, nil
	}
	return nil
}

// Vertex resolves a GL seg endpoint to map units.
func (m *LevelMap) Vertex(ref formats.VertexRef) (mathx.Vec2, error) {
	i := ref.Index()
	if ref.IsExtended() {
		if m.GLVertexes == nil || i >= len(m.GLVertexes.Items) {
			return mathx.Vec2{}, fmt.Errorf("%w: GL vertex %d out of range", ErrCorruptGeometry, i)
		}
		return m.GLVertexes.Items[i], nil
	}
	if m.Vertexes == nil || i >= len(m.Vertexes.Items) {
		return mathx.Vec2{}, fmt.Errorf("%w: vertex %d out of range", ErrCorruptGeometry, i)
	}
	return m.Vertexes.Items[i].Vec(), nil
}

// SubSectorPolygon returns the boundary of GL subsector i as the start
// point of each seg, in map units.
func (m *LevelMap) SubSectorPolygon(i int) []mathx.Vec2 {
	if i < 0 || i >= len(m.polygons) {
		return nil
	}
	poly := make([]mathx.Vec2, len(m.polygons[i]))
	for j, s := range m.polygons[i] {
		poly[j] = s.A
	}
	return poly
}

// Bounds returns the bounding box of the level's vertexes in map units.
func (m *LevelMap) Bounds() mathx.Bounds {
	b := mathx.EmptyBounds()
	if m.Vertexes == nil {
		return b
	}
	for _, v := range m.Vertexes.Items {
		b = b.Extend(v.Vec())
	}
	return b
}

// assignThings locates every thing's sector. GL subsectors are used when
// present, BSP descent otherwise.
func (m *LevelMap) assignThings() []int {
	out := make([]int, len(m.Things.Items))
	for i := range m.Things.Items {
		p := m.Things.Items[i].MapPoint()
		loc, ok := m.locate(p)
		if !ok {
			out[i] = NoSector
			continue
		}
		out[i] = loc.Sector
		m.Topology[loc.Sector].Things = append(m.Topology[loc.Sector].Things, i)
	}
	return out
}

func (m *LevelMap) locate(p mathx.Vec2) (Location, bool) {
	if m.polygons != nil {
		return m.queryPoint(p)
	}
	return m.queryBSPPoint(p)
}
