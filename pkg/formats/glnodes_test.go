package formats

import (
	"errors"
	"testing"

	mathx "github.com/Faultbox/wadkit/pkg/math"
)

func TestParseGLVertexes_Versions(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		version GLVersion
		want    []mathx.Vec2
	}{
		{
			name:    "legacy",
			data:    le(int16(64), int16(-32), int16(0), int16(128)),
			version: GLLegacy,
			want:    []mathx.Vec2{mathx.V2(64, -32), mathx.V2(0, 128)},
		},
		{
			name:    "v2",
			data:    le("gNd2", int32(98304), int32(-131072)),
			version: GLV2,
			want:    []mathx.Vec2{mathx.V2(1.5, -2)},
		},
		{
			name:    "v5",
			data:    le("gNd5", int32(65536*10), int32(32768)),
			version: GLV5,
			want:    []mathx.Vec2{mathx.V2(10, 0.5)},
		},
		{
			name:    "v5 capital D",
			data:    le("gND5", int32(65536*10), int32(32768)),
			version: GLV5,
			want:    []mathx.Vec2{mathx.V2(10, 0.5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verts, err := ParseGLVertexes(tt.data)
			if err != nil {
				t.Fatalf("ParseGLVertexes failed: %v", err)
			}
			if verts.Version() != tt.version {
				t.Errorf("expected version %v, got %v", tt.version, verts.Version())
			}
			if len(verts.Items) != len(tt.want) {
				t.Fatalf("expected %d vertexes, got %d", len(tt.want), len(verts.Items))
			}
			for i, w := range tt.want {
				if verts.Items[i] != w {
					t.Errorf("vertex %d: expected %v, got %v", i, w, verts.Items[i])
				}
			}
		})
	}
}

func TestVertexLayout_UnknownMagic(t *testing.T) {
	layout, err := VertexLayout(le("gNd9", int32(0), int32(0)))
	if !errors.Is(err, ErrUnsupportedGLVersion) {
		t.Errorf("expected ErrUnsupportedGLVersion, got %v", err)
	}
	if layout != LayoutLegacy {
		t.Errorf("expected legacy fallback, got %+v", layout)
	}
}

func TestParseGLSegs_V3(t *testing.T) {
	data := le("gNd3",
		uint32(1<<30|2), uint32(5), uint16(7), uint16(1), uint32(0xFFFFFFFF),
		uint32(5), uint32(1<<30|9), uint16(NoIndex), uint16(0), uint32(3),
	)

	// The segs' own magic wins over the vertex version.
	segs, err := ParseGLSegs(data, GLLegacy)
	if err != nil {
		t.Fatalf("ParseGLSegs failed: %v", err)
	}
	if segs.Layout.Version != GLV3 || segs.Layout.SegSize != 16 || segs.Layout.HeaderSize != 4 {
		t.Fatalf("expected v3 layout, got %+v", segs.Layout)
	}
	if len(segs.Items) != 2 {
		t.Fatalf("expected 2 segs, got %d", len(segs.Items))
	}

	s := segs.Items[0]
	if s.Start != ExtendedVertex(2) {
		t.Errorf("expected start gl(2), got %v", s.Start)
	}
	if s.End != BaseVertex(5) {
		t.Errorf("expected end base(5), got %v", s.End)
	}
	if s.Line != 7 || s.Direction != 1 || s.Partner != NoPartner || s.IsMiniseg() {
		t.Errorf("unexpected seg %+v", s)
	}

	s = segs.Items[1]
	if s.End != ExtendedVertex(9) || !s.IsMiniseg() || s.Partner != 3 {
		t.Errorf("unexpected seg %+v", s)
	}
}

func TestParseGLSegs_V5(t *testing.T) {
	data := le(
		uint32(1<<31|1), uint32(1<<30|3), uint16(4), uint16(0), uint32(0),
	)

	segs, err := ParseGLSegs(data, GLV5)
	if err != nil {
		t.Fatalf("ParseGLSegs failed: %v", err)
	}
	if segs.Layout.Version != GLV5 || segs.Layout.HeaderSize != 0 || segs.Layout.ExtendedBit != 31 {
		t.Fatalf("expected v5 layout, got %+v", segs.Layout)
	}
	if len(segs.Items) != 1 {
		t.Fatalf("expected 1 seg, got %d", len(segs.Items))
	}

	s := segs.Items[0]
	if s.Start != ExtendedVertex(1) {
		t.Errorf("expected start gl(1), got %v", s.Start)
	}
	// Bit 30 carries no meaning in v5.
	if s.End.IsExtended() || s.End.Index() != 1<<30|3 {
		t.Errorf("expected end base(%d), got %v", 1<<30|3, s.End)
	}
	if s.Partner != 0 || s.Line != 4 {
		t.Errorf("unexpected seg %+v", s)
	}
}

func TestParseGLSegs_Legacy(t *testing.T) {
	data := le(
		uint16(0x8001), uint16(3), uint16(NoIndex), uint16(0), uint16(NoIndex),
		uint16(3), uint16(0x8000), uint16(2), uint16(1), uint16(0),
	)

	segs, err := ParseGLSegs(data, GLV2)
	if err != nil {
		t.Fatalf("ParseGLSegs failed: %v", err)
	}
	if segs.Layout != LayoutLegacy {
		t.Fatalf("expected legacy layout, got %+v", segs.Layout)
	}
	if len(segs.Items) != 2 {
		t.Fatalf("expected 2 segs, got %d", len(segs.Items))
	}
	if segs.Items[0].Start != ExtendedVertex(1) || segs.Items[0].End != BaseVertex(3) {
		t.Errorf("unexpected endpoints %v %v", segs.Items[0].Start, segs.Items[0].End)
	}
	if !segs.Items[0].IsMiniseg() || segs.Items[0].Partner != NoPartner {
		t.Errorf("expected partnerless miniseg, got %+v", segs.Items[0])
	}
	if segs.Items[1].End != ExtendedVertex(0) || segs.Items[1].Partner != 0 {
		t.Errorf("unexpected seg %+v", segs.Items[1])
	}
}

func TestParseGLSegs_UnknownMagicFallsBack(t *testing.T) {
	data := le("gNd7", uint16(0), uint16(0), uint16(0))

	layout, err := SegLayout(data, GLV5)
	if !errors.Is(err, ErrUnsupportedGLVersion) {
		t.Errorf("expected ErrUnsupportedGLVersion, got %v", err)
	}
	if layout != LayoutLegacy {
		t.Errorf("expected legacy fallback, got %+v", layout)
	}

	segs, err := ParseGLSegs(data, GLV5)
	if err != nil {
		t.Fatalf("ParseGLSegs failed: %v", err)
	}
	if segs.Layout != LayoutLegacy || len(segs.Items) != 1 {
		t.Errorf("expected one legacy seg, got %+v", segs)
	}
}

func TestParseGLSubSectors(t *testing.T) {
	legacy, err := ParseGLSubSectors(le(uint16(4), uint16(0), uint16(3), uint16(4)), GLLegacy)
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if len(legacy.Items) != 2 || legacy.Items[1] != (GLSubSector{Count: 3, First: 4}) {
		t.Errorf("unexpected legacy subsectors %+v", legacy.Items)
	}

	v3, err := ParseGLSubSectors(le("gNd3", uint32(5), uint32(70000)), GLLegacy)
	if err != nil {
		t.Fatalf("v3: %v", err)
	}
	if len(v3.Items) != 1 || v3.Items[0] != (GLSubSector{Count: 5, First: 70000}) {
		t.Errorf("unexpected v3 subsectors %+v", v3.Items)
	}

	v5, err := ParseGLSubSectors(le(uint32(3), uint32(9)), GLV5)
	if err != nil {
		t.Fatalf("v5: %v", err)
	}
	if v5.Layout.Version != GLV5 || v5.Items[0] != (GLSubSector{Count: 3, First: 9}) {
		t.Errorf("unexpected v5 subsectors %+v", v5.Items)
	}
}
