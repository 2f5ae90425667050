package formats

import (
	"math"

	"github.com/Faultbox/wadkit/pkg/cursor"
	mathx "github.com/Faultbox/wadkit/pkg/math"
)

// ThingSize is the on-disk size of a THINGS record.
const ThingSize = 10

// Thing option flags.
const (
	ThingSkill12         = 0x0001
	ThingSkill3          = 0x0002
	ThingSkill45         = 0x0004
	ThingAmbush          = 0x0008
	ThingMultiplayerOnly = 0x0010
)

// Thing is a spawn point placed in a level.
type Thing struct {
	X, Y  int16
	Angle int16 // Degrees, 0 = east, counter-clockwise
	Type  uint16
	Flags uint16

	// Position is the spawn point in world units.
	Position mathx.Vec2
}

// MapPoint returns the spawn point in map units.
func (t *Thing) MapPoint() mathx.Vec2 {
	return mathx.V2(float64(t.X), float64(t.Y))
}

// Radians returns the facing angle in radians.
func (t *Thing) Radians() float64 {
	return float64(t.Angle) * (math.Pi / 180)
}

// InSkill reports whether the thing spawns at the given skill (1-5).
func (t *Thing) InSkill(skill int) bool {
	switch {
	case skill <= 2:
		return t.Flags&ThingSkill12 != 0
	case skill == 3:
		return t.Flags&ThingSkill3 != 0
	default:
		return t.Flags&ThingSkill45 != 0
	}
}

// Ambush reports whether a monster waits silently for the player.
func (t *Thing) Ambush() bool { return t.Flags&ThingAmbush != 0 }

// MultiplayerOnly reports whether the thing appears only in net games.
func (t *Thing) MultiplayerOnly() bool { return t.Flags&ThingMultiplayerOnly != 0 }

// Things is a decoded THINGS lump.
type Things struct {
	Items []Thing
	// ByType maps a thing type to the indices of things with that type.
	ByType map[uint16][]int
}

// Kind implements Lump.
func (*Things) Kind() Kind { return KindThings }

// Len implements Lump.
func (t *Things) Len() int { return len(t.Items) }

// OfType returns the indices of all things of the given type.
func (t *Things) OfType(typeID uint16) []int {
	return t.ByType[typeID]
}

// ParseThings parses a THINGS lump.
func ParseThings(data []byte) (*Things, error) {
	count := len(data) / ThingSize
	things := &Things{
		Items:  make([]Thing, count),
		ByType: make(map[uint16][]int),
	}

	c := cursor.New(data, 0)
	for i := range things.Items {
		th := &things.Items[i]
		th.X = c.Int16()
		th.Y = c.Int16()
		th.Angle = c.Int16()
		th.Type = c.Uint16()
		th.Flags = c.Uint16()
		th.Position = th.MapPoint().Scale(MapScale)

		things.ByType[th.Type] = append(things.ByType[th.Type], i)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return things, nil
}
