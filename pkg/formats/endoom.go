package formats

import (
	"fmt"
	"strings"

	"github.com/Faultbox/wadkit/pkg/cursor"
	"github.com/Faultbox/wadkit/pkg/encoding"
)

// ENDOOM screen geometry.
const (
	EndoomColumns = 80
	EndoomRows    = 25
	EndoomSize    = EndoomColumns * EndoomRows * 2
)

// EndoomCell is one text-mode character cell.
type EndoomCell struct {
	Char      byte // CP437 code point
	Attribute byte // Low nibble foreground, bits 4-6 background, bit 7 blink
}

// Foreground returns the VGA foreground color index (0-15).
func (c EndoomCell) Foreground() int { return int(c.Attribute & 0x0F) }

// Background returns the VGA background color index (0-7).
func (c EndoomCell) Background() int { return int(c.Attribute>>4) & 0x07 }

// Blink reports whether the cell blinks.
func (c EndoomCell) Blink() bool { return c.Attribute&0x80 != 0 }

// Endoom is a decoded ENDOOM lump: the text screen shown on exit.
type Endoom struct {
	Cells [EndoomRows * EndoomColumns]EndoomCell
}

// Kind implements Lump.
func (*Endoom) Kind() Kind { return KindEndoom }

// Len implements Lump.
func (e *Endoom) Len() int { return len(e.Cells) }

// Row returns the characters of row y decoded to UTF-8.
func (e *Endoom) Row(y int) string {
	raw := make([]byte, EndoomColumns)
	for x := range raw {
		raw[x] = e.Cells[y*EndoomColumns+x].Char
	}
	return encoding.CP437ToUTF8(raw)
}

// Text returns the whole screen as UTF-8, one line per row with trailing
// spaces removed.
func (e *Endoom) Text() string {
	var sb strings.Builder
	for y := 0; y < EndoomRows; y++ {
		sb.WriteString(strings.TrimRight(e.Row(y), " \x00"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseEndoom parses an ENDOOM lump.
func ParseEndoom(data []byte) (*Endoom, error) {
	if len(data) < EndoomSize {
		return nil, fmt.Errorf("%w: ENDOOM is %d bytes, want %d", cursor.ErrTruncated, len(data), EndoomSize)
	}
	e := &Endoom{}
	for i := range e.Cells {
		e.Cells[i] = EndoomCell{Char: data[i*2], Attribute: data[i*2+1]}
	}
	return e, nil
}
