package formats

import (
	"fmt"
	"strings"

	"github.com/Faultbox/wadkit/pkg/cursor"
)

// PatchNames is a decoded PNAMES lump. Texture definitions refer to
// patches by index into this list.
type PatchNames struct {
	Names []string
}

// Kind implements Lump.
func (*PatchNames) Kind() Kind { return KindPatchNames }

// Len implements Lump.
func (p *PatchNames) Len() int { return len(p.Names) }

// Name returns the patch name at index i.
func (p *PatchNames) Name(i int) (string, bool) {
	if p == nil || i < 0 || i >= len(p.Names) {
		return "", false
	}
	return p.Names[i], true
}

// LookupNames returns the lump names to try for a patch: the stored name,
// then its upper-cased form when that differs. Some IWADs list patches
// in lower case while the lumps themselves are upper case.
func LookupNames(name string) []string {
	upper := strings.ToUpper(name)
	if upper == name {
		return []string{name}
	}
	return []string{name, upper}
}

// ParsePatchNames parses a PNAMES lump.
func ParsePatchNames(data []byte) (*PatchNames, error) {
	c := cursor.New(data, 0)
	count := c.Uint32()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if int64(count)*8 > int64(c.Remaining()) {
		return nil, fmt.Errorf("%w: PNAMES declares %d names in %d bytes", cursor.ErrTruncated, count, len(data))
	}

	pn := &PatchNames{Names: make([]string, count)}
	for i := range pn.Names {
		pn.Names[i] = c.Name8()
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return pn, nil
}
