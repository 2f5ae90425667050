package wad

import (
	"fmt"
	"sync"

	"github.com/Faultbox/wadkit/pkg/formats"
)

// LumpStore decodes lumps from an archive buffer and keeps them by name.
// A name is decoded at most once; later loads return the same object.
type LumpStore struct {
	buf []byte

	mu    sync.Mutex
	lumps map[string]formats.Lump
}

// NewLumpStore returns an empty store over buf.
func NewLumpStore(buf []byte) *LumpStore {
	return &LumpStore{buf: buf, lumps: make(map[string]formats.Lump)}
}

// Load decodes e unless a lump of the same name is already loaded.
// Unknown lump names yield a nil lump and no error.
func (s *LumpStore) Load(e Entry, ctx formats.DecodeContext) (formats.Lump, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lump, ok := s.lumps[e.Name]; ok {
		return lump, nil
	}

	lump, err := formats.Decode(e.Name, s.buf[e.Offset:e.Offset+e.Size], ctx)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", e.Name, err)
	}
	s.lumps[e.Name] = lump
	return lump, nil
}

// Get returns a previously loaded lump.
func (s *LumpStore) Get(name string) (formats.Lump, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lump, ok := s.lumps[name]
	return lump, ok && lump != nil
}

// Len returns the number of names loaded, including unknown ones.
func (s *LumpStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lumps)
}

// lumpAs returns the named lump as T, or nil when absent.
func lumpAs[T formats.Lump](s *LumpStore, name string) T {
	var zero T
	lump, ok := s.Get(name)
	if !ok {
		return zero
	}
	t, ok := lump.(T)
	if !ok {
		return zero
	}
	return t
}
