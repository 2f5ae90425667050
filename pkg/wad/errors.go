package wad

import (
	"errors"

	"github.com/Faultbox/wadkit/pkg/cursor"
)

// Errors.
var (
	// ErrTruncatedArchive is returned when a read runs past the end of the
	// archive. It aborts the whole load.
	ErrTruncatedArchive = cursor.ErrTruncated

	ErrInvalidMagic  = errors.New("invalid WAD magic")
	ErrInvalidHeader = errors.New("invalid WAD header")

	// ErrCorruptGeometry is returned by LevelMap.Load when an index points
	// outside its table. Only the affected level is unusable.
	ErrCorruptGeometry = errors.New("corrupt level geometry")

	ErrLevelNotFound = errors.New("level not found")
)
