// Package partitions decomposes geometry across ranks by recursive
// coordinate bisection and answers ownership queries against the result.
package partitions

import (
	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

const NotFound = geometry.NotFound

// Callbacks expose one partitioner's objects to a backend. They are closures
// bound to the partitioner instance.
type Callbacks struct {
	NumObjects   func() int
	ObjectList   func() (gids []geometry.EntityID, lids []int)
	NumGeometry  func() int
	GeometryList func() []float64 // NumObjects x NumGeometry, row major
}

// Assignment is one object moving between ranks.
type Assignment struct {
	GID  geometry.EntityID
	LID  int
	Rank int // destination for exports, source for imports
}

type Result struct {
	Changes bool
	Exports []Assignment
	Imports []Assignment
}

// Backend computes a decomposition. SubBox is valid for every rank after a
// successful Partition on all ranks.
type Backend interface {
	Partition(c comm.Communicator, cb Callbacks) (*Result, error)
	SubBox(rank int) (dim int, box geometry.Box, err error)
}
