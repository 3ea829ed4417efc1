package utils

import (
	"github.com/gomlx/exceptions"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

// Map distributes global ids over the ranks of a communicator. Each rank
// lists the ids it owns in local order.
type Map struct {
	comm        comm.Communicator
	gids        []geometry.EntityID
	lids        map[geometry.EntityID]int
	globalCount int
}

// NewMap is collective.
func NewMap(c comm.Communicator, gids []geometry.EntityID) (m *Map) {
	m = &Map{
		comm: c,
		gids: append([]geometry.EntityID(nil), gids...),
		lids: make(map[geometry.EntityID]int, len(gids)),
	}
	for i, id := range gids {
		if _, dup := m.lids[id]; dup {
			exceptions.Panicf("global id %d listed twice on rank %d", id, c.Rank())
		}
		m.lids[id] = i
	}
	m.globalCount = c.AllReduceInt(comm.Sum, []int{len(gids)})[0]
	return
}

func (m *Map) Comm() comm.Communicator { return m.comm }
func (m *Map) LocalCount() int         { return len(m.gids) }
func (m *Map) GlobalCount() int        { return m.globalCount }

func (m *Map) GlobalIDs() []geometry.EntityID {
	return append([]geometry.EntityID(nil), m.gids...)
}

func (m *Map) GlobalID(lid int) geometry.EntityID {
	if lid < 0 || lid >= len(m.gids) {
		exceptions.Panicf("local index %d out of range [0, %d)", lid, len(m.gids))
	}
	return m.gids[lid]
}

// LocalIndex returns the local position of gid, or -1 if it is not owned here.
func (m *Map) LocalIndex(gid geometry.EntityID) int {
	if lid, ok := m.lids[gid]; ok {
		return lid
	}
	return -1
}

func (m *Map) IsOwned(gid geometry.EntityID) bool {
	_, ok := m.lids[gid]
	return ok
}

// SameAs compares the local layout of two maps.
func (m *Map) SameAs(o *Map) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil || len(m.gids) != len(o.gids) {
		return false
	}
	for i, id := range m.gids {
		if o.gids[i] != id {
			return false
		}
	}
	return true
}
