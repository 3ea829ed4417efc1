package geometry

import (
	"iter"

	"github.com/gomlx/exceptions"
)

// Predicate selects entities from a set.
type Predicate func(e Entity) bool

func SelectAll(Entity) bool { return true }

func SelectKind(k EntityKind) Predicate {
	return func(e Entity) bool { return e.Kind() == k }
}

func SelectOwner(rank int) Predicate {
	return func(e Entity) bool { return e.OwnerRank() == rank }
}

func And(preds ...Predicate) Predicate {
	return func(e Entity) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// EntitySet is the local geometry of one rank in a fixed physical dimension.
type EntitySet struct {
	dim      int
	entities []Entity
}

func NewEntitySet(dim int, entities ...Entity) (s *EntitySet) {
	checkDim(dim)
	s = &EntitySet{dim: dim}
	for _, e := range entities {
		s.Add(e)
	}
	return
}

// NewPointSet builds a set of points from flattened coordinates.
func NewPointSet(owner int, coords []float64, ids []EntityID, dim int) (s *EntitySet) {
	checkDim(dim)
	if len(coords) != len(ids)*dim {
		exceptions.Panicf("%d coordinates for %d points of dimension %d", len(coords), len(ids), dim)
	}
	s = &EntitySet{dim: dim, entities: make([]Entity, 0, len(ids))}
	for i, id := range ids {
		s.entities = append(s.entities, NewPoint(id, owner, coords[i*dim:(i+1)*dim]...))
	}
	return
}

func (s *EntitySet) Add(e Entity) {
	if e.Kind() == KindPoint && e.PhysicalDimension() != s.dim {
		exceptions.Panicf("point %d of dimension %d added to a %d dimensional set",
			e.ID(), e.PhysicalDimension(), s.dim)
	}
	s.entities = append(s.entities, e)
}

func (s *EntitySet) PhysicalDimension() int { return s.dim }

// Entities yields the selected entities in insertion order. The sequence can
// be ranged over any number of times.
func (s *EntitySet) Entities(pred Predicate) iter.Seq[Entity] {
	if pred == nil {
		pred = SelectAll
	}
	return func(yield func(Entity) bool) {
		for _, e := range s.entities {
			if pred(e) && !yield(e) {
				return
			}
		}
	}
}

func (s *EntitySet) Count(pred Predicate) (n int) {
	for range s.Entities(pred) {
		n++
	}
	return
}

// BoundingBox unites the boxes of all entities. An empty set gives the empty box.
func (s *EntitySet) BoundingBox(id EntityID, owner int) (b Box) {
	first := true
	for e := range s.Entities(SelectAll) {
		if first {
			b, first = e.BoundingBox(), false
			continue
		}
		b = Unite(b, e.BoundingBox())
	}
	if first {
		b = EmptyBox()
	}
	return NewBoxFromBounds(id, owner, b.Bounds())
}
