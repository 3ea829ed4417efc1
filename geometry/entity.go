package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"
)

type EntityKind uint8

const (
	KindPoint EntityKind = iota
	KindBox
)

func (k EntityKind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindBox:
		return "Box"
	}
	return "Unknown"
}

// MappingStatus reports whether a physical point could be mapped into an
// entity's reference frame.
type MappingStatus struct {
	Success bool
}

// Entity is the view the transfer code needs of a geometric object. The set
// of kinds is closed: Point and Box.
type Entity interface {
	Kind() EntityKind
	ID() EntityID
	OwnerRank() int
	PhysicalDimension() int
	ParametricDimension() int
	Measure() float64
	Centroid() r3.Vec
	BoundingBox() Box
	MapToReferenceFrame(point []float64) ([]float64, MappingStatus)
	CheckPointInclusion(ref []float64, tolerance float64) bool
	MapToPhysicalFrame(ref []float64) []float64
}

// Coords returns the first dim components of v.
func Coords(v r3.Vec, dim int) []float64 {
	checkDim(dim)
	return []float64{v.X, v.Y, v.Z}[:dim]
}

func (b Box) Kind() EntityKind         { return KindBox }
func (b Box) PhysicalDimension() int   { return 3 }
func (b Box) ParametricDimension() int { return 3 }
func (b Box) BoundingBox() Box         { return b }

// A box is its own reference frame.
func (b Box) MapToReferenceFrame(point []float64) ([]float64, MappingStatus) {
	return append([]float64(nil), point...), MappingStatus{Success: true}
}

func (b Box) CheckPointInclusion(ref []float64, tolerance float64) bool {
	return b.PointInclusion(ref, tolerance)
}

func (b Box) MapToPhysicalFrame(ref []float64) []float64 {
	return append([]float64(nil), ref...)
}
