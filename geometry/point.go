package geometry

import (
	"fmt"
	"math"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a center: a zero measure entity at a fixed location.
type Point struct {
	id     EntityID
	owner  int
	coords []float64
}

func NewPoint(id EntityID, owner int, coords ...float64) Point {
	checkDim(len(coords))
	return Point{id: id, owner: owner, coords: append([]float64(nil), coords...)}
}

func (p Point) Kind() EntityKind         { return KindPoint }
func (p Point) ID() EntityID             { return p.id }
func (p Point) OwnerRank() int           { return p.owner }
func (p Point) PhysicalDimension() int   { return len(p.coords) }
func (p Point) ParametricDimension() int { return 0 }
func (p Point) Measure() float64         { return 0 }
func (p Point) Coords() []float64        { return append([]float64(nil), p.coords...) }

func (p Point) Centroid() (v r3.Vec) {
	c := [3]float64{}
	copy(c[:], p.coords)
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}
}

func (p Point) BoundingBox() Box {
	var c [3]float64
	copy(c[:], p.coords)
	return NewBoxFromMinMax(p.id, p.owner, c, c)
}

// MapToReferenceFrame gives the offset from the point.
func (p Point) MapToReferenceFrame(point []float64) (ref []float64, status MappingStatus) {
	if len(point) != len(p.coords) {
		return nil, MappingStatus{}
	}
	ref = make([]float64, len(point))
	for d := range point {
		ref[d] = point[d] - p.coords[d]
	}
	return ref, MappingStatus{Success: true}
}

// CheckPointInclusion treats tolerance as an absolute distance from the point.
func (p Point) CheckPointInclusion(ref []float64, tolerance float64) bool {
	var d2 float64
	for _, x := range ref {
		d2 += x * x
	}
	return math.Sqrt(d2) <= tolerance
}

func (p Point) MapToPhysicalFrame(ref []float64) (point []float64) {
	if len(ref) != len(p.coords) {
		exceptions.Panicf("reference point of dimension %d for a %d dimensional point", len(ref), len(p.coords))
	}
	point = make([]float64, len(ref))
	for d := range ref {
		point[d] = ref[d] + p.coords[d]
	}
	return
}

func (p Point) String() string {
	return fmt.Sprintf("Point{id: %d, rank: %d, x: %v}", p.id, p.owner, p.coords)
}
