// Package geometry holds the bounding volumes and entity views shared by the
// partitioner and the point cloud operators.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

type EntityID uint64

const InvalidEntityID = EntityID(math.MaxUint64)

// BoxByteSize is the wire size of a Box: id, owner rank, then the six bounds.
const BoxByteSize = 8 + 4 + 6*8

// Box is an axis aligned box, always three dimensional. Lower dimensional
// boxes collapse the unused axes to zero width. The all zero box is the
// canonical empty box.
type Box struct {
	id       EntityID
	owner    int
	bounds   [6]float64 // xmin, ymin, zmin, xmax, ymax, zmax
	centroid r3.Vec
}

func NewBox(id EntityID, owner int, xMin, yMin, zMin, xMax, yMax, zMax float64) Box {
	return NewBoxFromBounds(id, owner, [6]float64{xMin, yMin, zMin, xMax, yMax, zMax})
}

func NewBoxFromMinMax(id EntityID, owner int, lo, hi [3]float64) Box {
	return NewBoxFromBounds(id, owner, [6]float64{lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]})
}

func NewBoxFromBounds(id EntityID, owner int, bounds [6]float64) (b Box) {
	b = Box{id: id, owner: owner, bounds: bounds}
	b.centroid = r3.Vec{
		X: midpoint(bounds[0], bounds[3]),
		Y: midpoint(bounds[1], bounds[4]),
		Z: midpoint(bounds[2], bounds[5]),
	}
	return
}

// midpoint stays finite for the +/- MaxFloat64 domain boxes.
func midpoint(a, b float64) float64 {
	return a/2 + b/2
}

// EmptyBox returns the canonical empty box, unowned.
func EmptyBox() Box {
	return Box{id: InvalidEntityID, owner: -1}
}

// InfiniteBox spans the whole representable domain on the first dim axes.
func InfiniteBox(id EntityID, owner, dim int) Box {
	var lo, hi [3]float64
	for d := 0; d < dim; d++ {
		lo[d], hi[d] = -math.MaxFloat64, math.MaxFloat64
	}
	return NewBoxFromMinMax(id, owner, lo, hi)
}

// BoundingBoxOf returns the tight box around coords, which holds points of
// dim coordinates each. No points gives the empty box.
func BoundingBoxOf(id EntityID, owner int, coords []float64, dim int) Box {
	checkDim(dim)
	if len(coords)%dim != 0 {
		exceptions.Panicf("coordinate array of length %d is not a multiple of dimension %d", len(coords), dim)
	}
	n := len(coords) / dim
	if n == 0 {
		b := EmptyBox()
		b.id, b.owner = id, owner
		return b
	}
	var lo, hi [3]float64
	for d := 0; d < dim; d++ {
		lo[d], hi[d] = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			x := coords[i*dim+d]
			lo[d] = math.Min(lo[d], x)
			hi[d] = math.Max(hi[d], x)
		}
	}
	return NewBoxFromMinMax(id, owner, lo, hi)
}

func checkDim(dim int) {
	if dim < 1 || dim > 3 {
		exceptions.Panicf("physical dimension %d not in [1,3]", dim)
	}
}

func (b Box) ID() EntityID       { return b.id }
func (b Box) OwnerRank() int     { return b.owner }
func (b Box) Bounds() [6]float64 { return b.bounds }
func (b Box) Centroid() r3.Vec   { return b.centroid }
func (b Box) Min() [3]float64    { return [3]float64{b.bounds[0], b.bounds[1], b.bounds[2]} }
func (b Box) Max() [3]float64    { return [3]float64{b.bounds[3], b.bounds[4], b.bounds[5]} }

func (b Box) WithOwner(owner int) Box {
	b.owner = owner
	return b
}

func (b Box) IsEmpty() bool {
	return b.bounds == [6]float64{}
}

// Measure is the volume of the box. Degenerate and empty boxes measure zero.
func (b Box) Measure() (m float64) {
	m = 1
	for d := 0; d < 3; d++ {
		m *= math.Max(0, b.bounds[d+3]-b.bounds[d])
	}
	return
}

// PointInclusion reports whether point lies in the closed box grown by a
// tolerance relative to each axis extent. Missing coordinates are zero.
func (b Box) PointInclusion(point []float64, tolerance float64) bool {
	if len(point) > 3 {
		exceptions.Panicf("point of dimension %d", len(point))
	}
	for d := 0; d < 3; d++ {
		var x float64
		if d < len(point) {
			x = point[d]
		}
		lo, hi := b.bounds[d], b.bounds[d+3]
		if tolerance > 0 {
			slack := tolerance * (hi - lo)
			lo, hi = lo-slack, hi+slack
		}
		if x < lo || x > hi {
			return false
		}
	}
	return true
}

// Expand grows the first dim axes by r on both sides.
func (b Box) Expand(r float64, dim int) Box {
	checkDim(dim)
	bounds := b.bounds
	for d := 0; d < dim; d++ {
		bounds[d] -= r
		bounds[d+3] += r
	}
	return NewBoxFromBounds(b.id, b.owner, bounds)
}

// Intersect returns the overlap of a and b when they touch or overlap.
func Intersect(a, b Box) (ok bool, c Box) {
	var lo, hi [3]float64
	for d := 0; d < 3; d++ {
		lo[d] = math.Max(a.bounds[d], b.bounds[d])
		hi[d] = math.Min(a.bounds[d+3], b.bounds[d+3])
		if lo[d] > hi[d] {
			return false, EmptyBox()
		}
	}
	return true, NewBoxFromMinMax(InvalidEntityID, -1, lo, hi)
}

func CheckForIntersection(a, b Box) bool {
	for d := 0; d < 3; d++ {
		if math.Max(a.bounds[d], b.bounds[d]) > math.Min(a.bounds[d+3], b.bounds[d+3]) {
			return false
		}
	}
	return true
}

// Unite returns the smallest box holding both a and b.
func Unite(a, b Box) Box {
	var lo, hi [3]float64
	for d := 0; d < 3; d++ {
		lo[d] = math.Min(a.bounds[d], b.bounds[d])
		hi[d] = math.Max(a.bounds[d+3], b.bounds[d+3])
	}
	return NewBoxFromMinMax(InvalidEntityID, -1, lo, hi)
}

func (b Box) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(make([]byte, 0, BoxByteSize))
}

func (b Box) AppendBinary(buf []byte) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(b.id))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(b.owner)))
	for _, v := range b.bounds {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf, nil
}

func (b *Box) UnmarshalBinary(data []byte) error {
	if len(data) != BoxByteSize {
		return errors.Errorf("box record is %d bytes, want %d", len(data), BoxByteSize)
	}
	var bounds [6]float64
	for i := range bounds {
		bounds[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[12+8*i:]))
	}
	*b = NewBoxFromBounds(
		EntityID(binary.LittleEndian.Uint64(data[0:])),
		int(int32(binary.LittleEndian.Uint32(data[8:]))),
		bounds)
	return nil
}

func (b Box) String() string {
	return fmt.Sprintf("Box{id: %d, rank: %d, min: %v, max: %v}", b.id, b.owner, b.Min(), b.Max())
}
