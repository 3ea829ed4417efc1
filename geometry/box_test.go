package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func randomBox(rng *rand.Rand) Box {
	var lo, hi [3]float64
	for d := 0; d < 3; d++ {
		a, b := rng.Float64()*10-5, rng.Float64()*10-5
		lo[d], hi[d] = math.Min(a, b), math.Max(a, b)
	}
	return NewBoxFromMinMax(EntityID(rng.Int63()), rng.Intn(8), lo, hi)
}

func TestBoxBasics(t *testing.T) {
	b := NewBox(3, 1, 0, 0, 0, 2, 4, 1)
	assert.Equal(t, EntityID(3), b.ID())
	assert.Equal(t, 1, b.OwnerRank())
	assert.InDelta(t, 8., b.Measure(), 1.e-15)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 0.5}, b.Centroid())
	assert.False(t, b.IsEmpty())
	assert.True(t, EmptyBox().IsEmpty())
	assert.Equal(t, 0., EmptyBox().Measure())
	// Flat 2D box has zero volume
	assert.Equal(t, 0., NewBox(0, 0, 0, 0, 0, 1, 1, 0).Measure())
	{ // Inclusion is closed
		assert.True(t, b.PointInclusion([]float64{2, 4, 1}, 0))
		assert.True(t, b.PointInclusion([]float64{0, 0}, 0))
		assert.False(t, b.PointInclusion([]float64{2.001, 1, 0.5}, 0))
		assert.True(t, b.PointInclusion([]float64{2.001, 1, 0.5}, 1.e-3))
		assert.False(t, b.PointInclusion([]float64{-1, 1, 0.5}, 1.e-3))
	}
	{ // Domain boxes stay finite in the centroid and accept every point
		inf := InfiniteBox(0, 0, 2)
		assert.Equal(t, r3.Vec{}, inf.Centroid())
		assert.True(t, inf.PointInclusion([]float64{1.e300, -1.e300}, 0))
		assert.False(t, inf.PointInclusion([]float64{0, 0, 1}, 0))
	}
}

func TestBoxIntersectUnite(t *testing.T) {
	a := NewBox(0, 0, 0, 0, 0, 2, 2, 2)
	b := NewBox(1, 0, 1, 1, 1, 3, 3, 3)
	ok, c := Intersect(a, b)
	require.True(t, ok)
	assert.Equal(t, [6]float64{1, 1, 1, 2, 2, 2}, c.Bounds())
	// Touching faces intersect
	ok, c = Intersect(a, NewBox(2, 0, 2, 0, 0, 4, 2, 2))
	require.True(t, ok)
	assert.Equal(t, 0., c.Measure())
	ok, _ = Intersect(a, NewBox(2, 0, 2.5, 0, 0, 4, 2, 2))
	assert.False(t, ok)
	u := Unite(a, NewBox(2, 0, 5, 5, 5, 6, 6, 6))
	assert.Equal(t, [6]float64{0, 0, 0, 6, 6, 6}, u.Bounds())
}

func TestBoxAlgebraProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 500; trial++ {
		a, b := randomBox(rng), randomBox(rng)
		okAB, ab := Intersect(a, b)
		okBA, ba := Intersect(b, a)
		assert.Equal(t, okAB, okBA)
		assert.Equal(t, okAB, CheckForIntersection(a, b))
		assert.Equal(t, ab.Bounds(), ba.Bounds())
		assert.Equal(t, Unite(a, b).Bounds(), Unite(b, a).Bounds())

		okAA, aa := Intersect(a, a)
		assert.True(t, okAA)
		assert.Equal(t, a.Bounds(), aa.Bounds())
		assert.Equal(t, a.Bounds(), Unite(a, a).Bounds())

		u := Unite(a, b)
		for _, corner := range [][3]float64{a.Min(), a.Max(), b.Min(), b.Max()} {
			assert.True(t, u.PointInclusion(corner[:], 0))
		}
		if okAB {
			mid := ab.Centroid()
			assert.True(t, a.PointInclusion([]float64{mid.X, mid.Y, mid.Z}, 0))
			assert.True(t, b.PointInclusion([]float64{mid.X, mid.Y, mid.Z}, 0))
		}
	}
}

func TestBoxSerialization(t *testing.T) {
	b := NewBox(42, 7, -1, -2, -3, 1, 2, math.MaxFloat64)
	data, err := b.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, BoxByteSize)
	assert.Equal(t, byte(42), data[0])
	assert.Equal(t, byte(7), data[8])

	var back Box
	require.NoError(t, back.UnmarshalBinary(data))
	assert.Equal(t, b, back)

	unowned := EmptyBox()
	data, _ = unowned.MarshalBinary()
	require.NoError(t, back.UnmarshalBinary(data))
	assert.Equal(t, -1, back.OwnerRank())
	assert.True(t, back.IsEmpty())

	assert.Error(t, back.UnmarshalBinary(data[:10]))
}

func TestBoundingBoxOfAndExpand(t *testing.T) {
	b := BoundingBoxOf(5, 2, []float64{0, 1, 3, -1, 2, 2}, 2)
	assert.Equal(t, [6]float64{0, -1, 0, 3, 2, 0}, b.Bounds())
	assert.Equal(t, EntityID(5), b.ID())
	e := b.Expand(0.5, 2)
	assert.Equal(t, [6]float64{-0.5, -1.5, 0, 3.5, 2.5, 0}, e.Bounds())
	empty := BoundingBoxOf(1, 0, nil, 3)
	assert.True(t, empty.IsEmpty())
	assert.Panics(t, func() { BoundingBoxOf(0, 0, []float64{1, 2, 3}, 2) })
	assert.Panics(t, func() { BoundingBoxOf(0, 0, nil, 4) })
}
