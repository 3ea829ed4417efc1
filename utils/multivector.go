package utils

import (
	"github.com/gomlx/exceptions"
)

// MultiVector holds NumVectors values for every local entry of a Map, row
// major: Data()[lid*NumVectors()+k].
type MultiVector struct {
	m    *Map
	nVec int
	data []float64
}

func NewMultiVector(m *Map, nVec int) *MultiVector {
	if nVec < 1 {
		exceptions.Panicf("multivector needs at least one vector, got %d", nVec)
	}
	return &MultiVector{m: m, nVec: nVec, data: make([]float64, m.LocalCount()*nVec)}
}

// NewMultiVectorFrom wraps data without copying.
func NewMultiVectorFrom(m *Map, nVec int, data []float64) *MultiVector {
	if nVec < 1 || len(data) != m.LocalCount()*nVec {
		exceptions.Panicf("multivector: %d values for %d entries and %d vectors", len(data), m.LocalCount(), nVec)
	}
	return &MultiVector{m: m, nVec: nVec, data: data}
}

func (mv *MultiVector) Map() *Map        { return mv.m }
func (mv *MultiVector) NumVectors() int  { return mv.nVec }
func (mv *MultiVector) Data() []float64  { return mv.data }
func (mv *MultiVector) LocalLength() int { return mv.m.LocalCount() }

func (mv *MultiVector) Row(lid int) []float64 {
	return mv.data[lid*mv.nVec : (lid+1)*mv.nVec]
}

func (mv *MultiVector) Get(lid, k int) float64 { return mv.data[lid*mv.nVec+k] }

func (mv *MultiVector) Set(lid, k int, v float64) { mv.data[lid*mv.nVec+k] = v }

func (mv *MultiVector) PutScalar(v float64) {
	for i := range mv.data {
		mv.data[i] = v
	}
}

// Scale multiplies every entry by alpha. Zero overwrites, so NaN entries do
// not survive.
func (mv *MultiVector) Scale(alpha float64) {
	if alpha == 0 {
		mv.PutScalar(0)
		return
	}
	for i := range mv.data {
		mv.data[i] *= alpha
	}
}

// Column copies vector k out.
func (mv *MultiVector) Column(k int) (col []float64) {
	col = make([]float64, mv.LocalLength())
	for i := range col {
		col[i] = mv.data[i*mv.nVec+k]
	}
	return
}
