package pointcloud

import (
	"math"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/mat"
)

type SolveStatus uint8

const (
	Solved SolveStatus = iota
	// Reduced means a lower polynomial order than requested was used.
	Reduced
	// Unsupported means no order could be fit and the row stays empty.
	Unsupported
)

func (s SolveStatus) String() string {
	switch s {
	case Solved:
		return "Solved"
	case Reduced:
		return "Reduced"
	case Unsupported:
		return "Unsupported"
	}
	return "Unknown"
}

// LocalMLSProblem computes the shape weights of one target over its
// candidate sources. Sources are given as the flattened coordinates of the
// candidate set and the indices of the target's children within it.
type LocalMLSProblem struct {
	Target   []float64
	Sources  []float64
	Children []int
	Basis    RadialBasis
	Options  Options
}

type MLSResult struct {
	Weights []float64 // one per child, nil when Unsupported
	Order   int       // polynomial order that was used, -1 when Unsupported
	Status  SolveStatus
}

func (lp LocalMLSProblem) Solve() (res MLSResult) {
	var (
		dim    = lp.Options.Dimension
		n      = len(lp.Children)
		radius = lp.Basis.Radius
	)
	if len(lp.Target) != dim {
		exceptions.Panicf("target of dimension %d in a %d dimensional problem", len(lp.Target), dim)
	}
	res = MLSResult{Order: -1, Status: Unsupported}
	if n == 0 {
		return
	}
	var (
		offsets   = make([]float64, n*dim)
		sqrtW     = make([]float64, n)
		effective int
	)
	for j, child := range lp.Children {
		var d2 float64
		for d := 0; d < dim; d++ {
			dx := lp.Sources[child*dim+d] - lp.Target[d]
			offsets[j*dim+d] = dx / radius
			d2 += dx * dx
		}
		sqrtW[j] = math.Sqrt(lp.Basis.Evaluate(math.Sqrt(d2)))
		if sqrtW[j] > 0 {
			effective++
		}
	}
	for order := lp.Options.BasisOrder; order >= 0; order-- {
		poly := NewPolynomialBasis(dim, order)
		if effective >= poly.Size() {
			if w, ok := shapeWeights(offsets, sqrtW, poly, lp.Options.RankTolerance); ok {
				res.Weights, res.Order, res.Status = w, order, Solved
				if order < lp.Options.BasisOrder {
					res.Status = Reduced
				}
				return
			}
		}
		if lp.Options.Fallback == ZeroRow {
			break
		}
	}
	return
}

// shapeWeights returns the first row of (√W P)⁺ √W, the weights that
// reproduce the fitted polynomial's value at the target.
func shapeWeights(offsets, sqrtW []float64, poly PolynomialBasis, rankTol float64) (w []float64, ok bool) {
	var (
		n   = len(sqrtW)
		m   = poly.Size()
		dim = poly.Dim
		A   = mat.NewDense(n, m, nil)
		row = make([]float64, m)
	)
	for j := 0; j < n; j++ {
		poly.Evaluate(offsets[j*dim:(j+1)*dim], row)
		for k := range row {
			row[k] *= sqrtW[j]
		}
		A.SetRow(j, row)
	}
	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return nil, false
	}
	s := svd.Values(nil)
	if len(s) < m || !(s[0] > 0) {
		return nil, false
	}
	for k := 0; k < m; k++ {
		if s[k] <= rankTol*s[0] {
			return nil, false
		}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	w = make([]float64, n)
	for j := 0; j < n; j++ {
		if sqrtW[j] == 0 {
			continue
		}
		var sum float64
		for k := 0; k < m; k++ {
			sum += V.At(0, k) * U.At(j, k) / s[k]
		}
		w[j] = sqrtW[j] * sum
		if math.IsNaN(w[j]) || math.IsInf(w[j], 0) {
			return nil, false
		}
	}
	return w, true
}
