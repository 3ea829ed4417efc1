package pointcloud

import (
	"github.com/gomlx/exceptions"
)

const MaxBasisOrder = 3

// PolynomialBasis holds the monomials of total degree at most Order in Dim
// variables, graded by degree. The constant term is first.
type PolynomialBasis struct {
	Dim, Order int
	exponents  [][3]int
}

func NewPolynomialBasis(dim, order int) (pb PolynomialBasis) {
	if dim < 1 || dim > 3 {
		exceptions.Panicf("polynomial basis dimension %d not in [1,3]", dim)
	}
	if order < 0 || order > MaxBasisOrder {
		exceptions.Panicf("polynomial basis order %d not in [0,%d]", order, MaxBasisOrder)
	}
	pb = PolynomialBasis{Dim: dim, Order: order}
	for deg := 0; deg <= order; deg++ {
		for a := deg; a >= 0; a-- {
			for b := deg - a; b >= 0; b-- {
				c := deg - a - b
				if (dim < 2 && b > 0) || (dim < 3 && c > 0) {
					continue
				}
				pb.exponents = append(pb.exponents, [3]int{a, b, c})
			}
		}
	}
	return
}

func (pb PolynomialBasis) Size() int { return len(pb.exponents) }

func (pb PolynomialBasis) Exponents() [][3]int { return pb.exponents }

// Evaluate writes every monomial at x into dst, which must hold Size values.
func (pb PolynomialBasis) Evaluate(x []float64, dst []float64) {
	if len(x) != pb.Dim || len(dst) != len(pb.exponents) {
		exceptions.Panicf("polynomial basis evaluate: point of dimension %d, %d outputs for %d terms",
			len(x), len(dst), len(pb.exponents))
	}
	var xyz [3]float64
	copy(xyz[:], x)
	for k, e := range pb.exponents {
		dst[k] = pow(xyz[0], e[0]) * pow(xyz[1], e[1]) * pow(xyz[2], e[2])
	}
}
