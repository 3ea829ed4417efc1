package pointcloud

import (
	"math"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

type KernelType uint8

const (
	WendlandC0 KernelType = iota
	WendlandC2
	WendlandC4
	WendlandC6
	WuC2
	WuC4
	BuhmannC3
	numKernels
)

var kernelNames = [numKernels]string{
	"WendlandC0", "WendlandC2", "WendlandC4", "WendlandC6", "WuC2", "WuC4", "BuhmannC3",
}

func (k KernelType) String() string {
	if k < numKernels {
		return kernelNames[k]
	}
	return "Unknown"
}

func ParseKernel(s string) (KernelType, error) {
	for k, name := range kernelNames {
		if strings.EqualFold(s, name) {
			return KernelType(k), nil
		}
	}
	if s == "" {
		return WendlandC2, nil
	}
	return 0, errors.Errorf("unknown kernel %q", s)
}

// RadialBasis is a compactly supported weight function. It is positive for
// distances below the radius and zero at and beyond it.
type RadialBasis struct {
	Type   KernelType
	Radius float64
	fn     func(x float64) float64
}

func NewRadialBasis(k KernelType, radius float64) (rb RadialBasis) {
	if !(radius > 0) || math.IsInf(radius, 1) {
		exceptions.Panicf("radial basis radius must be positive and finite, got %g", radius)
	}
	rb = RadialBasis{Type: k, Radius: radius}
	switch k {
	case WendlandC0:
		rb.fn = func(x float64) float64 { return pow(1-x, 2) }
	case WendlandC2:
		rb.fn = func(x float64) float64 { return pow(1-x, 4) * (4*x + 1) }
	case WendlandC4:
		rb.fn = func(x float64) float64 { return pow(1-x, 6) * (35*x*x + 18*x + 3) / 3 }
	case WendlandC6:
		rb.fn = func(x float64) float64 { return pow(1-x, 8) * (32*x*x*x + 25*x*x + 8*x + 1) }
	case WuC2:
		rb.fn = func(x float64) float64 {
			return pow(1-x, 4) * (3*x*x*x + 12*x*x + 16*x + 4) / 4
		}
	case WuC4:
		rb.fn = func(x float64) float64 {
			return pow(1-x, 6) * (5*pow(x, 5) + 30*pow(x, 4) + 72*x*x*x + 82*x*x + 36*x + 6) / 6
		}
	case BuhmannC3:
		rb.fn = func(x float64) float64 {
			if x == 0 {
				return 1. / 6
			}
			return 2*pow(x, 4)*math.Log(x) - 3.5*pow(x, 4) + 16./3*x*x*x - 2*x*x + 1./6
		}
	default:
		exceptions.Panicf("unknown kernel type %d", k)
	}
	return
}

// Evaluate returns the weight at distance d.
func (rb RadialBasis) Evaluate(d float64) float64 {
	x := math.Abs(d) / rb.Radius
	if x >= 1 {
		return 0
	}
	return math.Max(0, rb.fn(x))
}

func pow(x float64, n int) (p float64) {
	p = 1
	for i := 0; i < n; i++ {
		p *= x
	}
	return
}
