// Package pointcloud builds moving least squares transfer operators between
// distributed point clouds.
package pointcloud

import (
	"strings"

	"github.com/pkg/errors"
)

type FallbackPolicy uint8

const (
	// ReduceOrder retries lower polynomial orders before giving up on a target.
	ReduceOrder FallbackPolicy = iota
	// ZeroRow gives up on a target as soon as the requested order fails.
	ZeroRow
)

func (f FallbackPolicy) String() string {
	switch f {
	case ReduceOrder:
		return "ReduceOrder"
	case ZeroRow:
		return "ZeroRow"
	}
	return "Unknown"
}

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch strings.ToLower(s) {
	case "", "reduceorder":
		return ReduceOrder, nil
	case "zerorow":
		return ZeroRow, nil
	}
	return 0, errors.Errorf("unknown fallback policy %q", s)
}

type Options struct {
	Dimension     int
	BasisOrder    int
	Kernel        KernelType
	Fallback      FallbackPolicy
	RankTolerance float64 // relative to the largest singular value
}

func DefaultOptions(dim int) Options {
	return Options{
		Dimension:     dim,
		BasisOrder:    2,
		Kernel:        WendlandC2,
		Fallback:      ReduceOrder,
		RankTolerance: 1.e-10,
	}
}

func (o Options) Validate() error {
	if o.Dimension < 1 || o.Dimension > 3 {
		return errors.Errorf("spatial dimension %d not in [1,3]", o.Dimension)
	}
	if o.BasisOrder < 0 || o.BasisOrder > MaxBasisOrder {
		return errors.Errorf("basis order %d not in [0,%d]", o.BasisOrder, MaxBasisOrder)
	}
	if o.Kernel >= numKernels {
		return errors.Errorf("unknown kernel %d", o.Kernel)
	}
	if o.Fallback > ZeroRow {
		return errors.Errorf("unknown fallback policy %d", o.Fallback)
	}
	if !(o.RankTolerance > 0 && o.RankTolerance < 1) {
		return errors.Errorf("rank tolerance %g not in (0,1)", o.RankTolerance)
	}
	return nil
}
