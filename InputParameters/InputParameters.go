package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/notargets/gomls/pointcloud"
)

// Parameters obtained from the YAML input file
type MLSParameters struct {
	Title         string  `yaml:"Title"`
	Dimension     int     `yaml:"Dimension"`
	Radius        float64 `yaml:"Radius"`       // Absolute support radius, wins over RadiusFactor
	RadiusFactor  float64 `yaml:"RadiusFactor"` // Support radius in units of the grid spacing
	BasisOrder    int     `yaml:"BasisOrder"`
	Kernel        string  `yaml:"Kernel"`
	Fallback      string  `yaml:"Fallback"` // ReduceOrder or ZeroRow
	RankTolerance float64 `yaml:"RankTolerance"`
	NumProcs      int     `yaml:"NumProcs"`
	GridN         int     `yaml:"GridN"`
	NumFields     int     `yaml:"NumFields"`
}

// NewMLSParameters returns the defaults of the peaks problem.
func NewMLSParameters() *MLSParameters {
	return &MLSParameters{
		Title:         "Peaks",
		Dimension:     2,
		RadiusFactor:  2,
		BasisOrder:    2,
		Kernel:        pointcloud.WendlandC2.String(),
		Fallback:      pointcloud.ReduceOrder.String(),
		RankTolerance: 1.e-10,
		NumProcs:      1,
		GridN:         100,
		NumFields:     2,
	}
}

func (ip *MLSParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *MLSParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
	if ip.Radius > 0 {
		fmt.Printf("%8.5f\t\t= Radius\n", ip.Radius)
	} else {
		fmt.Printf("%8.5f\t\t= Radius Factor\n", ip.RadiusFactor)
	}
	fmt.Printf("[%d]\t\t\t\t= Basis Order\n", ip.BasisOrder)
	fmt.Printf("[%s]\t\t= Kernel\n", ip.Kernel)
	fmt.Printf("[%s]\t\t= Fallback\n", ip.Fallback)
	fmt.Printf("%8.2e\t\t= Rank Tolerance\n", ip.RankTolerance)
	fmt.Printf("[%d]\t\t\t\t= Processes\n", ip.NumProcs)
	fmt.Printf("[%d]\t\t\t\t= Grid N\n", ip.GridN)
	fmt.Printf("[%d]\t\t\t\t= Fields\n", ip.NumFields)
}

// SupportRadius resolves the radius for a grid of spacing h.
func (ip *MLSParameters) SupportRadius(h float64) (r float64, err error) {
	r = ip.Radius
	if r <= 0 {
		r = ip.RadiusFactor * h
	}
	if !(r > 0) || math.IsInf(r, 0) {
		err = errors.Errorf("support radius %g must be positive and finite", r)
	}
	return
}

// Options converts the parameters to operator options.
func (ip *MLSParameters) Options() (opts pointcloud.Options, err error) {
	opts = pointcloud.DefaultOptions(ip.Dimension)
	opts.BasisOrder = ip.BasisOrder
	if ip.RankTolerance > 0 {
		opts.RankTolerance = ip.RankTolerance
	}
	if opts.Kernel, err = pointcloud.ParseKernel(ip.Kernel); err != nil {
		return
	}
	if opts.Fallback, err = pointcloud.ParseFallbackPolicy(ip.Fallback); err != nil {
		return
	}
	if ip.NumProcs < 1 {
		err = errors.Errorf("process count %d must be at least 1", ip.NumProcs)
		return
	}
	if ip.GridN < 2 {
		err = errors.Errorf("grid size %d must be at least 2", ip.GridN)
		return
	}
	if ip.NumFields < 1 || ip.NumFields > 2 {
		err = errors.Errorf("field count %d not in [1,2]", ip.NumFields)
		return
	}
	err = opts.Validate()
	return
}
