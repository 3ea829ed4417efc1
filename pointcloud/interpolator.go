package pointcloud

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
	"github.com/notargets/gomls/utils"
)

// Interpolator transfers packed fields between two raw point clouds. Fields
// are stored field major: value k of point i is at data[k*numPoints+i].
type Interpolator struct {
	comm      comm.Communicator
	opts      Options
	op        *MLSOperator
	domainMap *utils.Map
	rangeMap  *utils.Map
}

func NewInterpolator(c comm.Communicator, radius float64, opts Options) *Interpolator {
	return &Interpolator{comm: c, opts: opts, op: NewMLSOperator(radius)}
}

// SetProblem builds the transfer operator for the given clouds. It is collective.
func (ip *Interpolator) SetProblem(sourceCenters []float64, sourceIDs []geometry.EntityID,
	targetCenters []float64, targetIDs []geometry.EntityID) error {
	dim := ip.opts.Dimension
	if err := ip.opts.Validate(); err != nil {
		return errors.WithMessage(err, "interpolator")
	}
	var (
		me      = ip.comm.Rank()
		sources = geometry.NewPointSet(me, sourceCenters, sourceIDs, dim)
		targets = geometry.NewPointSet(me, targetCenters, targetIDs, dim)
	)
	ip.domainMap = utils.NewMap(ip.comm, sourceIDs)
	ip.rangeMap = utils.NewMap(ip.comm, targetIDs)
	return ip.op.Setup(
		ip.domainMap, FunctionSpace{Set: sources},
		ip.rangeMap, FunctionSpace{Set: targets},
		ip.opts)
}

// Interpolate applies the operator to numFields packed source fields and
// returns the target fields in the same layout. It is collective.
func (ip *Interpolator) Interpolate(sourceData []float64, numFields int) (targetData []float64) {
	if ip.domainMap == nil {
		exceptions.Panicf("Interpolate called before SetProblem")
	}
	var (
		ns = ip.domainMap.LocalCount()
		nt = ip.rangeMap.LocalCount()
	)
	if numFields < 1 || len(sourceData) != ns*numFields {
		exceptions.Panicf("interpolate: %d values for %d sources and %d fields", len(sourceData), ns, numFields)
	}
	X := utils.NewMultiVector(ip.domainMap, numFields)
	for k := 0; k < numFields; k++ {
		for i := 0; i < ns; i++ {
			X.Set(i, k, sourceData[k*ns+i])
		}
	}
	Y := utils.NewMultiVector(ip.rangeMap, numFields)
	ip.op.Apply(X, Y, NoTrans, 1, 0)
	targetData = make([]float64, nt*numFields)
	for k := 0; k < numFields; k++ {
		for i := 0; i < nt; i++ {
			targetData[k*nt+i] = Y.Get(i, k)
		}
	}
	return
}

func (ip *Interpolator) Operator() *MLSOperator { return ip.op }
