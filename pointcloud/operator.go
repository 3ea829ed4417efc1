package pointcloud

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
	"github.com/notargets/gomls/utils"
)

type TransposeMode uint8

const (
	NoTrans TransposeMode = iota
	Trans
)

// FunctionSpace supplies the entities whose centroids are the centers of one
// side of the transfer. A nil Set means this rank holds none.
type FunctionSpace struct {
	Set    *geometry.EntitySet
	Select geometry.Predicate
}

// Stats summarizes the last Setup on this rank.
type Stats struct {
	Targets      int
	ZeroRows     int // targets without a usable fit
	ReducedRows  int // targets fit at a lower order than requested
	Imports      int // source copies received from the distributor
	Nonzeros     int
	MaxNeighbors int
}

// MLSOperator maps source field values to target field values by moving
// least squares reconstruction within a fixed support radius.
type MLSOperator struct {
	Radius      float64
	domainMap   *utils.Map
	rangeMap    *utils.Map
	distributor *CenterDistributor
	sourceLIDs  []int // domain map index of each local source, in center order
	matrix      *utils.CrsMatrix
	stats       Stats
}

func NewMLSOperator(radius float64) *MLSOperator {
	if !(radius > 0) {
		exceptions.Panicf("MLS operator radius must be positive, got %g", radius)
	}
	return &MLSOperator{Radius: radius}
}

func extractCenters(fs FunctionSpace, dim int) (coords []float64, gids []geometry.EntityID) {
	if fs.Set == nil {
		return
	}
	if fs.Set.PhysicalDimension() != dim {
		exceptions.Panicf("entity set of dimension %d in a %d dimensional operator", fs.Set.PhysicalDimension(), dim)
	}
	for e := range fs.Set.Entities(fs.Select) {
		coords = append(coords, geometry.Coords(e.Centroid(), dim)...)
		gids = append(gids, e.ID())
	}
	return
}

// Setup builds the operator from scratch. It is collective over the maps'
// communicator.
func (op *MLSOperator) Setup(domainMap *utils.Map, domainSpace FunctionSpace,
	rangeMap *utils.Map, rangeSpace FunctionSpace, opts Options) (err error) {
	if err = opts.Validate(); err != nil {
		return errors.WithMessage(err, "mls setup")
	}
	if domainMap == nil || rangeMap == nil {
		exceptions.Panicf("MLS setup needs both a domain and a range map")
	}
	var (
		c                  = domainMap.Comm()
		dim                = opts.Dimension
		srcCoords, srcGIDs = extractCenters(domainSpace, dim)
		tgtCoords, tgtGIDs = extractCenters(rangeSpace, dim)
		sourceLIDs         = make([]int, len(srcGIDs))
		dist               *CenterDistributor
		distSources        []float64
		stats              Stats
	)
	for i, id := range srcGIDs {
		if sourceLIDs[i] = domainMap.LocalIndex(id); sourceLIDs[i] < 0 {
			exceptions.Panicf("source %d is not owned by rank %d in the domain map", id, c.Rank())
		}
	}
	if dist, distSources, err = NewCenterDistributor(c, srcCoords, tgtCoords, dim, op.Radius); err != nil {
		return errors.WithMessage(err, "mls setup")
	}
	distGIDs := Distribute(dist, srcGIDs, 1)
	pairing := NewPairing(distSources, tgtCoords, dim, op.Radius)

	var (
		matrix = utils.NewCrsMatrix("mls", rangeMap, distGIDs)
		basis  = NewRadialBasis(opts.Kernel, op.Radius)
		cols   []geometry.EntityID
	)
	for i, row := range tgtGIDs {
		children := pairing.ChildCenterIDs(i)
		stats.MaxNeighbors = max(stats.MaxNeighbors, len(children))
		res := LocalMLSProblem{
			Target:   tgtCoords[i*dim : (i+1)*dim],
			Sources:  distSources,
			Children: children,
			Basis:    basis,
			Options:  opts,
		}.Solve()
		switch res.Status {
		case Unsupported:
			stats.ZeroRows++
			continue
		case Reduced:
			stats.ReducedRows++
		}
		cols = cols[:0]
		for _, j := range children {
			cols = append(cols, distGIDs[j])
		}
		matrix.InsertGlobalValues(row, cols, res.Weights)
	}
	matrix.FillComplete(domainMap, rangeMap)

	stats.Targets = len(tgtGIDs)
	stats.Imports = dist.NumImports()
	stats.Nonzeros = matrix.NumNonzeros()
	op.domainMap, op.rangeMap = domainMap, rangeMap
	op.distributor, op.sourceLIDs = dist, sourceLIDs
	op.matrix, op.stats = matrix, stats
	logrus.WithFields(logrus.Fields{
		"rank": c.Rank(), "targets": stats.Targets, "imports": stats.Imports,
		"nonzeros": stats.Nonzeros, "zeroRows": stats.ZeroRows, "reducedRows": stats.ReducedRows,
	}).Debug("mls operator assembled")
	return
}

// Apply computes Y := alpha*A*X + beta*Y. It is collective. beta == 0
// overwrites Y and alpha == 0 never reads X.
func (op *MLSOperator) Apply(X, Y *utils.MultiVector, mode TransposeMode, alpha, beta float64) {
	if op.matrix == nil {
		exceptions.Panicf("MLS operator applied before Setup")
	}
	if mode != NoTrans {
		exceptions.Panicf("MLS operator has no transpose apply")
	}
	if !X.Map().SameAs(op.domainMap) || !Y.Map().SameAs(op.rangeMap) {
		exceptions.Panicf("MLS apply: vectors do not match the operator maps")
	}
	if X.NumVectors() != Y.NumVectors() {
		exceptions.Panicf("MLS apply: %d input vectors and %d output vectors", X.NumVectors(), Y.NumVectors())
	}
	nVec := X.NumVectors()
	if alpha == 0 {
		Y.Scale(beta)
		return
	}
	packed := make([]float64, 0, len(op.sourceLIDs)*nVec)
	for _, lid := range op.sourceLIDs {
		packed = append(packed, X.Row(lid)...)
	}
	arrived := Distribute(op.distributor, packed, nVec)
	op.matrix.Multiply(arrived, nVec, Y.Data(), alpha, beta)
}

func (op *MLSOperator) HasTransposeApply() bool { return false }

func (op *MLSOperator) Stats() Stats { return op.stats }

func (op *MLSOperator) DomainMap() *utils.Map { return op.domainMap }
func (op *MLSOperator) RangeMap() *utils.Map  { return op.rangeMap }

// CouplingMatrix is the assembled matrix, nil before Setup.
func (op *MLSOperator) CouplingMatrix() *utils.CrsMatrix { return op.matrix }

// GlobalStats sums the per-rank stats. It is collective.
func (op *MLSOperator) GlobalStats(c comm.Communicator) (s Stats) {
	v := c.AllReduceInt(comm.Sum, []int{
		op.stats.Targets, op.stats.ZeroRows, op.stats.ReducedRows, op.stats.Imports, op.stats.Nonzeros,
	})
	s = Stats{Targets: v[0], ZeroRows: v[1], ReducedRows: v[2], Imports: v[3], Nonzeros: v[4]}
	s.MaxNeighbors = c.AllReduceInt(comm.Max, []int{op.stats.MaxNeighbors})[0]
	return
}
