package utils

import (
	"sort"

	"github.com/gomlx/exceptions"
	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gomls/geometry"
)

// CrsMatrix is a distributed sparse matrix assembled by global row and column
// ids. Rows follow a row Map; columns are a fixed local list of global ids.
// Entries accumulate in DOK form and are compressed to CSR by FillComplete,
// after which the matrix is read only.
type CrsMatrix struct {
	name      string
	rowMap    *Map
	colGIDs   []geometry.EntityID
	colIndex  map[geometry.EntityID]int
	dok       *sparse.DOK
	entries   map[[2]int]struct{}
	csr       *sparse.CSR
	domainMap *Map
	readOnly  bool
}

func NewCrsMatrix(name string, rowMap *Map, colGIDs []geometry.EntityID) (A *CrsMatrix) {
	A = &CrsMatrix{
		name:     name,
		rowMap:   rowMap,
		colGIDs:  append([]geometry.EntityID(nil), colGIDs...),
		colIndex: make(map[geometry.EntityID]int, len(colGIDs)),
		entries:  make(map[[2]int]struct{}),
	}
	for j, id := range colGIDs {
		if _, dup := A.colIndex[id]; dup {
			exceptions.Panicf("matrix %q: column id %d listed twice", name, id)
		}
		A.colIndex[id] = j
	}
	if nr, nc := A.Dims(); nr > 0 && nc > 0 {
		A.dok = sparse.NewDOK(nr, nc)
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface in local indices.
func (A *CrsMatrix) Dims() (r, c int) { return A.rowMap.LocalCount(), len(A.colGIDs) }

func (A *CrsMatrix) At(i, j int) float64 {
	nr, nc := A.Dims()
	if i < 0 || i >= nr || j < 0 || j >= nc {
		panic(mat.ErrIndexOutOfRange)
	}
	switch {
	case A.csr != nil:
		return A.csr.At(i, j)
	case A.dok != nil:
		return A.dok.At(i, j)
	}
	return 0
}

func (A *CrsMatrix) T() mat.Matrix { return mat.Transpose{Matrix: A} }

func (A *CrsMatrix) Name() string                    { return A.name }
func (A *CrsMatrix) RowMap() *Map                    { return A.rowMap }
func (A *CrsMatrix) DomainMap() *Map                 { return A.domainMap }
func (A *CrsMatrix) ColumnGIDs() []geometry.EntityID { return A.colGIDs }
func (A *CrsMatrix) IsFillComplete() bool            { return A.readOnly }
func (A *CrsMatrix) NumNonzeros() int                { return len(A.entries) }

func (A *CrsMatrix) checkWritable() {
	if A.readOnly {
		exceptions.Panicf("attempt to write to a fill complete matrix named: %q", A.name)
	}
}

// InsertGlobalValues adds entries to the row with global id row. The row
// must be owned here. A (row, column) pair may be inserted once.
func (A *CrsMatrix) InsertGlobalValues(row geometry.EntityID, cols []geometry.EntityID, vals []float64) {
	A.checkWritable()
	if len(cols) != len(vals) {
		exceptions.Panicf("matrix %q: %d columns and %d values", A.name, len(cols), len(vals))
	}
	i := A.rowMap.LocalIndex(row)
	if i < 0 {
		exceptions.Panicf("matrix %q: row %d is not owned by rank %d", A.name, row, A.rowMap.Comm().Rank())
	}
	for k, col := range cols {
		j, ok := A.colIndex[col]
		if !ok {
			exceptions.Panicf("matrix %q: unknown column id %d", A.name, col)
		}
		key := [2]int{i, j}
		if _, dup := A.entries[key]; dup {
			exceptions.Panicf("matrix %q: duplicate entry (%d, %d)", A.name, row, col)
		}
		A.entries[key] = struct{}{}
		A.dok.Set(i, j, vals[k])
	}
}

// FillComplete closes the matrix. It may be called once.
func (A *CrsMatrix) FillComplete(domainMap, rangeMap *Map) {
	A.checkWritable()
	if !A.rowMap.SameAs(rangeMap) {
		exceptions.Panicf("matrix %q: range map differs from the row map", A.name)
	}
	A.domainMap = domainMap
	if A.dok != nil {
		A.csr = A.compress()
		A.dok = nil
	}
	A.readOnly = true
}

// compress builds the CSR form with ascending columns in each row so the
// products are independent of insertion order.
func (A *CrsMatrix) compress() *sparse.CSR {
	var (
		nr, nc = A.Dims()
		keys   = make([][2]int, 0, len(A.entries))
		indptr = make([]int, nr+1)
	)
	for key := range A.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][0] != keys[b][0] {
			return keys[a][0] < keys[b][0]
		}
		return keys[a][1] < keys[b][1]
	})
	ind, data := make([]int, len(keys)), make([]float64, len(keys))
	for p, key := range keys {
		indptr[key[0]+1]++
		ind[p], data[p] = key[1], A.dok.At(key[0], key[1])
	}
	for i := 0; i < nr; i++ {
		indptr[i+1] += indptr[i]
	}
	return sparse.NewCSR(nr, nc, indptr, ind, data)
}

// Row returns the local column indices and values of local row i.
func (A *CrsMatrix) Row(i int) (cols []int, vals []float64) {
	if !A.readOnly {
		exceptions.Panicf("matrix %q: Row before FillComplete", A.name)
	}
	if A.csr == nil {
		return
	}
	raw := A.csr.RawMatrix()
	lo, hi := raw.Indptr[i], raw.Indptr[i+1]
	return raw.Ind[lo:hi], raw.Data[lo:hi]
}

// Multiply computes y := alpha*A*x + beta*y on nVec row major vectors. x has
// one row per column id, y one row per local row. beta == 0 overwrites y.
func (A *CrsMatrix) Multiply(x []float64, nVec int, y []float64, alpha, beta float64) {
	if !A.readOnly {
		exceptions.Panicf("matrix %q: Multiply before FillComplete", A.name)
	}
	nr, nc := A.Dims()
	if len(x) != nc*nVec || len(y) != nr*nVec {
		exceptions.Panicf("matrix %q: multiply of %dx%d with %d inputs and %d outputs for %d vectors",
			A.name, nr, nc, len(x), len(y), nVec)
	}
	for i := range y {
		if beta == 0 {
			y[i] = 0
		} else {
			y[i] *= beta
		}
	}
	if A.csr == nil || alpha == 0 {
		return
	}
	blas.Dusmm(false, nVec, alpha, A.csr.RawMatrix(), x, nVec, y, nVec)
}
