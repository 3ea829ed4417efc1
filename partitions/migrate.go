package partitions

import (
	"github.com/gomlx/exceptions"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

// MigratePoints sends every local point to the rank in dest and returns the
// points that arrived here, ordered by source rank and then source order.
// It is collective.
func MigratePoints(c comm.Communicator, dest []int, coords []float64, gids []geometry.EntityID,
	dim int) (newCoords []float64, newGIDs []geometry.EntityID) {
	if len(dest) != len(gids) || len(coords) != len(gids)*dim {
		exceptions.Panicf("migrate: %d destinations, %d ids, %d coordinates of dimension %d",
			len(dest), len(gids), len(coords), dim)
	}
	var (
		size      = c.Size()
		outCoords = make([][]float64, size)
		outGIDs   = make([][]geometry.EntityID, size)
		coordBufs = make([][]byte, size)
		gidBufs   = make([][]byte, size)
	)
	for i, d := range dest {
		if d < 0 || d >= size {
			exceptions.Panicf("migrate: point %d has no destination rank (%d)", gids[i], d)
		}
		outCoords[d] = append(outCoords[d], coords[i*dim:(i+1)*dim]...)
		outGIDs[d] = append(outGIDs[d], gids[i])
	}
	for r := 0; r < size; r++ {
		coordBufs[r] = comm.Encode(outCoords[r])
		gidBufs[r] = comm.Encode(outGIDs[r])
	}
	for _, buf := range c.AllToAll(coordBufs) {
		newCoords = append(newCoords, comm.Decode[float64](buf)...)
	}
	for _, buf := range c.AllToAll(gidBufs) {
		newGIDs = append(newGIDs, comm.Decode[geometry.EntityID](buf)...)
	}
	return
}
