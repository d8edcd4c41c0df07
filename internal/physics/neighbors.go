package physics

import "math"

// NeighborQuery finds collision candidates among a set of indexed bodies.
//
// Rebuild is called once per frame with every body's position and the largest
// distance at which two bodies may need to be compared during that frame.
// Candidates then reports indices that may lie within that distance of pos.
// Implementations may report extra indices (including the caller's own) but
// must not miss any index within reach of the positions passed to Rebuild.
type NeighborQuery interface {
	Rebuild(positions []Vec2, reach float64)
	Candidates(pos Vec2, fn func(index int) bool)
}

// AllPairs reports every index as a candidate. It is the O(n²) scan.
type AllPairs struct {
	n int
}

// NewAllPairs returns an all-pairs neighbor query.
func NewAllPairs() *AllPairs {
	return &AllPairs{}
}

// Rebuild records the number of bodies.
func (a *AllPairs) Rebuild(positions []Vec2, _ float64) {
	a.n = len(positions)
}

// Candidates calls fn for every index in insertion order.
func (a *AllPairs) Candidates(_ Vec2, fn func(index int) bool) {
	for i := 0; i < a.n; i++ {
		if fn(i) {
			return
		}
	}
}

// Grid reports candidates from a SpatialGrid sized to the reach given to Rebuild.
type Grid struct {
	width  float64
	height float64
	grid   *SpatialGrid
}

// NewGrid returns a grid neighbor query covering a width x height enclosure.
func NewGrid(width, height float64) *Grid {
	return &Grid{width: width, height: height}
}

// Rebuild reinserts all positions. The underlying grid is only reallocated
// when the reach grows beyond the current cell size or shrinks to under half of it.
func (g *Grid) Rebuild(positions []Vec2, reach float64) {
	if reach <= 0 || math.IsNaN(reach) || math.IsInf(reach, 0) {
		reach = math.Max(g.width, g.height)
	}
	if g.grid == nil || reach > g.grid.CellSize() || reach < g.grid.CellSize()/2 {
		g.grid = NewSpatialGrid(g.width, g.height, reach)
	}

	g.grid.Clear()
	for i, p := range positions {
		g.grid.Insert(p, i)
	}
}

// Candidates calls fn for the indices in the 3x3 cell neighborhood of pos.
func (g *Grid) Candidates(pos Vec2, fn func(index int) bool) {
	if g.grid == nil {
		return
	}
	g.grid.QueryAround(pos, fn)
}
