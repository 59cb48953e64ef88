package main

import (
	"fmt"
	"math"
)

const (
	// GridCellSize ~2x the largest entity radius (EnemyRadius=18), and close
	// to the typical query radius so a query touches ~9 cells.
	GridCellSize         = 40.0
	GridExpectedEntities = 512
)

// GridEntity is anything the spatial grid can track: it has a position on
// the horizontal plane and a liveness flag. Identity is pointer equality:
// the grid keys its reverse index on the interface value itself and never
// owns the entity's lifetime.
type GridEntity interface {
	GridPosition() (x, y float64)
	GridAlive() bool
}

// cellKey identifies one grid cell. A two-int struct key is used instead of
// folding both axes into a single integer, so distant cells can never alias.
type cellKey struct {
	cx, cy int
}

// SpatialGrid is a uniform hash grid for broad-phase proximity queries.
// It keeps a forward map cell -> entities and a reverse map entity -> cell;
// every mutating operation keeps the two in lock-step. Only occupied cells
// exist in the forward map.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]GridEntity
	lookup   map[GridEntity]cellKey
}

// NewSpatialGrid creates an empty grid. cellSize must be positive; expected
// is a capacity hint, not a limit.
func NewSpatialGrid(cellSize float64, expected int) (*SpatialGrid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial grid: cell size must be positive, got %v", cellSize)
	}
	if expected <= 0 {
		expected = GridExpectedEntities
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]GridEntity, expected/4),
		lookup:   make(map[GridEntity]cellKey, expected),
	}, nil
}

func (g *SpatialGrid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cy: int(math.Floor(y / g.cellSize)),
	}
}

// Insert adds an entity at its current position, or moves it if it is
// already tracked and has changed cell. A nil entity is a no-op.
func (g *SpatialGrid) Insert(e GridEntity) {
	if e == nil {
		return
	}
	x, y := e.GridPosition()
	k := g.keyFor(x, y)
	if prev, ok := g.lookup[e]; ok {
		if prev == k {
			return
		}
		g.removeFromCell(e, prev)
	}
	g.cells[k] = append(g.cells[k], e)
	g.lookup[e] = k
}

// UpdatePosition re-buckets an entity after it has moved. Same operation as
// Insert; named separately so call sites read as what they do.
func (g *SpatialGrid) UpdatePosition(e GridEntity) {
	g.Insert(e)
}

// Remove deletes an entity from the grid. Unknown or nil entities are a no-op.
func (g *SpatialGrid) Remove(e GridEntity) {
	if e == nil {
		return
	}
	k, ok := g.lookup[e]
	if !ok {
		return
	}
	g.removeFromCell(e, k)
	delete(g.lookup, e)
}

// removeFromCell drops e from one cell's bucket, deleting the cell entry
// when it empties so the forward map stays bounded by occupied cells.
func (g *SpatialGrid) removeFromCell(e GridEntity, k cellKey) {
	bucket := g.cells[k]
	for i, other := range bucket {
		if other == e {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.cells, k)
	} else {
		g.cells[k] = bucket
	}
}

// QueryRadius returns all live entities within radius of (x, y). The cell
// scan is the broad phase; an exact squared-distance test filters each
// candidate. Result order is unspecified. A non-positive radius returns nil.
func (g *SpatialGrid) QueryRadius(x, y, radius float64) []GridEntity {
	return g.QueryRadiusBuf(x, y, radius, nil)
}

// QueryRadiusBuf appends results to buf and returns the extended slice,
// avoiding per-call allocation. The caller owns buf; reusing it invalidates
// the previous result.
func (g *SpatialGrid) QueryRadiusBuf(x, y, radius float64, buf []GridEntity) []GridEntity {
	if radius <= 0 {
		return buf
	}
	minCX := int(math.Floor((x - radius) / g.cellSize))
	maxCX := int(math.Floor((x + radius) / g.cellSize))
	minCY := int(math.Floor((y - radius) / g.cellSize))
	maxCY := int(math.Floor((y + radius) / g.cellSize))

	r2 := radius * radius
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e == nil || !e.GridAlive() {
					continue
				}
				ex, ey := e.GridPosition()
				dx := ex - x
				dy := ey - y
				if dx*dx+dy*dy <= r2 {
					buf = append(buf, e)
				}
			}
		}
	}
	return buf
}

// QueryNearest returns the live entity closest to (x, y) within maxRadius,
// or nil if none is in range. Distance ties resolve by scan order.
func (g *SpatialGrid) QueryNearest(x, y, maxRadius float64) GridEntity {
	candidates := g.QueryRadius(x, y, maxRadius)
	var nearest GridEntity
	best := math.MaxFloat64
	for _, e := range candidates {
		ex, ey := e.GridPosition()
		dx := ex - x
		dy := ey - y
		d2 := dx*dx + dy*dy
		if d2 < best {
			best = d2
			nearest = e
		}
	}
	return nearest
}

// Clear empties the grid, keeping the instance usable.
func (g *SpatialGrid) Clear() {
	g.cells = make(map[cellKey][]GridEntity)
	g.lookup = make(map[GridEntity]cellKey)
}

// CleanupDead evicts every tracked entity whose handle no longer reports
// alive. Dead entities are collected first and removed through the normal
// Remove path, then each remaining cell is swept directly in case a dead
// handle entered a bucket without ever being tracked.
func (g *SpatialGrid) CleanupDead() {
	var dead []GridEntity
	for e := range g.lookup {
		if e == nil || !e.GridAlive() {
			dead = append(dead, e)
		}
	}
	for _, e := range dead {
		g.Remove(e)
	}

	for k, bucket := range g.cells {
		kept := bucket[:0]
		for _, e := range bucket {
			if e != nil && e.GridAlive() {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(g.cells, k)
		} else {
			g.cells[k] = kept
		}
	}
}

// Len returns the number of tracked entities.
func (g *SpatialGrid) Len() int {
	return len(g.lookup)
}

// Tracked appends every tracked entity to buf and returns the extended
// slice. Used by the refresh pass so re-bucketing never iterates the
// reverse index while mutating it.
func (g *SpatialGrid) Tracked(buf []GridEntity) []GridEntity {
	for e := range g.lookup {
		buf = append(buf, e)
	}
	return buf
}
