package main

// IndexUpdateInterval is how often tracked entities are re-bucketed. Moving
// entities drift up to one interval from their indexed cell between passes;
// callers doing exact distance checks on query results are unaffected.
const IndexUpdateInterval = 0.2 // seconds

// IndexController owns one SpatialGrid for a game session and amortizes the
// cost of keeping cell membership current: registrations index immediately,
// but moved entities are only re-bucketed on a fixed interval. All calls
// happen on the session's tick goroutine under the game lock; the grid is
// never touched from anywhere else.
type IndexController struct {
	grid     *SpatialGrid
	interval float64
	accum    float64
	scratch  []GridEntity // reused by the refresh pass
}

// NewIndexController wraps a grid with interval-based refresh. An interval
// of 0 refreshes every tick.
func NewIndexController(grid *SpatialGrid, interval float64) *IndexController {
	if interval < 0 {
		interval = 0
	}
	return &IndexController{
		grid:     grid,
		interval: interval,
	}
}

// Register starts tracking an entity. The entity is queryable immediately,
// before the next scheduled refresh.
func (ic *IndexController) Register(e GridEntity) {
	ic.grid.Insert(e)
}

// Unregister stops tracking an entity. Unknown entities are a no-op.
func (ic *IndexController) Unregister(e GridEntity) {
	ic.grid.Remove(e)
}

// Tick accumulates frame time and runs one full refresh pass when the
// interval elapses: dead entities are swept once, then every tracked entity
// is re-bucketed at its current position.
func (ic *IndexController) Tick(dt float64) {
	ic.accum += dt
	if ic.accum < ic.interval {
		return
	}
	ic.accum = 0
	ic.Refresh()
}

// Refresh forces a full resync regardless of the accumulated time.
func (ic *IndexController) Refresh() {
	ic.grid.CleanupDead()
	ic.scratch = ic.grid.Tracked(ic.scratch[:0])
	for _, e := range ic.scratch {
		ic.grid.UpdatePosition(e)
	}
}

// EntitiesInRadius returns live tracked entities within radius of (x, y).
func (ic *IndexController) EntitiesInRadius(x, y, radius float64) []GridEntity {
	return ic.grid.QueryRadius(x, y, radius)
}

// EntitiesInRadiusBuf is the buffer-reusing variant for per-tick callers.
func (ic *IndexController) EntitiesInRadiusBuf(x, y, radius float64, buf []GridEntity) []GridEntity {
	return ic.grid.QueryRadiusBuf(x, y, radius, buf)
}

// NearestEntity returns the closest live entity within maxRadius, or nil.
func (ic *IndexController) NearestEntity(x, y, maxRadius float64) GridEntity {
	return ic.grid.QueryNearest(x, y, maxRadius)
}

// EntityCount returns the number of tracked entities.
func (ic *IndexController) EntityCount() int {
	return ic.grid.Len()
}

// Clear drops every tracked entity; used on session reset.
func (ic *IndexController) Clear() {
	ic.grid.Clear()
	ic.accum = 0
}
