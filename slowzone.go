package main

// SlowZone is an area placed by the Basilisk ability that slows enemies
// inside it. Enemies are found each tick through the spatial index.
type SlowZone struct {
	ID      string
	X, Y    float64
	Radius  float64
	OwnerID string
	Life    float64
	Factor  float64 // movement multiplier applied to enemies in range
}

// NewSlowZone creates a slow zone at the given position
func NewSlowZone(x, y float64, ownerID string) *SlowZone {
	return &SlowZone{
		ID:      GenerateID(4),
		X:       x,
		Y:       y,
		Radius:  SlowFieldRadius,
		OwnerID: ownerID,
		Life:    SlowFieldDuration,
		Factor:  SlowFieldFactor,
	}
}

// Update ticks the zone lifetime and applies the slow to every enemy the
// index finds in range. Returns false when the zone has expired.
func (z *SlowZone) Update(dt float64, idx *IndexController) bool {
	z.Life -= dt
	if z.Life <= 0 {
		return false
	}
	for _, ge := range idx.EntitiesInRadius(z.X, z.Y, z.Radius) {
		if e, ok := ge.(*Enemy); ok && e.Alive {
			e.SlowMul = z.Factor
		}
	}
	return true
}

// ToState converts to protocol state
func (z *SlowZone) ToState() ZoneState {
	return ZoneState{
		ID:     z.ID,
		X:      round1(z.X),
		Y:      round1(z.Y),
		Radius: z.Radius,
		Life:   round1(z.Life),
	}
}
