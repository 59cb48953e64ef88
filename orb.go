package main

import (
	"math"
	"math/rand"
)

const (
	OrbRadius       = 8.0
	OrbTimeout      = 45.0 // seconds before an uneaten orb fades
	OrbMagnetRange  = 90.0 // heads inside this range attract the orb
	OrbMagnetSpeed  = 240.0
	OrbCreditChance = 0.15 // chance an orb is worth a credit too
)

// Orb is an energy pellet. Eating one grows the serpent by a segment; orbs
// drift toward a nearby head so pickups feel sticky.
type Orb struct {
	ID     string
	X, Y   float64
	Life   float64
	Credit bool
	Alive  bool
}

// GridPosition implements GridEntity
func (o *Orb) GridPosition() (float64, float64) { return o.X, o.Y }

// GridAlive implements GridEntity
func (o *Orb) GridAlive() bool { return o.Alive }

// NewOrb spawns an orb at a random position away from the walls
func NewOrb(arenaW, arenaH float64) *Orb {
	return &Orb{
		ID:     GenerateID(4),
		X:      50 + rand.Float64()*(arenaW-100),
		Y:      50 + rand.Float64()*(arenaH-100),
		Life:   OrbTimeout,
		Credit: rand.Float64() < OrbCreditChance,
		Alive:  true,
	}
}

// NewOrbAt spawns an orb at a fixed position (dropped by a dying enemy)
func NewOrbAt(x, y float64) *Orb {
	return &Orb{
		ID:    GenerateID(4),
		X:     x,
		Y:     y,
		Life:  OrbTimeout,
		Alive: true,
	}
}

// Update ticks the orb's lifetime and pulls it toward the nearest serpent
// head found through the spatial index
func (o *Orb) Update(dt float64, idx *IndexController) {
	if !o.Alive {
		return
	}
	o.Life -= dt
	if o.Life <= 0 {
		o.Alive = false
		return
	}

	head := nearestSerpentHead(idx, o.X, o.Y, OrbMagnetRange)
	if head == nil {
		return
	}
	dx := head.X - o.X
	dy := head.Y - o.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < 1 {
		return
	}
	step := OrbMagnetSpeed * dt
	if step > d {
		step = d
	}
	o.X += dx / d * step
	o.Y += dy / d * step
}

// ToState converts to protocol state
func (o *Orb) ToState() OrbState {
	return OrbState{
		ID: o.ID,
		X:  round1(o.X),
		Y:  round1(o.Y),
	}
}
