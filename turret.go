package main

import "math"

const (
	TurretRadius     = 22.0
	TurretMaxHP      = 90
	TurretRange      = 420.0
	TurretTurnSpeed  = 3.5
	TurretAimSlack   = 0.15 // radians off-target where firing is allowed
	TurretBurstSize  = 4
	TurretBurstRate  = 0.18 // seconds between shots in a burst
	TurretBurstCD    = 3.5  // seconds between bursts
	TurretKillScore  = 10
	TurretKillCredit = 8
)

// Turret is a stationary enemy emplacement that picks the nearest serpent
// head through the spatial index and fires bursts at it
type Turret struct {
	ID        string
	X, Y      float64
	Rotation  float64
	HP        int
	MaxHP     int
	Alive     bool
	BurstLeft int
	FireCD    float64
	BurstCD   float64
}

// GridPosition implements GridEntity
func (t *Turret) GridPosition() (float64, float64) { return t.X, t.Y }

// GridAlive implements GridEntity
func (t *Turret) GridAlive() bool { return t.Alive }

// NewTurret places a turret at the given position
func NewTurret(x, y float64) *Turret {
	return &Turret{
		ID:    GenerateID(4),
		X:     x,
		Y:     y,
		HP:    TurretMaxHP,
		MaxHP: TurretMaxHP,
		Alive: true,
	}
}

// Update tracks the nearest head and returns true when the turret wants to
// fire this tick
func (t *Turret) Update(dt float64, idx *IndexController) bool {
	if !t.Alive {
		return false
	}
	if t.FireCD > 0 {
		t.FireCD -= dt
	}
	if t.BurstCD > 0 {
		t.BurstCD -= dt
	}

	target := nearestSerpentHead(idx, t.X, t.Y, TurretRange)
	if target == nil {
		t.BurstLeft = 0
		return false
	}

	desired := math.Atan2(target.Y-t.Y, target.X-t.X)
	diff := NormalizeAngle(desired - t.Rotation)
	maxTurn := TurretTurnSpeed * dt
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	t.Rotation += diff

	if math.Abs(NormalizeAngle(desired-t.Rotation)) > TurretAimSlack {
		return false
	}

	if t.BurstLeft > 0 && t.FireCD <= 0 {
		t.BurstLeft--
		t.FireCD = TurretBurstRate
		if t.BurstLeft == 0 {
			t.BurstCD = TurretBurstCD
		}
		return true
	}
	if t.BurstLeft == 0 && t.BurstCD <= 0 {
		t.BurstLeft = TurretBurstSize - 1
		t.FireCD = TurretBurstRate
		return true
	}
	return false
}

// TakeDamage reduces HP and returns true if the turret was destroyed
func (t *Turret) TakeDamage(dmg int) bool {
	if !t.Alive {
		return false
	}
	t.HP -= dmg
	if t.HP <= 0 {
		t.HP = 0
		t.Alive = false
		return true
	}
	return false
}

// ToState converts to protocol state
func (t *Turret) ToState() TurretState {
	return TurretState{
		ID:    t.ID,
		X:     round1(t.X),
		Y:     round1(t.Y),
		R:     round1(t.Rotation),
		HP:    t.HP,
		MaxHP: t.MaxHP,
		Alive: t.Alive,
	}
}
