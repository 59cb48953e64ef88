package main

import (
	"math"
	"math/rand"
)

const (
	EnemyRadius      = 18.0
	EnemyMaxHP       = 50
	EnemySpeed       = 170.0
	EnemyDetectRange = 480.0
	EnemyAccel       = 260.0
	EnemyFriction    = 0.95
	EnemyBiteDamage  = 15
	EnemyBiteRange   = 6.0 // extra reach beyond touching radii
	EnemyBiteCD      = 0.8 // seconds between bites
	EnemyKillScore   = 5
	EnemyKillCredits = 3

	EnemyLungeRange    = 120.0
	EnemyLungeImpulse  = 320.0
	EnemyLungeCooldown = 2.5

	EnemyWanderDrift = 1.8 // radians/s of wander angle drift
	EnemyWanderTurn  = 2.5

	EnemyStrafeFlipMin = 1.2
	EnemyStrafeFlipMax = 3.0
)

// Enemy is an AI chaser that hunts the nearest serpent head
type Enemy struct {
	ID       string
	X, Y     float64
	VX, VY   float64
	Rotation float64
	HP       int
	MaxHP    int
	Alive    bool
	BiteCD   float64
	LungeCD  float64
	SlowMul  float64 // movement multiplier applied by zones this tick

	WanderAngle float64
	StrafeDir   float64
	StrafeTimer float64

	arenaW float64
	arenaH float64
}

// GridPosition implements GridEntity
func (e *Enemy) GridPosition() (float64, float64) { return e.X, e.Y }

// GridAlive implements GridEntity
func (e *Enemy) GridAlive() bool { return e.Alive }

// NewEnemy spawns an enemy at a random arena edge, facing the center
func NewEnemy(arenaW, arenaH float64) *Enemy {
	e := &Enemy{
		ID:      GenerateID(4),
		HP:      EnemyMaxHP,
		MaxHP:   EnemyMaxHP,
		Alive:   true,
		SlowMul: 1.0,
		arenaW:  arenaW,
		arenaH:  arenaH,
	}

	// Pick a random edge: 0=left, 1=right, 2=top, 3=bottom
	edge := rand.Intn(4)
	switch edge {
	case 0:
		e.X = 0
		e.Y = rand.Float64() * arenaH
	case 1:
		e.X = arenaW
		e.Y = rand.Float64() * arenaH
	case 2:
		e.X = rand.Float64() * arenaW
		e.Y = 0
	default:
		e.X = rand.Float64() * arenaW
		e.Y = arenaH
	}

	e.Rotation = math.Atan2(arenaH/2-e.Y, arenaW/2-e.X)
	e.WanderAngle = e.Rotation
	if rand.Float64() < 0.5 {
		e.StrafeDir = 1
	} else {
		e.StrafeDir = -1
	}
	e.StrafeTimer = EnemyStrafeFlipMin + rand.Float64()*(EnemyStrafeFlipMax-EnemyStrafeFlipMin)
	return e
}

// Update steers the enemy toward the nearest serpent head found through the
// spatial index, or wanders when nothing is in detection range
func (e *Enemy) Update(dt float64, idx *IndexController) {
	if !e.Alive {
		return
	}

	if e.BiteCD > 0 {
		e.BiteCD -= dt
	}
	if e.LungeCD > 0 {
		e.LungeCD -= dt
	}

	target := nearestSerpentHead(idx, e.X, e.Y, EnemyDetectRange)
	if target != nil {
		dx := target.X - e.X
		dy := target.Y - e.Y
		dist := math.Sqrt(dx*dx + dy*dy)

		desired := math.Atan2(dy, dx)
		diff := NormalizeAngle(desired - e.Rotation)
		maxTurn := EnemyWanderTurn * 2 * dt
		if diff > maxTurn {
			diff = maxTurn
		} else if diff < -maxTurn {
			diff = -maxTurn
		}
		e.Rotation += diff

		// Approach with a sideways bias so packs fan out instead of
		// stacking on one bearing
		tangential := e.StrafeDir * 0.35
		moveX := math.Cos(desired) + math.Cos(desired+math.Pi/2)*tangential
		moveY := math.Sin(desired) + math.Sin(desired+math.Pi/2)*tangential
		moveAngle := math.Atan2(moveY, moveX)

		e.StrafeTimer -= dt
		if e.StrafeTimer <= 0 {
			e.StrafeDir = -e.StrafeDir
			e.StrafeTimer = EnemyStrafeFlipMin + rand.Float64()*(EnemyStrafeFlipMax-EnemyStrafeFlipMin)
		}

		accel := EnemyAccel * dt * e.SlowMul
		e.VX += math.Cos(moveAngle) * accel
		e.VY += math.Sin(moveAngle) * accel

		// Close-range lunge
		if dist < EnemyLungeRange && e.LungeCD <= 0 {
			e.VX += math.Cos(desired) * EnemyLungeImpulse * e.SlowMul
			e.VY += math.Sin(desired) * EnemyLungeImpulse * e.SlowMul
			e.LungeCD = EnemyLungeCooldown
		}
	} else {
		// Wander: drift the wander angle gently, then turn toward it
		e.WanderAngle += (rand.Float64()*2 - 1) * EnemyWanderDrift * dt
		diff := NormalizeAngle(e.WanderAngle - e.Rotation)
		maxTurn := EnemyWanderTurn * dt
		if diff > maxTurn {
			diff = maxTurn
		} else if diff < -maxTurn {
			diff = -maxTurn
		}
		e.Rotation += diff

		accel := EnemyAccel * dt * e.SlowMul
		e.VX += math.Cos(e.Rotation) * accel
		e.VY += math.Sin(e.Rotation) * accel
	}

	e.VX *= EnemyFriction
	e.VY *= EnemyFriction

	maxSpd := EnemySpeed * e.SlowMul
	speed := math.Sqrt(e.VX*e.VX + e.VY*e.VY)
	if speed > maxSpd {
		scale := maxSpd / speed
		e.VX *= scale
		e.VY *= scale
	}

	e.X = Clamp(e.X+e.VX*dt, 0, e.arenaW)
	e.Y = Clamp(e.Y+e.VY*dt, 0, e.arenaH)

	e.SlowMul = 1.0
}

// CanBite returns true when the bite cooldown has elapsed
func (e *Enemy) CanBite() bool {
	return e.Alive && e.BiteCD <= 0
}

// TakeDamage reduces HP and returns true if the enemy died
func (e *Enemy) TakeDamage(dmg int) bool {
	if !e.Alive {
		return false
	}
	e.HP -= dmg
	if e.HP <= 0 {
		e.HP = 0
		e.Alive = false
		return true
	}
	return false
}

// nearestSerpentHead finds the closest live serpent head within radius,
// filtering the index's mixed candidate set down to heads
func nearestSerpentHead(idx *IndexController, x, y, radius float64) *Serpent {
	var nearest *Serpent
	best := math.MaxFloat64
	for _, ge := range idx.EntitiesInRadius(x, y, radius) {
		s, ok := ge.(*Serpent)
		if !ok || !s.Alive {
			continue
		}
		dx := s.X - x
		dy := s.Y - y
		d2 := dx*dx + dy*dy
		if d2 < best {
			best = d2
			nearest = s
		}
	}
	return nearest
}

// ToState converts to protocol state
func (e *Enemy) ToState() EnemyState {
	return EnemyState{
		ID:    e.ID,
		X:     round1(e.X),
		Y:     round1(e.Y),
		R:     round1(e.Rotation),
		HP:    e.HP,
		MaxHP: e.MaxHP,
		Alive: e.Alive,
	}
}
