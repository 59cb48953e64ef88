package main

import "math"

const (
	ProjectileSpeed    = 520.0 // units/s
	ProjectileLifetime = 2.0   // seconds
	ProjectileRadius   = 4.0
	ProjectileDamage   = 12
	ProjectileOffset   = 26.0 // spawn distance from the muzzle
)

// Projectile is an enemy shot travelling in a straight line
type Projectile struct {
	ID      string
	OwnerID string
	X, Y    float64
	VX, VY  float64
	Life    float64
	Damage  int
	Alive   bool
	arenaW  float64
	arenaH  float64
}

// GridPosition implements GridEntity
func (p *Projectile) GridPosition() (float64, float64) { return p.X, p.Y }

// GridAlive implements GridEntity
func (p *Projectile) GridAlive() bool { return p.Alive }

// NewTurretProjectile creates a shot from a turret's muzzle
func NewTurretProjectile(t *Turret, arenaW, arenaH float64) *Projectile {
	return &Projectile{
		ID:      GenerateID(3),
		OwnerID: t.ID,
		X:       t.X + math.Cos(t.Rotation)*ProjectileOffset,
		Y:       t.Y + math.Sin(t.Rotation)*ProjectileOffset,
		VX:      math.Cos(t.Rotation) * ProjectileSpeed,
		VY:      math.Sin(t.Rotation) * ProjectileSpeed,
		Life:    ProjectileLifetime,
		Damage:  ProjectileDamage,
		Alive:   true,
		arenaW:  arenaW,
		arenaH:  arenaH,
	}
}

// Update moves the projectile one tick
func (p *Projectile) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life -= dt

	// Shots die at the arena walls
	if p.X < 0 || p.X > p.arenaW || p.Y < 0 || p.Y > p.arenaH {
		p.Alive = false
		return
	}
	if p.Life <= 0 {
		p.Alive = false
	}
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    p.ID,
		X:     round1(p.X),
		Y:     round1(p.Y),
		Owner: p.OwnerID,
	}
}
