package main

import "testing"

func TestEnemySpawnsOnEdge(t *testing.T) {
	for i := 0; i < 20; i++ {
		e := NewEnemy(3000, 3000)
		onEdge := e.X == 0 || e.X == 3000 || e.Y == 0 || e.Y == 3000
		if !onEdge {
			t.Fatalf("enemy spawned at (%v,%v), not on an arena edge", e.X, e.Y)
		}
		if !e.Alive || e.HP != EnemyMaxHP {
			t.Fatal("enemy should spawn alive at full HP")
		}
	}
}

func TestEnemyChasesNearestHead(t *testing.T) {
	ic := newTestController(t, 0)

	s := NewSerpent("s1", "Prey", VariantViper, 1000, 1000, 3000, 3000)
	ic.Register(s)

	e := NewEnemy(3000, 3000)
	e.X, e.Y = 1300, 1000 // within detection range, due east of the head
	e.Rotation = 0

	for i := 0; i < 120; i++ {
		e.Update(1.0/60.0, ic)
	}

	if e.X >= 1300 {
		t.Errorf("enemy did not close on the head: x = %v", e.X)
	}
	if Distance(e.X, e.Y, s.X, s.Y) >= 300 {
		t.Errorf("enemy should be closer than its start distance, at %v", Distance(e.X, e.Y, s.X, s.Y))
	}
}

func TestEnemyIgnoresHeadOutOfRange(t *testing.T) {
	ic := newTestController(t, 0)

	s := NewSerpent("s1", "Far", VariantViper, 2900, 2900, 3000, 3000)
	ic.Register(s)

	e := NewEnemy(3000, 3000)
	e.X, e.Y = 100, 100

	startDist := Distance(e.X, e.Y, s.X, s.Y)
	for i := 0; i < 30; i++ {
		e.Update(1.0/60.0, ic)
	}
	// Wandering, not beelining: it should not have covered meaningful
	// ground toward a head it cannot detect
	if startDist-Distance(e.X, e.Y, s.X, s.Y) > 200 {
		t.Error("enemy closed on a head outside its detection range")
	}
}

func TestEnemyBiteCooldown(t *testing.T) {
	e := NewEnemy(3000, 3000)
	if !e.CanBite() {
		t.Fatal("fresh enemy should be able to bite")
	}
	e.BiteCD = EnemyBiteCD
	if e.CanBite() {
		t.Error("enemy should not bite while on cooldown")
	}

	ic := newTestController(t, 0)
	for i := 0; i < 60; i++ {
		e.Update(1.0/60.0, ic)
	}
	if !e.CanBite() {
		t.Error("bite cooldown should elapse after a second")
	}
}

func TestEnemyTakeDamage(t *testing.T) {
	e := NewEnemy(3000, 3000)
	if e.TakeDamage(EnemyMaxHP - 1) {
		t.Error("sublethal damage should not kill")
	}
	if !e.TakeDamage(1) {
		t.Error("lethal damage should report death")
	}
	if e.Alive || e.GridAlive() {
		t.Error("dead enemy should report dead to the grid")
	}
	if e.TakeDamage(10) {
		t.Error("corpse cannot die again")
	}
}

func TestEnemySlowMulResetsEachTick(t *testing.T) {
	ic := newTestController(t, 0)
	e := NewEnemy(3000, 3000)
	e.SlowMul = 0.5
	e.Update(1.0/60.0, ic)
	if e.SlowMul != 1.0 {
		t.Errorf("SlowMul = %v after tick, want 1.0", e.SlowMul)
	}
}

func TestTurretFiresBurstsAtHeadInRange(t *testing.T) {
	ic := newTestController(t, 0)

	s := NewSerpent("s1", "Target", VariantViper, 1200, 1000, 3000, 3000)
	ic.Register(s)

	tr := NewTurret(1000, 1000)
	tr.Rotation = 0 // already aimed east at the head

	shots := 0
	for i := 0; i < 600; i++ {
		if tr.Update(1.0/60.0, ic) {
			shots++
		}
	}
	if shots < TurretBurstSize {
		t.Errorf("expected at least one full burst (%d shots) in 10s, got %d", TurretBurstSize, shots)
	}
}

func TestTurretHoldsFireWithNoTarget(t *testing.T) {
	ic := newTestController(t, 0)
	tr := NewTurret(1000, 1000)

	for i := 0; i < 120; i++ {
		if tr.Update(1.0/60.0, ic) {
			t.Fatal("turret fired with nothing in range")
		}
	}
}

func TestTurretHoldsFireUntilAimed(t *testing.T) {
	ic := newTestController(t, 0)

	s := NewSerpent("s1", "Target", VariantViper, 1200, 1000, 3000, 3000)
	ic.Register(s)

	tr := NewTurret(1000, 1000)
	tr.Rotation = 3.0 // facing almost directly away

	// First tick turns at most TurretTurnSpeed*dt, far outside the slack
	if tr.Update(1.0/60.0, ic) {
		t.Error("turret fired before traversing onto the target")
	}
}

func TestProjectileDiesAtWall(t *testing.T) {
	tr := NewTurret(100, 100)
	tr.Rotation = 3.14159 // west, toward the x=0 wall
	p := NewTurretProjectile(tr, 3000, 3000)

	for i := 0; i < 60 && p.Alive; i++ {
		p.Update(1.0 / 60.0)
	}
	if p.Alive {
		t.Error("projectile should die at the arena wall")
	}
}

func TestProjectileLifetime(t *testing.T) {
	tr := NewTurret(1500, 1500)
	tr.Rotation = 0
	p := NewTurretProjectile(tr, 5000, 5000)

	p.Update(ProjectileLifetime + 0.1)
	if p.Alive {
		t.Error("projectile should expire after its lifetime")
	}
}

func TestOrbMagnetPullsTowardHead(t *testing.T) {
	ic := newTestController(t, 0)

	s := NewSerpent("s1", "Eater", VariantViper, 1000, 1000, 3000, 3000)
	ic.Register(s)

	o := NewOrbAt(1000+OrbMagnetRange-10, 1000)
	start := Distance(o.X, o.Y, s.X, s.Y)
	o.Update(1.0/60.0, ic)
	if Distance(o.X, o.Y, s.X, s.Y) >= start {
		t.Error("orb inside magnet range should drift toward the head")
	}
}

func TestOrbIgnoresDistantHead(t *testing.T) {
	ic := newTestController(t, 0)

	s := NewSerpent("s1", "Eater", VariantViper, 1000, 1000, 3000, 3000)
	ic.Register(s)

	o := NewOrbAt(1000+OrbMagnetRange*3, 1000)
	x, y := o.X, o.Y
	o.Update(1.0/60.0, ic)
	if o.X != x || o.Y != y {
		t.Error("orb outside magnet range should not move")
	}
}

func TestOrbExpires(t *testing.T) {
	ic := newTestController(t, 0)
	o := NewOrbAt(500, 500)
	o.Update(OrbTimeout+0.1, ic)
	if o.Alive {
		t.Error("orb should fade after its timeout")
	}
}

func TestSlowZoneSlowsEnemiesInRange(t *testing.T) {
	ic := newTestController(t, 0)

	inside := NewEnemy(3000, 3000)
	inside.X, inside.Y = 1020, 1000
	outside := NewEnemy(3000, 3000)
	outside.X, outside.Y = 1000+SlowFieldRadius*2, 1000
	ic.Register(inside)
	ic.Register(outside)
	ic.Refresh()

	z := NewSlowZone(1000, 1000, "s1")
	if !z.Update(1.0/60.0, ic) {
		t.Fatal("fresh zone should not expire")
	}
	if inside.SlowMul != SlowFieldFactor {
		t.Errorf("enemy in zone has SlowMul %v, want %v", inside.SlowMul, SlowFieldFactor)
	}
	if outside.SlowMul != 1.0 {
		t.Errorf("enemy outside zone has SlowMul %v, want 1.0", outside.SlowMul)
	}
}

func TestSlowZoneExpires(t *testing.T) {
	ic := newTestController(t, 0)
	z := NewSlowZone(1000, 1000, "s1")
	if z.Update(SlowFieldDuration+0.1, ic) {
		t.Error("zone should expire after its duration")
	}
}
