package main

import "math"

const (
	RespawnTime    = 3.0  // seconds before respawn
	RespawnShrink  = 3    // segments lost on death
	MaxSegments    = 120
	SerpentDeadZone = 14.0 // pointer closer than this stops the head
)

// Segment is one body node of a serpent. Segments are tracked in the
// spatial index individually so body hits resolve without scanning whole
// serpents.
type Segment struct {
	X, Y  float64
	Owner *Serpent
	Alive bool
}

// GridPosition implements GridEntity
func (s *Segment) GridPosition() (float64, float64) { return s.X, s.Y }

// GridAlive implements GridEntity
func (s *Segment) GridAlive() bool { return s.Alive && s.Owner != nil && s.Owner.Alive }

// Serpent is a player: a steerable head trailed by a segment chain
type Serpent struct {
	ID       string
	Name     string
	X, Y     float64
	Heading  float64
	HP       int
	MaxHP    int
	Variant  SerpentVariant
	Segments []*Segment
	Score    int
	Kills    int
	Credits  int
	Alive    bool
	RespawnT float64
	TargetX  float64 // pointer world X
	TargetY  float64 // pointer world Y
	Boosting bool
	AbilityPressed bool
	Ability  Ability
	CrashCD  float64 // cooldown after hitting another serpent's body
	SlowMul  float64 // movement multiplier applied by zones this tick
	Skin     string
	Team     int
	AuthPlayerID int64
	arenaW   float64
	arenaH   float64
}

// GridPosition implements GridEntity for the head
func (s *Serpent) GridPosition() (float64, float64) { return s.X, s.Y }

// GridAlive implements GridEntity for the head
func (s *Serpent) GridAlive() bool { return s.Alive }

// NewSerpent creates a serpent at the given spawn with its variant's
// starting chain laid out behind the head.
func NewSerpent(id, name string, variant SerpentVariant, x, y, arenaW, arenaH float64) *Serpent {
	def := GetVariantDef(variant)
	s := &Serpent{
		ID:      id,
		Name:    name,
		X:       x,
		Y:       y,
		Heading: math.Atan2(arenaH/2-y, arenaW/2-x),
		HP:      def.MaxHP,
		MaxHP:   def.MaxHP,
		Variant: variant,
		Alive:   true,
		Ability: AbilityForVariant(variant),
		SlowMul: 1.0,
		arenaW:  arenaW,
		arenaH:  arenaH,
	}
	for i := 0; i < def.StartSegs; i++ {
		s.Segments = append(s.Segments, &Segment{
			X:     x - math.Cos(s.Heading)*def.SegSpacing*float64(i+1),
			Y:     y - math.Sin(s.Heading)*def.SegSpacing*float64(i+1),
			Owner: s,
			Alive: true,
		})
	}
	return s
}

// Update advances the head toward the pointer target and pulls the chain
// along behind it (dt in seconds)
func (s *Serpent) Update(dt float64) {
	if !s.Alive {
		s.RespawnT -= dt
		return
	}

	if s.CrashCD > 0 {
		s.CrashCD -= dt
	}

	def := GetVariantDef(s.Variant)

	// Turn toward the pointer
	dx := s.TargetX - s.X
	dy := s.TargetY - s.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist > SerpentDeadZone {
		desired := math.Atan2(dy, dx)
		diff := NormalizeAngle(desired - s.Heading)
		maxTurn := def.TurnSpeed * dt
		if diff > maxTurn {
			diff = maxTurn
		} else if diff < -maxTurn {
			diff = -maxTurn
		}
		s.Heading += diff

		speed := def.Speed * s.SlowMul
		if s.Boosting {
			speed *= def.BoostMul
		}
		if s.Ability.DashT > 0 {
			speed *= DashSpeedMul
		}
		s.X += math.Cos(s.Heading) * speed * dt
		s.Y += math.Sin(s.Heading) * speed * dt
	}

	// Keep the head inside the arena
	s.X = Clamp(s.X, 0, s.arenaW)
	s.Y = Clamp(s.Y, 0, s.arenaH)

	s.followChain(def.SegSpacing)
	s.Ability.Update(dt)
	s.SlowMul = 1.0 // zones reapply every tick
}

// followChain drags each segment toward the node ahead of it, keeping a
// fixed spacing along the chain
func (s *Serpent) followChain(spacing float64) {
	px, py := s.X, s.Y
	for _, seg := range s.Segments {
		dx := px - seg.X
		dy := py - seg.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d > spacing {
			t := (d - spacing) / d
			seg.X += dx * t
			seg.Y += dy * t
		}
		px, py = seg.X, seg.Y
	}
}

// Grow appends one segment at the tail and returns it, or nil when the
// chain is at its cap
func (s *Serpent) Grow() *Segment {
	if len(s.Segments) >= MaxSegments {
		return nil
	}
	tx, ty := s.X, s.Y
	if n := len(s.Segments); n > 0 {
		tx, ty = s.Segments[n-1].X, s.Segments[n-1].Y
	}
	seg := &Segment{X: tx, Y: ty, Owner: s, Alive: true}
	s.Segments = append(s.Segments, seg)
	s.Score = len(s.Segments)
	return seg
}

// TakeDamage reduces HP through the ward (if any) and returns true if the
// serpent died
func (s *Serpent) TakeDamage(dmg int) bool {
	if !s.Alive {
		return false
	}
	dmg = s.Ability.AbsorbDamage(dmg)
	if dmg <= 0 {
		return false
	}
	s.HP -= dmg
	if s.HP <= 0 {
		s.HP = 0
		s.Alive = false
		s.RespawnT = RespawnTime
		return true
	}
	return false
}

// Respawn revives the serpent at the given position with a shrunk chain.
// Shed segments are returned so the caller can unregister them.
func (s *Serpent) Respawn(x, y float64) []*Segment {
	s.X = x
	s.Y = y
	s.Heading = math.Atan2(s.arenaH/2-y, s.arenaW/2-x)
	s.HP = s.MaxHP
	s.Alive = true
	s.RespawnT = 0
	s.Ability = AbilityForVariant(s.Variant)

	var shed []*Segment
	keep := len(s.Segments) - RespawnShrink
	def := GetVariantDef(s.Variant)
	if keep < def.StartSegs {
		keep = def.StartSegs
	}
	if keep > len(s.Segments) {
		keep = len(s.Segments)
	}
	for _, seg := range s.Segments[keep:] {
		seg.Alive = false
		shed = append(shed, seg)
	}
	s.Segments = s.Segments[:keep]
	s.Score = len(s.Segments)

	// Fold the surviving chain onto the new spawn so it doesn't snap
	// across the arena on the next tick
	for i, seg := range s.Segments {
		seg.X = x - math.Cos(s.Heading)*def.SegSpacing*float64(i+1)
		seg.Y = y - math.Sin(s.Heading)*def.SegSpacing*float64(i+1)
	}
	return shed
}

// Length returns the current chain length including the head
func (s *Serpent) Length() int {
	return len(s.Segments) + 1
}

// ToState converts to protocol state
func (s *Serpent) ToState() SerpentState {
	segs := make([]float64, 0, len(s.Segments)*2)
	for _, seg := range s.Segments {
		segs = append(segs, round1(seg.X), round1(seg.Y))
	}
	return SerpentState{
		ID:      s.ID,
		Name:    s.Name,
		X:       round1(s.X),
		Y:       round1(s.Y),
		H:       round1(s.Heading),
		HP:      s.HP,
		MaxHP:   s.MaxHP,
		Variant: int(s.Variant),
		Segs:    segs,
		Score:   s.Score,
		Kills:   s.Kills,
		Alive:   s.Alive,
		Boost:   s.Boosting,
		Skin:    s.Skin,
	}
}
