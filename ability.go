package main

// AbilityType identifies the ability
type AbilityType int

const (
	AbilityDash      AbilityType = 0 // Viper: short speed burst
	AbilityWard      AbilityType = 1 // Constrictor: absorb damage
	AbilityVenomNova AbilityType = 2 // Mamba: damage burst around the head
	AbilitySlowField AbilityType = 3 // Basilisk: drop a slowing zone
)

// Ability cooldowns and tuning
const (
	DashCooldown = 6.0
	DashDuration = 0.8
	DashSpeedMul = 2.2

	WardCooldown = 15.0
	WardDuration = 3.0
	WardAbsorb   = 60

	VenomNovaCooldown = 10.0
	VenomNovaRadius   = 140.0
	VenomNovaDamage   = 40

	SlowFieldCooldown = 14.0
	SlowFieldDuration = 5.0
	SlowFieldRadius   = 160.0
	SlowFieldFactor   = 0.45 // movement multiplier inside the zone
)

// Ability tracks the state of a serpent's ability
type Ability struct {
	Type     AbilityType
	Cooldown float64 // remaining cooldown
	Active   bool    // ward currently up
	Timer    float64 // remaining ward duration
	WardHP   int     // remaining ward absorption
	DashT    float64 // remaining dash duration
}

// AbilityForVariant returns the default ability for a variant
func AbilityForVariant(v SerpentVariant) Ability {
	return Ability{Type: GetVariantDef(v).Ability}
}

// CanActivate returns true if the ability is ready
func (a *Ability) CanActivate() bool {
	return a.Cooldown <= 0 && !a.Active && a.DashT <= 0
}

// Activate starts the ability and returns true on success. Nova damage and
// zone placement are applied by game.go, which has the index.
func (a *Ability) Activate() bool {
	if !a.CanActivate() {
		return false
	}
	switch a.Type {
	case AbilityDash:
		a.DashT = DashDuration
		a.Cooldown = DashCooldown
	case AbilityWard:
		a.Active = true
		a.Timer = WardDuration
		a.WardHP = WardAbsorb
		a.Cooldown = WardCooldown
	case AbilityVenomNova:
		a.Cooldown = VenomNovaCooldown
	case AbilitySlowField:
		a.Cooldown = SlowFieldCooldown
	}
	return true
}

// Update ticks the ability cooldowns and active timers
func (a *Ability) Update(dt float64) {
	if a.Cooldown > 0 {
		a.Cooldown -= dt
		if a.Cooldown < 0 {
			a.Cooldown = 0
		}
	}
	if a.DashT > 0 {
		a.DashT -= dt
		if a.DashT < 0 {
			a.DashT = 0
		}
	}
	if a.Active {
		a.Timer -= dt
		if a.Timer <= 0 {
			a.Active = false
			a.Timer = 0
			a.WardHP = 0
		}
	}
}

// AbsorbDamage applies ward absorption, returns remaining damage
func (a *Ability) AbsorbDamage(dmg int) int {
	if !a.Active || a.Type != AbilityWard || a.WardHP <= 0 {
		return dmg
	}
	if dmg <= a.WardHP {
		a.WardHP -= dmg
		return 0
	}
	remaining := dmg - a.WardHP
	a.WardHP = 0
	a.Active = false
	a.Timer = 0
	return remaining
}
