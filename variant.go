package main

// SerpentVariant identifies the serpent build a player picked
type SerpentVariant int

const (
	VariantViper       SerpentVariant = 0
	VariantConstrictor SerpentVariant = 1
	VariantMamba       SerpentVariant = 2
	VariantBasilisk    SerpentVariant = 3
)

// VariantDef holds the stats for a serpent variant
type VariantDef struct {
	MaxHP       int
	Speed       float64 // head speed, units/s
	BoostMul    float64
	TurnSpeed   float64 // radians/s max turn rate
	HeadRadius  float64
	SegRadius   float64
	SegSpacing  float64 // distance between chain nodes
	StartSegs   int
	BiteDamage  int // damage dealt by head contact
	Ability     AbilityType
}

var Variants = [4]VariantDef{
	// Viper: fast and fragile, dash escape
	{
		MaxHP: 70, Speed: 260, BoostMul: 1.7, TurnSpeed: 9.0,
		HeadRadius: 12, SegRadius: 9, SegSpacing: 16, StartSegs: 6,
		BiteDamage: 25, Ability: AbilityDash,
	},
	// Constrictor: slow and tanky, damage ward
	{
		MaxHP: 160, Speed: 180, BoostMul: 1.4, TurnSpeed: 6.0,
		HeadRadius: 16, SegRadius: 13, SegSpacing: 20, StartSegs: 8,
		BiteDamage: 35, Ability: AbilityWard,
	},
	// Mamba: balanced, venom burst around the head
	{
		MaxHP: 100, Speed: 220, BoostMul: 1.5, TurnSpeed: 8.0,
		HeadRadius: 13, SegRadius: 10, SegSpacing: 17, StartSegs: 7,
		BiteDamage: 30, Ability: AbilityVenomNova,
	},
	// Basilisk: support, drops slowing fields
	{
		MaxHP: 120, Speed: 200, BoostMul: 1.5, TurnSpeed: 7.0,
		HeadRadius: 14, SegRadius: 11, SegSpacing: 18, StartSegs: 7,
		BiteDamage: 25, Ability: AbilitySlowField,
	},
}

// GetVariantDef returns the definition for a variant
func GetVariantDef(v SerpentVariant) VariantDef {
	if v < 0 || int(v) >= len(Variants) {
		return Variants[VariantViper]
	}
	return Variants[v]
}
