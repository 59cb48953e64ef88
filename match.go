package main

// GameMode defines the type of run a session hosts
type GameMode int

const (
	ModeSurvival GameMode = 0 // endless enemy waves
	ModeRace     GameMode = 1 // timed orb race, no enemies
)

// MatchConfig holds settings for a session
type MatchConfig struct {
	Mode        GameMode
	TimeLimit   float64 // seconds, 0 = endless
	ArenaWidth  float64
	ArenaHeight float64
	MaxPlayers  int
	OrbTarget   int // orbs kept in the arena
	TurretCount int // turrets per wave (survival)

	WaveBaseEnemies int     // enemies in wave 1
	WaveGrowth      int     // extra enemies per wave
	WaveInterval    float64 // seconds between waves
}

// DefaultConfig returns the default config for the given mode
func DefaultConfig(mode GameMode) MatchConfig {
	switch mode {
	case ModeRace:
		return MatchConfig{
			Mode:        ModeRace,
			TimeLimit:   180,
			ArenaWidth:  2400,
			ArenaHeight: 2400,
			MaxPlayers:  16,
			OrbTarget:   120,
		}
	default:
		return MatchConfig{
			Mode:            ModeSurvival,
			TimeLimit:       0,
			ArenaWidth:      3000,
			ArenaHeight:     3000,
			MaxPlayers:      12,
			OrbTarget:       80,
			TurretCount:     2,
			WaveBaseEnemies: 4,
			WaveGrowth:      2,
			WaveInterval:    25,
		}
	}
}

// SpawnPosition returns a spawn point away from the arena walls
func (c MatchConfig) SpawnPosition() (float64, float64) {
	x := c.ArenaWidth/4 + randFloat()*c.ArenaWidth/2
	y := c.ArenaHeight/4 + randFloat()*c.ArenaHeight/2
	return x, y
}

// EnemiesForWave returns how many enemies wave n spawns
func (c MatchConfig) EnemiesForWave(n int) int {
	if c.Mode != ModeSurvival || n < 1 {
		return 0
	}
	return c.WaveBaseEnemies + c.WaveGrowth*(n-1)
}
