package main

import (
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

func (m *mockBroadcaster) envelopes(msgType string) []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Envelope
	for _, msg := range m.messages {
		if env, ok := msg.(Envelope); ok && env.T == msgType {
			out = append(out, env)
		}
	}
	return out
}

func testConfig(mode GameMode) MatchConfig {
	return MatchConfig{
		Mode:            mode,
		ArenaWidth:      2000,
		ArenaHeight:     2000,
		MaxPlayers:      4,
		OrbTarget:       5,
		TurretCount:     1,
		WaveBaseEnemies: 2,
		WaveGrowth:      1,
		WaveInterval:    10,
	}
}

func TestGameAddRemovePlayer(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("TestSnake", VariantViper)
	if s == nil {
		t.Fatal("AddPlayer returned nil")
	}
	if s.Name != "TestSnake" {
		t.Errorf("expected name TestSnake, got %s", s.Name)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}

	// Head and every starting segment land in the index on join
	want := g.config.OrbTarget + 1 + len(s.Segments)
	if g.EntityCount() != want {
		t.Errorf("index holds %d entities after join, want %d", g.EntityCount(), want)
	}

	g.RemovePlayer(s.ID)
	if g.PlayerCount() != 0 {
		t.Errorf("expected 0 players, got %d", g.PlayerCount())
	}
	if g.EntityCount() != g.config.OrbTarget {
		t.Errorf("index holds %d entities after leave, want %d", g.EntityCount(), g.config.OrbTarget)
	}
}

func TestGameMaxPlayers(t *testing.T) {
	cfg := testConfig(ModeSurvival)
	cfg.MaxPlayers = 2
	g := NewGame(cfg, nil, nil)

	if g.AddPlayer("A", VariantViper) == nil || g.AddPlayer("B", VariantViper) == nil {
		t.Fatal("first two joins should succeed")
	}
	if g.AddPlayer("C", VariantViper) != nil {
		t.Error("join past MaxPlayers should fail")
	}
}

func TestGameVariantRotation(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)

	// Invalid variants fall back to a rotating default
	s1 := g.AddPlayer("A", SerpentVariant(-1))
	s2 := g.AddPlayer("B", SerpentVariant(99))
	if s1.Variant == s2.Variant {
		t.Error("fallback variants should rotate, got the same twice")
	}

	// An explicit valid pick is honored
	s3 := g.AddPlayer("C", VariantBasilisk)
	if s3.Variant != VariantBasilisk {
		t.Errorf("explicit variant ignored: got %v", s3.Variant)
	}
}

func TestGameHandleInput(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Test", VariantViper)

	g.HandleInput(s.ID, ClientInput{TX: 900, TY: 800, Boost: true, Ability: true})

	g.mu.RLock()
	defer g.mu.RUnlock()
	if s.TargetX != 900 || s.TargetY != 800 {
		t.Errorf("target = (%v,%v), want (900,800)", s.TargetX, s.TargetY)
	}
	if !s.Boosting {
		t.Error("serpent should be boosting")
	}
	if !s.AbilityPressed {
		t.Error("ability press should latch until the next tick")
	}
}

func TestGameHandleInputClampsTarget(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Test", VariantViper)

	g.HandleInput(s.ID, ClientInput{TX: -500, TY: 99999})

	// Input for an unknown player is a no-op
	g.HandleInput("nobody", ClientInput{TX: 1, TY: 1})

	g.mu.RLock()
	defer g.mu.RUnlock()
	if s.TargetX != 0 || s.TargetY != g.config.ArenaHeight {
		t.Errorf("target = (%v,%v), want clamped to arena", s.TargetX, s.TargetY)
	}
}

func TestGameUpdateTicks(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s1 := g.AddPlayer("P1", VariantViper)
	s2 := g.AddPlayer("P2", VariantMamba)

	mock1 := &mockBroadcaster{}
	mock2 := &mockBroadcaster{}
	g.SetClient(s1.ID, mock1)
	g.SetClient(s2.ID, mock2)

	for i := 0; i < 10; i++ {
		g.update()
	}
	if g.tick != 10 {
		t.Errorf("expected tick 10, got %d", g.tick)
	}
}

func TestGameBroadcastsBinaryState(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Viewer", VariantViper)
	mock := &mockBroadcaster{}
	g.SetClient(s.ID, mock)

	for i := 0; i < BroadcastEvery; i++ {
		g.update()
	}

	mock.mu.Lock()
	frames := len(mock.binary)
	var raw []byte
	if frames > 0 {
		raw = mock.binary[0]
	}
	mock.mu.Unlock()

	if frames == 0 {
		t.Fatal("expected at least one binary state frame")
	}
	var state GameState
	if err := msgpack.Unmarshal(raw, &state); err != nil {
		t.Fatalf("state frame is not valid msgpack: %v", err)
	}
	if len(state.Serpents) != 1 {
		t.Errorf("state has %d serpents, want 1", len(state.Serpents))
	}
	if len(state.Orbs) != g.config.OrbTarget {
		t.Errorf("state has %d orbs, want %d", len(state.Orbs), g.config.OrbTarget)
	}
}

func TestGameOrbEatenGrowsSerpent(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Eater", VariantViper)
	g.HandleInput(s.ID, ClientInput{TX: s.X, TY: s.Y}) // hold still

	g.mu.Lock()
	for _, o := range g.orbs {
		o.X, o.Y = s.X, s.Y
		o.Credit = false
		break
	}
	before := len(s.Segments)
	g.mu.Unlock()

	g.update()

	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(s.Segments) != before+1 {
		t.Errorf("chain length %d after eating, want %d", len(s.Segments), before+1)
	}
	// Arena restocks to the configured orb count
	if len(g.orbs) != g.config.OrbTarget {
		t.Errorf("%d orbs after restock, want %d", len(g.orbs), g.config.OrbTarget)
	}
}

func TestGameVenomNovaKillsAdjacentEnemy(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Nova", VariantMamba)
	g.HandleInput(s.ID, ClientInput{TX: s.X, TY: s.Y, Ability: true})

	g.mu.Lock()
	e := NewEnemy(g.config.ArenaWidth, g.config.ArenaHeight)
	e.X, e.Y = s.X+40, s.Y
	e.HP = VenomNovaDamage // one nova finishes it
	g.enemies[e.ID] = e
	g.index.Register(e)
	g.mu.Unlock()

	g.update()

	g.mu.RLock()
	defer g.mu.RUnlock()
	if e.Alive {
		t.Error("enemy in nova radius should be dead")
	}
	if s.Kills != 1 {
		t.Errorf("killer has %d kills, want 1", s.Kills)
	}
	if s.Credits != EnemyKillCredits {
		t.Errorf("killer has %d credits, want %d", s.Credits, EnemyKillCredits)
	}
}

func TestGameProjectileHitsSerpent(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Target", VariantViper)
	g.HandleInput(s.ID, ClientInput{TX: s.X, TY: s.Y}) // hold still
	mock := &mockBroadcaster{}
	g.SetClient(s.ID, mock)

	g.mu.Lock()
	p := &Projectile{
		ID:      GenerateID(3),
		OwnerID: "turret",
		X:       s.X - 5,
		Y:       s.Y,
		VX:      ProjectileSpeed,
		Life:    1,
		Damage:  s.MaxHP + 10,
		Alive:   true,
		arenaW:  g.config.ArenaWidth,
		arenaH:  g.config.ArenaHeight,
	}
	g.projectiles[p.ID] = p
	g.mu.Unlock()

	g.update()

	g.mu.RLock()
	alive := s.Alive
	projectiles := len(g.projectiles)
	g.mu.RUnlock()

	if alive {
		t.Error("serpent should die to a lethal projectile")
	}
	if projectiles != 0 {
		t.Errorf("%d projectiles left after the hit, want 0", projectiles)
	}
	if len(mock.envelopes(MsgDeath)) != 1 {
		t.Error("victim should receive a death message")
	}
}

func TestGameWaveSpawnsEnemies(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Bait", VariantViper)
	mock := &mockBroadcaster{}
	g.SetClient(s.ID, mock)

	g.update()

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.wave != 1 {
		t.Errorf("wave = %d after first tick, want 1", g.wave)
	}
	if len(g.enemies) != g.config.WaveBaseEnemies {
		t.Errorf("%d enemies spawned, want %d", len(g.enemies), g.config.WaveBaseEnemies)
	}
	if len(mock.envelopes(MsgWave)) != 1 {
		t.Error("wave start should be announced")
	}
}

func TestGameNoWavesWithoutPlayers(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	for i := 0; i < 10; i++ {
		g.update()
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.wave != 0 || len(g.enemies) != 0 {
		t.Errorf("waves ran on an empty arena: wave=%d enemies=%d", g.wave, len(g.enemies))
	}
}

func TestGameRaceModeHasNoWaves(t *testing.T) {
	g := NewGame(testConfig(ModeRace), nil, nil)
	g.AddPlayer("Racer", VariantViper)

	for i := 0; i < 10; i++ {
		g.update()
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.enemies) != 0 {
		t.Errorf("race mode spawned %d enemies, want 0", len(g.enemies))
	}
}

func TestGameRespawnsDeadSerpent(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	s := g.AddPlayer("Phoenix", VariantViper)

	g.mu.Lock()
	s.TakeDamage(s.MaxHP)
	s.RespawnT = 0 // skip the wait
	g.mu.Unlock()

	g.update()

	g.mu.RLock()
	defer g.mu.RUnlock()
	if !s.Alive {
		t.Fatal("serpent should respawn once its timer elapses")
	}
	if s.HP != s.MaxHP {
		t.Errorf("respawned at %d HP, want %d", s.HP, s.MaxHP)
	}
	// Head is queryable at the new position right away
	found := false
	for _, ge := range g.index.EntitiesInRadius(s.X, s.Y, 10) {
		if ge == GridEntity(s) {
			found = true
		}
	}
	if !found {
		t.Error("respawned head missing from the spatial index")
	}
}

func TestGameTimedRoundResets(t *testing.T) {
	cfg := testConfig(ModeRace)
	cfg.TimeLimit = 0.01 // expires on the first tick
	g := NewGame(cfg, nil, nil)
	s := g.AddPlayer("Racer", VariantViper)
	mock := &mockBroadcaster{}
	g.SetClient(s.ID, mock)

	g.update()

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.timeLeft != cfg.TimeLimit {
		t.Errorf("timeLeft = %v after round end, want reset to %v", g.timeLeft, cfg.TimeLimit)
	}
	if len(mock.envelopes(MsgWave)) == 0 {
		t.Error("round reset should be announced")
	}
}

func TestGameStopIsIdempotent(t *testing.T) {
	g := NewGame(testConfig(ModeSurvival), nil, nil)
	go g.Run()
	g.Stop()
	g.Stop() // second stop must not panic on a closed channel
}
