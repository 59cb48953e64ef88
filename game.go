package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxProjectilesPerSession = 400
	maxEnemiesPerSession     = 80

	SegmentCrashDamage = 20
	SegmentCrashCD     = 0.6

	// Broad-phase query slack: covers index staleness between refresh
	// passes plus one tick of projectile travel.
	BroadPhaseSlack = 96.0
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game holds the state for one session: all entities, the spatial index
// that tracks them, and the tick loop. Everything below the mutex is only
// touched with it held; the index is owned by this Game and never shared.
type Game struct {
	mu          sync.RWMutex
	config      MatchConfig
	serpents    map[string]*Serpent
	enemies     map[string]*Enemy
	turrets     map[string]*Turret
	projectiles map[string]*Projectile
	orbs        map[string]*Orb
	zones       map[string]*SlowZone
	clients     map[string]Broadcaster
	index       *IndexController
	db          *DB
	analytics   *Analytics
	tick        uint64
	wave        int
	waveT       float64
	timeLeft    float64
	running     bool
	stop        chan struct{}
	nextVariant int
	queryBuf    []GridEntity // scratch for per-tick broad-phase queries
}

// NewGame creates a new Game for the given config. db and analytics may be
// nil (tests, ephemeral sessions).
func NewGame(config MatchConfig, db *DB, analytics *Analytics) *Game {
	grid, err := NewSpatialGrid(GridCellSize, GridExpectedEntities)
	if err != nil {
		// cell size is a positive constant; this cannot happen at runtime
		panic(err)
	}
	g := &Game{
		config:      config,
		serpents:    make(map[string]*Serpent),
		enemies:     make(map[string]*Enemy),
		turrets:     make(map[string]*Turret),
		projectiles: make(map[string]*Projectile),
		orbs:        make(map[string]*Orb),
		zones:       make(map[string]*SlowZone),
		clients:     make(map[string]Broadcaster),
		index:       NewIndexController(grid, IndexUpdateInterval),
		db:          db,
		analytics:   analytics,
		timeLeft:    config.TimeLimit,
		stop:        make(chan struct{}),
	}
	g.seedOrbs()
	return g
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// AddPlayer adds a new serpent to the session and registers it with the
// spatial index, so it is queryable immediately
func (g *Game) AddPlayer(name string, variant SerpentVariant) *Serpent {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.serpents) >= g.config.MaxPlayers {
		return nil
	}

	if variant < 0 || int(variant) >= len(Variants) {
		variant = SerpentVariant(g.nextVariant % len(Variants))
	}
	g.nextVariant++

	x, y := g.config.SpawnPosition()
	s := NewSerpent(GenerateID(4), name, variant, x, y, g.config.ArenaWidth, g.config.ArenaHeight)
	g.serpents[s.ID] = s

	g.index.Register(s)
	for _, seg := range s.Segments {
		g.index.Register(seg)
	}
	return s
}

// RemovePlayer removes a serpent and everything it had in the index
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s, ok := g.serpents[id]; ok {
		g.index.Unregister(s)
		for _, seg := range s.Segments {
			seg.Alive = false
			g.index.Unregister(seg)
		}
	}
	delete(g.serpents, id)
	delete(g.clients, id)
}

// SetClient associates a broadcaster with a serpent
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// HandleInput processes input from a player
func (g *Game) HandleInput(playerID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.serpents[playerID]
	if !ok {
		return
	}
	s.TargetX = Clamp(input.TX, 0, g.config.ArenaWidth)
	s.TargetY = Clamp(input.TY, 0, g.config.ArenaHeight)
	s.Boosting = input.Boost
	if input.Ability {
		s.AbilityPressed = true
	}
}

// PlayerCount returns the number of serpents
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.serpents)
}

// EntityCount reports the spatial index population, for diagnostics
func (g *Game) EntityCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.index.EntityCount()
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	g.tick++

	if g.config.TimeLimit > 0 {
		g.timeLeft -= dt
		if g.timeLeft <= 0 {
			g.endRound()
		}
	}

	g.updateSerpents(dt)
	g.updateEnemies(dt)
	g.updateTurrets(dt)
	g.updateProjectiles(dt)
	g.updateOrbs(dt)
	g.updateZones(dt)

	if g.config.Mode == ModeSurvival {
		g.updateWaves(dt)
	}

	// Periodic re-bucketing of everything that moved this tick
	g.index.Tick(dt)

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

func (g *Game) updateSerpents(dt float64) {
	for _, s := range g.serpents {
		if s.AbilityPressed {
			s.AbilityPressed = false
			if s.Alive && s.Ability.CanActivate() {
				s.Ability.Activate()
				g.applyAbility(s)
			}
		}

		s.Update(dt)

		if !s.Alive {
			if s.RespawnT <= 0 {
				g.respawnSerpent(s)
			}
			continue
		}

		g.checkHeadContacts(s)
	}
}

// applyAbility performs the parts of an ability that need world state
func (g *Game) applyAbility(s *Serpent) {
	switch s.Ability.Type {
	case AbilityVenomNova:
		g.queryBuf = g.index.EntitiesInRadiusBuf(s.X, s.Y, VenomNovaRadius, g.queryBuf[:0])
		for _, ge := range g.queryBuf {
			switch v := ge.(type) {
			case *Enemy:
				if v.TakeDamage(VenomNovaDamage) {
					g.onEnemyKilled(v, s)
				}
			case *Turret:
				if v.TakeDamage(VenomNovaDamage) {
					g.onTurretKilled(v, s)
				}
			}
		}
	case AbilitySlowField:
		z := NewSlowZone(s.X, s.Y, s.ID)
		g.zones[z.ID] = z
	}
}

// checkHeadContacts resolves bites and body crashes around one head using
// the index as broad phase and exact circle tests as narrow phase
func (g *Game) checkHeadContacts(s *Serpent) {
	def := GetVariantDef(s.Variant)
	reach := def.HeadRadius + EnemyRadius + EnemyBiteRange + BroadPhaseSlack
	g.queryBuf = g.index.EntitiesInRadiusBuf(s.X, s.Y, reach, g.queryBuf[:0])

	for _, ge := range g.queryBuf {
		switch v := ge.(type) {
		case *Enemy:
			if !v.Alive || !v.CanBite() {
				continue
			}
			if !CheckCollision(s.X, s.Y, def.HeadRadius+EnemyBiteRange, v.X, v.Y, EnemyRadius) {
				continue
			}
			v.BiteCD = EnemyBiteCD
			if v.TakeDamage(def.BiteDamage) {
				g.onEnemyKilled(v, s)
			}
			if s.TakeDamage(EnemyBiteDamage) {
				g.onSerpentKilled(s, v.ID, "a hunter")
				return
			}
		case *Segment:
			if v.Owner == nil || v.Owner == s || !v.GridAlive() {
				continue
			}
			if s.CrashCD > 0 {
				continue
			}
			segR := GetVariantDef(v.Owner.Variant).SegRadius
			if !CheckCollision(s.X, s.Y, def.HeadRadius, v.X, v.Y, segR) {
				continue
			}
			s.CrashCD = SegmentCrashCD
			if s.TakeDamage(SegmentCrashDamage) {
				g.onSerpentKilled(s, v.Owner.ID, v.Owner.Name)
				if killer, ok := g.serpents[v.Owner.ID]; ok {
					killer.Kills++
					g.broadcastMsg(Envelope{T: MsgKill, Data: KillMsg{
						KillerID:   killer.ID,
						KillerName: killer.Name,
						VictimID:   s.ID,
						VictimName: s.Name,
					}})
				}
				return
			}
		}
	}
}

func (g *Game) updateEnemies(dt float64) {
	for id, e := range g.enemies {
		e.Update(dt, g.index)
		if !e.Alive {
			g.index.Unregister(e)
			delete(g.enemies, id)
		}
	}
}

func (g *Game) updateTurrets(dt float64) {
	for id, t := range g.turrets {
		wantFire := t.Update(dt, g.index)
		if !t.Alive {
			g.index.Unregister(t)
			delete(g.turrets, id)
			continue
		}
		if wantFire && len(g.projectiles) < maxProjectilesPerSession {
			p := NewTurretProjectile(t, g.config.ArenaWidth, g.config.ArenaHeight)
			g.projectiles[p.ID] = p
		}
	}
}

// updateProjectiles moves shots and resolves hits against serpent heads and
// body segments. Projectiles are too fast to index usefully, so they query
// the index instead of living in it; the swept segment test catches targets
// the per-tick position would tunnel past.
func (g *Game) updateProjectiles(dt float64) {
	for id, p := range g.projectiles {
		prevX, prevY := p.X, p.Y
		p.Update(dt)
		if !p.Alive {
			delete(g.projectiles, id)
			continue
		}

		reach := ProjectileRadius + ProjectileSpeed*dt + BroadPhaseSlack
		g.queryBuf = g.index.EntitiesInRadiusBuf(p.X, p.Y, reach, g.queryBuf[:0])

		for _, ge := range g.queryBuf {
			var victim *Serpent
			var hitR float64
			var hx, hy float64

			switch v := ge.(type) {
			case *Serpent:
				victim = v
				hitR = GetVariantDef(v.Variant).HeadRadius
				hx, hy = v.X, v.Y
			case *Segment:
				if v.Owner == nil || !v.GridAlive() {
					continue
				}
				victim = v.Owner
				hitR = GetVariantDef(v.Owner.Variant).SegRadius
				hx, hy = v.X, v.Y
			default:
				continue
			}
			if victim == nil || !victim.Alive {
				continue
			}
			if !segmentCircleIntersect(prevX, prevY, p.X, p.Y, hx, hy, hitR+ProjectileRadius) {
				continue
			}

			p.Alive = false
			delete(g.projectiles, id)
			if victim.TakeDamage(p.Damage) {
				g.onSerpentKilled(victim, p.OwnerID, "a sentry")
			}
			break
		}
	}
}

func (g *Game) updateOrbs(dt float64) {
	for id, o := range g.orbs {
		o.Update(dt, g.index)
		if !o.Alive {
			g.index.Unregister(o)
			delete(g.orbs, id)
			continue
		}

		// Eaten by whichever head reaches it first
		for _, s := range g.serpents {
			if !s.Alive {
				continue
			}
			def := GetVariantDef(s.Variant)
			if !CheckCollision(s.X, s.Y, def.HeadRadius, o.X, o.Y, OrbRadius) {
				continue
			}
			o.Alive = false
			g.index.Unregister(o)
			delete(g.orbs, id)
			if seg := s.Grow(); seg != nil {
				g.index.Register(seg)
			}
			if o.Credit {
				s.Credits++
			}
			g.checkAchievements(s)
			break
		}
	}

	// Keep the arena stocked
	for len(g.orbs) < g.config.OrbTarget {
		o := NewOrb(g.config.ArenaWidth, g.config.ArenaHeight)
		g.orbs[o.ID] = o
		g.index.Register(o)
	}
}

func (g *Game) updateZones(dt float64) {
	for id, z := range g.zones {
		if !z.Update(dt, g.index) {
			delete(g.zones, id)
		}
	}
}

// updateWaves spawns the next enemy wave when the previous one is cleared
// or the wave timer runs out
func (g *Game) updateWaves(dt float64) {
	g.waveT -= dt
	if len(g.enemies) > 0 && g.waveT > 0 {
		return
	}
	if len(g.serpents) == 0 {
		return // don't burn waves on an empty arena
	}

	g.wave++
	g.waveT = g.config.WaveInterval

	count := g.config.EnemiesForWave(g.wave)
	if count > maxEnemiesPerSession-len(g.enemies) {
		count = maxEnemiesPerSession - len(g.enemies)
	}
	for i := 0; i < count; i++ {
		e := NewEnemy(g.config.ArenaWidth, g.config.ArenaHeight)
		g.enemies[e.ID] = e
		g.index.Register(e)
	}

	turrets := 0
	if g.wave%2 == 0 {
		for i := 0; i < g.config.TurretCount; i++ {
			x, y := g.config.SpawnPosition()
			t := NewTurret(x, y)
			g.turrets[t.ID] = t
			g.index.Register(t)
			turrets++
		}
	}

	g.broadcastMsg(Envelope{T: MsgWave, Data: WaveMsg{Wave: g.wave, Enemies: count, Turrets: turrets}})
	if g.analytics != nil {
		g.analytics.Track(EvtWaveStart, 0, "", fmt.Sprintf(`{"wave":%d,"enemies":%d}`, g.wave, count))
	}
}

func (g *Game) onEnemyKilled(e *Enemy, killer *Serpent) {
	if killer != nil {
		killer.Kills++
		killer.Credits += EnemyKillCredits
		g.recordKill(killer)
		g.checkAchievements(killer)
	}
	// Dead enemies drop an orb where they fell
	o := NewOrbAt(e.X, e.Y)
	g.orbs[o.ID] = o
	g.index.Register(o)
}

func (g *Game) onTurretKilled(t *Turret, killer *Serpent) {
	if killer != nil {
		killer.Kills++
		killer.Credits += TurretKillCredit
		g.recordKill(killer)
		g.checkAchievements(killer)
	}
}

// onSerpentKilled handles a serpent death: notify, persist, leave the body
// for CleanupDead to sweep on the next refresh pass
func (g *Game) onSerpentKilled(victim *Serpent, killerID, killerName string) {
	if client, ok := g.clients[victim.ID]; ok {
		client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{
			KillerID:   killerID,
			KillerName: killerName,
		}})
	}
	if g.analytics != nil {
		g.analytics.Track(EvtPlayerDeath, victim.AuthPlayerID, "", "")
	}
	if g.db != nil && victim.AuthPlayerID != 0 {
		if err := g.db.RecordDeath(victim.AuthPlayerID, victim.Length()); err != nil {
			log.Printf("record death: %v", err)
		}
	}
}

func (g *Game) recordKill(killer *Serpent) {
	if g.analytics != nil {
		g.analytics.Track(EvtPlayerKill, killer.AuthPlayerID, "", "")
	}
	if g.db != nil && killer.AuthPlayerID != 0 {
		if err := g.db.RecordKill(killer.AuthPlayerID); err != nil {
			log.Printf("record kill: %v", err)
		}
	}
}

// respawnSerpent brings a dead serpent back with a shrunk chain and
// restores its index membership, which the dead-sweep dropped
func (g *Game) respawnSerpent(s *Serpent) {
	x, y := g.config.SpawnPosition()
	shed := s.Respawn(x, y)
	for _, seg := range shed {
		g.index.Unregister(seg)
	}
	g.index.Register(s)
	for _, seg := range s.Segments {
		g.index.Register(seg)
	}
}

// endRound resets a timed session for the next round
func (g *Game) endRound() {
	g.timeLeft = g.config.TimeLimit
	for _, s := range g.serpents {
		if g.db != nil && s.AuthPlayerID != 0 {
			if err := g.db.RecordRun(s.AuthPlayerID, s.Length(), s.Kills, s.Credits); err != nil {
				log.Printf("record run: %v", err)
			}
		}
		if !s.Alive {
			s.RespawnT = 0
		}
		g.respawnSerpent(s)
	}
	g.broadcastMsg(Envelope{T: MsgWave, Data: WaveMsg{Wave: 0}})
}

// seedOrbs fills the arena to the configured orb count
func (g *Game) seedOrbs() {
	for len(g.orbs) < g.config.OrbTarget {
		o := NewOrb(g.config.ArenaWidth, g.config.ArenaHeight)
		g.orbs[o.ID] = o
		g.index.Register(o)
	}
}

// broadcastState sends the current state to all clients as a msgpack
// binary frame
func (g *Game) broadcastState() {
	state := GameState{
		Serpents:    make([]SerpentState, 0, len(g.serpents)),
		Enemies:     make([]EnemyState, 0, len(g.enemies)),
		Turrets:     make([]TurretState, 0, len(g.turrets)),
		Projectiles: make([]ProjectileState, 0, len(g.projectiles)),
		Orbs:        make([]OrbState, 0, len(g.orbs)),
		Zones:       make([]ZoneState, 0, len(g.zones)),
		Wave:        g.wave,
		Tick:        g.tick,
	}

	for _, s := range g.serpents {
		state.Serpents = append(state.Serpents, s.ToState())
	}
	for _, e := range g.enemies {
		state.Enemies = append(state.Enemies, e.ToState())
	}
	for _, t := range g.turrets {
		state.Turrets = append(state.Turrets, t.ToState())
	}
	for _, p := range g.projectiles {
		state.Projectiles = append(state.Projectiles, p.ToState())
	}
	for _, o := range g.orbs {
		state.Orbs = append(state.Orbs, o.ToState())
	}
	for _, z := range g.zones {
		state.Zones = append(state.Zones, z.ToState())
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		log.Printf("state marshal: %v", err)
		return
	}

	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a JSON message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
