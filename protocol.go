package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgInput    = "input"
	MsgCreate   = "create"   // create session
	MsgList     = "list"     // list sessions
	MsgCheck    = "check"    // check if session exists
	MsgRegister = "register" // create account
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with token
	MsgProfile  = "profile"
	MsgBuySkin  = "buy_skin"
	MsgSetSkin  = "set_skin"
)

// Server -> Client message types
const (
	MsgState       = "state"
	MsgWelcome     = "welcome"
	MsgDeath       = "death"
	MsgKill        = "kill"
	MsgSessions    = "sessions"
	MsgJoined      = "joined"
	MsgCreated     = "created"
	MsgError       = "error"
	MsgChecked     = "checked"
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgSkinOK      = "skin_ok"
	MsgWave        = "wave" // new wave started
	MsgAchievement = "achievement"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client at 20Hz
type ClientInput struct {
	TX      float64 `json:"tx"` // pointer X (world coords)
	TY      float64 `json:"ty"` // pointer Y (world coords)
	Boost   bool    `json:"boost"`
	Ability bool    `json:"ability"`
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
	Variant   int    `json:"variant"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Mode        int    `json:"mode"`
}

// SerpentState is broadcast per serpent each state tick. Segs is a flat
// x0,y0,x1,y1,... list to keep frames small.
type SerpentState struct {
	ID      string    `json:"id" msgpack:"id"`
	Name    string    `json:"n" msgpack:"n"`
	X       float64   `json:"x" msgpack:"x"`
	Y       float64   `json:"y" msgpack:"y"`
	H       float64   `json:"h" msgpack:"h"` // heading radians
	HP      int       `json:"hp" msgpack:"hp"`
	MaxHP   int       `json:"mhp" msgpack:"mhp"`
	Variant int       `json:"v" msgpack:"v"`
	Segs    []float64 `json:"sg" msgpack:"sg"`
	Score   int       `json:"sc" msgpack:"sc"`
	Kills   int       `json:"k" msgpack:"k"`
	Alive   bool      `json:"a" msgpack:"a"`
	Boost   bool      `json:"b,omitempty" msgpack:"b"`
	Skin    string    `json:"sk,omitempty" msgpack:"sk"`
}

// EnemyState is broadcast per enemy
type EnemyState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	R     float64 `json:"r" msgpack:"r"`
	HP    int     `json:"hp" msgpack:"hp"`
	MaxHP int     `json:"mhp" msgpack:"mhp"`
	Alive bool    `json:"a" msgpack:"a"`
}

// TurretState is broadcast per turret
type TurretState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	R     float64 `json:"r" msgpack:"r"`
	HP    int     `json:"hp" msgpack:"hp"`
	MaxHP int     `json:"mhp" msgpack:"mhp"`
	Alive bool    `json:"a" msgpack:"a"`
}

// ProjectileState is broadcast per projectile
type ProjectileState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Owner string  `json:"o" msgpack:"o"`
}

// OrbState is broadcast per orb
type OrbState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
}

// ZoneState is broadcast per slow zone
type ZoneState struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"rad" msgpack:"rad"`
	Life   float64 `json:"l" msgpack:"l"`
}

// GameState is the full state broadcast, msgpack-encoded on binary frames
type GameState struct {
	Serpents    []SerpentState    `json:"s" msgpack:"s"`
	Enemies     []EnemyState      `json:"e" msgpack:"e"`
	Turrets     []TurretState     `json:"t" msgpack:"t"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	Orbs        []OrbState        `json:"o" msgpack:"o"`
	Zones       []ZoneState       `json:"z" msgpack:"z"`
	Wave        int               `json:"w" msgpack:"w"`
	Tick        uint64            `json:"tick" msgpack:"tick"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID      string `json:"id"`
	Variant int    `json:"v"`
}

// DeathMsg notifies a player they died
type DeathMsg struct {
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
}

// KillMsg is broadcast to all players in a session
type KillMsg struct {
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
	VictimID   string `json:"vid"`
	VictimName string `json:"vn"`
}

// WaveMsg announces a new enemy wave
type WaveMsg struct {
	Wave    int `json:"w"`
	Enemies int `json:"e"`
	Turrets int `json:"t"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mode    int    `json:"mode"`
	Players int    `json:"players"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by a client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates an account
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg resumes a session from a stored token
type AuthMsg struct {
	Token string `json:"tok"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	PlayerID int64  `json:"pid"`
	Username string `json:"u"`
	Token    string `json:"tok"`
}

// ProfileMsg returns persistent account data
type ProfileMsg struct {
	Username   string   `json:"u"`
	BestLength int      `json:"bl"`
	Kills      int      `json:"k"`
	Deaths     int      `json:"d"`
	Runs       int      `json:"r"`
	Credits    int      `json:"c"`
	Skins      []string `json:"sk"`
	ActiveSkin string   `json:"as"`
}

// AchievementMsg notifies a player of a fresh unlock
type AchievementMsg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// BuySkinMsg purchases a catalog skin
type BuySkinMsg struct {
	SkinID string `json:"id"`
}

// SetSkinMsg equips an owned skin
type SetSkinMsg struct {
	SkinID string `json:"id"`
}
