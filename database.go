package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents a player record in the database
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow represents persistent player stats
type StatsRow struct {
	PlayerID   int64
	BestLength int
	Kills      int
	Deaths     int
	Runs       int
	Credits    int
}

// RunRow represents one completed run
type RunRow struct {
	ID        int64
	PlayerID  int64
	Length    int
	Kills     int
	Credits   int
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode: game loop writes and profile reads overlap
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES players(id),
		best_length INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		runs INTEGER NOT NULL DEFAULT 0,
		credits INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER NOT NULL REFERENCES players(id),
		length INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		credits INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS skins (
		player_id INTEGER NOT NULL REFERENCES players(id),
		skin_id TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, skin_id)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		player_id INTEGER NOT NULL REFERENCES players(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (player_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		player_id INTEGER NOT NULL DEFAULT 0,
		session_id TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(player_id);
	CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// CreatePlayer creates a new player account (returns player ID)
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	return id, nil
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&n)
	return n > 0, err
}

// GetPlayerByUsername returns a player row or nil when absent
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash FROM players WHERE username = ?", username)
	var p PlayerRow
	err := row.Scan(&p.ID, &p.Username, &p.PassHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSetting returns a settings value, or "" when absent
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordKill increments a player's lifetime kill count
func (db *DB) RecordKill(playerID int64) error {
	_, err := db.conn.Exec("UPDATE stats SET kills = kills + 1 WHERE player_id = ?", playerID)
	return err
}

// RecordDeath increments deaths and tracks the best chain length reached
func (db *DB) RecordDeath(playerID int64, length int) error {
	_, err := db.conn.Exec(
		"UPDATE stats SET deaths = deaths + 1, best_length = MAX(best_length, ?) WHERE player_id = ?",
		length, playerID,
	)
	return err
}

// RecordRun logs a completed run and folds its results into stats
func (db *DB) RecordRun(playerID int64, length, kills, credits int) error {
	if _, err := db.conn.Exec(
		"INSERT INTO runs (player_id, length, kills, credits) VALUES (?, ?, ?, ?)",
		playerID, length, kills, credits,
	); err != nil {
		return err
	}
	_, err := db.conn.Exec(
		`UPDATE stats SET runs = runs + 1,
			best_length = MAX(best_length, ?),
			credits = credits + ?
		WHERE player_id = ?`,
		length, credits, playerID,
	)
	return err
}

// GetProfile assembles the persistent profile for a player
func (db *DB) GetProfile(playerID int64) (ProfileMsg, error) {
	var p ProfileMsg
	err := db.conn.QueryRow(
		"SELECT best_length, kills, deaths, runs, credits FROM stats WHERE player_id = ?",
		playerID,
	).Scan(&p.BestLength, &p.Kills, &p.Deaths, &p.Runs, &p.Credits)
	if err != nil {
		return p, err
	}

	rows, err := db.conn.Query("SELECT skin_id, active FROM skins WHERE player_id = ?", playerID)
	if err != nil {
		return p, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var active int
		if err := rows.Scan(&id, &active); err != nil {
			return p, err
		}
		p.Skins = append(p.Skins, id)
		if active != 0 {
			p.ActiveSkin = id
		}
	}
	return p, rows.Err()
}

// Credits returns a player's current credit balance
func (db *DB) Credits(playerID int64) (int, error) {
	var c int
	err := db.conn.QueryRow("SELECT credits FROM stats WHERE player_id = ?", playerID).Scan(&c)
	return c, err
}

// SpendCredits deducts credits if the balance covers the price
func (db *DB) SpendCredits(playerID int64, amount int) (bool, error) {
	res, err := db.conn.Exec(
		"UPDATE stats SET credits = credits - ? WHERE player_id = ? AND credits >= ?",
		amount, playerID, amount,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AddCredits grants credits to a player
func (db *DB) AddCredits(playerID int64, amount int) error {
	_, err := db.conn.Exec("UPDATE stats SET credits = credits + ? WHERE player_id = ?", amount, playerID)
	return err
}

// OwnsSkin reports whether a player has unlocked a skin
func (db *DB) OwnsSkin(playerID int64, skinID string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM skins WHERE player_id = ? AND skin_id = ?",
		playerID, skinID,
	).Scan(&n)
	return n > 0, err
}

// UnlockSkin records a skin purchase
func (db *DB) UnlockSkin(playerID int64, skinID string) error {
	_, err := db.conn.Exec(
		"INSERT OR IGNORE INTO skins (player_id, skin_id) VALUES (?, ?)",
		playerID, skinID,
	)
	return err
}

// SetActiveSkin equips one owned skin, unequipping the rest
func (db *DB) SetActiveSkin(playerID int64, skinID string) error {
	if _, err := db.conn.Exec("UPDATE skins SET active = 0 WHERE player_id = ?", playerID); err != nil {
		return err
	}
	_, err := db.conn.Exec(
		"UPDATE skins SET active = 1 WHERE player_id = ? AND skin_id = ?",
		playerID, skinID,
	)
	return err
}

// ActiveSkin returns the player's equipped skin id, or ""
func (db *DB) ActiveSkin(playerID int64) (string, error) {
	var id string
	err := db.conn.QueryRow(
		"SELECT skin_id FROM skins WHERE player_id = ? AND active = 1", playerID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

// HasAchievement reports whether a player already unlocked an achievement
func (db *DB) HasAchievement(playerID int64, achievementID string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM achievements WHERE player_id = ? AND achievement_id = ?",
		playerID, achievementID,
	).Scan(&n)
	return n > 0, err
}

// UnlockAchievement records an achievement unlock
func (db *DB) UnlockAchievement(playerID int64, achievementID string) error {
	_, err := db.conn.Exec(
		"INSERT OR IGNORE INTO achievements (player_id, achievement_id) VALUES (?, ?)",
		playerID, achievementID,
	)
	return err
}

// InsertEvents writes a batch of analytics events in one transaction
func (db *DB) InsertEvents(events []AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO events (type, player_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.Exec(e.Type, e.PlayerID, e.SessionID, e.Data, e.Timestamp); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
