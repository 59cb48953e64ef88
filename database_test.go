package main

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreatePlayer(t *testing.T, db *DB, username string) int64 {
	t.Helper()
	id, err := db.CreatePlayer(username, "hash")
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	return id
}

func TestCreatePlayerAndLookup(t *testing.T) {
	db := openTestDB(t)

	id := mustCreatePlayer(t, db, "alice")
	if id == 0 {
		t.Error("expected non-zero player id")
	}

	exists, err := db.UsernameExists("alice")
	if err != nil {
		t.Fatalf("UsernameExists: %v", err)
	}
	if !exists {
		t.Error("username should exist after create")
	}
	exists, err = db.UsernameExists("bob")
	if err != nil {
		t.Fatalf("UsernameExists: %v", err)
	}
	if exists {
		t.Error("unknown username should not exist")
	}

	p, err := db.GetPlayerByUsername("alice")
	if err != nil {
		t.Fatalf("GetPlayerByUsername: %v", err)
	}
	if p == nil || p.ID != id || p.Username != "alice" || p.PassHash != "hash" {
		t.Errorf("unexpected player row: %+v", p)
	}

	p, err = db.GetPlayerByUsername("bob")
	if err != nil {
		t.Fatalf("GetPlayerByUsername absent: %v", err)
	}
	if p != nil {
		t.Error("expected nil row for unknown username")
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	db := openTestDB(t)
	mustCreatePlayer(t, db, "alice")
	if _, err := db.CreatePlayer("alice", "other"); err == nil {
		t.Error("expected unique constraint error on duplicate username")
	}
}

func TestStatsRowCreatedWithPlayer(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	profile, err := db.GetProfile(id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Kills != 0 || profile.Deaths != 0 || profile.Runs != 0 || profile.Credits != 0 {
		t.Errorf("fresh stats should be zeroed, got %+v", profile)
	}
}

func TestRecordKillDeathRun(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	for i := 0; i < 3; i++ {
		if err := db.RecordKill(id); err != nil {
			t.Fatalf("RecordKill: %v", err)
		}
	}
	if err := db.RecordDeath(id, 12); err != nil {
		t.Fatalf("RecordDeath: %v", err)
	}
	if err := db.RecordRun(id, 25, 3, 40); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	profile, err := db.GetProfile(id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Kills != 3 {
		t.Errorf("kills = %d, want 3", profile.Kills)
	}
	if profile.Deaths != 1 {
		t.Errorf("deaths = %d, want 1", profile.Deaths)
	}
	if profile.Runs != 1 {
		t.Errorf("runs = %d, want 1", profile.Runs)
	}
	if profile.Credits != 40 {
		t.Errorf("credits = %d, want 40", profile.Credits)
	}
	if profile.BestLength != 25 {
		t.Errorf("best length = %d, want 25", profile.BestLength)
	}

	// A shorter run must not lower the best length.
	if err := db.RecordRun(id, 8, 0, 5); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	profile, err = db.GetProfile(id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.BestLength != 25 {
		t.Errorf("best length after short run = %d, want 25", profile.BestLength)
	}
	if profile.Credits != 45 {
		t.Errorf("credits after second run = %d, want 45", profile.Credits)
	}
}

func TestSpendCredits(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	if err := db.AddCredits(id, 100); err != nil {
		t.Fatalf("AddCredits: %v", err)
	}

	ok, err := db.SpendCredits(id, 60)
	if err != nil {
		t.Fatalf("SpendCredits: %v", err)
	}
	if !ok {
		t.Error("spend within balance should succeed")
	}

	ok, err = db.SpendCredits(id, 60)
	if err != nil {
		t.Fatalf("SpendCredits: %v", err)
	}
	if ok {
		t.Error("spend over balance should fail")
	}

	c, err := db.Credits(id)
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	if c != 40 {
		t.Errorf("balance = %d, want 40", c)
	}
}

func TestSkinUnlockAndEquip(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	owns, err := db.OwnsSkin(id, "skin_ember")
	if err != nil {
		t.Fatalf("OwnsSkin: %v", err)
	}
	if owns {
		t.Error("fresh player should own no skins")
	}

	if err := db.UnlockSkin(id, "skin_ember"); err != nil {
		t.Fatalf("UnlockSkin: %v", err)
	}
	if err := db.UnlockSkin(id, "skin_ember"); err != nil {
		t.Fatalf("UnlockSkin repeat: %v", err)
	}
	if err := db.UnlockSkin(id, "skin_frost"); err != nil {
		t.Fatalf("UnlockSkin: %v", err)
	}

	owns, err = db.OwnsSkin(id, "skin_ember")
	if err != nil {
		t.Fatalf("OwnsSkin: %v", err)
	}
	if !owns {
		t.Error("skin should be owned after unlock")
	}

	active, err := db.ActiveSkin(id)
	if err != nil {
		t.Fatalf("ActiveSkin: %v", err)
	}
	if active != "" {
		t.Errorf("no skin equipped yet, got %q", active)
	}

	if err := db.SetActiveSkin(id, "skin_ember"); err != nil {
		t.Fatalf("SetActiveSkin: %v", err)
	}
	if err := db.SetActiveSkin(id, "skin_frost"); err != nil {
		t.Fatalf("SetActiveSkin: %v", err)
	}
	active, err = db.ActiveSkin(id)
	if err != nil {
		t.Fatalf("ActiveSkin: %v", err)
	}
	if active != "skin_frost" {
		t.Errorf("active skin = %q, want skin_frost", active)
	}

	profile, err := db.GetProfile(id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(profile.Skins) != 2 {
		t.Errorf("profile skins = %v, want 2 entries", profile.Skins)
	}
	if profile.ActiveSkin != "skin_frost" {
		t.Errorf("profile active skin = %q, want skin_frost", profile.ActiveSkin)
	}
}

func TestBuySkinFlow(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	if err := BuySkin(db, id, "skin_nope"); err != ErrUnknownSkin {
		t.Errorf("unknown skin: got %v, want ErrUnknownSkin", err)
	}
	if err := BuySkin(db, id, "skin_ember"); err != ErrNotEnoughCredits {
		t.Errorf("broke player: got %v, want ErrNotEnoughCredits", err)
	}

	price := SkinCatalogMap["skin_ember"].Price
	if err := db.AddCredits(id, price); err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	if err := BuySkin(db, id, "skin_ember"); err != nil {
		t.Errorf("funded purchase failed: %v", err)
	}
	if err := BuySkin(db, id, "skin_ember"); err != ErrSkinOwned {
		t.Errorf("repeat purchase: got %v, want ErrSkinOwned", err)
	}

	c, err := db.Credits(id)
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	if c != 0 {
		t.Errorf("balance after purchase = %d, want 0", c)
	}
}

func TestAchievementUnlockIdempotent(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	has, err := db.HasAchievement(id, "first_bite")
	if err != nil {
		t.Fatalf("HasAchievement: %v", err)
	}
	if has {
		t.Error("fresh player should have no achievements")
	}

	if err := db.UnlockAchievement(id, "first_bite"); err != nil {
		t.Fatalf("UnlockAchievement: %v", err)
	}
	if err := db.UnlockAchievement(id, "first_bite"); err != nil {
		t.Fatalf("UnlockAchievement repeat: %v", err)
	}

	has, err = db.HasAchievement(id, "first_bite")
	if err != nil {
		t.Fatalf("HasAchievement: %v", err)
	}
	if !has {
		t.Error("achievement should be recorded after unlock")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("missing setting = %q, want empty", v)
	}
	if err := db.SetSetting("motd", "hello"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := db.SetSetting("motd", "updated"); err != nil {
		t.Fatalf("SetSetting upsert: %v", err)
	}
	if v := db.GetSetting("motd"); v != "updated" {
		t.Errorf("setting = %q, want updated", v)
	}
}

func TestInsertEventsBatch(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	events := []AnalyticsEvent{
		{Type: EvtSessionStart, PlayerID: id, SessionID: "s1", Timestamp: time.Now()},
		{Type: EvtPlayerKill, PlayerID: id, SessionID: "s1", Timestamp: time.Now()},
		{Type: EvtPlayerKill, PlayerID: id, SessionID: "s1", Timestamp: time.Now()},
	}
	if err := db.InsertEvents(events); err != nil {
		t.Fatalf("InsertEvents: %v", err)
	}
	if err := db.InsertEvents(nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}

	var n int
	if err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM events WHERE type = ?", EvtPlayerKill).Scan(&n); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 2 {
		t.Errorf("kill events = %d, want 2", n)
	}
}

func TestAnalyticsWriterFlushesOnStop(t *testing.T) {
	db := openTestDB(t)
	id := mustCreatePlayer(t, db, "alice")

	a := NewAnalytics(db)
	for i := 0; i < 10; i++ {
		a.Track(EvtPlayerDeath, id, "s1", "")
	}
	a.Stop()

	var n int
	if err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM events WHERE type = ?", EvtPlayerDeath).Scan(&n); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 10 {
		t.Errorf("persisted events = %d, want 10", n)
	}

	counts, err := a.EventCounts(1)
	if err != nil {
		t.Fatalf("EventCounts: %v", err)
	}
	if counts[EvtPlayerDeath] != 10 {
		t.Errorf("counted events = %d, want 10", counts[EvtPlayerDeath])
	}

	dau, err := a.DAUCount()
	if err != nil {
		t.Fatalf("DAUCount: %v", err)
	}
	if dau != 1 {
		t.Errorf("distinct active players = %d, want 1", dau)
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("alice", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == 0 || token == "" {
		t.Error("register should return an id and a token")
	}

	if _, _, err := auth.Register("alice", "hunter22"); err == nil {
		t.Error("duplicate registration should fail")
	}
	if _, _, err := auth.Register("a", "hunter22"); err == nil {
		t.Error("short username should be rejected")
	}
	if _, _, err := auth.Register("carol", "pw"); err == nil {
		t.Error("short password should be rejected")
	}

	loginID, loginToken, err := auth.Login("alice", "hunter22", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login should return the same player id and a token")
	}

	if _, _, err := auth.Login("alice", "wrongpass", "10.0.0.1"); err == nil {
		t.Error("wrong password should be rejected")
	}
	if _, _, err := auth.Login("nobody", "hunter22", "10.0.0.1"); err == nil {
		t.Error("unknown user should be rejected")
	}

	pid, username, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if pid != id || username != "alice" {
		t.Errorf("token claims = (%d, %q), want (%d, alice)", pid, username, id)
	}

	if _, _, err := auth.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token should be rejected")
	}
}

func TestAuthSecretPersistsAcrossRestart(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	_, token, err := auth.Register("alice", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A second Auth over the same DB must validate tokens from the first.
	auth2 := NewAuth(db)
	if _, _, err := auth2.ValidateToken(token); err != nil {
		t.Errorf("token should survive auth restart: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	if _, _, err := auth.Register("alice", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	limited := false
	for i := 0; i < maxLoginAttempts+2; i++ {
		_, _, err := auth.Login("alice", "wrongpass", "10.9.9.9")
		if err != nil && err.Error() == "too many login attempts, try again later" {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("repeated failed logins from one address should be rate limited")
	}

	// Other addresses stay unaffected.
	if _, _, err := auth.Login("alice", "hunter22", "10.1.1.1"); err != nil {
		t.Errorf("login from fresh address should succeed: %v", err)
	}
}
