package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_bite", "First Bite", "Get your first kill"},
	{"predator", "Predator", "Reach 50 lifetime kills"},
	{"apex", "Apex Predator", "Reach 500 lifetime kills"},
	{"rampage", "Rampage", "Get 10 kills in a single run"},
	{"big_snake", "Big Snake", "Grow to 30 segments"},
	{"titan", "Titan", "Grow to 80 segments"},
	{"hoarder", "Hoarder", "Earn 500 lifetime credits"},
	{"regular", "Regular", "Finish 25 runs"},
}

// checkAchievements unlocks any newly earned achievements for a serpent
// and notifies its client. Guests have no persistent progress to check.
func (g *Game) checkAchievements(s *Serpent) {
	if g.db == nil || s.AuthPlayerID == 0 {
		return
	}

	profile, err := g.db.GetProfile(s.AuthPlayerID)
	if err != nil {
		return
	}

	// Lifetime kill/credit counters lag behind the current run until
	// RecordRun lands, so fold the run's totals in here.
	kills := profile.Kills + s.Kills
	credits := profile.Credits + s.Credits

	earned := func(id string) bool {
		switch id {
		case "first_bite":
			return kills >= 1
		case "predator":
			return kills >= 50
		case "apex":
			return kills >= 500
		case "rampage":
			return s.Kills >= 10
		case "big_snake":
			return s.Length() >= 30
		case "titan":
			return s.Length() >= 80
		case "hoarder":
			return credits >= 500
		case "regular":
			return profile.Runs >= 25
		}
		return false
	}

	for _, def := range Achievements {
		if !earned(def.ID) {
			continue
		}
		if has, err := g.db.HasAchievement(s.AuthPlayerID, def.ID); err != nil || has {
			continue
		}
		if err := g.db.UnlockAchievement(s.AuthPlayerID, def.ID); err != nil {
			continue
		}
		if g.analytics != nil {
			g.analytics.Track(EvtAchievement, s.AuthPlayerID, "", `{"id":"`+def.ID+`"}`)
		}
		if client, ok := g.clients[s.ID]; ok {
			client.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{
				ID:   def.ID,
				Name: def.Name,
				Desc: def.Description,
			}})
		}
	}
}
