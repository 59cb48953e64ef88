package main

import (
	"errors"
	"fmt"
)

// Rarity levels for cosmetic skins
const (
	RarityCommon    = 0
	RarityRare      = 1
	RarityEpic      = 2
	RarityLegendary = 3
)

// SkinDef represents a purchasable serpent skin
type SkinDef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rarity  int    `json:"rarity"`  // 0=common, 1=rare, 2=epic, 3=legendary
	Price   int    `json:"price"`   // in credits
	Color1  string `json:"color1"`  // head/body color (hex)
	Color2  string `json:"color2"`  // stripe/accent color (hex)
	Preview string `json:"preview"` // description for UI
}

// SkinCatalog is the full list of purchasable skins
var SkinCatalog = []SkinDef{
	// Common (50-100 credits)
	{ID: "skin_grass", Name: "Grass", Rarity: RarityCommon, Price: 50, Color1: "#33cc33", Color2: "#006600", Preview: "Garden snake green"},
	{ID: "skin_ember", Name: "Ember", Rarity: RarityCommon, Price: 50, Color1: "#ff3333", Color2: "#cc0000", Preview: "Smoldering red scales"},
	{ID: "skin_river", Name: "River", Rarity: RarityCommon, Price: 75, Color1: "#3399ff", Color2: "#0044aa", Preview: "Cool water sheen"},
	{ID: "skin_dune", Name: "Dune", Rarity: RarityCommon, Price: 75, Color1: "#ddbb66", Color2: "#aa8833", Preview: "Desert sand pattern"},

	// Rare (150-250 credits)
	{ID: "skin_coral", Name: "Coral", Rarity: RarityRare, Price: 150, Color1: "#ff66aa", Color2: "#cc3377", Preview: "Banded coral warning stripes"},
	{ID: "skin_venom", Name: "Venom", Rarity: RarityRare, Price: 200, Color1: "#88ff00", Color2: "#44aa00", Preview: "Toxic green glow"},
	{ID: "skin_onyx", Name: "Onyx", Rarity: RarityRare, Price: 200, Color1: "#333344", Color2: "#111122", Preview: "Polished black scales"},

	// Epic (400-600 credits)
	{ID: "skin_magma", Name: "Magma", Rarity: RarityEpic, Price: 400, Color1: "#ff4400", Color2: "#ff8800", Preview: "Cracked lava hide"},
	{ID: "skin_frost", Name: "Frost", Rarity: RarityEpic, Price: 500, Color1: "#88ddff", Color2: "#ffffff", Preview: "Rimebound crystal scales"},

	// Legendary (1000+ credits)
	{ID: "skin_aurora", Name: "Aurora", Rarity: RarityLegendary, Price: 1000, Color1: "#ff44ff", Color2: "#4444ff", Preview: "Shifting polar lights"},
	{ID: "skin_eclipse", Name: "Eclipse", Rarity: RarityLegendary, Price: 1200, Color1: "#000000", Color2: "#440088", Preview: "Swallows the light around it"},
}

// SkinCatalogMap provides O(1) lookup by skin ID
var SkinCatalogMap map[string]SkinDef

func init() {
	SkinCatalogMap = make(map[string]SkinDef, len(SkinCatalog))
	for _, s := range SkinCatalog {
		SkinCatalogMap[s.ID] = s
	}
}

var (
	ErrUnknownSkin      = errors.New("unknown skin")
	ErrSkinOwned        = errors.New("skin already owned")
	ErrNotEnoughCredits = errors.New("not enough credits")
)

// BuySkin validates a purchase against the catalog, deducts the price
// and unlocks the skin for the player
func BuySkin(db *DB, playerID int64, skinID string) error {
	def, ok := SkinCatalogMap[skinID]
	if !ok {
		return ErrUnknownSkin
	}

	owned, err := db.OwnsSkin(playerID, skinID)
	if err != nil {
		return fmt.Errorf("check skin: %w", err)
	}
	if owned {
		return ErrSkinOwned
	}

	paid, err := db.SpendCredits(playerID, def.Price)
	if err != nil {
		return fmt.Errorf("spend credits: %w", err)
	}
	if !paid {
		return ErrNotEnoughCredits
	}

	if err := db.UnlockSkin(playerID, skinID); err != nil {
		// Purchase went through but the unlock failed, refund
		if rerr := db.AddCredits(playerID, def.Price); rerr != nil {
			return fmt.Errorf("unlock skin: %w (refund also failed: %v)", err, rerr)
		}
		return fmt.Errorf("unlock skin: %w", err)
	}
	return nil
}
