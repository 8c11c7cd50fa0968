package data

// Item type names used by factories and the floor loader
const (
	ItemTreasure    = "treasure"
	ItemCompass     = "compass"
	ItemBarrierSuit = "barrier_suit"
	ItemStairs      = "stairs"
)

// Glyphs that are not table driven
const (
	PlayerGlyph   = '@'
	PotionGlyph   = 'P'
	TreasureGlyph = 'G'
)

// Enemy type names referenced directly by generation
const (
	EnemyDragon   = "dragon"
	EnemyMerchant = "merchant"
)

// DefaultRace is used when no race is configured
const DefaultRace = "human"
