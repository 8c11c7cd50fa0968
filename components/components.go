package components

import "dungeon-spawn/ecs"

// PositionComponent stores the grid cell an entity occupies
type PositionComponent struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NewPositionComponent creates a position component
func NewPositionComponent(row, col int) *PositionComponent {
	return &PositionComponent{Row: row, Col: col}
}

// Cell implements ecs.Locatable
func (p *PositionComponent) Cell() ecs.Cell {
	return ecs.Cell{Row: p.Row, Col: p.Col}
}

// SetCell implements ecs.Locatable
func (p *PositionComponent) SetCell(c ecs.Cell) {
	p.Row, p.Col = c.Row, c.Col
}

// DisplayComponent holds the glyph an entity is drawn with
type DisplayComponent struct {
	Glyph rune `json:"glyph"`
}

// NewDisplayComponent creates a display component
func NewDisplayComponent(glyph rune) *DisplayComponent {
	return &DisplayComponent{Glyph: glyph}
}

// HealthComponent tracks current and maximum health
type HealthComponent struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// NewHealthComponent creates a health component at full health
func NewHealthComponent(max int) *HealthComponent {
	return &HealthComponent{Current: max, Max: max}
}

// AttackComponent stores attack power
type AttackComponent struct {
	Power int `json:"power"`
}

// DefenseComponent stores defense power
type DefenseComponent struct {
	Power int `json:"power"`
}

// GoldComponent stores carried or dropped gold
type GoldComponent struct {
	Amount int `json:"amount"`
}

// GoldMultiplierComponent scales gold picked up by a player race
type GoldMultiplierComponent struct {
	Factor float64 `json:"factor"`
}

// PlayerRaceComponent marks the player and names its race
type PlayerRaceComponent struct {
	Race string `json:"race"`
}

// EnemyTypeComponent names the enemy kind
type EnemyTypeComponent struct {
	Type string `json:"type"`
}

// ItemTypeComponent names the item kind ("treasure", "stairs", ...)
type ItemTypeComponent struct {
	Type string `json:"type"`
}

// PotionTypeComponent stores a two-letter potion code
type PotionTypeComponent struct {
	Code string `json:"code"`
}

// TreasureComponent stores the gold value of a treasure pile
type TreasureComponent struct {
	Value int `json:"value"`
}

// MoveableComponent marks entities that can move
type MoveableComponent struct {
	CanMove bool `json:"canMove"`
}

// ActionComponent carries the pending-move intent for the current tick
type ActionComponent struct {
	Move bool `json:"move"`
}

// DirectionComponent stores the facing used by the pending move
type DirectionComponent struct {
	Facing string `json:"facing"`
}

// NewDirectionComponent creates a direction component facing north
func NewDirectionComponent() *DirectionComponent {
	return &DirectionComponent{Facing: "no"}
}

// PotionEffectComponent tracks an active temporary potion effect
type PotionEffectComponent struct {
	TurnsRemaining int `json:"turnsRemaining"`
	Kind           int `json:"kind"`
}

// GuardingPositionComponent binds a guard to the tile it protects
type GuardingPositionComponent struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tag components carry no data
type (
	HostileComponent     struct{}
	CanPickupComponent   struct{}
	StairsComponent      struct{}
	CompassComponent     struct{}
	BarrierSuitComponent struct{}
	AllPositiveComponent struct{}
)
