package components

import (
	"dungeon-spawn/ecs"
)

// Component kinds. The set is closed; snapshots refer to kinds by the names
// in component_registry.go, so append new kinds at the end.
const (
	Position ecs.ComponentID = iota
	Display
	Health
	Attack
	Defense
	Gold
	GoldMultiplier
	PlayerRace
	EnemyType
	ItemType
	PotionType
	TreasureValue
	Moveable
	Action
	Direction
	Hostile
	CanPickup
	Stairs
	Compass
	BarrierSuit
	AllPositive
	PotionEffect
	GuardingPosition
)

// Tags used for quick lookups alongside components
const (
	TagPlayer   = "player"
	TagEnemy    = "enemy"
	TagItem     = "item"
	TagPotion   = "potion"
	TagTreasure = "treasure"
)
