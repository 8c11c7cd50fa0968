package systems

import (
	"dungeon-spawn/ecs"
)

// Event type constants
const (
	EventFloorChanged ecs.EventType = "floor_changed"
	EventVictory      ecs.EventType = "victory"
	EventPlayerMove   ecs.EventType = "player_move"
	EventBlocked      ecs.EventType = "blocked"
)

// FloorChangedEvent is emitted when the player arrives on a floor
type FloorChangedEvent struct {
	From   int          // Previous floor index, -1 on start
	To     int          // New floor index
	Player ecs.EntityID // Player handle on the new floor
	Health int          // Carried health
	Gold   int          // Carried gold
}

// Type returns the event type
func (e FloorChangedEvent) Type() ecs.EventType {
	return EventFloorChanged
}

// VictoryEvent is emitted when the player takes the stairs on the last floor
type VictoryEvent struct {
	Floors int
	Player ecs.EntityID
	Gold   int
}

// Type returns the event type
func (e VictoryEvent) Type() ecs.EventType {
	return EventVictory
}

// PlayerMoveEvent is emitted on the floor's world when the player steps
type PlayerMoveEvent struct {
	EntityID ecs.EntityID
	From     ecs.Cell
	To       ecs.Cell
}

// Type returns the event type
func (e PlayerMoveEvent) Type() ecs.EventType {
	return EventPlayerMove
}

// BlockedEvent is emitted when a pending move runs into another entity
type BlockedEvent struct {
	EntityID ecs.EntityID
	Blocker  ecs.EntityID
	At       ecs.Cell
}

// Type returns the event type
func (e BlockedEvent) Type() ecs.EventType {
	return EventBlocked
}
