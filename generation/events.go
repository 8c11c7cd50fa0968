package generation

import "dungeon-spawn/ecs"

// EventFloorGenerated is emitted on a world after Generate repopulates it
const EventFloorGenerated ecs.EventType = "floor_generated"

// FloorGeneratedEvent carries the summary of a generated floor
type FloorGeneratedEvent struct {
	Floor  int
	Seed   int64
	Result *Result
}

// Type returns the event type
func (e FloorGeneratedEvent) Type() ecs.EventType {
	return EventFloorGenerated
}
