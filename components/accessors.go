package components

import "dungeon-spawn/ecs"

// Get fetches a component and asserts it to *T in one step
func Get[T any](world *ecs.World, id ecs.EntityID, kind ecs.ComponentID) (*T, bool) {
	comp, ok := world.GetComponent(id, kind)
	if !ok {
		return nil, false
	}
	typed, ok := comp.(*T)
	return typed, ok
}

// PositionOf returns the position of an entity
func PositionOf(world *ecs.World, id ecs.EntityID) (*PositionComponent, bool) {
	return Get[PositionComponent](world, id, Position)
}

// FindPlayer returns the first entity carrying PlayerRace, or nil
func FindPlayer(world *ecs.World) *ecs.Entity {
	for _, entity := range world.GetAllEntities() {
		if world.HasComponent(entity.ID, PlayerRace) {
			return entity
		}
	}
	return nil
}
