package ecs

import "sort"

// World owns every entity of one floor together with its components
type World struct {
	nextID   EntityID
	entities map[EntityID]*Entity
	// Store components as map[EntityID]map[ComponentID]Component
	components map[EntityID]ComponentMap
	// Tag-based entity lookup for quick access
	entityTags map[string]map[EntityID]bool
	// Spatial index over Locatable components
	cells map[Cell][]EntityID
	// Event manager for floor lifecycle notifications
	eventManager *EventManager
}

// NewWorld creates a new ECS world
func NewWorld() *World {
	return &World{
		entities:     make(map[EntityID]*Entity),
		components:   make(map[EntityID]ComponentMap),
		entityTags:   make(map[string]map[EntityID]bool),
		cells:        make(map[Cell][]EntityID),
		eventManager: NewEventManager(),
	}
}

// CreateEntity creates a new entity and adds it to the world
func (w *World) CreateEntity() *Entity {
	w.nextID++
	entity := newEntity(w.nextID)
	w.entities[entity.ID] = entity
	w.components[entity.ID] = make(ComponentMap)
	return entity
}

// RemoveEntity removes an entity and all its components from the world
func (w *World) RemoveEntity(entityID EntityID) {
	entity, exists := w.entities[entityID]
	if !exists {
		return
	}

	for tag := range entity.Tags {
		delete(w.entityTags[tag], entityID)
		if len(w.entityTags[tag]) == 0 {
			delete(w.entityTags, tag)
		}
	}

	for _, component := range w.components[entityID] {
		if loc, ok := component.(Locatable); ok {
			w.unindex(loc.Cell(), entityID)
		}
	}

	delete(w.components, entityID)
	delete(w.entities, entityID)
}

// AddComponent attaches a component to an entity. Storage is keyed by
// component kind, so attaching a kind twice keeps the last value; the
// return value reports whether an earlier component was replaced.
func (w *World) AddComponent(entityID EntityID, componentID ComponentID, component Component) bool {
	if _, exists := w.entities[entityID]; !exists {
		return false
	}

	componentMap := w.components[entityID]
	previous, replaced := componentMap[componentID]
	if replaced {
		if loc, ok := previous.(Locatable); ok {
			w.unindex(loc.Cell(), entityID)
		}
	}

	componentMap[componentID] = component
	if loc, ok := component.(Locatable); ok {
		w.index(loc.Cell(), entityID)
	}
	return replaced
}

// GetComponent retrieves a component from an entity
func (w *World) GetComponent(entityID EntityID, componentID ComponentID) (Component, bool) {
	if componentMap, exists := w.components[entityID]; exists {
		component, exists := componentMap[componentID]
		return component, exists
	}
	return nil, false
}

// HasComponent checks if an entity has a specific component
func (w *World) HasComponent(entityID EntityID, componentID ComponentID) bool {
	if componentMap, exists := w.components[entityID]; exists {
		_, exists := componentMap[componentID]
		return exists
	}
	return false
}

// RemoveComponent removes a component from an entity
func (w *World) RemoveComponent(entityID EntityID, componentID ComponentID) {
	componentMap, exists := w.components[entityID]
	if !exists {
		return
	}
	if loc, ok := componentMap[componentID].(Locatable); ok {
		w.unindex(loc.Cell(), entityID)
	}
	delete(componentMap, componentID)
}

// Relocate moves the Locatable component of the given kind to a new cell and
// keeps the spatial index in step. Positions must only change through here.
func (w *World) Relocate(entityID EntityID, componentID ComponentID, cell Cell) bool {
	component, exists := w.GetComponent(entityID, componentID)
	if !exists {
		return false
	}
	loc, ok := component.(Locatable)
	if !ok {
		return false
	}
	w.unindex(loc.Cell(), entityID)
	loc.SetCell(cell)
	w.index(cell, entityID)
	return true
}

// GetEntityAt returns the entity occupying the cell, or nil when it is empty.
// If several entities share a cell the oldest one wins.
func (w *World) GetEntityAt(row, col int) *Entity {
	ids := w.cells[Cell{Row: row, Col: col}]
	if len(ids) == 0 {
		return nil
	}
	return w.entities[ids[0]]
}

// IsOccupied reports whether any entity sits on the cell
func (w *World) IsOccupied(row, col int) bool {
	return len(w.cells[Cell{Row: row, Col: col}]) > 0
}

// TagEntity adds a tag to an entity and updates the tag lookup
func (w *World) TagEntity(entityID EntityID, tag string) {
	entity, exists := w.entities[entityID]
	if !exists {
		return
	}

	entity.AddTag(tag)

	if _, exists := w.entityTags[tag]; !exists {
		w.entityTags[tag] = make(map[EntityID]bool)
	}

	w.entityTags[tag][entityID] = true
}

// GetEntitiesWithTag returns all entities with a specific tag, oldest first
func (w *World) GetEntitiesWithTag(tag string) []*Entity {
	entities := make([]*Entity, 0)

	if taggedEntities, exists := w.entityTags[tag]; exists {
		for entityID := range taggedEntities {
			if entity, ok := w.entities[entityID]; ok {
				entities = append(entities, entity)
			}
		}
	}

	sortByID(entities)
	return entities
}

// GetAllEntities returns every entity in the world, oldest first
func (w *World) GetAllEntities() []*Entity {
	entities := make([]*Entity, 0, len(w.entities))
	for _, entity := range w.entities {
		entities = append(entities, entity)
	}
	sortByID(entities)
	return entities
}

// GetEntitiesWithComponent returns all entities that have a specific component, oldest first
func (w *World) GetEntitiesWithComponent(componentID ComponentID) []*Entity {
	entities := make([]*Entity, 0)

	for id, componentMap := range w.components {
		if _, hasComponent := componentMap[componentID]; hasComponent {
			if entity, ok := w.entities[id]; ok {
				entities = append(entities, entity)
			}
		}
	}

	sortByID(entities)
	return entities
}

// GetEntity returns an entity by its ID
func (w *World) GetEntity(entityID EntityID) *Entity {
	entity, exists := w.entities[entityID]
	if !exists {
		return nil
	}
	return entity
}

// Count returns the number of live entities
func (w *World) Count() int {
	return len(w.entities)
}

// GetEventManager returns the world's event manager
func (w *World) GetEventManager() *EventManager {
	return w.eventManager
}

// EmitEvent is a convenience method to emit an event
func (w *World) EmitEvent(event Event) {
	w.eventManager.Emit(event)
}

func (w *World) index(cell Cell, id EntityID) {
	ids := w.cells[cell]
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	w.cells[cell] = ids
}

func (w *World) unindex(cell Cell, id EntityID) {
	ids := w.cells[cell]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(w.cells, cell)
		return
	}
	w.cells[cell] = ids
}

func sortByID(entities []*Entity) {
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
}
