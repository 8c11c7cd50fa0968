package ecs

import "strconv"

// EntityID identifies an entity within a single World. IDs are allocated by
// the owning world, starting at 1; zero never names a live entity.
type EntityID uint64

// String implements fmt.Stringer
func (id EntityID) String() string {
	return "e" + strconv.FormatUint(uint64(id), 10)
}

// Entity is an identity plus a set of free-form tags. Its components live in
// the World that created it.
type Entity struct {
	ID   EntityID
	Tags map[string]bool
}

func newEntity(id EntityID) *Entity {
	return &Entity{
		ID:   id,
		Tags: make(map[string]bool),
	}
}

// AddTag adds a tag to the entity
func (e *Entity) AddTag(tag string) {
	e.Tags[tag] = true
}

// HasTag checks if the entity has a specific tag
func (e *Entity) HasTag(tag string) bool {
	return e.Tags[tag]
}
