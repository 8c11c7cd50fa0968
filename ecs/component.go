package ecs

// ComponentID is a unique identifier for component types
type ComponentID uint

// Component is the base interface for all components
type Component interface{}

// ComponentMap stores components by their type ID
type ComponentMap map[ComponentID]Component

// Cell is a grid coordinate used by the world's spatial index
type Cell struct {
	Row, Col int
}

// Locatable is implemented by components that pin an entity to a grid cell.
// The world indexes any component implementing it so entities can be found
// by coordinate.
type Locatable interface {
	Cell() Cell
	SetCell(Cell)
}
