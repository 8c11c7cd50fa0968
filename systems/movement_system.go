package systems

import (
	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
)

// MovementSystem resolves the player's pending move once the floor
// transition system has had its look at it
type MovementSystem struct {
	layout *data.Layout
	log    logrus.FieldLogger
}

// NewMovementSystem creates a movement system for a board
func NewMovementSystem(layout *data.Layout, log logrus.FieldLogger) *MovementSystem {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MovementSystem{layout: layout, log: log}
}

// Update applies the pending move of the player on the current floor and
// reports whether the player changed tiles. The move is consumed either way.
func (s *MovementSystem) Update(d *Dungeon) bool {
	floor := d.Current()
	if floor == nil {
		return false
	}
	world := floor.World
	playerID := d.Player()

	action, ok := components.Get[components.ActionComponent](world, playerID, components.Action)
	if !ok || !action.Move {
		return false
	}
	action.Move = false

	position, ok := components.PositionOf(world, playerID)
	if !ok {
		return false
	}

	facing := "no"
	if dir, ok := components.Get[components.DirectionComponent](world, playerID, components.Direction); ok {
		facing = dir.Facing
	}
	to, ok := data.Step(position.Cell(), facing)
	if !ok {
		return false
	}

	if !s.isValidMove(world, playerID, to) {
		return false
	}

	from := position.Cell()
	world.Relocate(playerID, components.Position, to)
	world.EmitEvent(PlayerMoveEvent{EntityID: playerID, From: from, To: to})
	return true
}

// isValidMove checks terrain and occupancy of the destination
func (s *MovementSystem) isValidMove(world *ecs.World, playerID ecs.EntityID, to ecs.Cell) bool {
	tile := s.layout.Tile(to.Row, to.Col)
	if tile != data.FloorTile && tile != data.DoorTile && tile != data.PathTile {
		return false
	}

	target := world.GetEntityAt(to.Row, to.Col)
	if target != nil && target.ID != playerID {
		s.log.WithFields(logrus.Fields{"row": to.Row, "col": to.Col, "blocker": target.ID}).Debug("move blocked")
		world.EmitEvent(BlockedEvent{EntityID: playerID, Blocker: target.ID, At: to})
		return false
	}
	return true
}
