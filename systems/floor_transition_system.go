package systems

import (
	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
)

// FloorTransitionSystem watches the player's pending move and takes the
// stairs when the move would land on them. It runs once per tick.
type FloorTransitionSystem struct {
	log logrus.FieldLogger
}

// NewFloorTransitionSystem creates a floor transition system
func NewFloorTransitionSystem(log logrus.FieldLogger) *FloorTransitionSystem {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FloorTransitionSystem{log: log}
}

// Update reports whether the player took the stairs this tick
func (s *FloorTransitionSystem) Update(d *Dungeon) (bool, error) {
	floor := d.Current()
	if floor == nil {
		return false, nil
	}
	world := floor.World
	player := d.Player()

	action, ok := components.Get[components.ActionComponent](world, player, components.Action)
	if !ok || !action.Move {
		return false, nil
	}

	pos, ok := components.PositionOf(world, player)
	if !ok {
		return false, nil
	}
	facing := "no"
	if dir, ok := components.Get[components.DirectionComponent](world, player, components.Direction); ok {
		facing = dir.Facing
	}
	dest, ok := data.Step(pos.Cell(), facing)
	if !ok {
		s.log.WithField("facing", facing).Warn("player faces an unknown direction")
		return false, nil
	}

	target := world.GetEntityAt(dest.Row, dest.Col)
	if target == nil || !world.HasComponent(target.ID, components.Stairs) {
		return false, nil
	}

	if err := d.MoveToNextFloor(); err != nil {
		return false, err
	}
	return true, nil
}

// Approach moves the player onto a free tile next to the stairs and queues a
// move onto them. It stands in for the input and movement systems when
// walking a dungeon from the command line.
func (s *FloorTransitionSystem) Approach(d *Dungeon) error {
	floor := d.Current()
	if floor == nil {
		return errors.FailedPrecondition("dungeon is already finished")
	}
	world := floor.World
	layout := d.generator.Layout()

	stairs := world.GetEntitiesWithComponent(components.Stairs)
	if len(stairs) == 0 {
		return errors.NotFoundf("floor %d has no stairs", floor.Index)
	}
	stairsPos, _ := components.PositionOf(world, stairs[0].ID)
	target := stairsPos.Cell()

	playerPos, ok := components.PositionOf(world, d.Player())
	if !ok {
		return errors.FailedPreconditionf("player on floor %d has no position", floor.Index)
	}

	for _, facing := range directionOrder {
		offset := data.DirectionMap[facing]
		from := ecs.Cell{Row: target.Row - offset.Row, Col: target.Col - offset.Col}
		occupant := world.GetEntityAt(from.Row, from.Col)
		if !layout.IsFloor(from.Row, from.Col) || (occupant != nil && occupant.ID != d.Player()) {
			continue
		}
		if from != playerPos.Cell() {
			world.Relocate(d.Player(), components.Position, from)
		}
		if dir, ok := components.Get[components.DirectionComponent](world, d.Player(), components.Direction); ok {
			dir.Facing = facing
		}
		if action, ok := components.Get[components.ActionComponent](world, d.Player(), components.Action); ok {
			action.Move = true
		}
		return nil
	}
	return errors.NoSpacef("no free tile next to the stairs on floor %d", floor.Index)
}

// directionOrder fixes the order Approach tries the stairs' neighbours
var directionOrder = []string{"no", "so", "ea", "we", "ne", "nw", "se", "sw"}
