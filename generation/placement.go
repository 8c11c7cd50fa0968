package generation

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
)

// DefaultMaxAttempts bounds rejection sampling before the fallback scan
const DefaultMaxAttempts = 512

// Sampler picks free floor tiles. A tile is free when it is a floor tile,
// no entity stands on it and it is not reserved by the current plan.
// Random draws are retried at most maxAttempts times; after that every
// candidate is scanned and one free tile is drawn, and if none is left the
// sampler reports errors.ErrNoSpace.
type Sampler struct {
	layout      *data.Layout
	world       *ecs.World
	roller      dice.Roller
	maxAttempts int
	reserved    map[ecs.Cell]bool
}

// NewSampler creates a sampler over one floor
func NewSampler(layout *data.Layout, world *ecs.World, roller dice.Roller, maxAttempts int) *Sampler {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Sampler{
		layout:      layout,
		world:       world,
		roller:      roller,
		maxAttempts: maxAttempts,
		reserved:    make(map[ecs.Cell]bool),
	}
}

// Reserve marks a planned tile as taken
func (s *Sampler) Reserve(cell ecs.Cell) {
	s.reserved[cell] = true
}

// Reset drops every reservation
func (s *Sampler) Reset() {
	s.reserved = make(map[ecs.Cell]bool)
}

// IsFree reports whether a tile can take a new occupant
func (s *Sampler) IsFree(cell ecs.Cell) bool {
	return s.layout.IsFloor(cell.Row, cell.Col) &&
		!s.world.IsOccupied(cell.Row, cell.Col) &&
		!s.reserved[cell]
}

// RandomPosition draws a room uniformly, then a tile uniformly within it
func (s *Sampler) RandomPosition() (ecs.Cell, int, error) {
	return s.randomPosition(func(int) bool { return true })
}

// RandomPositionOutsideRoom draws a free tile from any room but exclude
func (s *Sampler) RandomPositionOutsideRoom(exclude int) (ecs.Cell, int, error) {
	if s.layout.RoomCount() < 2 {
		return ecs.Cell{}, 0, errors.InvalidArgumentf("layout has %d room(s), need at least 2", s.layout.RoomCount())
	}
	return s.randomPosition(func(room int) bool { return room != exclude })
}

// RandomPositionInRoom draws a free tile from one room
func (s *Sampler) RandomPositionInRoom(room int) (ecs.Cell, error) {
	if room < 0 || room >= s.layout.RoomCount() {
		return ecs.Cell{}, errors.InvalidArgumentf("room %d does not exist", room)
	}
	cell, _, err := s.randomPosition(func(r int) bool { return r == room })
	return cell, err
}

func (s *Sampler) randomPosition(allowed func(room int) bool) (ecs.Cell, int, error) {
	rooms := s.layout.RoomCount()
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		room, err := Intn(s.roller, rooms)
		if err != nil {
			return ecs.Cell{}, 0, err
		}
		if !allowed(room) {
			continue
		}
		tiles := s.layout.Room(room)
		i, err := Intn(s.roller, len(tiles))
		if err != nil {
			return ecs.Cell{}, 0, err
		}
		if s.IsFree(tiles[i]) {
			return tiles[i], room, nil
		}
	}

	var candidates []ecs.Cell
	var candidateRooms []int
	for room := 0; room < rooms; room++ {
		if !allowed(room) {
			continue
		}
		for _, cell := range s.layout.Room(room) {
			if s.IsFree(cell) {
				candidates = append(candidates, cell)
				candidateRooms = append(candidateRooms, room)
			}
		}
	}
	if len(candidates) == 0 {
		return ecs.Cell{}, 0, errors.ErrNoSpace
	}
	i, err := Intn(s.roller, len(candidates))
	if err != nil {
		return ecs.Cell{}, 0, err
	}
	return candidates[i], candidateRooms[i], nil
}

// GuardPosition draws a free tile from the eight neighbours of anchor
func (s *Sampler) GuardPosition(anchor ecs.Cell) (ecs.Cell, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		dr, err := s.roller.Roll(3)
		if err != nil {
			return ecs.Cell{}, err
		}
		dc, err := s.roller.Roll(3)
		if err != nil {
			return ecs.Cell{}, err
		}
		if dr == 2 && dc == 2 {
			continue
		}
		cell := ecs.Cell{Row: anchor.Row + dr - 2, Col: anchor.Col + dc - 2}
		if s.IsFree(cell) {
			return cell, nil
		}
	}

	var candidates []ecs.Cell
	for _, cell := range data.Neighbours(anchor) {
		if s.IsFree(cell) {
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) == 0 {
		return ecs.Cell{}, errors.NoSpacef("no free tile around (%d,%d)", anchor.Row, anchor.Col).
			WithMeta("row", anchor.Row).
			WithMeta("col", anchor.Col)
	}
	i, err := Intn(s.roller, len(candidates))
	if err != nil {
		return ecs.Cell{}, err
	}
	return candidates[i], nil
}
