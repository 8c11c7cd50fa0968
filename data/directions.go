package data

import "dungeon-spawn/ecs"

// DirectionMap maps a facing to its row/col offset
var DirectionMap = map[string]ecs.Cell{
	"no": {Row: -1, Col: 0},
	"so": {Row: 1, Col: 0},
	"ea": {Row: 0, Col: 1},
	"we": {Row: 0, Col: -1},
	"ne": {Row: -1, Col: 1},
	"nw": {Row: -1, Col: -1},
	"se": {Row: 1, Col: 1},
	"sw": {Row: 1, Col: -1},
}

// Step returns the cell one step from origin in the given facing
func Step(origin ecs.Cell, facing string) (ecs.Cell, bool) {
	d, ok := DirectionMap[facing]
	if !ok {
		return origin, false
	}
	return ecs.Cell{Row: origin.Row + d.Row, Col: origin.Col + d.Col}, true
}

// Neighbours returns the eight cells around origin in a fixed order
func Neighbours(origin ecs.Cell) []ecs.Cell {
	cells := make([]ecs.Cell, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			cells = append(cells, ecs.Cell{Row: origin.Row + dr, Col: origin.Col + dc})
		}
	}
	return cells
}
