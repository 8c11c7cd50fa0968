package data

import (
	"bufio"
	_ "embed"
	"io"
	"sort"
	"strings"
	"sync"

	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
)

// Terrain glyphs
const (
	FloorTile = '.'
	WallTile  = '|'
	DoorTile  = '+'
	PathTile  = '#'
	EmptyTile = ' '
)

//go:embed layouts/default.txt
var defaultLayoutText string

var (
	defaultLayoutOnce sync.Once
	defaultLayout     *Layout
)

// Layout is the static terrain of a floor together with its rooms. A Layout
// never changes after it is built and may be shared between floors.
type Layout struct {
	width  int
	height int
	tiles  [][]rune
	rooms  [][]ecs.Cell
	roomOf map[ecs.Cell]int
}

// DefaultLayout returns the built-in five-room 79x25 board
func DefaultLayout() *Layout {
	defaultLayoutOnce.Do(func() {
		layout, err := ParseLayout(strings.NewReader(defaultLayoutText))
		if err != nil {
			panic("embedded layout is invalid: " + err.Error())
		}
		defaultLayout = layout
	})
	return defaultLayout
}

// ParseLayout reads a terrain grid, one row per line. Short rows are padded
// with empty tiles up to the widest row.
func ParseLayout(r io.Reader) (*Layout, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read layout")
	}
	return NewLayout(rows)
}

// NewLayout builds a layout from terrain rows. Rooms are the 4-connected
// groups of floor tiles, numbered by their first tile in reading order.
func NewLayout(rows []string) (*Layout, error) {
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, errors.InvalidArgument("layout has no rows")
	}

	width := 0
	for _, row := range rows {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}

	l := &Layout{
		width:  width,
		height: len(rows),
		tiles:  make([][]rune, len(rows)),
		roomOf: make(map[ecs.Cell]int),
	}
	for i, row := range rows {
		line := make([]rune, width)
		for j := range line {
			line[j] = EmptyTile
		}
		copy(line, []rune(row))
		l.tiles[i] = line
	}

	l.findRooms()
	if len(l.rooms) == 0 {
		return nil, errors.InvalidArgument("layout has no floor tiles")
	}
	return l, nil
}

func (l *Layout) findRooms() {
	for row := 0; row < l.height; row++ {
		for col := 0; col < l.width; col++ {
			start := ecs.Cell{Row: row, Col: col}
			if !l.IsFloor(row, col) {
				continue
			}
			if _, seen := l.roomOf[start]; seen {
				continue
			}
			l.rooms = append(l.rooms, l.flood(start, len(l.rooms)))
		}
	}
}

// flood collects the room containing start and returns its tiles in
// reading order
func (l *Layout) flood(start ecs.Cell, index int) []ecs.Cell {
	l.roomOf[start] = index
	stack := []ecs.Cell{start}
	var tiles []ecs.Cell
	for len(stack) > 0 {
		cell := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tiles = append(tiles, cell)

		for _, d := range cardinal {
			next := ecs.Cell{Row: cell.Row + d.Row, Col: cell.Col + d.Col}
			if !l.IsFloor(next.Row, next.Col) {
				continue
			}
			if _, seen := l.roomOf[next]; seen {
				continue
			}
			l.roomOf[next] = index
			stack = append(stack, next)
		}
	}
	sortCells(tiles)
	return tiles
}

// Width returns the number of columns
func (l *Layout) Width() int { return l.width }

// Height returns the number of rows
func (l *Layout) Height() int { return l.height }

// InBounds reports whether the cell lies on the grid
func (l *Layout) InBounds(row, col int) bool {
	return row >= 0 && row < l.height && col >= 0 && col < l.width
}

// Tile returns the terrain glyph at a cell, or EmptyTile off the grid
func (l *Layout) Tile(row, col int) rune {
	if !l.InBounds(row, col) {
		return EmptyTile
	}
	return l.tiles[row][col]
}

// IsFloor reports whether entities may stand on the cell
func (l *Layout) IsFloor(row, col int) bool {
	return l.Tile(row, col) == FloorTile
}

// Row returns one terrain row as a string
func (l *Layout) Row(row int) string {
	if row < 0 || row >= l.height {
		return ""
	}
	return string(l.tiles[row])
}

// RoomCount returns the number of rooms
func (l *Layout) RoomCount() int {
	return len(l.rooms)
}

// Room returns the tiles of room i in reading order. The slice is shared
// and must not be modified.
func (l *Layout) Room(i int) []ecs.Cell {
	if i < 0 || i >= len(l.rooms) {
		return nil
	}
	return l.rooms[i]
}

// RoomOf returns the room index containing the cell
func (l *Layout) RoomOf(cell ecs.Cell) (int, bool) {
	i, ok := l.roomOf[cell]
	return i, ok
}

// Capacity returns the total number of floor tiles
func (l *Layout) Capacity() int {
	return len(l.roomOf)
}

var cardinal = []ecs.Cell{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}}

func sortCells(cells []ecs.Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
}
