package generation

import (
	"bufio"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
	"dungeon-spawn/spawners"
)

// FloorLoader builds authored floors from a text file. The file holds one
// block of layout.Height() lines per floor; each character is either
// terrain or an entity glyph.
type FloorLoader struct {
	layout    *data.Layout
	templates *data.TemplateManager
	log       logrus.FieldLogger
}

// LoadedFloor summarizes one authored floor
type LoadedFloor struct {
	Player        ecs.EntityID
	Stairs        ecs.EntityID
	CompassHolder ecs.EntityID
	Entities      int
}

// NewFloorLoader creates a floor loader
func NewFloorLoader(layout *data.Layout, templates *data.TemplateManager, log logrus.FieldLogger) *FloorLoader {
	if templates == nil {
		templates = data.DefaultTemplates()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FloorLoader{layout: layout, templates: templates, log: log}
}

// Load reads len(worlds) floors from r and populates each world. Every
// floor is checked before any entity is created.
func (l *FloorLoader) Load(r io.Reader, worlds []*ecs.World, race string) ([]LoadedFloor, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read floors")
	}

	height := l.layout.Height()
	need := height * len(worlds)
	if len(lines) < need {
		return nil, errors.InvalidArgumentf("floors file has %d lines, need %d for %d floors", len(lines), need, len(worlds))
	}

	grids := make([][][]rune, len(worlds))
	for f := range worlds {
		grid := make([][]rune, height)
		for row := 0; row < height; row++ {
			grid[row] = l.pad(lines[f*height+row])
		}
		if err := l.check(f, grid); err != nil {
			return nil, err
		}
		grids[f] = grid
	}

	if race == "" {
		race = data.DefaultRace
	}
	loaded := make([]LoadedFloor, len(worlds))
	for f, world := range worlds {
		loaded[f] = l.populate(f, grids[f], world, race)
	}
	return loaded, nil
}

func (l *FloorLoader) pad(line string) []rune {
	width := l.layout.Width()
	row := make([]rune, width)
	for i := range row {
		row[i] = data.EmptyTile
	}
	runes := []rune(line)
	if len(runes) > width {
		runes = runes[:width]
	}
	copy(row, runes)
	return row
}

func (l *FloorLoader) check(floor int, grid [][]rune) error {
	players, stairs := 0, 0
	for _, row := range grid {
		for _, glyph := range row {
			switch {
			case glyph == data.PlayerGlyph:
				players++
			case l.isStairs(glyph):
				stairs++
			}
		}
	}
	if players != 1 || stairs != 1 {
		return errors.InvalidArgumentf("floor %d needs exactly one player and one stairs, found %d and %d", floor, players, stairs)
	}
	return nil
}

func (l *FloorLoader) isStairs(glyph rune) bool {
	item, ok := l.templates.ItemByGlyph(glyph)
	return ok && item.Stairs
}

// populate dispatches each glyph to a factory. Guardians are created last so
// they can find the item they guard.
func (l *FloorLoader) populate(floor int, grid [][]rune, world *ecs.World, race string) LoadedFloor {
	spawner := spawners.NewEntitySpawner(world, l.templates, l.log.WithField("floor", floor))
	result := LoadedFloor{}

	var guardians []ecs.Cell
	var compassCandidate *ecs.Cell
	hasCompassItem := false
	guarded := make(map[ecs.Cell]bool)

	for row, line := range grid {
		for col, glyph := range line {
			cell := ecs.Cell{Row: row, Col: col}

			if glyph == data.PlayerGlyph {
				result.Player = spawner.SpawnPlayer(cell, race).ID
				continue
			}
			if enemy, ok := l.templates.EnemyByGlyph(glyph); ok {
				if enemy.Guardian {
					guardians = append(guardians, cell)
					continue
				}
				if compassCandidate == nil && !enemy.NoCompass {
					c := cell
					compassCandidate = &c
				}
				continue
			}
			if potion, ok := l.templates.PotionByTile(glyph); ok {
				spawner.SpawnPotion(cell, potion.Code)
				continue
			}
			if treasure, ok := l.templates.TreasureByTile(glyph); ok {
				spawner.SpawnTreasure(cell, treasure.Value)
				if treasure.Hoard {
					guarded[cell] = true
				}
				continue
			}
			if item, ok := l.templates.ItemByGlyph(glyph); ok {
				id := spawner.SpawnItem(cell, item.ID, false).ID
				switch {
				case item.Stairs:
					result.Stairs = id
				case item.Compass:
					hasCompassItem = true
				case item.Guarded:
					guarded[cell] = true
				}
			}
		}
	}

	// second pass so the compass decision sees the whole floor
	for row, line := range grid {
		for col, glyph := range line {
			enemy, ok := l.templates.EnemyByGlyph(glyph)
			if !ok || enemy.Guardian {
				continue
			}
			cell := ecs.Cell{Row: row, Col: col}
			withCompass := !hasCompassItem && compassCandidate != nil && *compassCandidate == cell
			id := spawner.SpawnEnemy(cell, enemy.ID, withCompass).ID
			if withCompass {
				result.CompassHolder = id
			}
		}
	}

	for _, cell := range guardians {
		spawner.SpawnGuardian(cell, l.guardedBy(cell, guarded), false)
	}

	result.Entities = world.Count()
	l.log.WithFields(logrus.Fields{
		"floor":    floor,
		"entities": result.Entities,
	}).Info("floor loaded")
	return result
}

// guardedBy picks the guarded item next to a guardian, falling back to the
// tile above it
func (l *FloorLoader) guardedBy(guardian ecs.Cell, guarded map[ecs.Cell]bool) ecs.Cell {
	for _, cell := range data.Neighbours(guardian) {
		if guarded[cell] {
			return cell
		}
	}
	return ecs.Cell{Row: guardian.Row - 1, Col: guardian.Col}
}
