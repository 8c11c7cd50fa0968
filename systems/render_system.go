package systems

import (
	"fmt"
	"io"
	"strings"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
)

// RenderSystem draws a floor as text: the board with entity glyphs on top,
// then a stats panel and the message log
type RenderSystem struct {
	layout   *data.Layout
	messages *MessageLog
}

// NewRenderSystem creates a text renderer for a layout. messages may be nil.
func NewRenderSystem(layout *data.Layout, messages *MessageLog) *RenderSystem {
	return &RenderSystem{layout: layout, messages: messages}
}

// Draw writes the whole screen for a floor
func (s *RenderSystem) Draw(w io.Writer, world *ecs.World, floor int) error {
	var b strings.Builder
	for _, row := range s.Grid(world) {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	s.drawStatsPanel(&b, world, floor)
	s.drawMessagesPanel(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

// Grid returns the board rows with every positioned entity drawn over its tile
func (s *RenderSystem) Grid(world *ecs.World) []string {
	grid := make([][]rune, s.layout.Height())
	for r := range grid {
		grid[r] = []rune(s.layout.Row(r))
	}

	// entities come oldest first, so the oldest occupant of a tile is drawn last
	entities := world.GetAllEntities()
	for i := len(entities) - 1; i >= 0; i-- {
		id := entities[i].ID
		pos, ok := components.PositionOf(world, id)
		if !ok || !s.layout.InBounds(pos.Row, pos.Col) {
			continue
		}
		grid[pos.Row][pos.Col] = glyphOf(world, id)
	}

	rows := make([]string, len(grid))
	for r, runes := range grid {
		rows[r] = string(runes)
	}
	return rows
}

func glyphOf(world *ecs.World, id ecs.EntityID) rune {
	if display, ok := components.Get[components.DisplayComponent](world, id, components.Display); ok && display.Glyph != 0 {
		return display.Glyph
	}
	return '?'
}

func (s *RenderSystem) drawStatsPanel(b *strings.Builder, world *ecs.World, floor int) {
	player := components.FindPlayer(world)
	if player == nil {
		fmt.Fprintf(b, "Floor: %d\n", floor+1)
		return
	}

	race, _ := components.Get[components.PlayerRaceComponent](world, player.ID, components.PlayerRace)
	left := fmt.Sprintf("Race: %s Gold: %d", race.Race, amount(world, player.ID))
	right := fmt.Sprintf("Floor %d", floor+1)
	gap := max(1, s.layout.Width()-len(left)-len(right))
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")

	if health, ok := components.Get[components.HealthComponent](world, player.ID, components.Health); ok {
		fmt.Fprintf(b, "HP: %d\n", health.Current)
	}
	if attack, ok := components.Get[components.AttackComponent](world, player.ID, components.Attack); ok {
		fmt.Fprintf(b, "Atk: %d\n", attack.Power)
	}
	if defense, ok := components.Get[components.DefenseComponent](world, player.ID, components.Defense); ok {
		fmt.Fprintf(b, "Def: %d\n", defense.Power)
	}
	if world.HasComponent(player.ID, components.BarrierSuit) {
		b.WriteString("Wearing the barrier suit\n")
	}
}

func amount(world *ecs.World, id ecs.EntityID) int {
	if gold, ok := components.Get[components.GoldComponent](world, id, components.Gold); ok {
		return gold.Amount
	}
	return 0
}

func (s *RenderSystem) drawMessagesPanel(b *strings.Builder) {
	if s.messages == nil {
		return
	}
	recent := s.messages.RecentMessages(5)
	for i := len(recent) - 1; i >= 0; i-- {
		b.WriteString("Action: ")
		b.WriteString(recent[i])
		b.WriteByte('\n')
	}
}
