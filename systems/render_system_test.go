package systems

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/logger"
	"dungeon-spawn/spawners"
)

func TestRenderSystemDraw(t *testing.T) {
	layout, err := data.NewLayout([]string{
		"|-----|",
		"|.....|",
		"|-----|",
	})
	require.NoError(t, err)

	world := ecs.NewWorld()
	spawner := spawners.NewEntitySpawner(world, nil, logger.Discard())
	player := spawner.SpawnPlayer(ecs.Cell{Row: 1, Col: 1}, "dwarf")
	spawner.SpawnItem(ecs.Cell{Row: 1, Col: 5}, data.ItemStairs, false)
	spawner.SpawnTreasure(ecs.Cell{Row: 1, Col: 3}, 2)
	world.AddComponent(player.ID, components.BarrierSuit, &components.BarrierSuitComponent{})

	messages := NewMessageLog()
	messages.Add("first")
	messages.Add("second")

	var out bytes.Buffer
	require.NoError(t, NewRenderSystem(layout, messages).Draw(&out, world, 1))

	assert.Equal(t, "|-----|\n"+
		"|@.G.\\|\n"+
		"|-----|\n"+
		"Race: dwarf Gold: 0 Floor 2\n"+
		"HP: 100\n"+
		"Atk: 20\n"+
		"Def: 30\n"+
		"Wearing the barrier suit\n"+
		"Action: first\n"+
		"Action: second\n", out.String())
}

func TestRenderSystemGridOldestOccupantOnTop(t *testing.T) {
	layout, err := data.NewLayout([]string{"|...|"})
	require.NoError(t, err)

	world := ecs.NewWorld()
	spawner := spawners.NewEntitySpawner(world, nil, logger.Discard())
	spawner.SpawnPotion(ecs.Cell{Row: 0, Col: 2}, "RH")
	spawner.SpawnEnemy(ecs.Cell{Row: 0, Col: 2}, "troll", false)
	unknown := world.CreateEntity()
	world.AddComponent(unknown.ID, components.Position, components.NewPositionComponent(0, 1))

	assert.Equal(t, []string{"|?P.|"}, NewRenderSystem(layout, nil).Grid(world))
}
