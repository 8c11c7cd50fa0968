package storage_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
	"dungeon-spawn/generation"
	"dungeon-spawn/logger"
	"dungeon-spawn/storage"
)

func generatedWorld(t *testing.T) (*ecs.World, *generation.Result) {
	g, err := generation.NewGenerator(generation.GeneratorConfig{
		Layout: data.DefaultLayout(),
		Quotas: generation.DefaultQuotas(),
		Logger: logger.Discard(),
	})
	require.NoError(t, err)

	world := ecs.NewWorld()
	result, err := g.Generate(world, generation.GenerateOptions{Floor: 2, Seed: 5, Race: "dwarf", BarrierSuit: true})
	require.NoError(t, err)
	return world, result
}

func TestCaptureRestore(t *testing.T) {
	world, result := generatedWorld(t)

	snap, err := storage.Capture(world, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Floor)
	assert.Len(t, snap.Entities, world.Count())

	restored := ecs.NewWorld()
	ids, err := snap.Restore(restored)
	require.NoError(t, err)
	assert.Equal(t, world.Count(), restored.Count())

	for _, entity := range world.GetAllEntities() {
		copyID, ok := ids[entity.ID]
		require.True(t, ok)
		copied := restored.GetEntity(copyID)
		require.NotNil(t, copied)
		assert.Equal(t, entity.Tags, copied.Tags)

		for _, kind := range components.Kinds() {
			original, had := world.GetComponent(entity.ID, kind)
			got, has := restored.GetComponent(copyID, kind)
			require.Equal(t, had, has, "%s on %s", components.NameOf(kind), entity.ID)
			if had {
				assert.Equal(t, original, got)
			}
		}
	}

	playerPos, _ := components.PositionOf(world, result.Player)
	at := restored.GetEntityAt(playerPos.Row, playerPos.Col)
	require.NotNil(t, at)
	assert.Equal(t, ids[result.Player], at.ID)
	assert.Len(t, restored.GetEntitiesWithComponent(components.Compass), 1)
	assert.Len(t, restored.GetEntitiesWithTag(components.TagPlayer), 1)
}

func TestRestoreRequiresEmptyWorld(t *testing.T) {
	world, _ := generatedWorld(t)
	snap, err := storage.Capture(world, 0, 5)
	require.NoError(t, err)

	_, err = snap.Restore(world)
	assert.True(t, errors.IsFailedPrecondition(err))

	_, err = storage.Capture(nil, 0, 0)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRestoreRejectsUnknownComponent(t *testing.T) {
	snap := &storage.Snapshot{Entities: []storage.EntitySnapshot{
		{ID: 1, Components: map[string]json.RawMessage{"Wings": json.RawMessage(`{}`)}},
	}}
	_, err := snap.Restore(ecs.NewWorld())
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRestoreLeavesWorldEmptyOnBadEntity(t *testing.T) {
	snap := &storage.Snapshot{Entities: []storage.EntitySnapshot{
		{ID: 1, Tags: []string{"player"}, Components: map[string]json.RawMessage{
			"Position": json.RawMessage(`{"row":1,"col":2}`),
		}},
		{ID: 2, Components: map[string]json.RawMessage{
			"Position": json.RawMessage(`{"row":3,"col":3}`),
			"Health":   json.RawMessage(`"lots"`),
		}},
	}}

	world := ecs.NewWorld()
	_, err := snap.Restore(world)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Zero(t, world.Count())
	assert.Nil(t, world.GetEntityAt(1, 2))
	assert.Empty(t, world.GetEntitiesWithTag("player"))

	snap.Entities = snap.Entities[:1]
	ids, err := snap.Restore(world)
	require.NoError(t, err)
	assert.Equal(t, ecs.EntityID(1), ids[1])
	assert.Equal(t, ids[1], world.GetEntityAt(1, 2).ID)
}
