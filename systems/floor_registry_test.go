package systems

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
	"dungeon-spawn/generation"
	"dungeon-spawn/logger"
)

func newGenerator(t require.TestingT, layout *data.Layout) *generation.Generator {
	g, err := generation.NewGenerator(generation.GeneratorConfig{
		Layout: layout,
		Quotas: generation.DefaultQuotas(),
		Logger: logger.Discard(),
	})
	require.NoError(t, err)
	return g
}

type DungeonTestSuite struct {
	suite.Suite
	dungeon    *Dungeon
	transition *FloorTransitionSystem
	changed    []FloorChangedEvent
	victories  []VictoryEvent
}

func TestDungeonSuite(t *testing.T) {
	suite.Run(t, new(DungeonTestSuite))
}

func (s *DungeonTestSuite) SetupTest() {
	s.dungeon = s.newDungeon(3, -1)
	s.transition = NewFloorTransitionSystem(logger.Discard())
}

func (s *DungeonTestSuite) newDungeon(floors, suitFloor int) *Dungeon {
	d, err := NewDungeon(DungeonConfig{
		Generator:        newGenerator(s.T(), data.DefaultLayout()),
		Floors:           floors,
		Seed:             10,
		BarrierSuit:      suitFloor >= 0,
		BarrierSuitFloor: suitFloor,
		Logger:           logger.Discard(),
	})
	s.Require().NoError(err)

	s.changed = nil
	s.victories = nil
	d.Events().Subscribe(EventFloorChanged, func(e ecs.Event) {
		s.changed = append(s.changed, e.(FloorChangedEvent))
	})
	d.Events().Subscribe(EventVictory, func(e ecs.Event) {
		s.victories = append(s.victories, e.(VictoryEvent))
	})
	return d
}

func (s *DungeonTestSuite) playerState(d *Dungeon) (*components.HealthComponent, *components.GoldComponent, *ecs.World) {
	world := d.Current().World
	health, ok := components.Get[components.HealthComponent](world, d.Player(), components.Health)
	s.Require().True(ok)
	gold, ok := components.Get[components.GoldComponent](world, d.Player(), components.Gold)
	s.Require().True(ok)
	return health, gold, world
}

func (s *DungeonTestSuite) takeStairs(d *Dungeon) {
	s.Require().NoError(s.transition.Approach(d))
	took, err := s.transition.Update(d)
	s.Require().NoError(err)
	s.Require().True(took)
}

func (s *DungeonTestSuite) TestStartGeneratesOnlyFirstFloor() {
	s.Require().NoError(s.dungeon.Start("orc"))

	s.Equal(0, s.dungeon.CurrentIndex())
	s.NotZero(s.dungeon.Player())
	for i := 0; i < s.dungeon.FloorCount(); i++ {
		floor, err := s.dungeon.Floor(i)
		s.Require().NoError(err)
		s.Equal(i == 0, floor.Generated, "floor %d", i)
	}

	race, _ := components.Get[components.PlayerRaceComponent](s.dungeon.Current().World, s.dungeon.Player(), components.PlayerRace)
	s.Equal("orc", race.Race)
	s.Require().Len(s.changed, 1)
	s.Equal(-1, s.changed[0].From)
	s.Equal(180, s.changed[0].Health)
}

func (s *DungeonTestSuite) TestTransitionMigratesCarriedState() {
	s.Require().NoError(s.dungeon.Start("human"))

	health, gold, world := s.playerState(s.dungeon)
	health.Current = 80
	gold.Amount = 50
	world.AddComponent(s.dungeon.Player(), components.BarrierSuit, &components.BarrierSuitComponent{})

	next, err := s.dungeon.Floor(1)
	s.Require().NoError(err)
	s.Require().NoError(s.dungeon.ensurePopulated(next))
	nextPlayer := components.FindPlayer(next.World)
	s.Require().NotNil(nextPlayer)
	action, _ := components.Get[components.ActionComponent](next.World, nextPlayer.ID, components.Action)
	action.Move = true

	s.takeStairs(s.dungeon)

	s.Equal(1, s.dungeon.CurrentIndex())
	s.Equal(nextPlayer.ID, s.dungeon.Player())
	health, gold, world = s.playerState(s.dungeon)
	s.Equal(80, health.Current)
	s.Equal(50, gold.Amount)
	s.True(world.HasComponent(s.dungeon.Player(), components.BarrierSuit))
	action, _ = components.Get[components.ActionComponent](world, s.dungeon.Player(), components.Action)
	s.False(action.Move)

	s.Require().Len(s.changed, 2)
	s.Equal(FloorChangedEvent{From: 0, To: 1, Player: nextPlayer.ID, Health: 80, Gold: 50}, s.changed[1])
}

func (s *DungeonTestSuite) TestTransitionWithoutSuitDoesNotGrantOne() {
	s.Require().NoError(s.dungeon.Start("elf"))
	s.takeStairs(s.dungeon)

	s.False(s.dungeon.Current().World.HasComponent(s.dungeon.Player(), components.BarrierSuit))
}

func (s *DungeonTestSuite) TestLastFloorIsTerminal() {
	d := s.newDungeon(1, -1)
	s.Require().NoError(d.Start("dwarf"))

	health, gold, world := s.playerState(d)
	health.Current = 80
	gold.Amount = 50
	player := d.Player()

	s.takeStairs(d)

	s.True(d.Finished())
	s.Equal(1, d.CurrentIndex())
	s.Equal(d.FloorCount(), d.CurrentIndex())
	s.Nil(d.Current())
	s.Equal(player, d.Player())

	after, _ := components.Get[components.HealthComponent](world, player, components.Health)
	s.Equal(80, after.Current)
	action, _ := components.Get[components.ActionComponent](world, player, components.Action)
	s.True(action.Move)

	s.Require().Len(s.victories, 1)
	s.Equal(VictoryEvent{Floors: 1, Player: player, Gold: 50}, s.victories[0])

	s.Require().NoError(d.MoveToNextFloor())
	s.Equal(1, d.CurrentIndex())
	s.Len(s.victories, 1)

	took, err := s.transition.Update(d)
	s.NoError(err)
	s.False(took)
	s.Error(s.transition.Approach(d))
}

func (s *DungeonTestSuite) TestUpdateIgnoresOtherMoves() {
	s.Require().NoError(s.dungeon.Start("human"))

	took, err := s.transition.Update(s.dungeon)
	s.Require().NoError(err)
	s.False(took, "no pending move")

	s.Require().NoError(s.transition.Approach(s.dungeon))
	world := s.dungeon.Current().World
	dir, _ := components.Get[components.DirectionComponent](world, s.dungeon.Player(), components.Direction)
	offset := data.DirectionMap[dir.Facing]
	dir.Facing = opposite(dir.Facing)

	pos, _ := components.PositionOf(world, s.dungeon.Player())
	behind := world.GetEntityAt(pos.Row-offset.Row, pos.Col-offset.Col)
	s.True(behind == nil || !world.HasComponent(behind.ID, components.Stairs))

	took, err = s.transition.Update(s.dungeon)
	s.Require().NoError(err)
	s.False(took, "facing away from the stairs")
	s.Equal(0, s.dungeon.CurrentIndex())

	dir.Facing = "up"
	took, err = s.transition.Update(s.dungeon)
	s.Require().NoError(err)
	s.False(took)
}

func opposite(facing string) string {
	return map[string]string{
		"no": "so", "so": "no", "ea": "we", "we": "ea",
		"ne": "sw", "sw": "ne", "nw": "se", "se": "nw",
	}[facing]
}

func (s *DungeonTestSuite) TestFloorsAreGeneratedLazilyFromSeed() {
	s.Require().NoError(s.dungeon.Start("human"))
	s.takeStairs(s.dungeon)
	s.takeStairs(s.dungeon)

	for i := 0; i < 3; i++ {
		floor, err := s.dungeon.Floor(i)
		s.Require().NoError(err)
		s.Require().NotNil(floor.Result)
		s.Equal(int64(10+i), floor.Result.Seed)
		s.Equal(i, floor.Result.Floor)
	}
}

func (s *DungeonTestSuite) TestBarrierSuitFloor() {
	d := s.newDungeon(3, 1)
	s.Equal(1, d.BarrierSuitFloor())
	s.Require().NoError(d.Start("human"))
	s.takeStairs(d)

	first, _ := d.Floor(0)
	second, _ := d.Floor(1)
	s.Zero(first.Result.BarrierSuit)
	s.NotZero(second.Result.BarrierSuit)
	s.Len(second.World.GetEntitiesWithComponent(components.BarrierSuit), 1)
}

func (s *DungeonTestSuite) TestBarrierSuitFloorFromSeed() {
	a := s.newDungeon(5, -1)
	s.Equal(-1, a.BarrierSuitFloor())

	d, err := NewDungeon(DungeonConfig{
		Generator:        newGenerator(s.T(), data.DefaultLayout()),
		Floors:           5,
		Seed:             77,
		BarrierSuit:      true,
		BarrierSuitFloor: -1,
	})
	s.Require().NoError(err)
	s.GreaterOrEqual(d.BarrierSuitFloor(), 0)
	s.Less(d.BarrierSuitFloor(), 5)
}

func (s *DungeonTestSuite) TestRegenerateCurrentKeepsPlayer() {
	s.Require().NoError(s.dungeon.Start("human"))
	health, gold, world := s.playerState(s.dungeon)
	health.Current = 33
	gold.Amount = 7
	player := s.dungeon.Player()
	stairs := world.GetEntitiesWithComponent(components.Stairs)[0].ID

	s.Require().NoError(s.dungeon.RegenerateCurrent(999))

	s.Equal(player, s.dungeon.Player())
	health, gold, world = s.playerState(s.dungeon)
	s.Equal(33, health.Current)
	s.Equal(7, gold.Amount)
	s.Nil(world.GetEntity(stairs))
	s.Len(world.GetEntitiesWithComponent(components.PlayerRace), 1)
	s.Equal(int64(999), s.dungeon.Current().Result.Seed)
}

func (s *DungeonTestSuite) TestFloorLookupErrors() {
	_, err := s.dungeon.Floor(3)
	s.True(errors.IsNotFound(err))
	_, err = s.dungeon.Floor(-1)
	s.True(errors.IsNotFound(err))
}

func TestNewDungeonValidation(t *testing.T) {
	g := newGenerator(t, data.DefaultLayout())

	testCases := []struct {
		name string
		cfg  DungeonConfig
	}{
		{name: "no generator", cfg: DungeonConfig{Floors: 1}},
		{name: "no floors", cfg: DungeonConfig{Generator: g}},
		{name: "suit floor out of range", cfg: DungeonConfig{Generator: g, Floors: 2, BarrierSuit: true, BarrierSuitFloor: 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDungeon(tc.cfg)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}

const authoredFloors = `|----------|
|@.V.......|
|........\.|
|----------|
|----------|
|..........|
|.\.....@..|
|----------|
`

func TestAuthoredDungeon(t *testing.T) {
	layout, err := data.NewLayout([]string{
		"|----------|",
		"|..........|",
		"|..........|",
		"|----------|",
	})
	require.NoError(t, err)

	d, err := NewDungeon(DungeonConfig{Generator: newGenerator(t, layout), Floors: 2, Logger: logger.Discard()})
	require.NoError(t, err)
	loader := generation.NewFloorLoader(layout, nil, logger.Discard())
	require.NoError(t, d.LoadAuthored(strings.NewReader(authoredFloors), loader, "elf"))

	messages := NewMessageLog()
	messages.Listen(d.Events())

	require.NoError(t, d.Start(""))
	assert.Equal(t, d.Current().World.GetEntityAt(1, 1).ID, d.Player())

	transition := NewFloorTransitionSystem(logger.Discard())
	require.NoError(t, transition.Approach(d))
	took, err := transition.Update(d)
	require.NoError(t, err)
	require.True(t, took)

	floor := d.Current()
	assert.True(t, floor.Authored)
	assert.Nil(t, floor.Result)
	assert.Equal(t, floor.World.GetEntityAt(2, 8).ID, d.Player())
	race, _ := components.Get[components.PlayerRaceComponent](floor.World, d.Player(), components.PlayerRace)
	assert.Equal(t, "elf", race.Race)

	require.NoError(t, transition.Approach(d))
	took, err = transition.Update(d)
	require.NoError(t, err)
	require.True(t, took)
	assert.True(t, d.Finished())

	assert.Equal(t, []string{
		"Escaped all 2 floors with 0 gold",
		"Took the stairs from floor 1 to floor 2 (140 HP, 0 gold)",
		"Entered floor 1 with 140 HP",
	}, messages.RecentMessages(10))

	err = d.LoadAuthored(strings.NewReader(authoredFloors), loader, "elf")
	assert.True(t, errors.IsFailedPrecondition(err))
}
