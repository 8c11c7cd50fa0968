package systems

import (
	"io"

	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
	"dungeon-spawn/generation"
)

// Floor is one level of the dungeon with its own entity store
type Floor struct {
	Index     int
	World     *ecs.World
	Authored  bool               // loaded from a floors file
	Generated bool               // populated, either way
	Result    *generation.Result // nil for authored floors
}

// DungeonConfig configures a Dungeon
type DungeonConfig struct {
	Generator        *generation.Generator
	Floors           int
	Seed             int64
	BarrierSuit      bool
	BarrierSuitFloor int // -1 draws the floor from Seed
	Logger           logrus.FieldLogger
}

// Validate checks the dungeon configuration
func (c *DungeonConfig) Validate() error {
	if c.Generator == nil {
		return errors.InvalidArgument("generator is required")
	}
	if c.Floors <= 0 {
		return errors.InvalidArgumentf("floors must be positive, got %d", c.Floors)
	}
	if c.BarrierSuitFloor >= c.Floors {
		return errors.InvalidArgumentf("barrier suit floor %d is past the last floor", c.BarrierSuitFloor)
	}
	return nil
}

// Dungeon tracks every floor, the current floor index and the player handle.
// Floors are populated lazily: a floor is generated the first time the
// player reaches it, using Seed plus the floor index.
type Dungeon struct {
	floors           []*Floor
	current          int
	player           ecs.EntityID
	race             string
	generator        *generation.Generator
	seed             int64
	barrierSuitFloor int
	events           *ecs.EventManager
	log              logrus.FieldLogger
}

// NewDungeon creates a dungeon with empty floors
func NewDungeon(cfg DungeonConfig) (*Dungeon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	d := &Dungeon{
		floors:           make([]*Floor, cfg.Floors),
		generator:        cfg.Generator,
		seed:             cfg.Seed,
		barrierSuitFloor: -1,
		events:           ecs.NewEventManager(),
		log:              cfg.Logger,
	}
	for i := range d.floors {
		world := ecs.NewWorld()
		world.GetEventManager().Subscribe(generation.EventFloorGenerated, d.events.Emit)
		d.floors[i] = &Floor{Index: i, World: world}
	}

	if cfg.BarrierSuit {
		d.barrierSuitFloor = cfg.BarrierSuitFloor
		if d.barrierSuitFloor < 0 {
			floor, err := generation.Intn(generation.NewSeededRoller(cfg.Seed), cfg.Floors)
			if err != nil {
				return nil, errors.Wrap(err, "failed to pick barrier suit floor")
			}
			d.barrierSuitFloor = floor
		}
	}
	return d, nil
}

// LoadAuthored fills every floor from a floors file. Authored floors are
// never passed to the generator.
func (d *Dungeon) LoadAuthored(r io.Reader, loader *generation.FloorLoader, race string) error {
	worlds := make([]*ecs.World, len(d.floors))
	for i, floor := range d.floors {
		if floor.Generated {
			return errors.FailedPreconditionf("floor %d is already populated", i)
		}
		worlds[i] = floor.World
	}

	if _, err := loader.Load(r, worlds, race); err != nil {
		return errors.Wrap(err, "failed to load authored floors")
	}
	for _, floor := range d.floors {
		floor.Authored = true
		floor.Generated = true
	}
	d.race = race
	return nil
}

// Start populates the first floor if needed and binds the player
func (d *Dungeon) Start(race string) error {
	if d.race == "" {
		d.race = race
	}
	d.current = 0
	floor := d.floors[0]
	if err := d.ensurePopulated(floor); err != nil {
		return err
	}

	player := components.FindPlayer(floor.World)
	if player == nil {
		return errors.FailedPrecondition("floor 1 has no player")
	}
	d.player = player.ID

	health, gold := d.carried(floor.World, d.player)
	d.events.Emit(FloorChangedEvent{From: -1, To: 0, Player: d.player, Health: health, Gold: gold})
	return nil
}

func (d *Dungeon) ensurePopulated(floor *Floor) error {
	if floor.Generated {
		return nil
	}
	return d.generate(floor, d.seed+int64(floor.Index))
}

func (d *Dungeon) generate(floor *Floor, seed int64) error {
	result, err := d.generator.Generate(floor.World, generation.GenerateOptions{
		Floor:       floor.Index,
		Seed:        seed,
		Race:        d.race,
		BarrierSuit: floor.Index == d.barrierSuitFloor,
	})
	if err != nil {
		return err
	}
	floor.Generated = true
	floor.Authored = false
	floor.Result = result
	return nil
}

// MoveToNextFloor advances the floor index and migrates the player's carried
// state onto the player of the next floor. Past the last floor it is a
// victory and nothing else changes.
func (d *Dungeon) MoveToNextFloor() error {
	if d.Finished() {
		return nil
	}

	previous := d.floors[d.current]
	previousPlayer := d.player

	d.current++
	if d.current >= len(d.floors) {
		_, gold := d.carried(previous.World, previousPlayer)
		d.log.WithField("gold", gold).Info("player escaped the dungeon")
		d.events.Emit(VictoryEvent{Floors: len(d.floors), Player: previousPlayer, Gold: gold})
		return nil
	}

	next := d.floors[d.current]
	if err := d.ensurePopulated(next); err != nil {
		d.current--
		return errors.Wrapf(err, "failed to populate floor %d", next.Index)
	}

	player := components.FindPlayer(next.World)
	if player == nil {
		d.current--
		return errors.FailedPreconditionf("floor %d has no player", next.Index)
	}

	d.migrate(previous.World, previousPlayer, next.World, player.ID)
	d.player = player.ID

	health, gold := d.carried(next.World, d.player)
	d.log.WithFields(logrus.Fields{
		"from":   previous.Index,
		"to":     next.Index,
		"health": health,
		"gold":   gold,
	}).Info("player took the stairs")
	d.events.Emit(FloorChangedEvent{From: previous.Index, To: next.Index, Player: d.player, Health: health, Gold: gold})
	return nil
}

// migrate copies health, gold and the barrier suit and clears the pending move
func (d *Dungeon) migrate(from *ecs.World, fromID ecs.EntityID, to *ecs.World, toID ecs.EntityID) {
	if src, ok := components.Get[components.HealthComponent](from, fromID, components.Health); ok {
		if dst, ok := components.Get[components.HealthComponent](to, toID, components.Health); ok {
			dst.Current = src.Current
		} else {
			to.AddComponent(toID, components.Health, &components.HealthComponent{Current: src.Current, Max: src.Max})
		}
	}

	if src, ok := components.Get[components.GoldComponent](from, fromID, components.Gold); ok {
		if dst, ok := components.Get[components.GoldComponent](to, toID, components.Gold); ok {
			dst.Amount = src.Amount
		} else {
			to.AddComponent(toID, components.Gold, &components.GoldComponent{Amount: src.Amount})
		}
	}

	if action, ok := components.Get[components.ActionComponent](to, toID, components.Action); ok {
		action.Move = false
	}

	if from.HasComponent(fromID, components.BarrierSuit) {
		to.AddComponent(toID, components.BarrierSuit, &components.BarrierSuitComponent{})
	}
}

func (d *Dungeon) carried(world *ecs.World, id ecs.EntityID) (health, gold int) {
	if h, ok := components.Get[components.HealthComponent](world, id, components.Health); ok {
		health = h.Current
	}
	if g, ok := components.Get[components.GoldComponent](world, id, components.Gold); ok {
		gold = g.Amount
	}
	return health, gold
}

// RegenerateCurrent repopulates the current floor in place from a new seed.
// The player keeps its identity, health and gold.
func (d *Dungeon) RegenerateCurrent(seed int64) error {
	floor := d.Current()
	if floor == nil {
		return errors.FailedPrecondition("no current floor to regenerate")
	}
	if err := d.generate(floor, seed); err != nil {
		return errors.Wrapf(err, "failed to regenerate floor %d", floor.Index)
	}
	if player := components.FindPlayer(floor.World); player != nil {
		d.player = player.ID
	}
	return nil
}

// Current returns the floor the player is on, or nil after victory
func (d *Dungeon) Current() *Floor {
	if d.Finished() {
		return nil
	}
	return d.floors[d.current]
}

// CurrentIndex returns the floor index; it equals FloorCount after victory
func (d *Dungeon) CurrentIndex() int {
	return d.current
}

// Floor returns floor i
func (d *Dungeon) Floor(i int) (*Floor, error) {
	if i < 0 || i >= len(d.floors) {
		return nil, errors.NotFoundf("floor %d does not exist", i)
	}
	return d.floors[i], nil
}

// FloorCount returns the number of floors
func (d *Dungeon) FloorCount() int {
	return len(d.floors)
}

// Player returns the player handle on the current floor
func (d *Dungeon) Player() ecs.EntityID {
	return d.player
}

// Finished reports whether the player has left the last floor
func (d *Dungeon) Finished() bool {
	return d.current >= len(d.floors)
}

// BarrierSuitFloor returns the floor holding the barrier suit, or -1
func (d *Dungeon) BarrierSuitFloor() int {
	return d.barrierSuitFloor
}

// Seed returns the dungeon seed
func (d *Dungeon) Seed() int64 {
	return d.seed
}

// Events returns the dungeon-level event manager
func (d *Dungeon) Events() *ecs.EventManager {
	return d.events
}
