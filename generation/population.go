package generation

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
	"dungeon-spawn/spawners"
)

// Quotas are the per-floor population counts
type Quotas struct {
	Potions   int
	Treasures int
	Enemies   int // shared by guardians and the random wave
}

// DefaultQuotas returns the standard floor quotas
func DefaultQuotas() Quotas {
	return Quotas{Potions: 10, Treasures: 10, Enemies: 20}
}

// GeneratorConfig configures a Generator
type GeneratorConfig struct {
	Layout      *data.Layout
	Templates   *data.TemplateManager
	Quotas      Quotas
	MaxAttempts int
	Logger      logrus.FieldLogger
}

// Validate checks the generator configuration
func (c *GeneratorConfig) Validate() error {
	if c.Layout == nil {
		return errors.InvalidArgument("layout is required")
	}
	if c.Quotas.Potions < 0 || c.Quotas.Treasures < 0 || c.Quotas.Enemies < 0 {
		return errors.InvalidArgument("quotas must not be negative")
	}
	return nil
}

// Generator populates floors. It holds only immutable configuration; all
// random state lives in the roller created for each call to Generate.
type Generator struct {
	layout      *data.Layout
	templates   *data.TemplateManager
	quotas      Quotas
	maxAttempts int
	log         logrus.FieldLogger
	treasures   *spawners.WeightedTable[int]
	enemies     *spawners.WeightedTable[string]
	potions     *spawners.WeightedTable[string]
}

// NewGenerator creates a floor generator
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Templates == nil {
		cfg.Templates = data.DefaultTemplates()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Generator{
		layout:      cfg.Layout,
		templates:   cfg.Templates,
		quotas:      cfg.Quotas,
		maxAttempts: cfg.MaxAttempts,
		log:         cfg.Logger,
		treasures:   spawners.TreasureTable(cfg.Templates),
		enemies:     spawners.EnemyTable(cfg.Templates),
		potions:     spawners.PotionTable(cfg.Templates),
	}, nil
}

// Layout returns the terrain floors are generated on
func (g *Generator) Layout() *data.Layout {
	return g.layout
}

// Templates returns the stat tables used by the generator
func (g *Generator) Templates() *data.TemplateManager {
	return g.templates
}

// GenerateOptions are the per-floor inputs
type GenerateOptions struct {
	Floor       int
	Seed        int64
	Race        string // used only when the floor has no player yet
	BarrierSuit bool
}

// EnemySlot is one planned enemy. Slots are planned before any enemy is
// created so the compass holder can be chosen over the whole wave.
type EnemySlot struct {
	Type     string
	Cell     ecs.Cell
	Guarding *ecs.Cell
	Compass  bool
	Entity   ecs.EntityID
}

// Result summarizes a generated floor
type Result struct {
	Floor         int
	Seed          int64
	Player        ecs.EntityID
	PlayerRoom    int
	Stairs        ecs.EntityID
	StairsRoom    int
	Potions       []ecs.EntityID
	Treasures     []ecs.EntityID
	BarrierSuit   ecs.EntityID
	Slots         []EnemySlot
	CompassHolder ecs.EntityID
}

// floorPlan carries the state of one Generate call
type floorPlan struct {
	world     *ecs.World
	roller    dice.Roller
	sampler   *Sampler
	spawner   *spawners.EntitySpawner
	remaining int
	result    *Result
	log       logrus.FieldLogger
}

// Generate clears every non-player entity from world and repopulates it.
// The same seed, layout and options always produce the same floor.
func (g *Generator) Generate(world *ecs.World, opts GenerateOptions) (*Result, error) {
	if g.layout.RoomCount() < 2 {
		return nil, errors.InvalidArgumentf("layout has %d room(s), need at least 2", g.layout.RoomCount())
	}

	roller := NewSeededRoller(opts.Seed)
	log := g.log.WithFields(logrus.Fields{"floor": opts.Floor, "seed": opts.Seed})
	plan := &floorPlan{
		world:     world,
		roller:    roller,
		sampler:   NewSampler(g.layout, world, roller, g.maxAttempts),
		spawner:   spawners.NewEntitySpawner(world, g.templates, log),
		remaining: g.quotas.Enemies,
		result:    &Result{Floor: opts.Floor, Seed: opts.Seed},
		log:       log,
	}

	purged := g.purge(world)
	log.WithField("removed", purged).Debug("floor purged")

	steps := []struct {
		name string
		run  func(*floorPlan, GenerateOptions) error
	}{
		{name: "place player", run: g.placePlayer},
		{name: "place stairs", run: g.placeStairs},
		{name: "place potions", run: g.placePotions},
		{name: "place barrier suit", run: g.placeBarrierSuit},
		{name: "place treasure", run: g.placeTreasure},
		{name: "plan enemies", run: g.planEnemies},
		{name: "assign compass", run: g.assignCompass},
	}
	for _, step := range steps {
		if err := step.run(plan, opts); err != nil {
			return nil, errors.Wrapf(err, "failed to %s on floor %d", step.name, opts.Floor)
		}
	}
	g.materialize(plan)

	result := plan.result
	log.WithFields(logrus.Fields{
		"potions":   len(result.Potions),
		"treasures": len(result.Treasures),
		"enemies":   len(result.Slots),
		"compass":   result.CompassHolder,
	}).Info("floor generated")

	world.EmitEvent(FloorGeneratedEvent{Floor: opts.Floor, Seed: opts.Seed, Result: result})
	return result, nil
}

// purge removes every entity that is not a player
func (g *Generator) purge(world *ecs.World) int {
	removed := 0
	for _, entity := range world.GetAllEntities() {
		if world.HasComponent(entity.ID, components.PlayerRace) {
			continue
		}
		world.RemoveEntity(entity.ID)
		removed++
	}
	return removed
}

func (g *Generator) placePlayer(p *floorPlan, opts GenerateOptions) error {
	cell, room, err := p.sampler.RandomPosition()
	if err != nil {
		return err
	}

	if player := components.FindPlayer(p.world); player != nil {
		p.world.Relocate(player.ID, components.Position, cell)
		p.result.Player = player.ID
	} else {
		race := opts.Race
		if race == "" {
			race = data.DefaultRace
		}
		p.result.Player = p.spawner.SpawnPlayer(cell, race).ID
	}
	p.result.PlayerRoom = room
	return nil
}

func (g *Generator) placeStairs(p *floorPlan, _ GenerateOptions) error {
	cell, room, err := p.sampler.RandomPositionOutsideRoom(p.result.PlayerRoom)
	if err != nil {
		return err
	}
	p.result.Stairs = p.spawner.SpawnItem(cell, data.ItemStairs, false).ID
	p.result.StairsRoom = room
	return nil
}

func (g *Generator) placePotions(p *floorPlan, _ GenerateOptions) error {
	for i := 0; i < g.quotas.Potions; i++ {
		cell, _, err := p.sampler.RandomPosition()
		if err != nil {
			return err
		}
		code, err := g.potions.Roll(p.roller)
		if err != nil {
			return err
		}
		p.result.Potions = append(p.result.Potions, p.spawner.SpawnPotion(cell, code).ID)
	}
	return nil
}

func (g *Generator) placeBarrierSuit(p *floorPlan, opts GenerateOptions) error {
	if !opts.BarrierSuit {
		return nil
	}
	cell, _, err := p.sampler.RandomPosition()
	if err != nil {
		return err
	}
	p.result.BarrierSuit = p.spawner.SpawnItem(cell, data.ItemBarrierSuit, false).ID
	return g.planGuardian(p, cell)
}

func (g *Generator) placeTreasure(p *floorPlan, _ GenerateOptions) error {
	for i := 0; i < g.quotas.Treasures; i++ {
		cell, _, err := p.sampler.RandomPosition()
		if err != nil {
			return err
		}
		value, err := g.treasures.Roll(p.roller)
		if err != nil {
			return err
		}
		treasure := p.spawner.SpawnTreasure(cell, value)
		p.result.Treasures = append(p.result.Treasures, treasure.ID)

		if p.spawner.IsHoard(value) {
			if err := g.planGuardian(p, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

// planGuardian reserves a tile next to a guarded item. Guardians always
// spawn, even when the shared enemy quota is already spent.
func (g *Generator) planGuardian(p *floorPlan, guarded ecs.Cell) error {
	cell, err := p.sampler.GuardPosition(guarded)
	if err != nil {
		return err
	}
	p.sampler.Reserve(cell)

	guardian := data.EnemyDragon
	if template := g.templates.Guardian(); template != nil {
		guardian = template.ID
	}
	target := guarded
	p.result.Slots = append(p.result.Slots, EnemySlot{Type: guardian, Cell: cell, Guarding: &target})
	if p.remaining > 0 {
		p.remaining--
	}
	return nil
}

func (g *Generator) planEnemies(p *floorPlan, _ GenerateOptions) error {
	for ; p.remaining > 0; p.remaining-- {
		cell, _, err := p.sampler.RandomPosition()
		if err != nil {
			return err
		}
		enemyType, err := g.enemies.Roll(p.roller)
		if err != nil {
			return err
		}
		p.sampler.Reserve(cell)
		p.result.Slots = append(p.result.Slots, EnemySlot{Type: enemyType, Cell: cell})
	}
	return nil
}

// assignCompass gives the compass to one slot drawn uniformly from every
// slot whose type may carry it
func (g *Generator) assignCompass(p *floorPlan, _ GenerateOptions) error {
	var eligible []int
	for i, slot := range p.result.Slots {
		if template, ok := g.templates.GetEnemy(slot.Type); ok && template.NoCompass {
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		p.log.Warn("no enemy can carry the compass")
		return nil
	}

	i, err := Intn(p.roller, len(eligible))
	if err != nil {
		return err
	}
	p.result.Slots[eligible[i]].Compass = true
	return nil
}

func (g *Generator) materialize(p *floorPlan) {
	for i := range p.result.Slots {
		slot := &p.result.Slots[i]
		var enemy *ecs.Entity
		if slot.Guarding != nil {
			enemy = p.spawner.SpawnGuardian(slot.Cell, *slot.Guarding, slot.Compass)
		} else {
			enemy = p.spawner.SpawnEnemy(slot.Cell, slot.Type, slot.Compass)
		}
		slot.Entity = enemy.ID
		if slot.Compass {
			p.result.CompassHolder = enemy.ID
		}
	}
	p.sampler.Reset()
}
