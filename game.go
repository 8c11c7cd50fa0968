package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/config"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
	"dungeon-spawn/generation"
	"dungeon-spawn/storage"
	"dungeon-spawn/systems"
)

// Game wires the configured board, templates and generator into a dungeon
// and drives it from the command line
type Game struct {
	cfg        *config.Config
	log        logrus.FieldLogger
	run        string
	layout     *data.Layout
	templates  *data.TemplateManager
	generator  *generation.Generator
	dungeon    *systems.Dungeon
	transition *systems.FloorTransitionSystem
	movement   *systems.MovementSystem
	render     *systems.RenderSystem
	messages   *systems.MessageLog
	repo       storage.Repository
}

// GameConfig holds the dependencies of a Game. Repository may be nil when
// snapshots are not used.
type GameConfig struct {
	Config     *config.Config
	Repository storage.Repository
	Logger     logrus.FieldLogger
}

// NewGame creates a game and enters the first floor
func NewGame(gc GameConfig) (*Game, error) {
	if gc.Config == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if gc.Logger == nil {
		gc.Logger = logrus.StandardLogger()
	}
	cfg := gc.Config

	layout, err := loadLayout(cfg.LayoutFile)
	if err != nil {
		return nil, err
	}
	templates, err := loadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	run := uuid.New().String()
	log := gc.Logger.WithField("run", run)

	generator, err := generation.NewGenerator(generation.GeneratorConfig{
		Layout:    layout,
		Templates: templates,
		Quotas: generation.Quotas{
			Potions:   cfg.Quotas.Potions,
			Treasures: cfg.Quotas.Treasures,
			Enemies:   cfg.Quotas.Enemies,
		},
		MaxAttempts: cfg.MaxAttempts,
		Logger:      log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create generator")
	}

	dungeon, err := systems.NewDungeon(systems.DungeonConfig{
		Generator:        generator,
		Floors:           cfg.Floors,
		Seed:             cfg.Seed,
		BarrierSuit:      cfg.BarrierSuit,
		BarrierSuitFloor: cfg.BarrierSuitFloor,
		Logger:           log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dungeon")
	}

	messages := systems.NewMessageLog()
	messages.Listen(dungeon.Events())

	game := &Game{
		cfg:        cfg,
		log:        log,
		run:        run,
		layout:     layout,
		templates:  templates,
		generator:  generator,
		dungeon:    dungeon,
		transition: systems.NewFloorTransitionSystem(log),
		movement:   systems.NewMovementSystem(layout, log),
		render:     systems.NewRenderSystem(layout, messages),
		messages:   messages,
		repo:       gc.Repository,
	}

	if err := game.initialize(); err != nil {
		return nil, err
	}
	return game, nil
}

func loadLayout(path string) (*data.Layout, error) {
	if path == "" {
		return data.DefaultLayout(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to open layout file")
	}
	defer f.Close()
	return data.ParseLayout(f)
}

func loadTemplates(dir string) (*data.TemplateManager, error) {
	if dir == "" {
		return data.DefaultTemplates(), nil
	}
	templates := data.NewTemplateManager()
	if err := templates.LoadTemplatesFromDirectory(dir); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to load templates")
	}
	return templates, nil
}

// initialize loads the authored floors, if any, and places the player on floor 1
func (g *Game) initialize() error {
	if g.cfg.FloorsFile != "" {
		f, err := os.Open(g.cfg.FloorsFile)
		if err != nil {
			return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to open floors file")
		}
		defer f.Close()

		loader := generation.NewFloorLoader(g.layout, g.templates, g.log)
		if err := g.dungeon.LoadAuthored(f, loader, g.cfg.Race); err != nil {
			return err
		}
	}
	return g.dungeon.Start(g.cfg.Race)
}

// Update runs one tick and reports whether the player took the stairs.
// A pending move that does not reach the stairs is left to the movement system.
func (g *Game) Update() (bool, error) {
	took, err := g.transition.Update(g.dungeon)
	if err != nil || took {
		return took, err
	}
	g.movement.Update(g.dungeon)
	return false, nil
}

// Move queues a step towards facing and runs one tick
func (g *Game) Move(facing string) (bool, error) {
	if _, ok := data.DirectionMap[facing]; !ok {
		return false, errors.InvalidArgumentf("unknown direction %q", facing)
	}
	floor := g.dungeon.Current()
	if floor == nil {
		return false, errors.FailedPrecondition("dungeon is finished")
	}

	player := g.dungeon.Player()
	if dir, ok := components.Get[components.DirectionComponent](floor.World, player, components.Direction); ok {
		dir.Facing = facing
	}
	if action, ok := components.Get[components.ActionComponent](floor.World, player, components.Action); ok {
		action.Move = true
	}
	return g.Update()
}

// Descend walks the player onto the stairs of the current floor
func (g *Game) Descend() error {
	if err := g.transition.Approach(g.dungeon); err != nil {
		return err
	}
	took, err := g.Update()
	if err != nil {
		return err
	}
	if !took {
		return errors.Internal("player did not reach the stairs")
	}
	return nil
}

// DescendTo walks down until floor index is current
func (g *Game) DescendTo(index int) error {
	if index < 0 || index >= g.dungeon.FloorCount() {
		return errors.InvalidArgumentf("floor %d is outside 1..%d", index+1, g.dungeon.FloorCount())
	}
	for g.dungeon.CurrentIndex() < index {
		if err := g.Descend(); err != nil {
			return err
		}
	}
	return nil
}

// Walk draws every floor and descends until the dungeon is finished. With
// save set each floor is stored as a snapshot before leaving it.
func (g *Game) Walk(ctx context.Context, w io.Writer, save bool) error {
	for !g.dungeon.Finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.Draw(w); err != nil {
			return err
		}
		if save {
			snap, err := g.SaveSnapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Saved floor %d as %s\n", snap.Floor+1, snap.ID)
		}
		if err := g.Descend(); err != nil {
			return err
		}
	}

	if recent := g.messages.RecentMessages(1); len(recent) > 0 {
		fmt.Fprintln(w, recent[0])
	}
	return nil
}

// Draw renders the current floor
func (g *Game) Draw(w io.Writer) error {
	floor := g.dungeon.Current()
	if floor == nil {
		return errors.FailedPrecondition("dungeon is finished")
	}
	return g.render.Draw(w, floor.World, floor.Index)
}

// SaveSnapshot stores the current floor in the repository
func (g *Game) SaveSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	if g.repo == nil {
		return nil, errors.FailedPrecondition("no snapshot repository configured")
	}
	floor := g.dungeon.Current()
	if floor == nil {
		return nil, errors.FailedPrecondition("dungeon is finished")
	}

	seed := g.dungeon.Seed() + int64(floor.Index)
	if floor.Result != nil {
		seed = floor.Result.Seed
	}
	snap, err := storage.Capture(floor.World, floor.Index, seed)
	if err != nil {
		return nil, err
	}
	snap.Run = g.run

	out, err := g.repo.Save(ctx, storage.SaveInput{Snapshot: snap, TTL: g.cfg.Redis.TTL})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save floor %d", floor.Index)
	}
	g.log.WithFields(logrus.Fields{"floor": floor.Index, "snapshot": out.Snapshot.ID}).Info("floor snapshot saved")
	return out.Snapshot, nil
}

// ShowSnapshot reads a stored floor and renders it on this game's board
func (g *Game) ShowSnapshot(ctx context.Context, id string, w io.Writer) error {
	if g.repo == nil {
		return errors.FailedPrecondition("no snapshot repository configured")
	}
	out, err := g.repo.Get(ctx, storage.GetInput{ID: id})
	if err != nil {
		return err
	}

	world := ecs.NewWorld()
	if _, err := out.Snapshot.Restore(world); err != nil {
		return err
	}
	fmt.Fprintf(w, "Snapshot %s (run %s, seed %d)\n", out.Snapshot.ID, out.Snapshot.Run, out.Snapshot.Seed)
	return systems.NewRenderSystem(g.layout, nil).Draw(w, world, out.Snapshot.Floor)
}

// Summary writes one line per populated floor with its entity counts
func (g *Game) Summary(w io.Writer) error {
	for i := 0; i < g.dungeon.FloorCount(); i++ {
		floor, err := g.dungeon.Floor(i)
		if err != nil {
			return err
		}
		if !floor.Generated {
			fmt.Fprintf(w, "Floor %d: not generated yet\n", i+1)
			continue
		}
		counts := countTags(floor.World)
		fmt.Fprintf(w, "Floor %d: %d enemies, %d potions, %d treasures, %d items\n",
			i+1, counts[components.TagEnemy], counts[components.TagPotion], counts[components.TagTreasure], counts[components.TagItem])
	}
	return nil
}

func countTags(world *ecs.World) map[string]int {
	counts := make(map[string]int)
	for _, entity := range world.GetAllEntities() {
		for tag := range entity.Tags {
			counts[tag]++
		}
	}
	return counts
}

// Run returns the identifier shared by this game's snapshots
func (g *Game) Run() string {
	return g.run
}

// Dungeon exposes the dungeon for inspection
func (g *Game) Dungeon() *systems.Dungeon {
	return g.dungeon
}
