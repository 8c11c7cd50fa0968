package spawners

import (
	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
)

// EntitySpawner builds fully componentized entities on one floor. Factories
// never fail: an unknown type yields an entity carrying only its mandatory
// components, and a warning is logged.
type EntitySpawner struct {
	world      *ecs.World
	templates  *data.TemplateManager
	log        logrus.FieldLogger
	duplicates int
}

// NewEntitySpawner creates a new entity spawner
func NewEntitySpawner(world *ecs.World, templates *data.TemplateManager, log logrus.FieldLogger) *EntitySpawner {
	if templates == nil {
		templates = data.DefaultTemplates()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EntitySpawner{
		world:     world,
		templates: templates,
		log:       log,
	}
}

// World returns the store entities are created in
func (s *EntitySpawner) World() *ecs.World {
	return s.world
}

// Templates returns the stat tables in use
func (s *EntitySpawner) Templates() *data.TemplateManager {
	return s.templates
}

// Duplicates returns how many attachments replaced an existing component
func (s *EntitySpawner) Duplicates() int {
	return s.duplicates
}

// attach adds a component and reports double attachment of one kind
func (s *EntitySpawner) attach(id ecs.EntityID, kind ecs.ComponentID, comp ecs.Component) {
	if s.world.AddComponent(id, kind, comp) {
		s.duplicates++
		s.log.WithFields(logrus.Fields{
			"entity":    id,
			"component": components.NameOf(kind),
		}).Warn("component attached twice; keeping the last value")
	}
}

func (s *EntitySpawner) create(tag string) *ecs.Entity {
	entity := s.world.CreateEntity()
	s.world.TagEntity(entity.ID, tag)
	return entity
}

// SpawnPlayer creates a player of the given race
func (s *EntitySpawner) SpawnPlayer(pos ecs.Cell, race string) *ecs.Entity {
	player := s.create(components.TagPlayer)

	if template, ok := s.templates.GetRace(race); ok {
		s.attach(player.ID, components.Health, components.NewHealthComponent(template.Health))
		s.attach(player.ID, components.Attack, &components.AttackComponent{Power: template.Attack})
		s.attach(player.ID, components.Defense, &components.DefenseComponent{Power: template.Defense})
		if template.GoldMultiplier != 0 {
			s.attach(player.ID, components.GoldMultiplier, &components.GoldMultiplierComponent{Factor: template.GoldMultiplier})
		}
		if template.AllPositive {
			s.attach(player.ID, components.AllPositive, &components.AllPositiveComponent{})
		}
	} else {
		s.log.WithField("race", race).Warn("unknown race, player has no stat block")
	}

	s.attach(player.ID, components.Display, components.NewDisplayComponent(data.PlayerGlyph))
	s.attach(player.ID, components.Position, components.NewPositionComponent(pos.Row, pos.Col))
	s.attach(player.ID, components.PotionEffect, &components.PotionEffectComponent{})
	s.attach(player.ID, components.PlayerRace, &components.PlayerRaceComponent{Race: race})
	s.attach(player.ID, components.Gold, &components.GoldComponent{})
	s.attach(player.ID, components.Moveable, &components.MoveableComponent{CanMove: true})
	s.attach(player.ID, components.Action, &components.ActionComponent{})
	s.attach(player.ID, components.Direction, components.NewDirectionComponent())

	s.log.WithFields(logrus.Fields{
		"race": race,
		"row":  pos.Row,
		"col":  pos.Col,
	}).Debug("player spawned")
	return player
}

// SpawnEnemy creates an enemy. The caller decides who carries the compass.
func (s *EntitySpawner) SpawnEnemy(pos ecs.Cell, enemyType string, withCompass bool) *ecs.Entity {
	enemy := s.create(components.TagEnemy)

	if template, ok := s.templates.GetEnemy(enemyType); ok {
		s.attach(enemy.ID, components.Display, components.NewDisplayComponent(template.Rune()))
		s.attach(enemy.ID, components.Health, components.NewHealthComponent(template.Health))
		s.attach(enemy.ID, components.Attack, &components.AttackComponent{Power: template.Attack})
		s.attach(enemy.ID, components.Defense, &components.DefenseComponent{Power: template.Defense})
		s.attach(enemy.ID, components.Gold, &components.GoldComponent{Amount: template.Gold})
		if template.Hostile {
			s.attach(enemy.ID, components.Hostile, &components.HostileComponent{})
		}
	} else {
		s.log.WithField("enemy", enemyType).Warn("unknown enemy type, enemy has no stat block")
	}

	s.attach(enemy.ID, components.Moveable, &components.MoveableComponent{CanMove: true})
	s.attach(enemy.ID, components.EnemyType, &components.EnemyTypeComponent{Type: enemyType})
	s.attach(enemy.ID, components.Position, components.NewPositionComponent(pos.Row, pos.Col))
	if withCompass {
		s.attach(enemy.ID, components.Compass, &components.CompassComponent{})
	}

	s.log.WithFields(logrus.Fields{
		"enemy":   enemyType,
		"row":     pos.Row,
		"col":     pos.Col,
		"compass": withCompass,
	}).Debug("enemy spawned")
	return enemy
}

// SpawnGuardian creates the guardian enemy bound to the tile it protects
func (s *EntitySpawner) SpawnGuardian(pos, guarded ecs.Cell, withCompass bool) *ecs.Entity {
	guardianType := data.EnemyDragon
	if template := s.templates.Guardian(); template != nil {
		guardianType = template.ID
	}
	guardian := s.SpawnEnemy(pos, guardianType, withCompass)
	s.attach(guardian.ID, components.GuardingPosition, &components.GuardingPositionComponent{
		Row: guarded.Row,
		Col: guarded.Col,
	})
	return guardian
}
