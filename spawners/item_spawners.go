package spawners

import (
	"github.com/sirupsen/logrus"

	"dungeon-spawn/components"
	"dungeon-spawn/data"
	"dungeon-spawn/ecs"
)

// SpawnPotion creates a potion with the given two-letter code
func (s *EntitySpawner) SpawnPotion(pos ecs.Cell, code string) *ecs.Entity {
	if !s.knownPotion(code) {
		s.log.WithField("potion", code).Warn("unknown potion code")
	}

	potion := s.create(components.TagPotion)
	s.world.TagEntity(potion.ID, components.TagItem)

	s.attach(potion.ID, components.Position, components.NewPositionComponent(pos.Row, pos.Col))
	s.attach(potion.ID, components.Display, components.NewDisplayComponent(data.PotionGlyph))
	s.attach(potion.ID, components.PotionType, &components.PotionTypeComponent{Code: code})
	s.attach(potion.ID, components.CanPickup, &components.CanPickupComponent{})

	s.log.WithFields(logrus.Fields{"potion": code, "row": pos.Row, "col": pos.Col}).Debug("potion spawned")
	return potion
}

func (s *EntitySpawner) knownPotion(code string) bool {
	for _, potion := range s.templates.Potions() {
		if potion.Code == code {
			return true
		}
	}
	return false
}

// SpawnTreasure creates a treasure pile. Hoards cannot be picked up until
// their guardian is dealt with.
func (s *EntitySpawner) SpawnTreasure(pos ecs.Cell, value int) *ecs.Entity {
	template, known := s.templates.GetTreasure(value)
	if !known {
		s.log.WithField("value", value).Warn("unknown treasure value")
	}

	treasure := s.create(components.TagTreasure)
	s.world.TagEntity(treasure.ID, components.TagItem)

	s.attach(treasure.ID, components.ItemType, &components.ItemTypeComponent{Type: data.ItemTreasure})
	s.attach(treasure.ID, components.Position, components.NewPositionComponent(pos.Row, pos.Col))
	s.attach(treasure.ID, components.Display, components.NewDisplayComponent(data.TreasureGlyph))
	s.attach(treasure.ID, components.TreasureValue, &components.TreasureComponent{Value: value})
	if !known || !template.Hoard {
		s.attach(treasure.ID, components.CanPickup, &components.CanPickupComponent{})
	}

	s.log.WithFields(logrus.Fields{"value": value, "row": pos.Row, "col": pos.Col}).Debug("treasure spawned")
	return treasure
}

// IsHoard reports whether a treasure value is a guarded hoard
func (s *EntitySpawner) IsHoard(value int) bool {
	template, ok := s.templates.GetTreasure(value)
	return ok && template.Hoard
}

// SpawnItem creates a compass, barrier suit or stairs
func (s *EntitySpawner) SpawnItem(pos ecs.Cell, itemType string, withCompass bool) *ecs.Entity {
	item := s.create(components.TagItem)

	s.attach(item.ID, components.Position, components.NewPositionComponent(pos.Row, pos.Col))
	s.attach(item.ID, components.ItemType, &components.ItemTypeComponent{Type: itemType})

	template, ok := s.templates.GetItem(itemType)
	if !ok {
		s.log.WithField("item", itemType).Warn("unknown item type")
	} else {
		s.attach(item.ID, components.Display, components.NewDisplayComponent(template.Rune()))
		if template.CanPickup {
			s.attach(item.ID, components.CanPickup, &components.CanPickupComponent{})
		}
		if template.BarrierSuit {
			s.attach(item.ID, components.BarrierSuit, &components.BarrierSuitComponent{})
		}
		if template.Stairs {
			s.attach(item.ID, components.Stairs, &components.StairsComponent{})
		}
	}
	if withCompass || (ok && template.Compass) {
		s.attach(item.ID, components.Compass, &components.CompassComponent{})
	}

	s.log.WithFields(logrus.Fields{"item": itemType, "row": pos.Row, "col": pos.Col}).Debug("item spawned")
	return item
}
