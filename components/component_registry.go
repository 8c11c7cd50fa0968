package components

import (
	"encoding/json"
	"fmt"
	"strings"

	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
)

// componentNameMap maps stable component names to their IDs
var componentNameMap = map[string]ecs.ComponentID{
	"Position":         Position,
	"Display":          Display,
	"Health":           Health,
	"Attack":           Attack,
	"Defense":          Defense,
	"Gold":             Gold,
	"GoldMultiplier":   GoldMultiplier,
	"PlayerRace":       PlayerRace,
	"EnemyType":        EnemyType,
	"ItemType":         ItemType,
	"PotionType":       PotionType,
	"TreasureValue":    TreasureValue,
	"Moveable":         Moveable,
	"Action":           Action,
	"Direction":        Direction,
	"Hostile":          Hostile,
	"CanPickup":        CanPickup,
	"Stairs":           Stairs,
	"Compass":          Compass,
	"BarrierSuit":      BarrierSuit,
	"AllPositive":      AllPositive,
	"PotionEffect":     PotionEffect,
	"GuardingPosition": GuardingPosition,
}

var componentIDNames = func() map[ecs.ComponentID]string {
	names := make(map[ecs.ComponentID]string, len(componentNameMap))
	for name, id := range componentNameMap {
		names[id] = name
	}
	return names
}()

// GetComponentIDByName returns the ComponentID for a given component name string
// The lookup is case-insensitive
func GetComponentIDByName(name string) (ecs.ComponentID, bool) {
	if id, exists := componentNameMap[name]; exists {
		return id, true
	}

	for compName, id := range componentNameMap {
		if strings.EqualFold(compName, name) {
			return id, true
		}
	}

	return 0, false
}

// NameOf returns the stable name of a component kind
func NameOf(id ecs.ComponentID) string {
	if name, ok := componentIDNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Component(%d)", id)
}

// Kinds returns every registered component kind in declaration order
func Kinds() []ecs.ComponentID {
	kinds := make([]ecs.ComponentID, 0, len(componentNameMap))
	for id := Position; id <= GuardingPosition; id++ {
		kinds = append(kinds, id)
	}
	return kinds
}

// newZero returns an empty component of the given kind for decoding
func newZero(id ecs.ComponentID) (ecs.Component, error) {
	switch id {
	case Position:
		return &PositionComponent{}, nil
	case Display:
		return &DisplayComponent{}, nil
	case Health:
		return &HealthComponent{}, nil
	case Attack:
		return &AttackComponent{}, nil
	case Defense:
		return &DefenseComponent{}, nil
	case Gold:
		return &GoldComponent{}, nil
	case GoldMultiplier:
		return &GoldMultiplierComponent{}, nil
	case PlayerRace:
		return &PlayerRaceComponent{}, nil
	case EnemyType:
		return &EnemyTypeComponent{}, nil
	case ItemType:
		return &ItemTypeComponent{}, nil
	case PotionType:
		return &PotionTypeComponent{}, nil
	case TreasureValue:
		return &TreasureComponent{}, nil
	case Moveable:
		return &MoveableComponent{}, nil
	case Action:
		return &ActionComponent{}, nil
	case Direction:
		return &DirectionComponent{}, nil
	case Hostile:
		return &HostileComponent{}, nil
	case CanPickup:
		return &CanPickupComponent{}, nil
	case Stairs:
		return &StairsComponent{}, nil
	case Compass:
		return &CompassComponent{}, nil
	case BarrierSuit:
		return &BarrierSuitComponent{}, nil
	case AllPositive:
		return &AllPositiveComponent{}, nil
	case PotionEffect:
		return &PotionEffectComponent{}, nil
	case GuardingPosition:
		return &GuardingPositionComponent{}, nil
	}
	return nil, errors.InvalidArgumentf("unknown component kind %d", id)
}

// Encode renders every component of an entity keyed by component name
func Encode(world *ecs.World, id ecs.EntityID) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	for _, kind := range Kinds() {
		comp, ok := world.GetComponent(id, kind)
		if !ok {
			continue
		}
		raw, err := json.Marshal(comp)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s", NameOf(kind))
		}
		out[NameOf(kind)] = raw
	}
	return out, nil
}

// Decode attaches the named components to an entity in kind order. Every
// name and payload is checked before anything is attached.
func Decode(world *ecs.World, id ecs.EntityID, encoded map[string]json.RawMessage) error {
	decoded := make(map[ecs.ComponentID]ecs.Component, len(encoded))
	for name, raw := range encoded {
		kind, ok := GetComponentIDByName(name)
		if !ok {
			return errors.InvalidArgumentf("unknown component name %q", name)
		}
		comp, err := newZero(kind)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, comp); err != nil {
			return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode "+name)
		}
		decoded[kind] = comp
	}

	for _, kind := range Kinds() {
		if comp, ok := decoded[kind]; ok {
			world.AddComponent(id, kind, comp)
		}
	}
	return nil
}
