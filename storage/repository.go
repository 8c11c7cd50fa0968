// Package storage persists floor snapshots so a generated or authored floor
// can be inspected or restored later
package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"dungeon-spawn/components"
	"dungeon-spawn/ecs"
	"dungeon-spawn/errors"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=storagemock dungeon-spawn/storage Repository

// Snapshot is a serializable copy of one floor's entities
type Snapshot struct {
	// ID is assigned on first save
	ID string `json:"id"`

	// Run groups the snapshots of one dungeon walk
	Run string `json:"run"`

	Floor     int              `json:"floor"`
	Seed      int64            `json:"seed"`
	Entities  []EntitySnapshot `json:"entities"`
	CreatedAt time.Time        `json:"createdAt"`
}

// EntitySnapshot holds one entity's tags and components keyed by component name
type EntitySnapshot struct {
	ID         ecs.EntityID               `json:"id"`
	Tags       []string                   `json:"tags,omitempty"`
	Components map[string]json.RawMessage `json:"components"`
}

// Capture copies every entity of world into a snapshot
func Capture(world *ecs.World, floor int, seed int64) (*Snapshot, error) {
	if world == nil {
		return nil, errors.InvalidArgument("world is required")
	}

	snap := &Snapshot{Floor: floor, Seed: seed}
	for _, entity := range world.GetAllEntities() {
		encoded, err := components.Encode(world, entity.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode entity %s", entity.ID)
		}

		tags := make([]string, 0, len(entity.Tags))
		for tag := range entity.Tags {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		snap.Entities = append(snap.Entities, EntitySnapshot{
			ID:         entity.ID,
			Tags:       tags,
			Components: encoded,
		})
	}
	return snap, nil
}

// Restore recreates the snapshot's entities in world. The world allocates
// fresh IDs; the returned map translates snapshot IDs to them. The snapshot
// is decoded into a scratch world first, so a bad entity leaves world empty.
func (s *Snapshot) Restore(world *ecs.World) (map[ecs.EntityID]ecs.EntityID, error) {
	if world == nil {
		return nil, errors.InvalidArgument("world is required")
	}
	if world.Count() > 0 {
		return nil, errors.FailedPreconditionf("world already holds %d entities", world.Count())
	}

	if _, err := s.restoreInto(ecs.NewWorld()); err != nil {
		return nil, err
	}
	return s.restoreInto(world)
}

func (s *Snapshot) restoreInto(world *ecs.World) (map[ecs.EntityID]ecs.EntityID, error) {
	ids := make(map[ecs.EntityID]ecs.EntityID, len(s.Entities))
	for _, saved := range s.Entities {
		entity := world.CreateEntity()
		for _, tag := range saved.Tags {
			world.TagEntity(entity.ID, tag)
		}
		if err := components.Decode(world, entity.ID, saved.Components); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument,
				"failed to decode entity "+saved.ID.String())
		}
		ids[saved.ID] = entity.ID
	}
	return ids, nil
}

// SaveInput contains parameters for saving a snapshot
type SaveInput struct {
	Snapshot *Snapshot
	TTL      time.Duration // zero uses the repository default
}

// SaveOutput contains the stored snapshot
type SaveOutput struct {
	Snapshot *Snapshot
}

// GetInput contains parameters for reading a snapshot
type GetInput struct {
	ID string
}

// GetOutput contains the snapshot read
type GetOutput struct {
	Snapshot *Snapshot
}

// ListInput contains parameters for listing snapshots
type ListInput struct {
	// Run limits the listing to one dungeon walk when set
	Run string
}

// ListOutput contains snapshot IDs in ascending order
type ListOutput struct {
	IDs []string
}

// DeleteInput contains parameters for deleting a snapshot
type DeleteInput struct {
	ID string
}

// Repository stores floor snapshots
type Repository interface {
	// Save stores a snapshot, assigning an ID when it has none
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get reads a snapshot by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List returns the IDs of stored snapshots
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, input DeleteInput) error
}
