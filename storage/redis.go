package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"dungeon-spawn/errors"
)

const (
	defaultKeyPrefix = "dungeon:"
	defaultTTL       = 24 * time.Hour

	errSnapshotNil = "snapshot cannot be nil"
	errIDEmpty     = "snapshot ID cannot be empty"
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client    redis.UniversalClient
	KeyPrefix string
	TTL       time.Duration
	Now       func() time.Time
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	if c.TTL < 0 {
		return errors.InvalidArgument("ttl cannot be negative")
	}
	return nil
}

type redisRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedis creates a snapshot repository backed by Redis
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo := &redisRepository{
		client: cfg.Client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}
	if repo.prefix == "" {
		repo.prefix = defaultKeyPrefix
	}
	if repo.ttl == 0 {
		repo.ttl = defaultTTL
	}
	if repo.now == nil {
		repo.now = time.Now
	}
	return repo, nil
}

var _ Repository = (*redisRepository)(nil)

// Save stores the snapshot as JSON and records its ID in the index set
func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument(errSnapshotNil)
	}

	snap := *input.Snapshot
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = r.now().UTC()
	}

	data, err := json.Marshal(&snap)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot %s", snap.ID)
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = r.ttl
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.snapshotKey(snap.ID), data, ttl)
	pipe.SAdd(ctx, r.indexKey(), snap.ID)
	if snap.Run != "" {
		pipe.SAdd(ctx, r.runKey(snap.Run), snap.ID)
		pipe.Expire(ctx, r.runKey(snap.Run), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to store snapshot in Redis")
	}

	return &SaveOutput{Snapshot: &snap}, nil
}

// Get reads one snapshot
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	data, err := r.client.Get(ctx, r.snapshotKey(input.ID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("snapshot %s not found", input.ID)
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get snapshot from Redis")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal snapshot %s", input.ID)
	}
	return &GetOutput{Snapshot: &snap}, nil
}

// List returns live snapshot IDs. IDs whose snapshot expired are pruned
// from the index as they are found.
func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	setKey := r.indexKey()
	if input.Run != "" {
		setKey = r.runKey(input.Run)
	}

	members, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to list snapshots")
	}
	sort.Strings(members)

	ids := make([]string, 0, len(members))
	for _, id := range members {
		exists, err := r.client.Exists(ctx, r.snapshotKey(id)).Result()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to check snapshot")
		}
		if exists == 0 {
			r.client.SRem(ctx, setKey, id)
			continue
		}
		ids = append(ids, id)
	}
	return &ListOutput{IDs: ids}, nil
}

// Delete removes a snapshot and its index entries
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) error {
	if input.ID == "" {
		return errors.InvalidArgument(errIDEmpty)
	}

	out, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.snapshotKey(input.ID))
	pipe.SRem(ctx, r.indexKey(), input.ID)
	if out.Snapshot.Run != "" {
		pipe.SRem(ctx, r.runKey(out.Snapshot.Run), input.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete snapshot from Redis")
	}
	return nil
}

func (r *redisRepository) snapshotKey(id string) string {
	return fmt.Sprintf("%ssnapshot:%s", r.prefix, id)
}

func (r *redisRepository) indexKey() string {
	return r.prefix + "snapshots"
}

func (r *redisRepository) runKey(run string) string {
	return r.prefix + "run:" + strings.ToLower(run)
}
