package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"dungeon-spawn/errors"
	"dungeon-spawn/storage"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      storage.Repository
	ctx       context.Context
	now       time.Time
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.miniRedis = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	repo, err := storage.NewRedis(&storage.RedisConfig{
		Client:    s.client,
		KeyPrefix: "test:",
		TTL:       time.Hour,
		Now:       func() time.Time { return s.now },
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RedisRepositoryTestSuite) TestNewRedis() {
	testCases := []struct {
		name   string
		config *storage.RedisConfig
		errMsg string
	}{
		{name: "nil config", config: nil, errMsg: "config cannot be nil"},
		{name: "nil client", config: &storage.RedisConfig{}, errMsg: "client cannot be nil"},
		{name: "negative ttl", config: &storage.RedisConfig{Client: s.client, TTL: -time.Second}, errMsg: "ttl cannot be negative"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			repo, err := storage.NewRedis(tc.config)
			s.Require().Error(err)
			s.Contains(err.Error(), tc.errMsg)
			s.True(errors.IsInvalidArgument(err))
			s.Nil(repo)
		})
	}
}

func (s *RedisRepositoryTestSuite) snapshot(run string, floor int) *storage.Snapshot {
	return &storage.Snapshot{
		Run:   run,
		Floor: floor,
		Seed:  int64(100 + floor),
		Entities: []storage.EntitySnapshot{
			{ID: 1, Tags: []string{"player"}, Components: nil},
		},
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAssignsIDAndTimestamp() {
	out, err := s.repo.Save(s.ctx, storage.SaveInput{Snapshot: s.snapshot("run-a", 0)})
	s.Require().NoError(err)

	s.NotEmpty(out.Snapshot.ID)
	s.Equal(s.now, out.Snapshot.CreatedAt)
	s.True(s.miniRedis.Exists("test:snapshot:" + out.Snapshot.ID))
	s.Equal(time.Hour, s.miniRedis.TTL("test:snapshot:"+out.Snapshot.ID))

	got, err := s.repo.Get(s.ctx, storage.GetInput{ID: out.Snapshot.ID})
	s.Require().NoError(err)
	s.Equal(out.Snapshot.ID, got.Snapshot.ID)
	s.Equal("run-a", got.Snapshot.Run)
	s.Equal(int64(100), got.Snapshot.Seed)
	s.Require().Len(got.Snapshot.Entities, 1)
	s.Equal([]string{"player"}, got.Snapshot.Entities[0].Tags)
}

func (s *RedisRepositoryTestSuite) TestSaveKeepsExistingID() {
	snap := s.snapshot("", 2)
	snap.ID = "fixed"

	out, err := s.repo.Save(s.ctx, storage.SaveInput{Snapshot: snap, TTL: time.Minute})
	s.Require().NoError(err)
	s.Equal("fixed", out.Snapshot.ID)
	s.Equal(time.Minute, s.miniRedis.TTL("test:snapshot:fixed"))
	s.Empty(snap.CreatedAt, "input snapshot is not modified")
}

func (s *RedisRepositoryTestSuite) TestSaveRejectsNil() {
	_, err := s.repo.Save(s.ctx, storage.SaveInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, storage.GetInput{ID: "nope"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, storage.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestGetCorrupt() {
	s.Require().NoError(s.miniRedis.Set("test:snapshot:bad", "{not json"))

	_, err := s.repo.Get(s.ctx, storage.GetInput{ID: "bad"})
	s.Require().Error(err)
	s.False(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListByRunAndExpiry() {
	ids := map[string][]string{}
	for _, run := range []string{"run-a", "run-b"} {
		for floor := 0; floor < 2; floor++ {
			out, err := s.repo.Save(s.ctx, storage.SaveInput{Snapshot: s.snapshot(run, floor)})
			s.Require().NoError(err)
			ids[run] = append(ids[run], out.Snapshot.ID)
		}
	}

	all, err := s.repo.List(s.ctx, storage.ListInput{})
	s.Require().NoError(err)
	s.Len(all.IDs, 4)
	s.IsNonDecreasing(all.IDs)

	runA, err := s.repo.List(s.ctx, storage.ListInput{Run: "run-a"})
	s.Require().NoError(err)
	s.ElementsMatch(ids["run-a"], runA.IDs)

	_, err = s.repo.Save(s.ctx, storage.SaveInput{Snapshot: s.snapshot("", 9), TTL: 3 * time.Hour})
	s.Require().NoError(err)
	s.miniRedis.FastForward(2 * time.Hour)

	all, err = s.repo.List(s.ctx, storage.ListInput{})
	s.Require().NoError(err)
	s.Len(all.IDs, 1)
	members, err := s.miniRedis.SMembers("test:snapshots")
	s.Require().NoError(err)
	s.Equal(all.IDs, members)
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	out, err := s.repo.Save(s.ctx, storage.SaveInput{Snapshot: s.snapshot("run-a", 0)})
	s.Require().NoError(err)
	id := out.Snapshot.ID

	s.Require().NoError(s.repo.Delete(s.ctx, storage.DeleteInput{ID: id}))

	_, err = s.repo.Get(s.ctx, storage.GetInput{ID: id})
	s.True(errors.IsNotFound(err))
	listed, err := s.repo.List(s.ctx, storage.ListInput{Run: "run-a"})
	s.Require().NoError(err)
	s.Empty(listed.IDs)

	err = s.repo.Delete(s.ctx, storage.DeleteInput{ID: id})
	s.True(errors.IsNotFound(err))
}

func TestDefaultsApply(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo, err := storage.NewRedis(&storage.RedisConfig{Client: client})
	if err != nil {
		t.Fatal(err)
	}
	out, err := repo.Save(context.Background(), storage.SaveInput{Snapshot: &storage.Snapshot{ID: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("dungeon:snapshot:x") {
		t.Fatalf("expected default prefix key for %s", out.Snapshot.ID)
	}
	if got := mr.TTL("dungeon:snapshot:x"); got != 24*time.Hour {
		t.Fatalf("expected default ttl, got %s", got)
	}
}
