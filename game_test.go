package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"dungeon-spawn/config"
	"dungeon-spawn/errors"
	"dungeon-spawn/logger"
	"dungeon-spawn/storage"
	storagemock "dungeon-spawn/storage/mock"
)

type GameTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *storagemock.MockRepository
	cfg      *config.Config
	ctx      context.Context
}

func TestGameSuite(t *testing.T) {
	suite.Run(t, new(GameTestSuite))
}

func (s *GameTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = storagemock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()

	v := config.New()
	v.Set("seed", 21)
	v.Set("floors", 3)
	cfg, err := config.FromViper(v)
	s.Require().NoError(err)
	s.cfg = cfg
}

func (s *GameTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GameTestSuite) newGame() *Game {
	game, err := NewGame(GameConfig{Config: s.cfg, Repository: s.mockRepo, Logger: logger.Discard()})
	s.Require().NoError(err)
	return game
}

func (s *GameTestSuite) TestNewGameStartsOnFirstFloor() {
	game := s.newGame()

	s.Equal(0, game.Dungeon().CurrentIndex())
	s.NotZero(game.Dungeon().Player())
	s.NotEmpty(game.Run())

	var out bytes.Buffer
	s.Require().NoError(game.Draw(&out))
	s.Contains(out.String(), "@")
	s.Contains(out.String(), "Floor 1")
	s.Contains(out.String(), "Action: Entered floor 1 with 140 HP")
}

func (s *GameTestSuite) TestNewGameRequiresConfig() {
	_, err := NewGame(GameConfig{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *GameTestSuite) TestDescendTo() {
	game := s.newGame()

	s.Require().NoError(game.DescendTo(2))
	s.Equal(2, game.Dungeon().CurrentIndex())

	err := game.DescendTo(3)
	s.True(errors.IsInvalidArgument(err))
}

func (s *GameTestSuite) TestWalkSavesEveryFloor() {
	game := s.newGame()

	var floors []int
	s.mockRepo.EXPECT().
		Save(s.ctx, gomock.Any()).
		Times(3).
		DoAndReturn(func(_ context.Context, input storage.SaveInput) (*storage.SaveOutput, error) {
			s.Equal(game.Run(), input.Snapshot.Run)
			s.Equal(int64(21+input.Snapshot.Floor), input.Snapshot.Seed)
			s.Equal(s.cfg.Redis.TTL, input.TTL)
			floors = append(floors, input.Snapshot.Floor)

			saved := *input.Snapshot
			saved.ID = "snap"
			return &storage.SaveOutput{Snapshot: &saved}, nil
		})

	var out bytes.Buffer
	s.Require().NoError(game.Walk(s.ctx, &out, true))

	s.Equal([]int{0, 1, 2}, floors)
	s.True(game.Dungeon().Finished())
	s.Equal(3, strings.Count(out.String(), "Saved floor"))
	s.Contains(out.String(), "Escaped all 3 floors")
}

func (s *GameTestSuite) TestWalkStopsOnSaveError() {
	game := s.newGame()

	s.mockRepo.EXPECT().
		Save(s.ctx, gomock.Any()).
		Return(nil, errors.WrapWithCode(context.DeadlineExceeded, errors.CodeUnavailable, "redis down"))

	err := game.Walk(s.ctx, &bytes.Buffer{}, true)
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
	s.Equal(0, game.Dungeon().CurrentIndex())
}

func (s *GameTestSuite) TestWalkWithoutSaving() {
	game := s.newGame()

	s.Require().NoError(game.Walk(s.ctx, &bytes.Buffer{}, false))
	s.True(game.Dungeon().Finished())
	s.True(errors.IsFailedPrecondition(game.Draw(&bytes.Buffer{})))
}

func (s *GameTestSuite) TestWalkHonoursCancellation() {
	game := s.newGame()
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	s.ErrorIs(game.Walk(ctx, &bytes.Buffer{}, false), context.Canceled)
}

func (s *GameTestSuite) TestShowSnapshot() {
	game := s.newGame()

	var saved *storage.Snapshot
	s.mockRepo.EXPECT().
		Save(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input storage.SaveInput) (*storage.SaveOutput, error) {
			saved = input.Snapshot
			saved.ID = "abc"
			return &storage.SaveOutput{Snapshot: saved}, nil
		})
	_, err := game.SaveSnapshot(s.ctx)
	s.Require().NoError(err)

	s.mockRepo.EXPECT().
		Get(s.ctx, storage.GetInput{ID: "abc"}).
		Return(&storage.GetOutput{Snapshot: saved}, nil)

	var live, shown bytes.Buffer
	s.Require().NoError(game.Draw(&live))
	s.Require().NoError(game.ShowSnapshot(s.ctx, "abc", &shown))

	liveBoard := strings.Join(strings.Split(live.String(), "\n")[:25], "\n")
	s.Contains(shown.String(), "Snapshot abc")
	s.Contains(shown.String(), liveBoard)
}

func (s *GameTestSuite) TestShowSnapshotNotFound() {
	game := s.newGame()
	s.mockRepo.EXPECT().
		Get(s.ctx, storage.GetInput{ID: "gone"}).
		Return(nil, errors.NotFound("snapshot gone not found"))

	err := game.ShowSnapshot(s.ctx, "gone", &bytes.Buffer{})
	s.True(errors.IsNotFound(err))
}

func (s *GameTestSuite) TestSnapshotsNeedRepository() {
	game, err := NewGame(GameConfig{Config: s.cfg, Logger: logger.Discard()})
	s.Require().NoError(err)

	_, err = game.SaveSnapshot(s.ctx)
	s.True(errors.IsFailedPrecondition(err))
	s.True(errors.IsFailedPrecondition(game.ShowSnapshot(s.ctx, "x", &bytes.Buffer{})))
}

func (s *GameTestSuite) TestAuthoredFloors() {
	dir := s.T().TempDir()
	layout := filepath.Join(dir, "layout.txt")
	floors := filepath.Join(dir, "floors.txt")
	s.Require().NoError(os.WriteFile(layout, []byte(
		"|------|\n|......|\n|......|\n|------|\n"), 0o644))
	s.Require().NoError(os.WriteFile(floors, []byte(
		"|------|\n|@.W.\\.|\n|..0...|\n|------|\n"+
			"|------|\n|.\\....|\n|..@..6|\n|------|\n"), 0o644))

	s.cfg.Floors = 2
	s.cfg.LayoutFile = layout
	s.cfg.FloorsFile = floors
	game := s.newGame()

	var out bytes.Buffer
	s.Require().NoError(game.Summary(&out))
	s.Equal("Floor 1: 1 enemies, 1 potions, 0 treasures, 2 items\n"+
		"Floor 2: 0 enemies, 0 potions, 1 treasures, 2 items\n", out.String())

	took, err := game.Move("so")
	s.Require().NoError(err)
	s.False(took)
	world := game.Dungeon().Current().World
	s.Equal(game.Dungeon().Player(), world.GetEntityAt(2, 1).ID)

	s.Require().NoError(game.Walk(s.ctx, &bytes.Buffer{}, false))
	s.True(game.Dungeon().Finished())
}

func (s *GameTestSuite) TestMoveOntoStairs() {
	dir := s.T().TempDir()
	layout := filepath.Join(dir, "layout.txt")
	floors := filepath.Join(dir, "floors.txt")
	s.Require().NoError(os.WriteFile(layout, []byte("|.....|\n"), 0o644))
	s.Require().NoError(os.WriteFile(floors, []byte("|.@\\..|\n|@..\\.|\n"), 0o644))

	s.cfg.Floors = 2
	s.cfg.LayoutFile = layout
	s.cfg.FloorsFile = floors
	game := s.newGame()

	took, err := game.Move("ea")
	s.Require().NoError(err)
	s.True(took)
	s.Equal(1, game.Dungeon().CurrentIndex())

	_, err = game.Move("up")
	s.True(errors.IsInvalidArgument(err))

	for _, facing := range []string{"ea", "ea", "ea"} {
		took, err = game.Move(facing)
		s.Require().NoError(err)
	}
	s.True(took)
	s.True(game.Dungeon().Finished())

	_, err = game.Move("we")
	s.True(errors.IsFailedPrecondition(err))
}

func (s *GameTestSuite) TestMissingFiles() {
	s.cfg.LayoutFile = filepath.Join(s.T().TempDir(), "missing.txt")
	_, err := NewGame(GameConfig{Config: s.cfg, Logger: logger.Discard()})
	s.True(errors.IsInvalidArgument(err))

	s.cfg.LayoutFile = ""
	s.cfg.TemplatesDir = filepath.Join(s.T().TempDir(), "none")
	_, err = NewGame(GameConfig{Config: s.cfg, Logger: logger.Discard()})
	s.True(errors.IsInvalidArgument(err))
}
