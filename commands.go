package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"dungeon-spawn/logger"
	"dungeon-spawn/storage"
)

var (
	floorNumber int
	saveFloors  bool
	listRun     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a floor and print it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		game, err := NewGame(GameConfig{Config: cfg, Logger: logger.Log})
		if err != nil {
			return err
		}
		if err := game.DescendTo(floorNumber - 1); err != nil {
			return err
		}
		return game.Draw(cmd.OutOrStdout())
	},
}

var loadCmd = &cobra.Command{
	Use:   "load FLOORS_FILE",
	Short: "Load an authored floors file and summarize it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.FloorsFile = args[0]
		game, err := NewGame(GameConfig{Config: cfg, Logger: logger.Log})
		if err != nil {
			return err
		}
		if err := game.Summary(cmd.OutOrStdout()); err != nil {
			return err
		}
		return game.Draw(cmd.OutOrStdout())
	},
}

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Walk the player down every floor to the exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		gc := GameConfig{Config: cfg, Logger: logger.Log}
		if saveFloors {
			repo, closeRepo, err := openRepository()
			if err != nil {
				return err
			}
			defer closeRepo()
			gc.Repository = repo
		}

		game, err := NewGame(gc)
		if err != nil {
			return err
		}
		if saveFloors {
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s\n", game.Run())
		}
		return game.Walk(ctx, cmd.OutOrStdout(), saveFloors)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move DIRECTION...",
	Short: "Move the player step by step and print the floor",
	Long:  `Directions are no, so, ea, we, ne, nw, se and sw.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		game, err := NewGame(GameConfig{Config: cfg, Logger: logger.Log})
		if err != nil {
			return err
		}
		for _, facing := range args {
			took, err := game.Move(facing)
			if err != nil {
				return err
			}
			if took && game.Dungeon().Finished() {
				fmt.Fprintln(cmd.OutOrStdout(), "The player left the dungeon")
				return nil
			}
		}
		return game.Draw(cmd.OutOrStdout())
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store and read floor snapshots in Redis",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Generate a floor and store it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closeRepo, err := openRepository()
		if err != nil {
			return err
		}
		defer closeRepo()

		game, err := NewGame(GameConfig{Config: cfg, Repository: repo, Logger: logger.Log})
		if err != nil {
			return err
		}
		if err := game.DescendTo(floorNumber - 1); err != nil {
			return err
		}
		snap, err := game.SaveSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), snap.ID)
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a stored floor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openRepository()
		if err != nil {
			return err
		}
		defer closeRepo()

		game, err := NewGame(GameConfig{Config: cfg, Repository: repo, Logger: logger.Log})
		if err != nil {
			return err
		}
		return game.ShowSnapshot(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshot IDs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closeRepo, err := openRepository()
		if err != nil {
			return err
		}
		defer closeRepo()

		out, err := repo.List(cmd.Context(), storage.ListInput{Run: listRun})
		if err != nil {
			return err
		}
		for _, id := range out.IDs {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openRepository()
		if err != nil {
			return err
		}
		defer closeRepo()
		return repo.Delete(cmd.Context(), storage.DeleteInput{ID: args[0]})
	},
}

func init() {
	generateCmd.Flags().IntVar(&floorNumber, "floor", 1, "floor to print, starting at 1")
	snapshotSaveCmd.Flags().IntVar(&floorNumber, "floor", 1, "floor to store, starting at 1")
	walkCmd.Flags().BoolVar(&saveFloors, "save", false, "store every floor in Redis")
	snapshotListCmd.Flags().StringVar(&listRun, "run", "", "only list snapshots of this run")

	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotShowCmd, snapshotListCmd, snapshotDeleteCmd)
}

func openRepository() (storage.Repository, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	repo, err := storage.NewRedis(&storage.RedisConfig{
		Client:    client,
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       cfg.Redis.TTL,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return repo, func() { client.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
