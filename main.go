package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dungeon-spawn/config"
	"dungeon-spawn/errors"
	"dungeon-spawn/logger"
)

var (
	configFile string
	settings   = config.New()
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dungeon-spawn",
	Short: "Populate dungeon floors",
	Long: `dungeon-spawn places the player, stairs, potions, treasure and enemies on
the floors of a dungeon, either generated from a seed or loaded from an
authored floors file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	flags.Int64("seed", 0, "dungeon seed")
	flags.String("race", "", "player race")
	flags.Int("floors", 0, "number of floors")
	flags.String("floors-file", "", "authored floors file")
	flags.String("layout-file", "", "board layout file")
	flags.String("templates-dir", "", "directory of template JSON files")
	flags.String("log-level", "", "log level")

	bindFlag(settings, "seed", "seed")
	bindFlag(settings, "race", "race")
	bindFlag(settings, "floors", "floors")
	bindFlag(settings, "floors_file", "floors-file")
	bindFlag(settings, "layout_file", "layout-file")
	bindFlag(settings, "templates_dir", "templates-dir")
	bindFlag(settings, "log.level", "log-level")

	rootCmd.AddCommand(generateCmd, loadCmd, walkCmd, moveCmd, snapshotCmd)
}

// bindFlag lets a flag override the config key only when it was set
func bindFlag(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// setup loads .env, the config file and the environment, then the logger
func setup(cmd *cobra.Command, _ []string) error {
	// a missing .env is fine
	_ = godotenv.Load(".env")

	if configFile != "" {
		settings.SetConfigFile(configFile)
		if err := settings.ReadInConfig(); err != nil {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	loaded, err := config.FromViper(settings)
	if err != nil {
		return err
	}
	cfg = loaded

	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	return nil
}
