package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"dungeon-spawn/data"
	"dungeon-spawn/errors"
)

// EnvPrefix prefixes every environment override, e.g. DUNGEON_SEED
const EnvPrefix = "DUNGEON"

// Config is the full runtime configuration
type Config struct {
	Seed             int64       `mapstructure:"seed"`
	Race             string      `mapstructure:"race"`
	Floors           int         `mapstructure:"floors"`
	FloorsFile       string      `mapstructure:"floors_file"`
	LayoutFile       string      `mapstructure:"layout_file"`
	TemplatesDir     string      `mapstructure:"templates_dir"`
	BarrierSuit      bool        `mapstructure:"barrier_suit"`
	BarrierSuitFloor int         `mapstructure:"barrier_suit_floor"` // -1 picks one from the seed
	MaxAttempts      int         `mapstructure:"max_attempts"`
	Quotas           Quotas      `mapstructure:"quotas"`
	Log              LogConfig   `mapstructure:"log"`
	Redis            RedisConfig `mapstructure:"redis"`
}

// Quotas are the per-floor population counts
type Quotas struct {
	Potions   int `mapstructure:"potions"`
	Treasures int `mapstructure:"treasures"`
	Enemies   int `mapstructure:"enemies"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RedisConfig locates the snapshot store
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", 0)
	v.SetDefault("race", data.DefaultRace)
	v.SetDefault("floors", 5)
	v.SetDefault("floors_file", "")
	v.SetDefault("layout_file", "")
	v.SetDefault("templates_dir", "")
	v.SetDefault("barrier_suit", true)
	v.SetDefault("barrier_suit_floor", -1)
	v.SetDefault("max_attempts", 512)

	v.SetDefault("quotas.potions", 10)
	v.SetDefault("quotas.treasures", 10)
	v.SetDefault("quotas.enemies", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "dungeon:")
	v.SetDefault("redis.ttl", 24*time.Hour)
}

// New returns a viper instance with defaults and environment binding applied
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from defaults, an optional file and the
// environment, in increasing priority
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read config file")
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates a prepared viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values generation cannot use
func (c *Config) Validate() error {
	if c.Floors <= 0 {
		return errors.InvalidArgumentf("floors must be positive, got %d", c.Floors)
	}
	if c.Quotas.Potions < 0 || c.Quotas.Treasures < 0 || c.Quotas.Enemies < 0 {
		return errors.InvalidArgument("quotas must not be negative")
	}
	if c.MaxAttempts <= 0 {
		return errors.InvalidArgumentf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.BarrierSuitFloor >= c.Floors {
		return errors.InvalidArgumentf("barrier_suit_floor %d is past the last floor", c.BarrierSuitFloor)
	}
	if c.Race == "" {
		return errors.InvalidArgument("race is required")
	}
	// custom template directories may define their own races
	if c.TemplatesDir == "" {
		if _, ok := data.DefaultTemplates().GetRace(c.Race); !ok {
			return errors.InvalidArgumentf("unknown race %q", c.Race)
		}
	}
	return nil
}
