package config

import (
	"fmt"
	"strings"
	"sync"

	"gostop/internal/domain"

	"github.com/spf13/viper"
)

const defaultBaseBet = 100

type BetTier struct {
	ID      string `mapstructure:"id"`
	BaseBet int64  `mapstructure:"base_bet"`
}

// FileLogConfig controls rotated log files.
type FileLogConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// LogConfig selects level, encoding and sinks of the structured logger.
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"` // json | console
	Output string        `mapstructure:"output"` // stdout | file | both
	File   FileLogConfig `mapstructure:"file"`
}

type GameConfig struct {
	TargetScore2P int  `mapstructure:"target_score_2p"`
	TargetScore3P int  `mapstructure:"target_score_3p"`
	TotalDeals    int  `mapstructure:"total_deals"`
	UseJokers     bool `mapstructure:"use_jokers"`
	// StockRevealMs is how long a drawn stock card stays on show before it resolves.
	StockRevealMs    int `mapstructure:"stock_reveal_ms"`
	NextDealDelaySec int `mapstructure:"next_deal_delay_sec"`
	MaxSeats         int `mapstructure:"max_seats"`
	// MinJoinBalance rejects joins from wallets below it. Zero disables the check.
	MinJoinBalance int64 `mapstructure:"min_join_balance"`
	// WelcomeChips are credited once to every new account.
	WelcomeChips int64 `mapstructure:"welcome_chips"`

	DefaultTier string    `mapstructure:"default_tier"`
	Tiers       []BetTier `mapstructure:"tiers"`

	BotsEnabled             bool   `mapstructure:"bots_enabled"`
	BotMinDelaySec          int    `mapstructure:"bot_min_delay_sec"`
	BotMaxDelaySec          int    `mapstructure:"bot_max_delay_sec"`
	BotAutoFillDelaySeconds int    `mapstructure:"bot_auto_fill_delay_sec"`
	BotLevel                string `mapstructure:"bot_level"`

	Log LogConfig `mapstructure:"log"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Values
// missing from the file fall back to defaults; GOSTOP_* environment
// variables override both.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := load(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

func load(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GOSTOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.BotMaxDelaySec < c.BotMinDelaySec {
		c.BotMaxDelaySec = c.BotMinDelaySec
	}
	c.MaxSeats = min(max(c.MaxSeats, domain.MinPlayers), domain.MaxPlayers)
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target_score_2p", domain.DefaultTargetScore2P)
	v.SetDefault("target_score_3p", domain.DefaultTargetScore3P)
	v.SetDefault("total_deals", domain.DefaultTotalDeals)
	v.SetDefault("use_jokers", false)
	v.SetDefault("stock_reveal_ms", 1500)
	v.SetDefault("next_deal_delay_sec", 5)
	v.SetDefault("max_seats", 3)
	v.SetDefault("min_join_balance", 0)
	v.SetDefault("welcome_chips", 10000)

	v.SetDefault("default_tier", "casual")
	v.SetDefault("tiers", []map[string]any{{"id": "casual", "base_bet": defaultBaseBet}})

	v.SetDefault("bots_enabled", true)
	v.SetDefault("bot_min_delay_sec", 1)
	v.SetDefault("bot_max_delay_sec", 3)
	v.SetDefault("bot_auto_fill_delay_sec", 5)
	v.SetDefault("bot_level", "heuristic")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "gostop.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing has been loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		c, err := load("")
		if err != nil {
			panic("invariant: default game config does not decode: " + err.Error())
		}
		return c
	}
	return cfg
}

// Overrides turns the configured rule values into per-room overrides for a
// table of playerCount seats.
func (c *GameConfig) Overrides(playerCount int) domain.ConfigOverrides {
	target := c.TargetScore3P
	if playerCount <= 2 {
		target = c.TargetScore2P
	}
	return domain.ConfigOverrides{
		TargetScore: target,
		TotalDeals:  c.TotalDeals,
		UseJokers:   c.UseJokers,
	}
}

// GetBaseBet returns the base bet for a given tier ID, or the default if not found.
func GetBaseBet(tierID string) int64 {
	return GetGameConfig().BaseBet(tierID)
}

// BaseBet resolves tierID against c, falling back to the default tier.
func (c *GameConfig) BaseBet(tierID string) int64 {
	target := tierID
	if target == "" {
		target = c.DefaultTier
	}

	for _, tier := range c.Tiers {
		if tier.ID == target {
			return tier.BaseBet
		}
	}

	// Fallback to default tier if specific ID not found
	for _, tier := range c.Tiers {
		if tier.ID == c.DefaultTier {
			return tier.BaseBet
		}
	}

	return defaultBaseBet
}
