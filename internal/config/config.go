package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
)

type BetTier struct {
	ID      string `json:"id"`
	BaseBet int64  `json:"base_bet"`
}

// GameConfig holds the tunable match settings loaded from the data folder.
// Fields with env tags can be overridden through the Nakama runtime
// environment (RUNTIME_CTX_ENV).
type GameConfig struct {
	DefaultTier string    `json:"default_tier"`
	Tiers       []BetTier `json:"tiers"`

	// PlatformUserID receives the platform fee on settlement.
	PlatformUserID string `json:"platform_user_id" env:"ludo_platform_user_id"`
	// WelcomeStake is the one-time starting balance for new accounts.
	WelcomeStake int64 `json:"welcome_stake" env:"ludo_welcome_stake"`
	// BotsEnabled allows AI agents to act for abandoned seats.
	BotsEnabled bool `json:"bots_enabled" env:"ludo_bots_enabled"`
	// BotActDelaySeconds is how long a bot waits before playing its turn.
	BotActDelaySeconds int `json:"bot_act_delay_seconds" env:"ludo_bot_act_delay_sec"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path, applying
// overrides from the runtime environment map. Safe to call repeatedly; only
// the first call reads the file.
func LoadGameConfig(path string, environ map[string]string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := parseGameConfig(data, environ)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

func parseGameConfig(data []byte, environ map[string]string) (*GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBaseBet returns the base bet for a given tier ID, or the default tier's
// bet if not found.
func GetBaseBet(tierID string) int64 {
	if cfg == nil {
		return 100 // Safe default
	}
	return cfg.baseBet(tierID)
}

func (c *GameConfig) baseBet(tierID string) int64 {
	target := tierID
	if target == "" {
		target = c.DefaultTier
	}

	for _, tier := range c.Tiers {
		if tier.ID == target {
			return tier.BaseBet
		}
	}
	for _, tier := range c.Tiers {
		if tier.ID == c.DefaultTier {
			return tier.BaseBet
		}
	}
	return 100
}
