package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	"default_tier": "casual",
	"tiers": [
		{"id": "casual", "base_bet": 500},
		{"id": "high_roller", "base_bet": 5000}
	],
	"platform_user_id": "00000000-0000-0000-0000-000000000001",
	"welcome_stake": 10000,
	"bots_enabled": true,
	"bot_act_delay_seconds": 2
}`

func TestParseGameConfig(t *testing.T) {
	c, err := parseGameConfig([]byte(sampleConfig), nil)
	require.NoError(t, err)

	assert.Equal(t, "casual", c.DefaultTier)
	assert.Equal(t, int64(10000), c.WelcomeStake)
	assert.True(t, c.BotsEnabled)
	assert.Equal(t, 2, c.BotActDelaySeconds)
}

func TestParseGameConfigEnvOverrides(t *testing.T) {
	environ := map[string]string{
		"ludo_platform_user_id": "override-user",
		"ludo_welcome_stake":    "2500",
		"ludo_bots_enabled":     "false",
	}
	c, err := parseGameConfig([]byte(sampleConfig), environ)
	require.NoError(t, err)

	assert.Equal(t, "override-user", c.PlatformUserID)
	assert.Equal(t, int64(2500), c.WelcomeStake)
	assert.False(t, c.BotsEnabled)
}

func TestBaseBetLookup(t *testing.T) {
	c, err := parseGameConfig([]byte(sampleConfig), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		tierID string
		want   int64
	}{
		{"named tier", "high_roller", 5000},
		{"default tier", "", 500},
		{"unknown falls back to default", "nonexistent", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.baseBet(tt.tierID))
		})
	}
}

func TestParseGameConfigInvalidJSON(t *testing.T) {
	_, err := parseGameConfig([]byte("{not json"), nil)
	assert.Error(t, err)
}
