package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-snake/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
	assert.Equal(t, 20, cfg.CellSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Tick)
	assert.Equal(t, "data/stats.json", cfg.StatsFile)
	assert.Equal(t, "greedy", cfg.Pilot)
	assert.Equal(t, "data/qtable.json", cfg.QTableFile)

	opts, err := cfg.GameOptions()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultOptions(), opts)
	assert.Equal(t, 250*time.Millisecond, cfg.Pace().Interval(50))
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("SNAKE_WIDTH", "40")
	t.Setenv("SNAKE_BOUNDARY", "walls")
	t.Setenv("SNAKE_TICK", "100ms")

	t.Setenv("SNAKE_PILOT", "q")

	cfg, err := Load([]string{"-width", "30", "-seed", "9", "-qtable", "q.json"})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, "walls", cfg.Boundary)
	assert.Equal(t, 100*time.Millisecond, cfg.Tick)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, "q", cfg.Pilot)
	assert.Equal(t, "q.json", cfg.QTableFile)
	assert.Equal(t, 80*time.Millisecond, cfg.Pace().Min)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"grid too large", []string{"-width", "61"}},
		{"unknown direction", []string{"-direction", "north"}},
		{"unknown boundary", []string{"-boundary", "bounce"}},
		{"zero tick", []string{"-tick", "0s"}},
		{"tiny cells", []string{"-cell", "2"}},
		{"unknown pilot", []string{"-pilot", "neural"}},
		{"headless without games", []string{"-headless", "-games", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadBadFlag(t *testing.T) {
	_, err := Load([]string{"-nope"})
	assert.Error(t, err)
}
