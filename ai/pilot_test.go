package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"grid-snake/game"
)

func TestActionApply(t *testing.T) {
	assert.Equal(t, game.Up, Straight.Apply(game.Up))
	assert.Equal(t, game.Left, TurnLeft.Apply(game.Up))
	assert.Equal(t, game.Right, TurnRight.Apply(game.Up))
}

func TestPilotNeverDiesEarly(t *testing.T) {
	opts := game.DefaultOptions()
	opts.Boundary = game.BoundaryWalls
	g, err := game.NewGame(opts, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	p := NewPilot()
	for i := 0; i < 50 && !g.Finished(); i++ {
		p.Steer(g)
		g.Tick()
	}
	assert.Greater(t, g.Steps(), 9, "the pilot should steer away from the top wall")
}

func TestPilotEats(t *testing.T) {
	g, err := game.NewGame(game.DefaultOptions(), rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	p := NewPilot()
	for i := 0; i < 200 && !g.Finished(); i++ {
		p.Steer(g)
		g.Tick()
	}
	assert.Positive(t, g.Score())
}

func TestSteerWaitsForQueuedTurns(t *testing.T) {
	g, err := game.NewGame(game.DefaultOptions(), rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	require.True(t, g.Turn(game.Left))
	assert.Equal(t, Straight, NewPilot().Steer(g))
	assert.Equal(t, []game.Direction{game.Left}, g.Snake().Pending())
}
