package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"

	"grid-snake/game"
)

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key  int32
		cmd  Command
		dir  game.Direction
		turn bool
	}{
		{rl.KeyUp, CmdTurn, game.Up, true},
		{rl.KeyA, CmdTurn, game.Left, true},
		{rl.KeyDown, CmdTurn, game.Down, true},
		{rl.KeyD, CmdTurn, game.Right, true},
		{rl.KeySpace, CmdPause, game.None, false},
		{rl.KeyR, CmdRestart, game.None, false},
		{rl.KeyTab, CmdAutopilot, game.None, false},
		{rl.KeyQ, CmdQuit, game.None, false},
		{rl.KeyZ, NoCommand, game.None, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cmd, CommandForKey(tt.key), "key %d", tt.key)
		dir, ok := DirectionForKey(tt.key)
		assert.Equal(t, tt.turn, ok)
		assert.Equal(t, tt.dir, dir)
	}
}
