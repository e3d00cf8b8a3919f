package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"grid-snake/game"
)

// Command is a player request read from the keyboard.
type Command int

const (
	NoCommand Command = iota
	CmdTurn
	CmdPause
	CmdRestart
	CmdAutopilot
	CmdQuit
)

var directionKeys = map[int32]game.Direction{
	rl.KeyUp:    game.Up,
	rl.KeyW:     game.Up,
	rl.KeyRight: game.Right,
	rl.KeyD:     game.Right,
	rl.KeyDown:  game.Down,
	rl.KeyS:     game.Down,
	rl.KeyLeft:  game.Left,
	rl.KeyA:     game.Left,
}

var commandKeys = map[int32]Command{
	rl.KeyP:     CmdPause,
	rl.KeySpace: CmdPause,
	rl.KeyR:     CmdRestart,
	rl.KeyEnter: CmdRestart,
	rl.KeyTab:   CmdAutopilot,
	rl.KeyQ:     CmdQuit,
}

func DirectionForKey(key int32) (game.Direction, bool) {
	d, ok := directionKeys[key]
	return d, ok
}

func CommandForKey(key int32) Command {
	if _, ok := directionKeys[key]; ok {
		return CmdTurn
	}
	return commandKeys[key]
}

// Input is one key press translated for the game loop.
type Input struct {
	Command   Command
	Direction game.Direction
}

// PollInput drains the key presses raylib queued since the last frame, in
// the order they were pressed.
func PollInput() []Input {
	var out []Input
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		cmd := CommandForKey(key)
		if cmd == NoCommand {
			continue
		}
		in := Input{Command: cmd}
		if cmd == CmdTurn {
			in.Direction, _ = DirectionForKey(key)
		}
		out = append(out, in)
	}
	return out
}
