package ai

import "grid-snake/game"

// Action is a move relative to the current heading.
type Action int

const (
	Straight Action = iota
	TurnLeft
	TurnRight
)

var actions = [...]Action{Straight, TurnLeft, TurnRight}

func (a Action) Apply(d game.Direction) game.Direction {
	switch a {
	case TurnLeft:
		return d.TurnLeft()
	case TurnRight:
		return d.TurnRight()
	default:
		return d
	}
}

// Autopilot drives a round. Steer runs before each tick, Learn after it.
type Autopilot interface {
	Steer(g *game.Game) Action
	Learn(g *game.Game)
}

// Pilot kinds accepted by New.
const (
	KindGreedy = "greedy"
	KindQ      = "q"
)

// Pilot steers greedily towards the food while avoiding moves that end the
// round on the next tick.
type Pilot struct{}

func NewPilot() *Pilot {
	return &Pilot{}
}

// Choose picks the best relative action for the current position.
func (p *Pilot) Choose(g *game.Game) Action {
	snake := g.Snake()
	heading := snake.Direction
	food, hasFood := g.Food()

	best := Straight
	bestDist := -1
	for _, a := range actions {
		dir := a.Apply(heading)
		if g.IsDeadly(dir) {
			continue
		}
		dist := 0
		if hasFood {
			dist = g.Distance(g.NextCell(dir), food)
		}
		// Strict comparison keeps the earlier action, so straight wins ties.
		if bestDist < 0 || dist < bestDist {
			best, bestDist = a, dist
		}
	}
	return best
}

// Steer queues the chosen turn on g. It waits while player turns are still
// pending so it never fights the queue.
func (p *Pilot) Steer(g *game.Game) Action {
	if g.State() != game.Running || len(g.Snake().Pending()) > 0 {
		return Straight
	}
	a := p.Choose(g)
	if a != Straight {
		g.Turn(a.Apply(g.Snake().Direction))
	}
	return a
}

// Learn is a no-op; the greedy pilot keeps no memory.
func (p *Pilot) Learn(*game.Game) {}
