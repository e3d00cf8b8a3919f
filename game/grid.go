package game

import (
	"errors"
	"fmt"
)

// Grid limits.
const (
	MinWidth  = 5
	MinHeight = 5
	MaxWidth  = 60
	MaxHeight = 50
)

var ErrInvalidGrid = errors.New("invalid grid")

type Point struct {
	X, Y int
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Grid holds the board dimensions in cells.
type Grid struct {
	Width  int
	Height int
}

func (g Grid) Validate() error {
	if g.Width < MinWidth || g.Width > MaxWidth {
		return fmt.Errorf("%w: width %d outside [%d, %d]", ErrInvalidGrid, g.Width, MinWidth, MaxWidth)
	}
	if g.Height < MinHeight || g.Height > MaxHeight {
		return fmt.Errorf("%w: height %d outside [%d, %d]", ErrInvalidGrid, g.Height, MinHeight, MaxHeight)
	}
	return nil
}

func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Wrap folds p back onto the grid, so leaving one edge re-enters on the
// opposite one.
func (g Grid) Wrap(p Point) Point {
	return Point{X: mod(p.X, g.Width), Y: mod(p.Y, g.Height)}
}

func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Distance is the Manhattan distance between a and b on a wrapping grid.
func (g Grid) Distance(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > g.Width/2 {
		dx = g.Width - dx
	}
	if dy > g.Height/2 {
		dy = g.Height - dy
	}
	return dx + dy
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
