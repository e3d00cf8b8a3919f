package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

var (
	ErrInvalidLength    = errors.New("invalid initial length")
	ErrInvalidDirection = errors.New("invalid direction")
)

// State is the lifecycle of a round.
type State int

const (
	Running State = iota
	Paused
	Over
	Won
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Over:
		return "over"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// Options configure a round.
type Options struct {
	Width         int
	Height        int
	InitialLength int
	Direction     Direction
	Boundary      Boundary
}

// DefaultOptions is the classic 25x20 board with a three cell snake heading up.
func DefaultOptions() Options {
	return Options{
		Width:         25,
		Height:        20,
		InitialLength: 3,
		Direction:     Up,
		Boundary:      BoundaryWrap,
	}
}

// Validate checks the options against the grid limits.
func (o Options) Validate() error {
	grid := Grid{Width: o.Width, Height: o.Height}
	if err := grid.Validate(); err != nil {
		return err
	}
	if !o.Direction.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, o.Direction)
	}
	// The body trails horizontally from the centre column.
	limit := o.Width - o.Width/2
	if o.Direction == Right {
		limit = o.Width/2 + 1
	}
	if o.InitialLength < 1 || o.InitialLength > limit {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLength, o.InitialLength, limit)
	}
	return nil
}

// TickResult describes what one Tick did.
type TickResult struct {
	Moved     bool
	Ate       bool
	Collision CollisionType
	State     State
}

type Game struct {
	ID        string
	opts      Options
	grid      Grid
	snake     *Snake
	food      Point
	hasFood   bool
	score     int
	steps     int
	state     State
	collision CollisionType
	startTime time.Time
	endTime   time.Time
	pausedAt  time.Time
	paused    time.Duration
	board     *Board
	spawner   *FoodSpawner
	now       func() time.Time
}

// NewGame sets up a fresh round. rng drives food placement; pass a seeded
// source for reproducible rounds.
func NewGame(opts Options, rng *rand.Rand) (*Game, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	grid := Grid{Width: opts.Width, Height: opts.Height}
	g := &Game{
		opts:    opts,
		grid:    grid,
		board:   NewBoard(grid),
		spawner: NewFoodSpawner(grid, rng),
		now:     time.Now,
	}
	g.Reset()
	return g, nil
}

// Reset starts a new round with the same options.
func (g *Game) Reset() {
	g.ID = uuid.New().String()
	g.snake = NewSnake(initialBody(g.grid, g.opts.InitialLength, g.opts.Direction), g.opts.Direction)
	g.score = 0
	g.steps = 0
	g.state = Running
	g.collision = NoCollision
	g.startTime = g.now()
	g.endTime = time.Time{}
	g.pausedAt = time.Time{}
	g.paused = 0
	g.food, g.hasFood = g.spawner.Spawn(g.snake)
	if !g.hasFood {
		g.finish(Won)
	}
	g.board.Reconcile(g.snake, g.food, g.hasFood)
}

// initialBody lays the snake out from the grid centre with the tail trailing
// opposite to dir. The head is the last element.
func initialBody(grid Grid, length int, dir Direction) []Point {
	head := Point{X: grid.Width / 2, Y: grid.Height / 2}
	// Trail horizontally for vertical headings, as the classic layout does.
	trail := Right
	switch dir {
	case Right:
		trail = Left
	case Left:
		trail = Right
	}
	step := trail.Vector()
	body := make([]Point, length)
	for i := 0; i < length; i++ {
		body[length-1-i] = Point{X: head.X + step.X*i, Y: head.Y + step.Y*i}
	}
	return body
}

// Turn queues a direction change for the next ticks.
func (g *Game) Turn(dir Direction) bool {
	if g.state != Running {
		return false
	}
	return g.snake.QueueTurn(dir)
}

// Tick advances the round by one step.
func (g *Game) Tick() TickResult {
	if g.state != Running {
		return TickResult{State: g.state, Collision: g.collision}
	}

	g.snake.applyTurn()

	newHead, collision := nextHead(g.grid, g.opts.Boundary, g.snake.Head(), g.snake.Direction)
	if collision != NoCollision {
		g.collide(collision)
		return TickResult{Collision: collision, State: g.state}
	}

	eating := g.hasFood && newHead == g.food
	if collision = bodyCollision(g.snake, newHead, eating); collision != NoCollision {
		g.collide(collision)
		return TickResult{Collision: collision, State: g.state}
	}

	g.snake.Move(newHead)
	if eating {
		g.score++
		g.food, g.hasFood = g.spawner.Spawn(g.snake)
		if !g.hasFood {
			g.finish(Won)
		}
	} else {
		g.snake.RemoveTail()
	}
	g.steps++

	g.board.Reconcile(g.snake, g.food, g.hasFood)
	return TickResult{Moved: true, Ate: eating, State: g.state}
}

func (g *Game) collide(c CollisionType) {
	g.collision = c
	g.finish(Over)
}

func (g *Game) finish(s State) {
	g.state = s
	g.endTime = g.now()
}

// TogglePause flips between Running and Paused. Finished rounds are left
// alone. The round clock stops while paused.
func (g *Game) TogglePause() {
	switch g.state {
	case Running:
		g.state = Paused
		g.pausedAt = g.now()
	case Paused:
		g.state = Running
		g.paused += g.now().Sub(g.pausedAt)
		g.pausedAt = time.Time{}
	}
}

func (g *Game) Snake() *Snake {
	return g.snake
}

// Food returns the food cell; ok is false once the board is full.
func (g *Game) Food() (Point, bool) {
	return g.food, g.hasFood
}

func (g *Game) Score() int {
	return g.score
}

func (g *Game) Steps() int {
	return g.steps
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Finished() bool {
	return g.state == Over || g.state == Won
}

func (g *Game) Board() *Board {
	return g.board
}

func (g *Game) Grid() Grid {
	return g.grid
}

func (g *Game) Boundary() Boundary {
	return g.opts.Boundary
}

func (g *Game) LastCollision() CollisionType {
	return g.collision
}

func (g *Game) StartTime() time.Time {
	return g.startTime
}

func (g *Game) EndTime() time.Time {
	return g.endTime
}

// Duration is the played time of the round: paused spans are left out and
// the clock is frozen once the round ends.
func (g *Game) Duration() time.Duration {
	end := g.now()
	switch {
	case g.Finished():
		end = g.endTime
	case g.state == Paused:
		end = g.pausedAt
	}
	return end.Sub(g.startTime) - g.paused
}

// Distance measures between two cells the way the snake can travel: wrapped
// on a wrapping board, plain Manhattan between walls.
func (g *Game) Distance(a, b Point) int {
	if g.opts.Boundary == BoundaryWrap {
		return g.grid.Distance(a, b)
	}
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Offset is the shortest displacement from a to b, taking the wrap into
// account on a wrapping board.
func (g *Game) Offset(a, b Point) Point {
	d := Point{X: b.X - a.X, Y: b.Y - a.Y}
	if g.opts.Boundary != BoundaryWrap {
		return d
	}
	return Point{X: shortest(d.X, g.grid.Width), Y: shortest(d.Y, g.grid.Height)}
}

func shortest(d, n int) int {
	d = mod(d, n)
	if d > n/2 {
		d -= n
	}
	return d
}

// IsDeadly reports whether heading dir on the next tick would end the round.
func (g *Game) IsDeadly(dir Direction) bool {
	p, collision := nextHead(g.grid, g.opts.Boundary, g.snake.Head(), dir)
	if collision != NoCollision {
		return true
	}
	eating := g.hasFood && p == g.food
	return bodyCollision(g.snake, p, eating) != NoCollision
}

// NextCell returns where the head would land heading dir.
func (g *Game) NextCell(dir Direction) Point {
	p, _ := nextHead(g.grid, g.opts.Boundary, g.snake.Head(), dir)
	return p
}
