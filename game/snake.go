package game

// maxPendingTurns bounds how many key presses are buffered between ticks.
const maxPendingTurns = 2

// Snake keeps its body tail first, head last.
type Snake struct {
	Body      []Point
	Direction Direction
	pending   []Direction
}

func NewSnake(body []Point, dir Direction) *Snake {
	b := make([]Point, len(body))
	copy(b, body)
	return &Snake{
		Body:      b,
		Direction: dir,
		pending:   make([]Direction, 0, maxPendingTurns),
	}
}

func (s *Snake) Head() Point {
	return s.Body[len(s.Body)-1]
}

func (s *Snake) Tail() Point {
	return s.Body[0]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

func (s *Snake) Move(newHead Point) {
	s.Body = append(s.Body, newHead)
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 0 {
		s.Body = s.Body[1:]
	}
}

// Occupies reports whether p is any body cell, head included.
func (s *Snake) Occupies(p Point) bool {
	for _, part := range s.Body {
		if part == p {
			return true
		}
	}
	return false
}

// lastHeading is the direction the snake will have once every queued turn
// has been applied.
func (s *Snake) lastHeading() Direction {
	if n := len(s.pending); n > 0 {
		return s.pending[n-1]
	}
	return s.Direction
}

// QueueTurn buffers a direction change for the coming ticks. It reports
// whether the turn was accepted.
func (s *Snake) QueueTurn(dir Direction) bool {
	if !dir.Valid() {
		return false
	}
	last := s.lastHeading()
	if dir == last {
		return false
	}
	// Prevent 180-degree turns
	if dir == last.Opposite() && len(s.Body) > 1 {
		return false
	}
	if len(s.pending) >= maxPendingTurns {
		return false
	}
	s.pending = append(s.pending, dir)
	return true
}

// applyTurn pops one queued turn into the current direction.
func (s *Snake) applyTurn() {
	if len(s.pending) == 0 {
		return
	}
	s.Direction = s.pending[0]
	s.pending = s.pending[1:]
}

func (s *Snake) Pending() []Direction {
	out := make([]Direction, len(s.pending))
	copy(out, s.pending)
	return out
}
