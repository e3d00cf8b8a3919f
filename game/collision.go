package game

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

// Boundary decides what happens at the grid edges.
type Boundary int

const (
	BoundaryWrap Boundary = iota
	BoundaryWalls
)

func (b Boundary) String() string {
	if b == BoundaryWalls {
		return "walls"
	}
	return "wrap"
}

// ParseBoundary accepts "wrap" or "walls".
func ParseBoundary(s string) (Boundary, bool) {
	switch s {
	case "wrap":
		return BoundaryWrap, true
	case "walls":
		return BoundaryWalls, true
	}
	return BoundaryWrap, false
}

// nextHead computes where the head lands after one step and whether that
// step leaves the grid.
func nextHead(grid Grid, boundary Boundary, head Point, dir Direction) (Point, CollisionType) {
	p := head.Add(dir.Vector())
	if grid.Contains(p) {
		return p, NoCollision
	}
	if boundary == BoundaryWalls {
		return p, WallCollision
	}
	return grid.Wrap(p), NoCollision
}

// bodyCollision checks pos against the body. The tail cell is skipped when
// the tail moves away during this same step.
func bodyCollision(s *Snake, pos Point, growing bool) CollisionType {
	body := s.Body
	if !growing && len(body) > 0 {
		body = body[1:]
	}
	for _, part := range body {
		if part == pos {
			return SelfCollision
		}
	}
	return NoCollision
}
