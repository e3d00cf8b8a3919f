package game

import "golang.org/x/exp/rand"

// FoodSpawner places food on cells the snake does not cover.
type FoodSpawner struct {
	grid Grid
	rng  *rand.Rand
	free []Point
}

func NewFoodSpawner(grid Grid, rng *rand.Rand) *FoodSpawner {
	return &FoodSpawner{
		grid: grid,
		rng:  rng,
		free: make([]Point, 0, grid.Cells()),
	}
}

// Spawn picks a uniformly random free cell. It returns false when the snake
// fills the whole grid.
func (fs *FoodSpawner) Spawn(s *Snake) (Point, bool) {
	// Fast path: a few random picks are enough while the board is sparse.
	if s.Len() < fs.grid.Cells()/2 {
		for i := 0; i < 8; i++ {
			p := Point{X: fs.rng.Intn(fs.grid.Width), Y: fs.rng.Intn(fs.grid.Height)}
			if !s.Occupies(p) {
				return p, true
			}
		}
	}

	occupied := make(map[Point]struct{}, s.Len())
	for _, p := range s.Body {
		occupied[p] = struct{}{}
	}
	fs.free = fs.free[:0]
	for x := 0; x < fs.grid.Width; x++ {
		for y := 0; y < fs.grid.Height; y++ {
			p := Point{X: x, Y: y}
			if _, ok := occupied[p]; !ok {
				fs.free = append(fs.free, p)
			}
		}
	}
	if len(fs.free) == 0 {
		return Point{}, false
	}
	return fs.free[fs.rng.Intn(len(fs.free))], true
}
