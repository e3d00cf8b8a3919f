package game

// Cell is what occupies one square of the board.
type Cell uint8

const (
	Empty Cell = iota
	Body
	Head
	Food
)

// Board is a column-major occupancy matrix, indexed [x][y].
type Board struct {
	grid  Grid
	cells [][]Cell
}

func NewBoard(grid Grid) *Board {
	cells := make([][]Cell, grid.Width)
	for x := range cells {
		cells[x] = make([]Cell, grid.Height)
	}
	return &Board{grid: grid, cells: cells}
}

// Reconcile clears the board and stamps the snake and the food onto it.
func (b *Board) Reconcile(s *Snake, food Point, hasFood bool) {
	for x := range b.cells {
		clear(b.cells[x])
	}
	if hasFood && b.grid.Contains(food) {
		b.cells[food.X][food.Y] = Food
	}
	for i, p := range s.Body {
		if !b.grid.Contains(p) {
			continue
		}
		if i == len(s.Body)-1 {
			b.cells[p.X][p.Y] = Head
		} else {
			b.cells[p.X][p.Y] = Body
		}
	}
}

func (b *Board) At(p Point) Cell {
	if !b.grid.Contains(p) {
		return Empty
	}
	return b.cells[p.X][p.Y]
}

func (b *Board) Grid() Grid {
	return b.grid
}

// Count returns how many cells hold c.
func (b *Board) Count(c Cell) int {
	n := 0
	for x := range b.cells {
		for _, v := range b.cells[x] {
			if v == c {
				n++
			}
		}
	}
	return n
}

// Each calls fn for every non-empty cell, column by column.
func (b *Board) Each(fn func(p Point, c Cell)) {
	for x := range b.cells {
		for y, v := range b.cells[x] {
			if v != Empty {
				fn(Point{X: x, Y: y}, v)
			}
		}
	}
}
