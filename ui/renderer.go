package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"grid-snake/game"
)

// HUDHeight is the strip under the board for the score line.
const HUDHeight = 30

var (
	backgroundColor = rl.Black
	gridColor       = rl.Color{R: 24, G: 24, B: 24, A: 255}
	bodyColor       = rl.Color{R: 60, G: 200, B: 90, A: 255}
	headColor       = rl.Color{R: 110, G: 255, B: 140, A: 255}
	foodColor       = rl.Red
)

// HUD is the text shown under the board.
type HUD struct {
	HighScore   int
	GamesPlayed int
	Autopilot   bool
}

type Renderer struct {
	cellSize int32
	width    int32
	height   int32
}

// NewRenderer sizes the drawing area for grid at cellSize pixels per cell.
func NewRenderer(grid game.Grid, cellSize int) *Renderer {
	return &Renderer{
		cellSize: int32(cellSize),
		width:    int32(grid.Width * cellSize),
		height:   int32(grid.Height * cellSize),
	}
}

// WindowSize is the full window including the HUD strip.
func (r *Renderer) WindowSize() (int32, int32) {
	return r.width, r.height + HUDHeight
}

func (r *Renderer) Draw(g *game.Game, hud HUD) {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(backgroundColor)
	rl.DrawRectangle(0, 0, r.width, r.height, gridColor)

	g.Board().Each(func(p game.Point, c game.Cell) {
		x := int32(p.X) * r.cellSize
		y := int32(p.Y) * r.cellSize
		switch c {
		case game.Food:
			rl.DrawRectangle(x+1, y+1, r.cellSize-2, r.cellSize-2, foodColor)
		case game.Body:
			rl.DrawRectangle(x, y, r.cellSize, r.cellSize, bodyColor)
		case game.Head:
			rl.DrawRectangle(x, y, r.cellSize, r.cellSize, headColor)
			r.drawHeading(x, y, g.Snake().Direction)
		}
	})

	r.drawHUD(g, hud)
	r.drawOverlay(g)
}

// drawHeading puts a small triangle on the head pointing where it moves.
func (r *Renderer) drawHeading(x, y int32, dir game.Direction) {
	cs := float32(r.cellSize)
	fx, fy := float32(x), float32(y)
	half := cs / 2
	var a, b, c rl.Vector2
	switch dir {
	case game.Right:
		a = rl.Vector2{X: fx + cs, Y: fy + half}
		b = rl.Vector2{X: fx + half, Y: fy}
		c = rl.Vector2{X: fx + half, Y: fy + cs}
	case game.Left:
		a = rl.Vector2{X: fx, Y: fy + half}
		b = rl.Vector2{X: fx + half, Y: fy + cs}
		c = rl.Vector2{X: fx + half, Y: fy}
	case game.Down:
		a = rl.Vector2{X: fx + half, Y: fy + cs}
		b = rl.Vector2{X: fx + cs, Y: fy + half}
		c = rl.Vector2{X: fx, Y: fy + half}
	default:
		a = rl.Vector2{X: fx + half, Y: fy}
		b = rl.Vector2{X: fx, Y: fy + half}
		c = rl.Vector2{X: fx + cs, Y: fy + half}
	}
	// raylib wants counter-clockwise vertices.
	rl.DrawTriangle(a, b, c, rl.Yellow)
}

func (r *Renderer) drawHUD(g *game.Game, hud HUD) {
	fontSize := int32(18)
	y := r.height + (HUDHeight-fontSize)/2
	line := fmt.Sprintf("Score: %d  High: %d  Games: %d", g.Score(), max(hud.HighScore, g.Score()), hud.GamesPlayed)
	rl.DrawText(line, 8, y, fontSize, rl.White)
	if hud.Autopilot {
		label := "AUTO"
		rl.DrawText(label, r.width-rl.MeasureText(label, fontSize)-8, y, fontSize, rl.Yellow)
	}
}

func (r *Renderer) drawOverlay(g *game.Game) {
	var title, hint string
	switch g.State() {
	case game.Paused:
		title, hint = "PAUSED", "press P to resume"
	case game.Over:
		title, hint = "GAME OVER", fmt.Sprintf("hit %s - press R to restart", g.LastCollision())
	case game.Won:
		title, hint = "YOU WIN", "press R to play again"
	default:
		return
	}
	rl.DrawRectangle(0, 0, r.width, r.height, rl.Fade(rl.Black, 0.6))
	titleSize, hintSize := int32(32), int32(16)
	rl.DrawText(title, (r.width-rl.MeasureText(title, titleSize))/2, r.height/2-titleSize, titleSize, rl.White)
	rl.DrawText(hint, (r.width-rl.MeasureText(hint, hintSize))/2, r.height/2+8, hintSize, rl.LightGray)
}
