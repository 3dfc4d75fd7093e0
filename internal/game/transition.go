package game

import (
	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/rules"
)

// Transition is a committed move sliding from its origin to its destination.
// The board keeps the piece at its origin, hidden, until the last frame.
type Transition struct {
	Piece  *board.Piece
	From   core.Tile
	Move   rules.Move
	Frames int

	frame int
}

func (t *Transition) To() core.Tile {
	return core.Tile{X: t.Move.X, Y: t.Move.Y}
}

func (t *Transition) Frame() int {
	return t.frame
}

func (t *Transition) Done() bool {
	return t.frame >= t.Frames
}

// Progress is the completed fraction in [0,1]
func (t *Transition) Progress() float64 {
	if t.Frames <= 0 {
		return 1
	}
	return float64(t.frame) / float64(t.Frames)
}

func (t *Transition) advance() {
	if t.frame < t.Frames {
		t.frame++
	}
}
