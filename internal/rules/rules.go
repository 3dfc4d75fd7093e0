// Package rules computes legal destinations for checkers pieces.
//
// All functions are pure over a board: they never mutate pieces and treat
// out-of-bounds tiles as unavailable rather than failing. Captures are
// optional and limited to a single jump; a turn always ends after one move.
package rules

import (
	"fmt"

	"checkers/internal/board"
	"checkers/internal/core"
)

// Move is a destination for a selected piece. ToKill is set on captures.
type Move struct {
	X      int
	Y      int
	ToKill *board.Piece
}

func (m Move) IsCapture() bool {
	return m.ToKill != nil
}

// directions is the fixed iteration order over diagonal (dx, dy) pairs
var directions = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// Forward returns the row delta a man of side moves along
func Forward(side core.Side) int {
	if side == core.Side0 {
		return -1
	}
	return 1
}

// allowed reports whether p may travel along row delta dy
func allowed(p *board.Piece, dy int) bool {
	return p.King || dy == Forward(p.Side)
}

// CanCapture returns the enemy jumped when p moves two tiles along (dx, dy),
// or nil when the adjacent tile holds no enemy or the landing tile is not free.
func CanCapture(b *board.Board, p *board.Piece, dx, dy int) *board.Piece {
	target := b.PieceAt(p.X+dx, p.Y+dy)
	if target == nil || target.Side == p.Side {
		return nil
	}
	lx, ly := p.X+2*dx, p.Y+2*dy
	if !board.InBounds(lx, ly) || b.PieceAt(lx, ly) != nil {
		return nil
	}
	return target
}

// CanStep reports whether anything is possible along (dx, dy): the adjacent
// tile is free, or a capture is available. Existence check only.
func CanStep(b *board.Board, p *board.Piece, dx, dy int) bool {
	x, y := p.X+dx, p.Y+dy
	if board.InBounds(x, y) && b.PieceAt(x, y) == nil {
		return true
	}
	return CanCapture(b, p, dx, dy) != nil
}

// HasAnyMove reports whether p has at least one step or capture
func HasAnyMove(b *board.Board, p *board.Piece) bool {
	for _, d := range directions {
		if allowed(p, d[1]) && CanStep(b, p, d[0], d[1]) {
			return true
		}
	}
	return false
}

// GenerateMoves lists destinations for p. Simple steps come first, then
// captures, each in direction order. With captureOnly only captures are listed.
func GenerateMoves(b *board.Board, p *board.Piece, captureOnly bool) []Move {
	var steps, captures []Move
	for _, d := range directions {
		dx, dy := d[0], d[1]
		if !allowed(p, dy) {
			continue
		}

		x, y := p.X+dx, p.Y+dy
		if !captureOnly && board.InBounds(x, y) && b.PieceAt(x, y) == nil {
			steps = append(steps, Move{X: x, Y: y})
		}
		if victim := CanCapture(b, p, dx, dy); victim != nil {
			captures = append(captures, Move{X: p.X + 2*dx, Y: p.Y + 2*dy, ToKill: victim})
		}
	}
	return append(steps, captures...)
}

// Movable returns the pieces of side that have any move, in board order
func Movable(b *board.Board, side core.Side) []*board.Piece {
	var out []*board.Piece
	for _, p := range b.Pieces() {
		if p.Side == side && HasAnyMove(b, p) {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the move in moves landing on (x, y)
func Find(moves []Move, x, y int) (Move, bool) {
	for _, m := range moves {
		if m.X == x && m.Y == y {
			return m, true
		}
	}
	return Move{}, false
}

// Notation formats a move from tile (fx, fy), "b3-c4" for steps and "b3xd5" for captures
func Notation(fx, fy int, m Move) string {
	sep := "-"
	if m.IsCapture() {
		sep = "x"
	}
	return fmt.Sprintf("%s%s%s", board.Square(fx, fy), sep, board.Square(m.X, m.Y))
}
