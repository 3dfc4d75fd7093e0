package board

import (
	"errors"
	"fmt"
	"strings"

	"checkers/internal/core"
)

const (
	StartingLayout = "1b1b1b1b/b1b1b1b1/1b1b1b1b/8/8/r1r1r1r1/1r1r1r1r/r1r1r1r1 0"

	startingRows = 3
)

var (
	ErrOutOfBounds   = errors.New("tile out of bounds")
	ErrOccupied      = errors.New("tile occupied")
	ErrInvalidLayout = errors.New("invalid layout")
)

// Piece is a single checker. Identity is the pointer, never the coordinate.
type Piece struct {
	X      int
	Y      int
	Side   core.Side
	King   bool
	Hidden bool // Set while a commit transition for this piece is in flight
}

func (p *Piece) Tile() core.Tile {
	return core.Tile{X: p.X, Y: p.Y}
}

// Board owns every piece and its coordinates
type Board struct {
	pieces []*Piece
}

// New returns a board in the standard starting formation
func New() *Board {
	b := &Board{}
	for y := 0; y < startingRows; y++ {
		b.fillRow(y, core.Side1)
	}
	for y := core.BoardSize - startingRows; y < core.BoardSize; y++ {
		b.fillRow(y, core.Side0)
	}
	return b
}

// fillRow places a piece on every other column, starting at column 1 on even rows
func (b *Board) fillRow(y int, side core.Side) {
	offset := 0
	if y%2 == 0 {
		offset = 1
	}
	for i := 0; i < core.BoardSize/2; i++ {
		b.pieces = append(b.pieces, &Piece{X: i*2 + offset, Y: y, Side: side})
	}
}

func InBounds(x, y int) bool {
	return x >= 0 && x < core.BoardSize && y >= 0 && y < core.BoardSize
}

// PieceAt returns the piece on (x, y), or nil when the tile is empty or off the board
func (b *Board) PieceAt(x, y int) *Piece {
	if !InBounds(x, y) {
		return nil
	}
	for _, p := range b.pieces {
		if p.X == x && p.Y == y {
			return p
		}
	}
	return nil
}

// Pieces returns a copy of the piece list; the pieces themselves are shared
func (b *Board) Pieces() []*Piece {
	out := make([]*Piece, len(b.pieces))
	copy(out, b.pieces)
	return out
}

// Visible returns the pieces drawn by the static rendering path
func (b *Board) Visible() []*Piece {
	out := make([]*Piece, 0, len(b.pieces))
	for _, p := range b.pieces {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

func (b *Board) Len() int {
	return len(b.pieces)
}

func (b *Board) Count(side core.Side) int {
	n := 0
	for _, p := range b.pieces {
		if p.Side == side {
			n++
		}
	}
	return n
}

func (b *Board) Contains(p *Piece) bool {
	for _, q := range b.pieces {
		if q == p {
			return true
		}
	}
	return false
}

// Add places a new piece, keeping coordinates unique and in bounds
func (b *Board) Add(p *Piece) error {
	if !InBounds(p.X, p.Y) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	if b.PieceAt(p.X, p.Y) != nil {
		return fmt.Errorf("%w: %s", ErrOccupied, Square(p.X, p.Y))
	}
	b.pieces = append(b.pieces, p)
	return nil
}

// Relocate moves p to (x, y). The destination must be empty and on the board.
func (b *Board) Relocate(p *Piece, x, y int) error {
	if !InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	if q := b.PieceAt(x, y); q != nil && q != p {
		return fmt.Errorf("%w: %s", ErrOccupied, Square(x, y))
	}
	p.X, p.Y = x, y
	return nil
}

// Remove drops p from the board, reporting whether it was present
func (b *Board) Remove(p *Piece) bool {
	for i, q := range b.pieces {
		if q == p {
			b.pieces = append(b.pieces[:i], b.pieces[i+1:]...)
			return true
		}
	}
	return false
}

// ParseLayout builds a board and side to move from layout notation
func ParseLayout(layout string) (*Board, core.Side, error) {
	parts := strings.Fields(layout)
	if len(parts) != 2 {
		return nil, 0, fmt.Errorf("%w: expected 2 parts, got %d", ErrInvalidLayout, len(parts))
	}

	rows := strings.Split(parts[0], "/")
	if len(rows) != core.BoardSize {
		return nil, 0, fmt.Errorf("%w: expected %d rows", ErrInvalidLayout, core.BoardSize)
	}

	b := &Board{}
	for y, row := range rows {
		x := 0
		for _, ch := range row {
			switch {
			case ch >= '1' && ch <= '8':
				x += int(ch - '0')
				continue
			case x >= core.BoardSize:
				return nil, 0, fmt.Errorf("%w: too many tiles in row %d", ErrInvalidLayout, y)
			}

			p := &Piece{X: x, Y: y}
			switch ch {
			case 'r':
				p.Side = core.Side0
			case 'R':
				p.Side, p.King = core.Side0, true
			case 'b':
				p.Side = core.Side1
			case 'B':
				p.Side, p.King = core.Side1, true
			default:
				return nil, 0, fmt.Errorf("%w: unknown piece %q in row %d", ErrInvalidLayout, ch, y)
			}
			b.pieces = append(b.pieces, p)
			x++
		}
		if x != core.BoardSize {
			return nil, 0, fmt.Errorf("%w: row %d has %d tiles", ErrInvalidLayout, y, x)
		}
	}

	var turn core.Side
	switch parts[1] {
	case "0":
		turn = core.Side0
	case "1":
		turn = core.Side1
	default:
		return nil, 0, fmt.Errorf("%w: side to move must be '0' or '1'", ErrInvalidLayout)
	}

	return b, turn, nil
}

// Layout encodes the board and side to move. Hidden pieces are encoded at their
// board coordinates like any other.
func (b *Board) Layout(turn core.Side) string {
	var sb strings.Builder
	for y := 0; y < core.BoardSize; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for x := 0; x < core.BoardSize; x++ {
			p := b.PieceAt(x, y)
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pieceChar(p))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(turn.String())
	return sb.String()
}

func pieceChar(p *Piece) byte {
	var c byte = 'r'
	if p.Side == core.Side1 {
		c = 'b'
	}
	if p.King {
		c -= 'a' - 'A'
	}
	return c
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for y := 0; y < core.BoardSize; y++ {
		sb.WriteString(fmt.Sprintf("%d ", core.BoardSize-y))
		for x := 0; x < core.BoardSize; x++ {
			p := b.PieceAt(x, y)
			if p == nil {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", pieceChar(p)))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", core.BoardSize-y))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

// Square returns the notation for tile (x, y), file letter then rank digit
func Square(x, y int) string {
	if !InBounds(x, y) {
		return "??"
	}
	return fmt.Sprintf("%c%d", 'a'+x, core.BoardSize-y)
}

// ParseSquare converts notation like "b3" back to tile coordinates
func ParseSquare(s string) (int, int, bool) {
	if len(s) != 2 {
		return 0, 0, false
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, 0, false
	}
	return int(s[0] - 'a'), core.BoardSize - int(s[1]-'0'), true
}
