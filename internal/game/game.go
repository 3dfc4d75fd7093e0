package game

import (
	"errors"
	"fmt"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/geometry"
	"checkers/internal/rules"
)

var ErrBusy = errors.New("move transition in progress")

type Snapshot struct {
	Layout       string    `json:"layout"`
	PreviousMove string    `json:"previousMove"`
	NextTurn     core.Side `json:"nextTurn"`
}

// MoveResult tracks the outcome of a settled move
type MoveResult struct {
	Number   int       `json:"number"`
	Move     string    `json:"move"`
	Side     core.Side `json:"side"`
	Captured bool      `json:"captured"`
	Promoted bool      `json:"promoted"`
	Layout   string    `json:"layout"` // Layout after the move
}

type Options struct {
	AnimationFrames int
	Promotion       core.Promotion
	Mapper          geometry.Mapper
}

// Session owns the board and the turn/selection state of one game.
// It is not safe for concurrent use; callers serialise access.
type Session struct {
	board      *board.Board
	turn       core.Side
	phase      core.Phase
	selected   *board.Piece
	available  []rules.Move
	pending    *Transition
	snapshots  []Snapshot
	opts       Options
	version    uint64
	lastResult *MoveResult
	history    []MoveResult
}

// New starts a session from the standard formation with side 0 to move
func New(opts Options) *Session {
	s, _ := NewFromLayout(board.StartingLayout, opts)
	return s
}

func NewFromLayout(layout string, opts Options) (*Session, error) {
	b, turn, err := board.ParseLayout(layout)
	if err != nil {
		return nil, err
	}
	if opts.Promotion == "" {
		opts.Promotion = core.PromotionNone
	}
	if opts.Mapper.CellSize == 0 {
		opts.Mapper = geometry.NewMapper(0, 0)
	}
	if opts.AnimationFrames < 0 {
		opts.AnimationFrames = 0
	}

	return &Session{
		board: b,
		turn:  turn,
		phase: core.PhaseIdle,
		snapshots: []Snapshot{
			{Layout: b.Layout(turn), NextTurn: turn},
		},
		opts: opts,
	}, nil
}

func (s *Session) Board() *board.Board {
	return s.board
}

func (s *Session) Turn() core.Side {
	return s.turn
}

func (s *Session) Phase() core.Phase {
	return s.phase
}

func (s *Session) Selected() *board.Piece {
	return s.selected
}

// AvailableMoves returns a copy of the moves offered for the selected piece
func (s *Session) AvailableMoves() []rules.Move {
	if s.available == nil {
		return nil
	}
	out := make([]rules.Move, len(s.available))
	copy(out, s.available)
	return out
}

// Transition returns the in-flight commit, or nil when not busy
func (s *Session) Transition() *Transition {
	return s.pending
}

// Version increments on every observable change
func (s *Session) Version() uint64 {
	return s.version
}

func (s *Session) Options() Options {
	return s.opts
}

func (s *Session) Dispatcher() Dispatcher {
	return Dispatcher{Mapper: s.opts.Mapper}
}

func (s *Session) LastResult() *MoveResult {
	return s.lastResult
}

// History returns every settled move still on record, oldest first
func (s *Session) History() []MoveResult {
	out := make([]MoveResult, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) MoveCount() int {
	return len(s.history)
}

func (s *Session) Layout() string {
	return s.board.Layout(s.turn)
}

func (s *Session) InitialLayout() string {
	return s.snapshots[0].Layout
}

func (s *Session) Moves() []string {
	moves := []string{}
	for i := 1; i < len(s.snapshots); i++ {
		if s.snapshots[i].PreviousMove != "" {
			moves = append(moves, s.snapshots[i].PreviousMove)
		}
	}
	return moves
}

// Click applies one semantic click. Clicks are ignored while a commit is in flight.
func (s *Session) Click(ev Event) (Outcome, error) {
	if s.phase == core.PhaseBusy {
		return OutcomeIgnored, nil
	}

	switch ev.Kind {
	case EventPiece:
		p := s.board.PieceAt(ev.X, ev.Y)
		if p != nil && p.Side == s.turn {
			s.selectPiece(p)
			return OutcomeSelected, nil
		}
		return s.deselect(), nil

	case EventMove:
		if s.phase != core.PhaseSelected {
			return OutcomeIgnored, nil
		}
		m, ok := rules.Find(s.available, ev.X, ev.Y)
		if !ok {
			// Dispatcher and controller disagree, leave everything untouched
			return OutcomeRejected, nil
		}
		if err := s.commit(m); err != nil {
			return OutcomeIgnored, err
		}
		return OutcomeCommitted, nil

	default:
		return s.deselect(), nil
	}
}

func (s *Session) selectPiece(p *board.Piece) {
	s.selected = p
	s.available = rules.GenerateMoves(s.board, p, false)
	s.phase = core.PhaseSelected
	s.version++
}

func (s *Session) deselect() Outcome {
	if s.phase == core.PhaseIdle {
		return OutcomeIgnored
	}
	s.clearSelection()
	s.version++
	return OutcomeDeselected
}

func (s *Session) clearSelection() {
	s.selected = nil
	s.available = nil
	s.phase = core.PhaseIdle
}

// commit locks the session and starts the transition for m
func (s *Session) commit(m rules.Move) error {
	p := s.selected
	s.pending = &Transition{
		Piece:  p,
		From:   p.Tile(),
		Move:   m,
		Frames: s.opts.AnimationFrames,
	}
	p.Hidden = true
	s.selected = nil
	s.available = nil
	s.phase = core.PhaseBusy
	s.version++

	if s.pending.Done() {
		return s.settle()
	}
	return nil
}

// Step advances the in-flight transition by one frame and settles the move
// once the last frame is reached. It reports whether the move settled.
func (s *Session) Step() (bool, error) {
	if s.pending == nil {
		return false, nil
	}
	s.pending.advance()
	if !s.pending.Done() {
		s.version++
		return false, nil
	}
	if err := s.settle(); err != nil {
		return false, err
	}
	return true, nil
}

// Finish runs the in-flight transition to completion
func (s *Session) Finish() error {
	for s.pending != nil {
		if _, err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// settle applies the pending move to the board and hands the turn over
func (s *Session) settle() error {
	t := s.pending
	p := t.Piece

	if !s.board.Contains(p) {
		return fmt.Errorf("moving piece missing from board at %s", board.Square(t.From.X, t.From.Y))
	}
	if t.Move.ToKill != nil {
		if !s.board.Remove(t.Move.ToKill) {
			return fmt.Errorf("captured piece missing from board at %s", board.Square(t.Move.ToKill.X, t.Move.ToKill.Y))
		}
	}
	if err := s.board.Relocate(p, t.Move.X, t.Move.Y); err != nil {
		return fmt.Errorf("failed to settle move: %w", err)
	}
	p.Hidden = false

	promoted := s.promote(p)
	mover := s.turn
	s.turn = core.Opponent(s.turn)

	notation := rules.Notation(t.From.X, t.From.Y, t.Move)
	layout := s.board.Layout(s.turn)
	s.snapshots = append(s.snapshots, Snapshot{
		Layout:       layout,
		PreviousMove: notation,
		NextTurn:     s.turn,
	})
	s.lastResult = &MoveResult{
		Number:   len(s.snapshots) - 1,
		Move:     notation,
		Side:     mover,
		Captured: t.Move.ToKill != nil,
		Promoted: promoted,
		Layout:   layout,
	}
	s.history = append(s.history, *s.lastResult)

	s.pending = nil
	s.clearSelection()
	s.version++
	return nil
}

func (s *Session) promote(p *board.Piece) bool {
	if s.opts.Promotion != core.PromotionBackRank || p.King {
		return false
	}
	far := 0
	if p.Side == core.Side1 {
		far = core.BoardSize - 1
	}
	if p.Y != far {
		return false
	}
	p.King = true
	return true
}

// Undo reverts count settled moves, restoring the board and the side to move
func (s *Session) Undo(count int) error {
	if s.phase == core.PhaseBusy {
		return ErrBusy
	}
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(s.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	snap := s.snapshots[len(s.snapshots)-1-count]
	b, turn, err := board.ParseLayout(snap.Layout)
	if err != nil {
		return fmt.Errorf("corrupt snapshot: %w", err)
	}

	s.snapshots = s.snapshots[:len(s.snapshots)-count]
	s.history = s.history[:len(s.history)-count]
	s.board = b
	s.turn = turn
	s.clearSelection()
	s.lastResult = nil
	s.version++
	return nil
}
