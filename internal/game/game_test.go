package game

import (
	"errors"
	"testing"

	"checkers/internal/board"
	"checkers/internal/core"
)

func newSession(t *testing.T, layout string, opts Options) *Session {
	t.Helper()
	s, err := NewFromLayout(layout, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func click(t *testing.T, s *Session, ev Event) Outcome {
	t.Helper()
	out, err := s.Click(ev)
	if err != nil {
		t.Fatalf("click %+v: %v", ev, err)
	}
	return out
}

func TestInitialState(t *testing.T) {
	s := New(Options{})
	if s.Phase() != core.PhaseIdle || s.Turn() != core.Side0 {
		t.Fatalf("expected idle with side 0 to move, got %v/%v", s.Phase(), s.Turn())
	}
	if s.Selected() != nil || s.AvailableMoves() != nil {
		t.Fatal("fresh session should have no selection")
	}
	if s.Layout() != board.StartingLayout {
		t.Fatalf("layout = %s", s.Layout())
	}
	if len(s.Moves()) != 0 {
		t.Fatalf("expected no moves, got %v", s.Moves())
	}
}

func TestIdleNonActionableClicks(t *testing.T) {
	s := New(Options{})
	before := s.Version()

	for _, ev := range []Event{EmptyEvent(), PieceEvent(1, 0), PieceEvent(3, 3), MoveEvent(1, 4)} {
		if out := click(t, s, ev); out != OutcomeIgnored {
			t.Errorf("%+v: outcome %v, want ignored", ev, out)
		}
	}
	if s.Phase() != core.PhaseIdle || s.Version() != before {
		t.Fatalf("idle clicks changed state: phase %v version %d", s.Phase(), s.Version())
	}
}

func TestSelectAndReselect(t *testing.T) {
	s := New(Options{})

	if out := click(t, s, PieceEvent(0, 5)); out != OutcomeSelected {
		t.Fatalf("outcome %v, want selected", out)
	}
	if s.Phase() != core.PhaseSelected || s.Selected() != s.Board().PieceAt(0, 5) {
		t.Fatal("piece on (0,5) should be selected")
	}
	moves := s.AvailableMoves()
	if len(moves) != 1 || moves[0].X != 1 || moves[0].Y != 4 {
		t.Fatalf("unexpected moves %+v", moves)
	}

	click(t, s, PieceEvent(2, 5))
	if s.Selected() != s.Board().PieceAt(2, 5) {
		t.Fatal("reselect did not switch piece")
	}
	if got := len(s.AvailableMoves()); got != 2 {
		t.Fatalf("expected 2 moves for (2,5), got %d", got)
	}
}

func TestClickEmptyDeselects(t *testing.T) {
	for _, origin := range []core.Tile{{X: 0, Y: 5}, {X: 6, Y: 5}, {X: 1, Y: 6}} {
		s := New(Options{})
		click(t, s, PieceEvent(origin.X, origin.Y))

		if out := click(t, s, EmptyEvent()); out != OutcomeDeselected {
			t.Fatalf("from %+v: outcome %v, want deselected", origin, out)
		}
		if s.Phase() != core.PhaseIdle || s.Selected() != nil || s.AvailableMoves() != nil {
			t.Fatalf("from %+v: selection not cleared", origin)
		}
		if s.Turn() != core.Side0 {
			t.Fatal("deselect must not change the turn")
		}
	}
}

func TestClickEnemyPieceDeselects(t *testing.T) {
	s := New(Options{})
	click(t, s, PieceEvent(0, 5))
	if out := click(t, s, PieceEvent(1, 2)); out != OutcomeDeselected {
		t.Fatalf("outcome %v, want deselected", out)
	}
	if s.Phase() != core.PhaseIdle {
		t.Fatal("expected idle after clicking enemy piece")
	}
}

func TestMoveOutsideAvailableRejected(t *testing.T) {
	s := New(Options{})
	click(t, s, PieceEvent(0, 5))
	layout := s.Layout()

	if out := click(t, s, MoveEvent(3, 4)); out != OutcomeRejected {
		t.Fatalf("outcome %v, want rejected", out)
	}
	if s.Layout() != layout || s.Turn() != core.Side0 {
		t.Fatal("rejected move mutated the board or turn")
	}
	if s.Phase() != core.PhaseSelected {
		t.Fatal("rejected move should keep the selection")
	}
}

func TestCommitStep(t *testing.T) {
	s := New(Options{})
	mover := s.Board().PieceAt(2, 5)

	click(t, s, PieceEvent(2, 5))
	if out := click(t, s, MoveEvent(3, 4)); out != OutcomeCommitted {
		t.Fatalf("outcome %v, want committed", out)
	}

	if s.Phase() != core.PhaseIdle || s.Turn() != core.Side1 {
		t.Fatalf("expected idle with side 1 to move, got %v/%v", s.Phase(), s.Turn())
	}
	if s.Board().PieceAt(3, 4) != mover || s.Board().PieceAt(2, 5) != nil {
		t.Fatal("mover not relocated")
	}
	if mover.Hidden {
		t.Fatal("mover still hidden after settling")
	}
	if s.Board().Len() != 24 {
		t.Fatalf("simple move changed piece count to %d", s.Board().Len())
	}
	if moves := s.Moves(); len(moves) != 1 || moves[0] != "c3-d4" {
		t.Fatalf("moves = %v", moves)
	}
	if r := s.LastResult(); r == nil || r.Side != core.Side0 || r.Captured || r.Number != 1 {
		t.Fatalf("unexpected last result %+v", r)
	}
}

func TestCommitCapture(t *testing.T) {
	s := newSession(t, "b7/8/8/8/2b5/1r6/8/7b 0", Options{})
	mover := s.Board().PieceAt(1, 5)
	victim := s.Board().PieceAt(2, 4)
	bystanders := []*board.Piece{s.Board().PieceAt(0, 0), s.Board().PieceAt(7, 7)}

	click(t, s, PieceEvent(1, 5))
	if out := click(t, s, MoveEvent(3, 3)); out != OutcomeCommitted {
		t.Fatalf("outcome %v, want committed", out)
	}

	b := s.Board()
	if b.Len() != 3 {
		t.Fatalf("expected 3 pieces after capture, got %d", b.Len())
	}
	if b.Contains(victim) {
		t.Fatal("captured piece still on the board")
	}
	if b.PieceAt(3, 3) != mover {
		t.Fatal("mover not on landing tile")
	}
	for _, p := range bystanders {
		if !b.Contains(p) {
			t.Fatalf("bystander %+v removed", p)
		}
	}
	if s.LastResult() == nil || !s.LastResult().Captured {
		t.Fatal("last result should record the capture")
	}
	if moves := s.Moves(); moves[0] != "b3xd5" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestTurnFlipsOncePerCommit(t *testing.T) {
	s := New(Options{})
	script := []struct {
		ev   Event
		turn core.Side
	}{
		{PieceEvent(0, 5), core.Side0},
		{EmptyEvent(), core.Side0},
		{PieceEvent(0, 5), core.Side0},
		{MoveEvent(1, 4), core.Side1},
		{PieceEvent(1, 4), core.Side1}, // no longer the mover's turn
		{PieceEvent(1, 2), core.Side1},
		{MoveEvent(2, 3), core.Side0},
		{EmptyEvent(), core.Side0},
	}

	for i, step := range script {
		click(t, s, step.ev)
		if s.Turn() != step.turn {
			t.Fatalf("step %d (%+v): turn %v, want %v", i, step.ev, s.Turn(), step.turn)
		}
	}
	if got := len(s.Moves()); got != 2 {
		t.Fatalf("expected 2 moves, got %d", got)
	}
}

func TestBusyRejectsClicks(t *testing.T) {
	s := New(Options{AnimationFrames: 3})
	mover := s.Board().PieceAt(2, 5)

	click(t, s, PieceEvent(2, 5))
	click(t, s, MoveEvent(3, 4))

	if s.Phase() != core.PhaseBusy {
		t.Fatalf("expected busy, got %v", s.Phase())
	}
	if !mover.Hidden {
		t.Fatal("mover should be hidden during the transition")
	}
	if s.Board().PieceAt(2, 5) != mover || s.Turn() != core.Side0 {
		t.Fatal("board and turn must not change before the transition settles")
	}
	if tr := s.Transition(); tr == nil || tr.From != (core.Tile{X: 2, Y: 5}) || tr.To() != (core.Tile{X: 3, Y: 4}) {
		t.Fatalf("unexpected transition %+v", s.Transition())
	}

	for _, ev := range []Event{PieceEvent(4, 5), EmptyEvent(), MoveEvent(3, 4), PieceEvent(1, 2)} {
		if out := click(t, s, ev); out != OutcomeIgnored {
			t.Fatalf("%+v during transition: outcome %v, want ignored", ev, out)
		}
	}
	if err := s.Undo(1); !errors.Is(err, ErrBusy) {
		t.Fatalf("undo during transition: %v, want ErrBusy", err)
	}

	for i := 0; i < 2; i++ {
		settled, err := s.Step()
		if err != nil || settled {
			t.Fatalf("frame %d: settled=%v err=%v", i+1, settled, err)
		}
	}
	if p := s.Transition().Progress(); p < 0.66 || p > 0.67 {
		t.Fatalf("progress after 2 of 3 frames = %v", p)
	}

	settled, err := s.Step()
	if err != nil || !settled {
		t.Fatalf("last frame: settled=%v err=%v", settled, err)
	}
	if s.Phase() != core.PhaseIdle || s.Turn() != core.Side1 || mover.Hidden {
		t.Fatal("session did not settle after the last frame")
	}
	if s.Board().PieceAt(3, 4) != mover {
		t.Fatal("mover not relocated after settling")
	}
	if settled, _ := s.Step(); settled {
		t.Fatal("Step without a transition should be a no-op")
	}
}

func TestFinish(t *testing.T) {
	s := New(Options{AnimationFrames: 10})
	click(t, s, PieceEvent(0, 5))
	click(t, s, MoveEvent(1, 4))

	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}
	if s.Transition() != nil || s.Phase() != core.PhaseIdle || s.Turn() != core.Side1 {
		t.Fatal("Finish should settle the move")
	}
}

func TestUndo(t *testing.T) {
	s := New(Options{})
	click(t, s, PieceEvent(0, 5))
	click(t, s, MoveEvent(1, 4))
	afterFirst := s.Layout()
	click(t, s, PieceEvent(1, 2))
	click(t, s, MoveEvent(0, 3))

	if err := s.Undo(3); err == nil {
		t.Fatal("undoing more moves than played should fail")
	}
	if err := s.Undo(0); err == nil {
		t.Fatal("zero undo count should fail")
	}

	if err := s.Undo(1); err != nil {
		t.Fatal(err)
	}
	if s.Layout() != afterFirst || s.Turn() != core.Side1 {
		t.Fatalf("undo 1: layout %s turn %v", s.Layout(), s.Turn())
	}
	if len(s.Moves()) != 1 {
		t.Fatalf("expected 1 move after undo, got %v", s.Moves())
	}
	if h := s.History(); len(h) != 1 || h[0].Move != "a3-b4" || s.MoveCount() != 1 {
		t.Fatalf("history after undo = %+v", h)
	}

	click(t, s, PieceEvent(3, 2))
	if err := s.Undo(1); err != nil {
		t.Fatal(err)
	}
	if s.Layout() != board.StartingLayout || s.Phase() != core.PhaseIdle || s.LastResult() != nil {
		t.Fatal("undo to the start should restore the initial state and clear selection")
	}
}

func TestPromotionPolicy(t *testing.T) {
	layout := "8/1r6/8/8/8/8/8/7b 0"

	tests := []struct {
		name   string
		policy core.Promotion
		king   bool
	}{
		{"none", core.PromotionNone, false},
		{"default", "", false},
		{"back rank", core.PromotionBackRank, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, layout, Options{Promotion: tt.policy})
			p := s.Board().PieceAt(1, 1)
			click(t, s, PieceEvent(1, 1))
			click(t, s, MoveEvent(0, 0))

			if p.King != tt.king {
				t.Fatalf("king = %v, want %v", p.King, tt.king)
			}
			if s.LastResult().Promoted != tt.king {
				t.Fatalf("promoted = %v, want %v", s.LastResult().Promoted, tt.king)
			}
		})
	}
}

func TestDispatcherResolve(t *testing.T) {
	s := New(Options{})
	d := s.Dispatcher()
	center := func(x, y int) (float64, float64) {
		return d.Mapper.TileToScreen(x), d.Mapper.TileToScreen(y)
	}

	px, py := center(0, 5)
	if ev := d.Resolve(s, px, py); ev != PieceEvent(0, 5) {
		t.Fatalf("click on piece resolved to %+v", ev)
	}
	if ev := d.Resolve(s, px+35, py+35); ev.Kind != EventEmpty {
		t.Fatalf("click in tile corner resolved to %+v", ev)
	}

	px, py = center(1, 4)
	if ev := d.Resolve(s, px, py); ev.Kind != EventEmpty {
		t.Fatalf("empty tile without selection resolved to %+v", ev)
	}

	click(t, s, PieceEvent(0, 5))
	if ev := d.Resolve(s, px, py); ev != MoveEvent(1, 4) {
		t.Fatalf("offered move resolved to %+v", ev)
	}

	px, py = center(3, 4)
	if ev := d.Resolve(s, px, py); ev.Kind != EventEmpty {
		t.Fatalf("tile not offered resolved to %+v", ev)
	}
}

func TestParseEventKind(t *testing.T) {
	for _, k := range []EventKind{EventPiece, EventMove, EventEmpty} {
		got, ok := ParseEventKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseEventKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseEventKind("drag"); ok {
		t.Fatal("unknown kind should not parse")
	}
}

func TestCaptureEndsTurnWithoutChaining(t *testing.T) {
	// After b3xd5 a second jump over (4,2) would be open; the turn passes anyway
	s := newSession(t, "8/8/4b3/8/2b5/1r6/8/8 0", Options{})

	click(t, s, PieceEvent(1, 5))
	if out := click(t, s, MoveEvent(3, 3)); out != OutcomeCommitted {
		t.Fatalf("outcome %v, want committed", out)
	}

	if s.Turn() != core.Side1 || s.Phase() != core.PhaseIdle {
		t.Fatalf("expected idle with side 1 to move, got %v/%v", s.Phase(), s.Turn())
	}
	if s.Selected() != nil {
		t.Fatal("capturing piece must not stay selected for another jump")
	}
	if s.Board().PieceAt(2, 4) != nil || s.Board().PieceAt(4, 2) == nil {
		t.Fatal("only the jumped piece should be removed")
	}
}

func TestCaptureIsOptional(t *testing.T) {
	s := newSession(t, "8/8/8/8/2b5/1r6/8/8 0", Options{})

	click(t, s, PieceEvent(1, 5))
	if out := click(t, s, MoveEvent(0, 4)); out != OutcomeCommitted {
		t.Fatalf("step with a capture available: outcome %v, want committed", out)
	}
	if s.Board().Len() != 2 {
		t.Fatalf("no piece should be captured, board holds %d", s.Board().Len())
	}
	if got := s.Moves(); len(got) != 1 || got[0] != "b3-a4" {
		t.Fatalf("moves = %v, want [b3-a4]", got)
	}
}

func TestSettleRejectsVanishedPiece(t *testing.T) {
	s := New(Options{AnimationFrames: 2})
	click(t, s, PieceEvent(2, 5))
	click(t, s, MoveEvent(3, 4))

	tr := s.Transition()
	if tr == nil {
		t.Fatal("expected a transition in flight")
	}
	s.Board().Remove(tr.Piece)

	if err := s.Finish(); err == nil {
		t.Fatal("settling a piece that left the board must fail")
	}
}
