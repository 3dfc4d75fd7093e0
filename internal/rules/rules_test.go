package rules

import (
	"testing"

	"checkers/internal/board"
	"checkers/internal/core"
)

func mustLayout(t *testing.T, layout string) *board.Board {
	t.Helper()
	b, _, err := board.ParseLayout(layout)
	if err != nil {
		t.Fatalf("parse layout %q: %v", layout, err)
	}
	return b
}

func TestCaptureOffered(t *testing.T) {
	// Side 0 on (1,5), enemy on (2,4), (3,3) empty
	b := mustLayout(t, "8/8/8/8/2b5/1r6/8/8 0")
	p := b.PieceAt(1, 5)
	enemy := b.PieceAt(2, 4)

	if got := CanCapture(b, p, 1, -1); got != enemy {
		t.Fatalf("CanCapture = %+v, want enemy on (2,4)", got)
	}

	moves := GenerateMoves(b, p, false)
	m, ok := Find(moves, 3, 3)
	if !ok {
		t.Fatalf("capture to (3,3) missing from %+v", moves)
	}
	if m.ToKill != enemy {
		t.Fatalf("capture targets %+v, want enemy on (2,4)", m.ToKill)
	}
}

func TestCaptureBlockedByOccupiedLanding(t *testing.T) {
	for _, tc := range []struct {
		name   string
		layout string
	}{
		{"friend on landing", "8/8/8/3r4/2b5/1r6/8/8 0"},
		{"foe on landing", "8/8/8/3b4/2b5/1r6/8/8 0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := mustLayout(t, tc.layout)
			p := b.PieceAt(1, 5)

			if got := CanCapture(b, p, 1, -1); got != nil {
				t.Fatalf("CanCapture should fail, got %+v", got)
			}
			if _, ok := Find(GenerateMoves(b, p, false), 3, 3); ok {
				t.Fatal("capture onto occupied (3,3) must not be generated")
			}
		})
	}
}

func TestCaptureBlockedByEdge(t *testing.T) {
	// Enemy on (0,4) cannot be jumped from (1,5) since (-1,3) is off the board
	b := mustLayout(t, "8/8/8/8/b7/1r6/8/8 0")
	if got := CanCapture(b, b.PieceAt(1, 5), -1, -1); got != nil {
		t.Fatalf("expected no capture over the edge, got %+v", got)
	}
}

func TestNoCaptureOfOwnSide(t *testing.T) {
	b := mustLayout(t, "8/8/8/8/2r5/1r6/8/8 0")
	if got := CanCapture(b, b.PieceAt(1, 5), 1, -1); got != nil {
		t.Fatalf("captured a friendly piece: %+v", got)
	}
}

func TestForwardDirection(t *testing.T) {
	b := mustLayout(t, "8/8/8/3b4/8/3r4/8/8 0")

	red := GenerateMoves(b, b.PieceAt(3, 5), false)
	want := []Move{{X: 2, Y: 4}, {X: 4, Y: 4}}
	assertMoves(t, "side 0", red, want)

	black := GenerateMoves(b, b.PieceAt(3, 3), false)
	want = []Move{{X: 2, Y: 4}, {X: 4, Y: 4}}
	assertMoves(t, "side 1", black, want)
}

func TestKingMovesBothWays(t *testing.T) {
	b := mustLayout(t, "8/8/8/3R4/8/8/8/8 0")
	moves := GenerateMoves(b, b.PieceAt(3, 3), false)
	want := []Move{{X: 2, Y: 2}, {X: 2, Y: 4}, {X: 4, Y: 2}, {X: 4, Y: 4}}
	assertMoves(t, "king", moves, want)
}

func TestKingCapturesBackward(t *testing.T) {
	// Side 0 king on (3,3) with enemy behind it on (4,4) and (5,5) empty
	b := mustLayout(t, "8/8/8/3R4/4b3/8/8/8 0")
	king := b.PieceAt(3, 3)

	m, ok := Find(GenerateMoves(b, king, false), 5, 5)
	if !ok || m.ToKill != b.PieceAt(4, 4) {
		t.Fatalf("expected backward capture to (5,5), got %+v", GenerateMoves(b, king, false))
	}

	man := mustLayout(t, "8/8/8/3r4/4b3/8/8/8 0")
	if _, ok := Find(GenerateMoves(man, man.PieceAt(3, 3), false), 5, 5); ok {
		t.Fatal("a man must not capture backward")
	}
}

func TestOrderingStepsBeforeCaptures(t *testing.T) {
	// Side 0 on (3,5): left step open to (2,4), enemy on (4,4) with (5,3) free
	b := mustLayout(t, "8/8/8/8/4b3/3r4/8/8 0")
	moves := GenerateMoves(b, b.PieceAt(3, 5), false)

	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %+v", moves)
	}
	if moves[0].IsCapture() || moves[0].X != 2 || moves[0].Y != 4 {
		t.Fatalf("first move should be step to (2,4), got %+v", moves[0])
	}
	if !moves[1].IsCapture() || moves[1].X != 5 || moves[1].Y != 3 {
		t.Fatalf("second move should be capture to (5,3), got %+v", moves[1])
	}

	captures := GenerateMoves(b, b.PieceAt(3, 5), true)
	if len(captures) != 1 || !captures[0].IsCapture() {
		t.Fatalf("captureOnly should return only the capture, got %+v", captures)
	}
}

func TestKingCaptureOrder(t *testing.T) {
	// Enemies on all four diagonals with free landings, captures follow direction order
	b := mustLayout(t, "8/8/2b1b3/3R4/2b1b3/8/8/8 0")
	moves := GenerateMoves(b, b.PieceAt(3, 3), false)
	want := []Move{{X: 1, Y: 1}, {X: 1, Y: 5}, {X: 5, Y: 1}, {X: 5, Y: 5}}
	assertMoves(t, "king captures", moves, want)
	for _, m := range moves {
		if !m.IsCapture() {
			t.Fatalf("expected only captures, got %+v", m)
		}
	}
}

func TestDestinationsNeverOccupied(t *testing.T) {
	layouts := []string{
		board.StartingLayout,
		"8/8/2b1b3/3R4/2b1b3/8/8/8 0",
		"1b1b1b1b/b1b1b1b1/8/1b1b1b1b/r1r1r1r1/8/1r1r1r1r/r1r1r1r1 1",
		"8/8/8/3b4/2b5/1r6/8/8 0",
	}
	for _, layout := range layouts {
		b := mustLayout(t, layout)
		for _, p := range b.Pieces() {
			for _, m := range GenerateMoves(b, p, false) {
				if b.PieceAt(m.X, m.Y) != nil {
					t.Errorf("%s: move %+v from (%d,%d) lands on a piece", layout, m, p.X, p.Y)
				}
				if !board.InBounds(m.X, m.Y) {
					t.Errorf("%s: move %+v from (%d,%d) leaves the board", layout, m, p.X, p.Y)
				}
			}
		}
	}
}

func TestCanStepAndHasAnyMove(t *testing.T) {
	b := board.New()

	// Back row of side 0 is boxed in by its own pieces
	back := b.PieceAt(0, 7)
	if HasAnyMove(b, back) {
		t.Fatal("back-row piece should have no move at start")
	}
	front := b.PieceAt(0, 5)
	if !HasAnyMove(b, front) {
		t.Fatal("front-row piece should be able to move")
	}
	if CanStep(b, front, -1, -1) {
		t.Fatal("step off the left edge must not be possible")
	}
	if !CanStep(b, front, 1, -1) {
		t.Fatal("step to (1,4) should be possible")
	}

	// Blocked step but capture available still counts
	jump := mustLayout(t, "8/8/8/8/2b5/1r6/8/8 0")
	if !CanStep(jump, jump.PieceAt(1, 5), 1, -1) {
		t.Fatal("CanStep should report an available capture")
	}
}

func TestMovableAtStart(t *testing.T) {
	b := board.New()
	for _, side := range []core.Side{core.Side0, core.Side1} {
		movable := Movable(b, side)
		if len(movable) != 4 {
			t.Fatalf("side %v: expected 4 movable pieces, got %d", side, len(movable))
		}
		for _, p := range movable {
			if p.Side != side {
				t.Fatalf("side %v: foreign piece in movable set", side)
			}
		}
	}
}

func TestNotation(t *testing.T) {
	b := mustLayout(t, "8/8/8/8/2b5/1r6/8/8 0")
	p := b.PieceAt(1, 5)
	moves := GenerateMoves(b, p, false)

	got := make(map[string]bool)
	for _, m := range moves {
		got[Notation(p.X, p.Y, m)] = true
	}
	if !got["b3-a4"] || !got["b3xd5"] {
		t.Fatalf("unexpected notation set %v", got)
	}
}

func assertMoves(t *testing.T, name string, got, want []Move) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d moves %+v, want %+v", name, len(got), got, want)
	}
	for i := range want {
		if got[i].X != want[i].X || got[i].Y != want[i].Y {
			t.Fatalf("%s: move %d = (%d,%d), want (%d,%d)", name, i, got[i].X, got[i].Y, want[i].X, want[i].Y)
		}
	}
}
