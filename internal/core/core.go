package core

// Side identifies one of the two players. Side 0 moves first.
type Side int

const (
	Side0 Side = iota
	Side1
)

func (s Side) String() string {
	switch s {
	case Side0:
		return "0"
	case Side1:
		return "1"
	default:
		return "-"
	}
}

func Opponent(s Side) Side {
	if s == Side0 {
		return Side1
	}
	return Side0
}

// Phase is the selection state of a game session
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelected
	PhaseBusy // Commit transition in flight
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	case PhaseBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Promotion selects what happens when a man reaches the far row
type Promotion string

const (
	PromotionNone     Promotion = "none"
	PromotionBackRank Promotion = "back-rank"
)

// BoardSize is the number of tiles along each edge
const BoardSize = 8

// Tile is a board coordinate, column X and row Y
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}
