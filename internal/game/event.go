package game

import (
	"checkers/internal/core"
	"checkers/internal/geometry"
)

type EventKind int

const (
	EventEmpty EventKind = iota
	EventPiece
	EventMove
)

func (k EventKind) String() string {
	switch k {
	case EventPiece:
		return "piece"
	case EventMove:
		return "move"
	default:
		return "empty"
	}
}

func ParseEventKind(s string) (EventKind, bool) {
	switch s {
	case "piece":
		return EventPiece, true
	case "move":
		return EventMove, true
	case "empty":
		return EventEmpty, true
	default:
		return EventEmpty, false
	}
}

// Event is one semantic click: on a piece, on an offered move, or on empty space
type Event struct {
	Kind EventKind
	X    int
	Y    int
}

func PieceEvent(x, y int) Event {
	return Event{Kind: EventPiece, X: x, Y: y}
}

func MoveEvent(x, y int) Event {
	return Event{Kind: EventMove, X: x, Y: y}
}

func EmptyEvent() Event {
	return Event{Kind: EventEmpty}
}

// Outcome reports what a click did to the session
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSelected
	OutcomeDeselected
	OutcomeCommitted
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeDeselected:
		return "deselected"
	case OutcomeCommitted:
		return "committed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// Dispatcher turns canvas pixels into semantic events for a session
type Dispatcher struct {
	Mapper geometry.Mapper
}

// Resolve hit-tests a pointer position. Offered moves are checked before pieces;
// both use the same tile-center proximity test.
func (d Dispatcher) Resolve(s *Session, px, py float64) Event {
	tile := core.Tile{X: d.Mapper.ScreenToTile(px), Y: d.Mapper.ScreenToTile(py)}
	if !d.Mapper.NearTileCenter(px, py, tile) {
		return EmptyEvent()
	}

	for _, m := range s.AvailableMoves() {
		if m.X == tile.X && m.Y == tile.Y {
			return MoveEvent(tile.X, tile.Y)
		}
	}
	if p := s.Board().PieceAt(tile.X, tile.Y); p != nil {
		return PieceEvent(tile.X, tile.Y)
	}
	return EmptyEvent()
}
