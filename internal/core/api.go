package core

// Request types

type CreateGameRequest struct {
	Layout          string `json:"layout,omitempty" validate:"omitempty,max=80"`
	AnimationFrames *int   `json:"animationFrames,omitempty" validate:"omitempty,min=0,max=240"`
	Promotion       string `json:"promotion,omitempty" validate:"omitempty,oneof=none back-rank"`
	CanvasSize      int    `json:"canvasSize,omitempty" validate:"omitempty,min=64,max=4096"`
}

// ClickRequest carries a semantic click already resolved by the renderer
type ClickRequest struct {
	Kind string `json:"kind" validate:"required,oneof=piece move empty"`
	X    int    `json:"x" validate:"min=0,max=7"`
	Y    int    `json:"y" validate:"min=0,max=7"`
}

// TapRequest carries a raw pointer position in canvas pixels
type TapRequest struct {
	X float64 `json:"x" validate:"min=0"`
	Y float64 `json:"y" validate:"min=0"`
}

type UndoRequest struct {
	Count int `json:"count,omitempty" validate:"omitempty,min=1,max=500"` // Defaults to 1
}

// Response types

type GameResponse struct {
	GameID         string          `json:"gameId"`
	Layout         string          `json:"layout"`
	Turn           Side            `json:"turn"`
	Phase          string          `json:"phase"`
	Version        uint64          `json:"version"`
	Pieces         []PieceView     `json:"pieces"`
	Selected       *Tile           `json:"selected,omitempty"`
	AvailableMoves []MoveView      `json:"availableMoves,omitempty"`
	Movable        []Tile          `json:"movable"`
	Moves          []string        `json:"moves"`
	Transition     *TransitionView `json:"transition,omitempty"`
	Canvas         CanvasInfo      `json:"canvas"`
	Outcome        string          `json:"outcome,omitempty"` // Set on click responses only
}

// PieceView is a piece drawn at rest. The piece in flight is carried by TransitionView instead.
type PieceView struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Side Side `json:"side"`
	King bool `json:"king"`
}

type MoveView struct {
	X      int   `json:"x"`
	Y      int   `json:"y"`
	ToKill *Tile `json:"toKill,omitempty"`
}

// TransitionView is the in-flight slide of a committed move, in tiles and pixels
type TransitionView struct {
	Side   Side    `json:"side"`
	King   bool    `json:"king"`
	From   Tile    `json:"from"`
	To     Tile    `json:"to"`
	Frame  int     `json:"frame"`
	Frames int     `json:"frames"`
	PX     float64 `json:"px"`
	PY     float64 `json:"py"`
}

type CanvasInfo struct {
	Size      int     `json:"size"`
	CellSize  float64 `json:"cellSize"`
	HitRadius float64 `json:"hitRadius"`
}

type BoardResponse struct {
	Layout string `json:"layout"`
	Board  string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
