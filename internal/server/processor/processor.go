package processor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/geometry"
	"checkers/internal/rules"
	"checkers/internal/server/service"
)

// Config holds the defaults applied to new games and the animator settings
type Config struct {
	AnimationFrames int
	Promotion       core.Promotion
	CanvasSize      int
	HitRadius       float64
	FrameInterval   time.Duration
	Workers         int
}

func DefaultConfig() Config {
	return Config{
		AnimationFrames: 12,
		Promotion:       core.PromotionNone,
		CanvasSize:      geometry.DefaultCanvasSize,
		HitRadius:       geometry.DefaultHitRadius,
		FrameInterval:   DefaultFrameInterval,
		Workers:         2,
	}
}

// Processor handles command execution and coordinates the service and animator
type Processor struct {
	svc      *service.Service
	cfg      Config
	animator *Animator
}

func New(svc *service.Service, cfg Config) *Processor {
	if cfg.Promotion == "" {
		cfg.Promotion = core.PromotionNone
	}
	return &Processor{
		svc:      svc,
		cfg:      cfg,
		animator: NewAnimator(svc, cfg.Workers, cfg.FrameInterval),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdClick:
		return p.handleClick(cmd)
	case CmdTap:
		return p.handleTap(cmd)
	case CmdUndo:
		return p.handleUndo(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isLayoutSafe rejects control characters before the layout reaches the parser
func isLayoutSafe(layout string) bool {
	for _, r := range layout {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// handleCreateGame builds a session from the request, falling back to configured defaults
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	layout := board.StartingLayout
	if args.Layout != "" {
		if !isLayoutSafe(args.Layout) {
			return p.errorResponse("invalid layout characters", core.ErrInvalidLayout)
		}
		layout = strings.TrimSpace(args.Layout)
	}

	opts := game.Options{
		AnimationFrames: p.cfg.AnimationFrames,
		Promotion:       p.cfg.Promotion,
		Mapper:          geometry.NewMapper(p.cfg.CanvasSize, p.cfg.HitRadius),
	}
	if args.AnimationFrames != nil {
		opts.AnimationFrames = *args.AnimationFrames
	}
	if args.Promotion != "" {
		opts.Promotion = core.Promotion(args.Promotion)
	}
	if args.CanvasSize > 0 {
		opts.Mapper = geometry.NewMapper(args.CanvasSize, p.cfg.HitRadius)
	}

	sess, err := game.NewFromLayout(layout, opts)
	if err != nil {
		return p.errorResponse(fmt.Sprintf("invalid layout: %v", err), core.ErrInvalidLayout)
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, sess); err != nil {
		if errors.Is(err, service.ErrTooManyGames) {
			return p.errorResponse("game limit reached", core.ErrResourceLimit)
		}
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	return p.respondWithGame(gameID, "")
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.respondWithGame(cmd.GameID, "")
}

// handleClick applies a semantic click resolved by the renderer
func (p *Processor) handleClick(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ClickRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	kind, ok := game.ParseEventKind(args.Kind)
	if !ok {
		return p.errorResponse(fmt.Sprintf("unknown click kind: %s", args.Kind), core.ErrInvalidRequest)
	}
	ev := game.Event{Kind: kind, X: args.X, Y: args.Y}

	return p.dispatch(cmd.GameID, func(*game.Session) game.Event { return ev })
}

// handleTap hit-tests a raw pointer position and applies the resulting click
func (p *Processor) handleTap(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.TapRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	return p.dispatch(cmd.GameID, func(s *game.Session) game.Event {
		return s.Dispatcher().Resolve(s, args.X, args.Y)
	})
}

// dispatch resolves and applies one click under the game lock. A commit
// hands the transition to the animator.
func (p *Processor) dispatch(gameID string, resolve func(*game.Session) game.Event) ProcessorResponse {
	var (
		outcome game.Outcome
		busy    bool
		animate bool
	)

	err := p.svc.WithGame(gameID, func(s *game.Session) error {
		if s.Phase() == core.PhaseBusy {
			busy = true
			return nil
		}
		var err error
		outcome, err = s.Click(resolve(s))
		animate = s.Phase() == core.PhaseBusy
		return err
	})

	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case err != nil:
		return p.errorResponse(fmt.Sprintf("click failed: %v", err), core.ErrInternalError)
	case busy:
		return p.errorResponse("move transition in progress", core.ErrGameBusy)
	}

	if animate {
		p.startAnimation(gameID)
	}

	return p.respondWithGame(gameID, outcome.String())
}

// startAnimation queues the transition, finishing it inline when the animator is saturated
func (p *Processor) startAnimation(gameID string) {
	if err := p.animator.Submit(AnimationTask{GameID: gameID}); err != nil {
		log.Printf("Animator unavailable for game %s, settling immediately: %v", gameID, err)
		if err := finishGame(p.svc, gameID); err != nil {
			log.Printf("Failed to settle game %s: %v", gameID, err)
		}
	}
}

func (p *Processor) handleUndo(cmd Command) ProcessorResponse {
	args, _ := cmd.Args.(core.UndoRequest)
	if args.Count == 0 {
		args.Count = 1
	}

	err := p.svc.WithGame(cmd.GameID, func(s *game.Session) error {
		return s.Undo(args.Count)
	})

	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, game.ErrBusy):
		return p.errorResponse("cannot undo while a move is in progress", core.ErrGameBusy)
	case err != nil:
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	return p.respondWithGame(cmd.GameID, "")
}

// handleDeleteGame removes a game, dropping any pending transition
func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.ViewGame(cmd.GameID, func(s *game.Session) error {
		resp = core.BoardResponse{
			Layout: s.Layout(),
			Board:  s.Board().ToASCII(),
		}
		return nil
	})
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// respondWithGame snapshots the game into a response. Pending is set while
// a transition is running.
func (p *Processor) respondWithGame(gameID, outcome string) ProcessorResponse {
	var resp core.GameResponse
	err := p.svc.ViewGame(gameID, func(s *game.Session) error {
		resp = BuildGameResponse(gameID, s)
		return nil
	})
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	resp.Outcome = outcome

	return ProcessorResponse{
		Success: true,
		Pending: resp.Phase == core.PhaseBusy.String(),
		Data:    resp,
	}
}

// BuildGameResponse renders everything a client needs to draw the session.
// Callers must hold the game lock.
func BuildGameResponse(gameID string, s *game.Session) core.GameResponse {
	b := s.Board()
	mapper := s.Options().Mapper

	resp := core.GameResponse{
		GameID:  gameID,
		Layout:  s.Layout(),
		Turn:    s.Turn(),
		Phase:   s.Phase().String(),
		Version: s.Version(),
		Pieces:  []core.PieceView{},
		Movable: []core.Tile{},
		Moves:   s.Moves(),
		Canvas: core.CanvasInfo{
			Size:      mapper.CanvasSize,
			CellSize:  mapper.CellSize,
			HitRadius: mapper.HitRadius,
		},
	}

	for _, piece := range b.Visible() {
		resp.Pieces = append(resp.Pieces, core.PieceView{
			X:    piece.X,
			Y:    piece.Y,
			Side: piece.Side,
			King: piece.King,
		})
	}

	if sel := s.Selected(); sel != nil {
		tile := sel.Tile()
		resp.Selected = &tile
	}

	for _, m := range s.AvailableMoves() {
		mv := core.MoveView{X: m.X, Y: m.Y}
		if m.ToKill != nil {
			victim := m.ToKill.Tile()
			mv.ToKill = &victim
		}
		resp.AvailableMoves = append(resp.AvailableMoves, mv)
	}

	if t := s.Transition(); t != nil {
		px, py := mapper.Lerp(t.From, t.To(), t.Progress())
		resp.Transition = &core.TransitionView{
			Side:   t.Piece.Side,
			King:   t.Piece.King,
			From:   t.From,
			To:     t.To(),
			Frame:  t.Frame(),
			Frames: t.Frames,
			PX:     px,
			PY:     py,
		}
	} else {
		for _, piece := range rules.Movable(b, s.Turn()) {
			resp.Movable = append(resp.Movable, piece.Tile())
		}
	}

	return resp
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Service exposes the underlying service for transports that wait on games
func (p *Processor) Service() *service.Service {
	return p.svc
}

// Close stops the animator and settles any transition it did not pick up
func (p *Processor) Close() error {
	var errs []error
	if err := p.animator.Shutdown(5 * time.Second); err != nil {
		errs = append(errs, fmt.Errorf("animator: %w", err))
	}
	for _, gameID := range p.svc.BusyGames() {
		if err := finishGame(p.svc, gameID); err != nil {
			errs = append(errs, fmt.Errorf("settle %s: %w", gameID, err))
		}
	}
	return errors.Join(errs...)
}
