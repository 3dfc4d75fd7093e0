package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"checkers/internal/board"
	"checkers/internal/client/display"
	"checkers/internal/core"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new game",
		Usage:       "new [-layout rows] [-turn 0|1] [-frames n] [-promotion none|back-rank] [-canvas px]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current game ID",
		Usage:       "join <gameId>",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "select",
		ShortName:   "s",
		Description: "Click a piece",
		Usage:       "select <square> | select <x> <y>",
		Handler:     clickHandler("piece"),
	})

	r.Register(&Command{
		Name:        "to",
		ShortName:   "t",
		Description: "Click an offered destination",
		Usage:       "to <square> | to <x> <y>",
		Handler:     clickHandler("move"),
	})

	r.Register(&Command{
		Name:        "tap",
		ShortName:   "k",
		Description: "Click at canvas pixel coordinates",
		Usage:       "tap <px> <py>",
		Handler:     tapHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "c",
		Description: "Click empty space, dropping the selection",
		Usage:       "clear",
		Handler:     clearSelectionHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo moves",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board with selection and game state",
		Usage:       "show",
		Handler:     showHandler,
	})

	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the server's ASCII board",
		Usage:       "board",
		Handler:     boardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "i",
		Description: "Show raw game JSON",
		Usage:       "state",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     deleteGameHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll for game updates",
		Usage:       "poll",
		Handler:     pollHandler,
	})
}

func currentGame(s Session) (string, error) {
	gameID := s.GetCurrentGame()
	if gameID == "" {
		return "", fmt.Errorf("no current game, use 'new' or 'join <gameId>'")
	}
	return gameID, nil
}

// parseNewArgs builds a create request from the new command's flags
func parseNewArgs(args []string) (*core.CreateGameRequest, error) {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	layout := fs.String("layout", "", "layout rows, '/' separated")
	turn := fs.Int("turn", 0, "side to move with -layout")
	frames := fs.Int("frames", -1, "animation frames per move")
	promotion := fs.String("promotion", "", "promotion policy")
	canvas := fs.Int("canvas", 0, "canvas size in pixels")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	req := &core.CreateGameRequest{
		Promotion:  *promotion,
		CanvasSize: *canvas,
	}
	if *layout != "" {
		if *turn != 0 && *turn != 1 {
			return nil, fmt.Errorf("turn must be 0 or 1")
		}
		req.Layout = fmt.Sprintf("%s %d", *layout, *turn)
	}
	if *frames >= 0 {
		req.AnimationFrames = frames
	}
	return req, nil
}

// parseTile accepts either square notation ("c3") or two coordinates ("2 5")
func parseTile(args []string) (int, int, error) {
	switch len(args) {
	case 1:
		x, y, ok := board.ParseSquare(strings.ToLower(args[0]))
		if !ok {
			return 0, 0, fmt.Errorf("invalid square: %s", args[0])
		}
		return x, y, nil
	case 2:
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil || !board.InBounds(x, y) {
			return 0, 0, fmt.Errorf("invalid coordinates: %s %s", args[0], args[1])
		}
		return x, y, nil
	default:
		return 0, 0, fmt.Errorf("expected a square or two coordinates")
	}
}

// report prints a click outcome and the resulting board
func report(s Session, g *core.GameResponse) {
	s.SetGameState(g)
	if g.Outcome != "" {
		fmt.Printf("%sOutcome: %s%s\n", display.Green, g.Outcome, display.Reset)
	}
	fmt.Println()
	display.RenderGame(os.Stdout, g)
	printStatus(g)
}

func printStatus(g *core.GameResponse) {
	fmt.Printf("\nTurn: %s | Phase: %s | Moves: %d | Version: %d\n",
		display.SideName(g.Turn), g.Phase, len(g.Moves), g.Version)

	if g.Selected != nil {
		dests := make([]string, 0, len(g.AvailableMoves))
		for _, m := range g.AvailableMoves {
			sep := "-"
			if m.ToKill != nil {
				sep = "x"
			}
			dests = append(dests, sep+board.Square(m.X, m.Y))
		}
		fmt.Printf("Selected: %s  Moves: %s\n", board.Square(g.Selected.X, g.Selected.Y), strings.Join(dests, " "))
	}
	if g.Transition != nil {
		fmt.Printf("%sMoving %s to %s (frame %d/%d)%s\n", display.Magenta,
			board.Square(g.Transition.From.X, g.Transition.From.Y),
			board.Square(g.Transition.To.X, g.Transition.To.Y),
			g.Transition.Frame, g.Transition.Frames, display.Reset)
	}
}

func newGameHandler(s Session, args []string) error {
	req, err := parseNewArgs(args)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().CreateGame(req)
	if err != nil {
		return err
	}

	s.SetCurrentGame(resp.GameID)
	s.SetGameState(resp)

	fmt.Printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	report(s, resp)
	return nil
}

func joinGameHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <gameId>")
	}

	gameID := args[0]
	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}

	s.SetCurrentGame(gameID)
	s.SetGameState(resp)

	fmt.Printf("%sJoined game: %s%s\n", display.Green, gameID, display.Reset)
	printStatus(resp)
	return nil
}

func clickHandler(kind string) func(Session, []string) error {
	return func(s Session, args []string) error {
		gameID, err := currentGame(s)
		if err != nil {
			return err
		}
		x, y, err := parseTile(args)
		if err != nil {
			return err
		}

		resp, err := s.GetClient().Click(gameID, &core.ClickRequest{Kind: kind, X: x, Y: y})
		if err != nil {
			return err
		}
		report(s, resp)
		return nil
	}
}

func tapHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: tap <px> <py>")
	}
	px, errX := strconv.ParseFloat(args[0], 64)
	py, errY := strconv.ParseFloat(args[1], 64)
	if errX != nil || errY != nil || px < 0 || py < 0 {
		return fmt.Errorf("invalid pixel coordinates: %s %s", args[0], args[1])
	}

	resp, err := s.GetClient().Tap(gameID, &core.TapRequest{X: px, Y: py})
	if err != nil {
		return err
	}
	report(s, resp)
	return nil
}

func clearSelectionHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Click(gameID, &core.ClickRequest{Kind: "empty"})
	if err != nil {
		return err
	}
	report(s, resp)
	return nil
}

func undoHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	count := 1
	if len(args) > 0 {
		count, err = strconv.Atoi(args[0])
		if err != nil || count < 1 {
			return fmt.Errorf("invalid count: %s", args[0])
		}
	}

	resp, err := s.GetClient().UndoMoves(gameID, count)
	if err != nil {
		return err
	}

	fmt.Printf("%sUndid %d move(s)%s\n", display.Green, count, display.Reset)
	report(s, resp)
	return nil
}

func showHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}
	report(s, resp)

	if len(resp.Moves) > 0 {
		fmt.Printf("\nHistory: ")
		for i, move := range resp.Moves {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Printf("%d.%s", i+1, move)
		}
		fmt.Println()
	}
	fmt.Printf("Layout: %s\n", resp.Layout)
	return nil
}

func boardHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetBoard(gameID)
	if err != nil {
		return err
	}

	fmt.Println()
	display.RenderBoard(os.Stdout, resp.Board)
	fmt.Printf("\nLayout: %s\n", resp.Layout)
	return nil
}

func gameStateHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}
	s.SetGameState(resp)

	fmt.Printf("%sGame State:%s\n", display.Cyan, display.Reset)
	display.WriteJSON(os.Stdout, resp)
	return nil
}

func deleteGameHandler(s Session, args []string) error {
	gameID := s.GetCurrentGame()
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("specify game ID or set current game")
	}

	if err := s.GetClient().DeleteGame(gameID); err != nil {
		return err
	}

	if gameID == s.GetCurrentGame() {
		s.SetCurrentGame("")
	}

	fmt.Printf("%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}

func pollHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	version := s.GetLastVersion()
	fmt.Printf("%sLong-polling for updates (version: %d)...%s\n", display.Cyan, version, display.Reset)
	fmt.Printf("%sThis may take up to 25 seconds%s\n", display.Cyan, display.Reset)

	resp, err := s.GetClient().GetGameWithPoll(gameID, version)
	if err != nil {
		return err
	}

	if resp.Version == version {
		fmt.Printf("%sNo changes%s\n", display.Yellow, display.Reset)
		return nil
	}
	report(s, resp)
	return nil
}
