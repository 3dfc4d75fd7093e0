package display

import (
	"fmt"
	"io"
	"strings"

	"checkers/internal/core"
)

// RenderBoard prints the server's ASCII board with colored pieces
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isFileLine := (i == 0) || (i == len(lines)-1)

		for _, char := range line {
			switch {
			case isFileLine && char >= 'a' && char <= 'h':
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			case char == 'r' || char == 'R':
				fmt.Fprintf(w, "%s%c%s", Red, char, Reset)
			case char == 'b' || char == 'B':
				fmt.Fprintf(w, "%s%c%s", Blue, char, Reset)
			case char >= '1' && char <= '8':
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			default:
				fmt.Fprintf(w, "%c", char)
			}
		}
		fmt.Fprintln(w)
	}
}

// RenderGame draws the board from a game response, marking the selected
// piece, the offered destinations and a piece in flight.
func RenderGame(w io.Writer, g *core.GameResponse) {
	var grid [core.BoardSize][core.BoardSize]string
	for y := range grid {
		for x := range grid[y] {
			grid[y][x] = "."
		}
	}

	for _, m := range g.AvailableMoves {
		mark := "*"
		if m.ToKill != nil {
			mark = "x"
		}
		grid[m.Y][m.X] = Green + mark + Reset
	}

	for _, p := range g.Pieces {
		ch, color := "r", Red
		if p.Side == core.Side1 {
			ch, color = "b", Blue
		}
		if p.King {
			ch = strings.ToUpper(ch)
		}
		if g.Selected != nil && g.Selected.X == p.X && g.Selected.Y == p.Y {
			color = Yellow
		}
		grid[p.Y][p.X] = color + ch + Reset
	}

	// The piece in flight is off the static board: ~ where it left, o where it lands
	if t := g.Transition; t != nil {
		grid[t.From.Y][t.From.X] = Magenta + "~" + Reset
		grid[t.To.Y][t.To.X] = Magenta + "o" + Reset
	}

	files := Cyan + "  a b c d e f g h" + Reset
	fmt.Fprintln(w, files)
	for y := 0; y < core.BoardSize; y++ {
		rank := core.BoardSize - y
		fmt.Fprintf(w, "%s%d%s ", Cyan, rank, Reset)
		for x := 0; x < core.BoardSize; x++ {
			fmt.Fprintf(w, "%s ", grid[y][x])
		}
		fmt.Fprintf(w, " %s%d%s\n", Cyan, rank, Reset)
	}
	fmt.Fprintln(w, files)
}

// SideName returns the colored name of a side
func SideName(side core.Side) string {
	if side == core.Side0 {
		return Red + "Red" + Reset
	}
	return Blue + "Black" + Reset
}
