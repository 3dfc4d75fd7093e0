// Package main implements an interactive debugging client for the checkers server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"checkers/internal/client/commands"
	"checkers/internal/client/display"
	"checkers/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Checkers server base URL")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	flag.Parse()

	display.InitColors()
	if *noColor {
		display.DisableColors()
	}

	s := session.New(*apiURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("checkers"),
		HistoryFile:     ".checkers_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sCheckers Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Trailing -v dumps raw requests for this one command
		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	prompt := "checkers"

	if s.CurrentGame != "" {
		id := s.CurrentGame
		if len(id) > 8 {
			id = id[:8]
		}
		prompt += display.Yellow + " [" + display.White + id + display.Yellow + "]" + display.Reset
	}

	if g := s.CurrentGameState; g != nil {
		prompt += fmt.Sprintf(" - Turn:%s %s(%s)%s", display.SideName(g.Turn), display.Cyan, g.Phase, display.Reset)
	}

	return display.Prompt(prompt)
}
