package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"checkers/internal/client/api"
	"checkers/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "cls",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "cls",
		Handler:     clearScreenHandler,
	})
}

func healthHandler(s Session, args []string) error {
	resp, err := s.GetClient().Health()
	if err != nil {
		return err
	}
	printHealth(os.Stdout, resp)
	return nil
}

// printHealth summarizes the server's live games and whether moves are still being recorded
func printHealth(w io.Writer, h *api.HealthResponse) {
	fmt.Fprintf(w, "%sCheckers server %s%s at %s\n", display.Cyan, h.Status, display.Reset,
		time.Unix(h.Time, 0).Format("15:04:05"))
	fmt.Fprintf(w, "  Games:   %d live, %d animating\n", h.Games, h.Busy)
	fmt.Fprintf(w, "  Waiters: %d\n", h.Waiters)

	storage := h.Storage
	if storage == "" {
		storage = "unknown"
	}
	fmt.Fprintf(w, "  Storage: %s\n", display.StorageState(storage))
	switch storage {
	case "disabled":
		fmt.Fprintf(w, "  Moves are not recorded (server started without -storage-path)\n")
	case "degraded":
		fmt.Fprintf(w, "  %sA storage write failed, new moves are no longer recorded%s\n", display.Red, display.Reset)
	}
}

// normalizeURL adds a scheme when the user typed only host:port
func normalizeURL(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return strings.TrimRight(url, "/")
}

func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Current API URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	url := normalizeURL(args[0])
	s.SetAPIBaseURL(url)
	s.GetClient().SetBaseURL(url)

	fmt.Printf("%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	method := strings.ToUpper(args[0])
	path := args[1]

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}

	return s.GetClient().RawRequest(method, path, body)
}

func clearScreenHandler(s Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
