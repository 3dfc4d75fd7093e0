package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"checkers/internal/server/storage"

	"github.com/google/uuid"
)

func TestInitQueryDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	var out bytes.Buffer

	if err := run(&out, []string{"init", "-path", path}); err != nil {
		t.Fatal(err)
	}

	gameID := uuid.New().String()
	store, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	store.RecordNewGame(storage.GameRecord{
		GameID:        gameID,
		InitialLayout: "8/8/8/8/8/8/8/r7 0",
		Promotion:     "none",
		CanvasSize:    640,
		StartTimeUTC:  time.Now().UTC(),
	})
	store.RecordMove(storage.MoveRecord{
		GameID:      gameID,
		MoveNumber:  1,
		Notation:    "a1-b2",
		LayoutAfter: "8/8/8/8/8/8/1r6/8 1",
		MoveTimeUTC: time.Now().UTC(),
	})
	if err := store.Flush(time.Second); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out.Reset()
	if err := run(&out, []string{"query", "-path", path, "-gameId", "*"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), gameID[:8]) || !strings.Contains(out.String(), "Found 1 game(s)") {
		t.Fatalf("query output:\n%s", out.String())
	}

	out.Reset()
	if err := run(&out, []string{"moves", "-path", path, "-gameId", gameID}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "a1-b2") {
		t.Fatalf("moves output:\n%s", out.String())
	}

	if err := run(&out, []string{"delete", "-path", path}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("database file still present: %v", err)
	}
}

func TestArgumentErrors(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{
		nil,
		{"vacuum"},
		{"init"},
		{"query", "-path", "x.db", "-gameId", "not-a-uuid"},
		{"moves", "-path", "x.db"},
	} {
		if err := run(&out, args); err == nil {
			t.Errorf("args %v: expected error", args)
		}
	}
}
