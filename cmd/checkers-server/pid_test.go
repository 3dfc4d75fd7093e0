package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func pidIn(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read PID file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("PID file holds %q", data)
	}
	return pid
}

func TestPIDFileLockRefusesSecondServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkers.pid")

	first, err := acquirePIDFile(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := pidIn(t, path); got != os.Getpid() {
		t.Fatalf("PID file holds %d, want %d", got, os.Getpid())
	}

	// flock conflicts across open file descriptions, even within one process
	if _, err := acquirePIDFile(path, true); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second locked acquire: got %v, want ErrAlreadyRunning", err)
	}
	if got := pidIn(t, path); got != os.Getpid() {
		t.Fatal("refused acquire must leave the holder's PID in place")
	}

	if err := first.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("PID file left behind after release: %v", err)
	}

	again, err := acquirePIDFile(path, true)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again.Release()
}

func TestPIDFileReusesStaleFile(t *testing.T) {
	for _, lock := range []bool{false, true} {
		t.Run("lock="+strconv.FormatBool(lock), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "checkers.pid")
			// Longer than the new content, so truncation is observable
			if err := os.WriteFile(path, []byte("not-a-pid-from-a-crash\n"), 0644); err != nil {
				t.Fatal(err)
			}

			p, err := acquirePIDFile(path, lock)
			if err != nil {
				t.Fatalf("stale file refused: %v", err)
			}
			defer p.Release()

			if got := pidIn(t, path); got != os.Getpid() {
				t.Fatalf("PID file holds %d, want %d", got, os.Getpid())
			}
		})
	}
}

func TestPIDFileReleaseNil(t *testing.T) {
	var p *pidFile
	if err := p.Release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}
