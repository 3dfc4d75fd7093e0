package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned when another checkers-server holds the PID file lock
var ErrAlreadyRunning = errors.New("another checkers-server instance is running")

// pidFile records the server PID for init scripts. With locking it also keeps
// a second server from sharing the same storage file.
type pidFile struct {
	path   string
	file   *os.File
	locked bool
}

// acquirePIDFile writes the current PID to path. With lock the file is held
// under an exclusive flock until Release; a leftover file nobody holds is
// reused, since the lock died with its owner.
func acquirePIDFile(path string, lock bool) (*pidFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open PID file: %w", err)
	}

	if lock {
		if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			file.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				if pid, ok := readPID(path); ok {
					return nil, fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, pid, path)
				}
				return nil, fmt.Errorf("%w (%s)", ErrAlreadyRunning, path)
			}
			return nil, fmt.Errorf("cannot lock PID file: %w", err)
		}
	} else if pid, ok := readPID(path); ok && pid != os.Getpid() && processAlive(pid) {
		log.Printf("Warning: PID file %s names running process %d, overwriting (use -pid-lock to refuse)", path, pid)
	}

	p := &pidFile{path: path, file: file, locked: lock}
	if err := p.write(os.Getpid()); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *pidFile) write(pid int) error {
	if err := p.file.Truncate(0); err != nil {
		return fmt.Errorf("cannot truncate PID file: %w", err)
	}
	if _, err := p.file.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return fmt.Errorf("cannot write PID: %w", err)
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("cannot sync PID file: %w", err)
	}
	return nil
}

// Release removes the file and drops the lock. Safe on a nil receiver so
// startup failures can release unconditionally.
func (p *pidFile) Release() error {
	if p == nil || p.file == nil {
		return nil
	}

	// Remove while still locked so a starting server never reads our PID
	err := os.Remove(p.path)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	if p.locked {
		syscall.Flock(int(p.file.Fd()), syscall.LOCK_UN)
	}
	closeErr := p.file.Close()
	p.file = nil

	return errors.Join(err, closeErr)
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive probes pid with signal 0
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
