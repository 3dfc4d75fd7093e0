package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	writeQueueSize = 1000
	drainTimeout   = 2 * time.Second
)

// Store is a write-mostly audit log of games and moves. Writes are queued
// and applied by one goroutine; the first failed write marks the store
// degraded and later writes are dropped.
type Store struct {
	db      *sql.DB
	path    string
	writes  chan func(*sql.Tx) error
	healthy atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewStore opens the database at path and starts the writer
func NewStore(path string, wal bool) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per connection, so the pool is pinned to one
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if wal {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:     db,
		path:   path,
		writes: make(chan func(*sql.Tx) error, writeQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.healthy.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// IsHealthy returns true until a queued write fails
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case fn := <-s.writes:
			if s.healthy.Load() {
				s.apply(fn)
			}

		case <-s.ctx.Done():
			deadline := time.After(drainTimeout)
			for {
				select {
				case fn := <-s.writes:
					if s.healthy.Load() {
						s.apply(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}
		}
	}
}

// apply runs fn in its own transaction
func (s *Store) apply(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.degrade("begin transaction", err)
		return
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		s.degrade("write", err)
		return
	}
	if err := tx.Commit(); err != nil {
		s.degrade("commit", err)
	}
}

func (s *Store) degrade(op string, err error) {
	log.Printf("Storage degraded: %s failed: %v", op, err)
	s.healthy.Store(false)
}

// enqueue hands fn to the writer without blocking. Writes are dropped when
// the store is degraded or the queue is full.
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) {
	if !s.healthy.Load() {
		return
	}
	select {
	case s.writes <- fn:
	default:
		log.Printf("Storage write queue full, dropping %s", what)
	}
}

// Flush blocks until every write queued before the call has been applied
func (s *Store) Flush(timeout time.Duration) error {
	done := make(chan struct{})
	select {
	case s.writes <- func(*sql.Tx) error {
		close(done)
		return nil
	}:
	case <-time.After(timeout):
		return fmt.Errorf("flush: write queue full")
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("flush: timeout waiting for writer")
	}
}

// Close stops the writer, applying what is queued, and closes the database
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(drainTimeout):
		log.Printf("Warning: storage writer shutdown timeout, some writes may be lost")
	}

	return s.db.Close()
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
