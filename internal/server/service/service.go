package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/server/storage"

	"github.com/google/uuid"
)

const (
	// MaxGames caps the number of live sessions held in memory
	MaxGames = 1000
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrTooManyGames = errors.New("game limit reached")
	ErrGameExists   = errors.New("game already exists")
)

// Service coordinates live sessions, long-poll waiters and the audit store
type Service struct {
	games  map[string]*game.Session
	mu     sync.RWMutex
	store  *storage.Store
	waiter *WaitRegistry
}

// New creates a service. store may be nil when persistence is disabled.
func New(store *storage.Store) *Service {
	return &Service{
		games:  make(map[string]*game.Session),
		store:  store,
		waiter: NewWaitRegistry(),
	}
}

func (s *Service) GenerateGameID() string {
	return uuid.New().String()
}

// CreateGame registers sess under gameID and records it in storage
func (s *Service) CreateGame(gameID string, sess *game.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; ok {
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	if len(s.games) >= MaxGames {
		return ErrTooManyGames
	}
	s.games[gameID] = sess

	if s.store != nil {
		opts := sess.Options()
		s.store.RecordNewGame(storage.GameRecord{
			GameID:          gameID,
			InitialLayout:   sess.InitialLayout(),
			AnimationFrames: opts.AnimationFrames,
			Promotion:       string(opts.Promotion),
			CanvasSize:      opts.Mapper.CanvasSize,
			StartTimeUTC:    time.Now().UTC(),
		})
	}

	return nil
}

// ViewGame runs fn with read access to the session
func (s *Service) ViewGame(gameID string, fn func(*game.Session) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return fn(sess)
}

// WithGame runs fn with exclusive access to the session. Settled and undone
// moves are mirrored to storage, and waiters are woken when the version moved.
func (s *Service) WithGame(gameID string, fn func(*game.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	version := sess.Version()
	moves := sess.MoveCount()

	err := fn(sess)

	s.recordMoves(gameID, sess, moves)
	if sess.Version() != version {
		s.waiter.NotifyGame(gameID, sess.Version())
	}
	return err
}

// recordMoves syncs storage with the session history, given the count before the change
func (s *Service) recordMoves(gameID string, sess *game.Session, before int) {
	if s.store == nil {
		return
	}

	after := sess.MoveCount()
	if after < before {
		s.store.DeleteUndoneMoves(gameID, after)
		return
	}

	now := time.Now().UTC()
	for _, m := range sess.History()[before:] {
		s.store.RecordMove(storage.MoveRecord{
			GameID:      gameID,
			MoveNumber:  m.Number,
			Notation:    m.Move,
			LayoutAfter: m.Layout,
			Side:        int(m.Side),
			Captured:    m.Captured,
			Promoted:    m.Promoted,
			MoveTimeUTC: now,
		})
	}
}

// DeleteGame drops the session along with any pending transition
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)
	if s.store != nil {
		s.store.DeleteGame(gameID)
	}
	return nil
}

// GameCount returns the number of live sessions
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// BusyGames lists live sessions that are mid-transition
func (s *Service) BusyGames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, sess := range s.games {
		if sess.Phase() == core.PhaseBusy {
			ids = append(ids, id)
		}
	}
	return ids
}

// RegisterWait registers a client to wait for a change past version
func (s *Service) RegisterWait(ctx context.Context, gameID string, version uint64) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, version)
}

// WaiterCount returns the number of open long-polls and stream waits
func (s *Service) WaiterCount() int {
	return s.waiter.Count()
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown releases waiters, drops sessions and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Session)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}
