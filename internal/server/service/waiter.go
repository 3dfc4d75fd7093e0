package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second
)

// WaitRegistry manages long-polling clients waiting for session changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	Version uint64        // Last version seen by the client
	Notify  chan struct{} // Closed on change, timeout, deletion or shutdown
	Timer   *time.Timer
	GameID  string

	once sync.Once
}

func (r *WaitRequest) fire() {
	r.once.Do(func() {
		close(r.Notify)
	})
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that is closed once the game moves past
// version, the wait times out, the game is removed or the client leaves.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, version uint64) <-chan struct{} {
	req := &WaitRequest{
		Version: version,
		Notify:  make(chan struct{}),
		GameID:  gameID,
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		req.fire()
		return req.Notify
	}
	req.Timer = time.AfterFunc(WaitTimeout, req.fire)
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-req.Notify:
		case <-w.shutdown:
		}
		req.Timer.Stop()
		w.removeWaiter(gameID, req)
		req.fire()
	}()

	return req.Notify
}

// NotifyGame wakes every waiter whose version differs from version
func (w *WaitRegistry) NotifyGame(gameID string, version uint64) {
	w.mu.Lock()
	waitList := append([]*WaitRequest(nil), w.waiters[gameID]...)
	w.mu.Unlock()

	for _, req := range waitList {
		if req.Version != version {
			req.fire()
		}
	}
}

// RemoveGame wakes and drops all waiters for a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.fire()
	}
}

// Count returns the number of clients currently waiting across all games
func (w *WaitRegistry) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, waitList := range w.waiters {
		n += len(waitList)
	}
	return n
}

// Shutdown releases all waiters and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
