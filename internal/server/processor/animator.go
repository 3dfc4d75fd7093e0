package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"checkers/internal/game"
	"checkers/internal/server/service"
)

const (
	// DefaultFrameInterval is one display frame at 60 Hz
	DefaultFrameInterval = 16 * time.Millisecond
	animatorQueueSize    = 100
)

// AnimationTask asks a worker to drive a game's in-flight transition
type AnimationTask struct {
	GameID string
}

// Animator ticks committed transitions frame by frame until they settle
type Animator struct {
	svc      *service.Service
	tasks    chan AnimationTask
	workers  int
	interval time.Duration
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewAnimator creates a worker pool stepping transitions at interval
func NewAnimator(svc *service.Service, workerCount int, interval time.Duration) *Animator {
	if workerCount < 1 {
		workerCount = 2 // Default
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Animator{
		svc:      svc,
		tasks:    make(chan AnimationTask, animatorQueueSize),
		workers:  workerCount,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}

	a.start()
	return a
}

func (a *Animator) start() {
	for i := 0; i < a.workers; i++ {
		a.wg.Add(1)
		go a.worker()
	}
}

func (a *Animator) worker() {
	defer a.wg.Done()

	for {
		select {
		case task := <-a.tasks:
			a.run(task)
		case <-a.ctx.Done():
			return
		}
	}
}

// run steps one transition per tick. On shutdown the transition is finished
// at once so no game is left locked.
func (a *Animator) run(task AnimationTask) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			if err := finishGame(a.svc, task.GameID); err != nil {
				log.Printf("Animator: failed to finish game %s: %v", task.GameID, err)
			}
			return

		case <-ticker.C:
			settled := false
			err := a.svc.WithGame(task.GameID, func(s *game.Session) error {
				if s.Transition() == nil {
					settled = true
					return nil
				}
				done, err := s.Step()
				settled = done
				return err
			})

			switch {
			case errors.Is(err, service.ErrGameNotFound):
				// Game deleted mid-transition
				return
			case err != nil:
				log.Printf("Animator: game %s stuck: %v", task.GameID, err)
				return
			case settled:
				return
			}
		}
	}
}

// Submit queues a transition without blocking
func (a *Animator) Submit(task AnimationTask) error {
	select {
	case <-a.ctx.Done():
		return fmt.Errorf("animator is shutting down")
	default:
	}

	select {
	case a.tasks <- task:
		return nil
	default:
		return fmt.Errorf("animator queue is full")
	}
}

// Shutdown stops the workers; transitions in progress are finished first
func (a *Animator) Shutdown(timeout time.Duration) error {
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// finishGame runs a game's transition to completion in one step
func finishGame(svc *service.Service, gameID string) error {
	err := svc.WithGame(gameID, func(s *game.Session) error {
		return s.Finish()
	})
	if errors.Is(err, service.ErrGameNotFound) {
		return nil
	}
	return err
}
