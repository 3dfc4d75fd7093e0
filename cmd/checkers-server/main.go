// Package main runs the checkers session server: the HTTP and websocket API
// over in-memory sessions, with an optional SQLite audit trail.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkers/cmd/checkers-server/cli"
	"checkers/internal/core"
	"checkers/internal/geometry"
	"checkers/internal/server/http"
	"checkers/internal/server/processor"
	"checkers/internal/server/service"
	"checkers/internal/server/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Database maintenance commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	defaults := processor.DefaultConfig()

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")

		frames        = flag.Int("frames", defaults.AnimationFrames, "Default animation frames per committed move (0 settles at once)")
		frameInterval = flag.Duration("frame-interval", defaults.FrameInterval, "Time between animation frames")
		promotion     = flag.String("promotion", string(defaults.Promotion), "Default promotion policy: none or back-rank")
		canvasSize    = flag.Int("canvas-size", geometry.DefaultCanvasSize, "Default canvas size in pixels")
		hitRadius     = flag.Float64("hit-radius", geometry.DefaultHitRadius, "Click hit radius around tile centers in pixels")
		workers       = flag.Int("workers", defaults.Workers, "Animation worker count")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}
	if *frames < 0 {
		log.Fatal("Error: -frames must not be negative")
	}
	policy := core.Promotion(*promotion)
	if policy != core.PromotionNone && policy != core.PromotionBackRank {
		log.Fatalf("Error: unknown promotion policy %q", *promotion)
	}

	// Taken before storage opens so a locked second server never touches the database
	var pid *pidFile
	if *pidPath != "" {
		var err error
		pid, err = acquirePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to acquire PID file: %v", err)
		}
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}
	// log.Fatalf skips deferred calls, so startup failures release explicitly
	fail := func(format string, v ...any) {
		pid.Release()
		log.Fatalf(format, v...)
	}

	// 1. Storage (optional), closed by the service on shutdown
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			fail("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			fail("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Service
	svc := service.New(store)

	// 3. Processor with its animation workers
	proc := processor.New(svc, processor.Config{
		AnimationFrames: *frames,
		Promotion:       policy,
		CanvasSize:      *canvasSize,
		HitRadius:       *hitRadius,
		FrameInterval:   *frameInterval,
		Workers:         *workers,
	})

	// 4. HTTP app
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Checkers API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("Animation: %d frames every %v, %d workers", *frames, *frameInterval, *workers)
		log.Printf("Promotion: %s", policy)
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Stream: ws://%s/api/v1/games/:id/stream", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Settle running transitions before the service drops its games
	if err := proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	// Last, once storage is closed, so a waiting instance starts on a quiet database
	if err := pid.Release(); err != nil {
		log.Printf("PID file release error: %v", err)
	}

	log.Println("Server exited")
}
