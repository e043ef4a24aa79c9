package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/driftlake/logship"
)

const (
	totalBursts    = 100
	logsPerBurst   = 500
	maxMessageSize = 2000
	numWorkers     = 100
)

var levels = []int64{
	logship.LevelDebug,
	logship.LevelInfo,
	logship.LevelWarn,
	logship.LevelError,
}

var shipper *logship.Shipper

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(burstID int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.Intn(len(levels))]
		msgSize := rand.Intn(maxMessageSize) + 10
		shipper.LogAttributes(level, generateRandomMessage(msgSize), map[string]any{
			"wkr": burstID % numWorkers,
			"bst": burstID,
			"seq": i,
		})
	}
}

// worker goroutine function
func worker(burstChan chan int, wg *sync.WaitGroup, completedBursts *atomic.Int64) {
	defer wg.Done()
	for burstID := range burstChan {
		logBurst(burstID)
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}
}

func main() {
	fmt.Println("--- Shipper Stress Test ---")

	logsDir := "./stress_logdata"
	_ = os.RemoveAll(logsDir) // Clean previous run's data before starting

	var err error
	shipper, err = logship.NewBuilder().
		Directory(logsDir).
		Level(logship.LevelDebug).
		BufferSize(500).
		PayloadBudgetBytes(256 * 1024). // Force frequent rotation
		MaxPayloadBytes(1024 * 1024).
		MinPayloadBytes(0).
		HarvestPeriodS(2).
		InternalErrorsToStderr(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build shipper: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Shipper initialized. Log data in: %s\n", logsDir)

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n",
		numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Watch rotation and rollup activity in the data directory.")
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	burstChan := make(chan int, numWorkers)
	var wg sync.WaitGroup
	completedBursts := atomic.Int64{}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(burstChan, &wg, &completedBursts)
	}

	// --- Run Test ---
	startTime := time.Now()
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			goto endLoop
		}
	}
endLoop:
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*logsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	// --- Shutdown ---
	fmt.Println("Shutting down shipper (allowing up to 10s)...")
	if err := shipper.Shutdown(10 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Shipper shutdown error: %v\n", err)
	} else {
		fmt.Println("Shipper shutdown complete.")
	}

	r := shipper.Reporter
	fmt.Printf("Rotations: %d, Rollups: %d, Deletions: %d, Submitted: %d, Dropped: %d\n",
		r.TotalRotations.Load(), r.TotalRollups.Load(), r.TotalDeletions.Load(),
		shipper.Logger.TotalSubmitted(), shipper.Logger.DroppedCount())

	fmt.Printf("Check files in '%s'.\n", logsDir)
}
