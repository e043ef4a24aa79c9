package main

import (
	"fmt"
	"os"
	"time"

	"github.com/driftlake/logship"
)

const configFile = "simple_config.toml"

// Example TOML content
var tomlContent = `
# Example simple_config.toml
[logship]
  level = -4 # Debug
  directory = "./simple_logdata"
  buffer_size = 1024
  max_payload_bytes = 1048576
  min_payload_bytes = 0
  payload_budget_bytes = 524288
  report_ttl_hrs = 72.0
  harvest_period_s = 5
  flush_timeout_ms = 1000
  internal_errors_to_stderr = true
`

func main() {
	fmt.Println("--- Simple Shipper Example ---")

	// --- Setup Config ---
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created dummy config file: %s\n", configFile)

	cfg, err := logship.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Build Shipper ---
	// No collector URL configured, so finished archives stay in the directory
	shipper, err := logship.NewBuilder().
		Directory(cfg.Directory).
		Level(cfg.Level).
		HarvestPeriodS(cfg.HarvestPeriodS).
		MinPayloadBytes(cfg.MinPayloadBytes).
		InternalErrorsToStderr(cfg.InternalErrorsToStderr).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build shipper: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Shipper initialized.")

	// --- Logging ---
	shipper.Log(logship.LevelDebug, "This is a debug message.")
	shipper.Log(logship.LevelInfo, "Application starting...")
	shipper.LogAttributes(logship.LevelWarn, "Potential issue detected.", map[string]any{"threshold": 0.95})
	shipper.LogAttributes(logship.LevelError, "An error occurred!", map[string]any{"code": 500})

	if err := shipper.Flush(time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Flush error: %v\n", err)
	}

	// Let a harvest cycle run so the working file is rotated and rolled up
	fmt.Println("Waiting for one harvest cycle...")
	time.Sleep(6 * time.Second)

	// --- Shutdown ---
	fmt.Println("Shutting down shipper...")
	if err := shipper.Shutdown(2 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Shipper shutdown error: %v\n", err)
	} else {
		fmt.Println("Shipper shutdown complete.")
	}

	// --- Show the resulting directory state ---
	files, err := shipper.Reporter.CachedFiles(logship.StateAll)
	if err == nil {
		fmt.Println("Log data store contents:")
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
	}

	fmt.Println("--- Example Finished ---")
	fmt.Printf("Check files in './simple_logdata' and the config '%s'.\n", configFile)
}
