// Package main times the contriboard read commands against an existing store.
// Each command runs several times; the first successful run counts as cold
// and the rest are averaged as warm. Results are written as CSV.
//
// Prerequisites:
// - contriboard binary installed and available in PATH
// - A populated store (run `contriboard sync` first)
//
// Usage: go run benchmark/main.go [db-connect]
//
//	db-connect: SQLite file path of the store to read (default ~/.contriboard.db)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the timing of one command.
type BenchmarkResult struct {
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DBConnect string
	Timeout   time.Duration
	Runs      int
	Commands  [][]string
}

func main() {
	config := BenchmarkConfig{
		Timeout: 2 * time.Minute,
		Runs:    5,
		Commands: [][]string{
			{"leaderboard", "--board", "overall"},
			{"leaderboard", "--board", "rising-stars"},
			{"leaderboard", "--board", "mentors"},
			{"leaderboard", "--board", "commits", "--period", "weekly"},
			{"leaderboard", "--board", "reviews", "--period", "monthly"},
			{"status"},
		},
	}
	if len(os.Args) == 2 {
		config.DBConnect = os.Args[1]
	}

	if _, err := exec.LookPath("contriboard"); err != nil {
		fmt.Printf("Prerequisites check failed: contriboard binary not found in PATH\n")
		os.Exit(1)
	}

	var results []BenchmarkResult
	for _, args := range config.Commands {
		results = append(results, runBenchmark(config, args))
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-45s: Cold: %s, Warm: %s\n", r.Command, r.ColdTime, r.WarmTime)
	}
}

// runBenchmark executes one command config.Runs times and summarizes the timings.
func runBenchmark(config BenchmarkConfig, args []string) BenchmarkResult {
	label := strings.Join(args, " ")
	fmt.Printf("Running %s (%d runs)\n", label, config.Runs)

	full := append([]string{}, args...)
	full = append(full, "--output", "json", "--log-level", "error")
	if config.DBConnect != "" {
		full = append(full, "--db-connect", config.DBConnect)
	}

	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("contriboard", full...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	result := BenchmarkResult{Command: label, ColdTime: "FAILED", WarmTime: "FAILED"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	return result
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/contriboard_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}
