package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/contriboard/schema"
)

// Color variables for console output.
var (
	ActiveColor     = color.New(color.FgGreen, color.Bold) // ActiveColor marks recently active contributors.
	OccasionalColor = color.New(color.FgYellow)            // OccasionalColor marks contributors seen within the occasional window.
	DormantColor    = color.New(color.FgHiBlack)           // DormantColor marks stale contributors.
	FailedColor     = color.New(color.FgRed, color.Bold)   // FailedColor marks failed syncs.
	RunningColor    = color.New(color.FgCyan)              // RunningColor marks in-flight syncs.
	warnPrefix      = color.New(color.FgYellow, color.Bold)
	fatalPrefix     = color.New(color.FgRed, color.Bold)
)

// GetColorStatus returns a colored activity status for console output (table).
func GetColorStatus(status schema.ActivityStatus) string {
	text := string(status)
	switch status {
	case schema.ActiveStatus:
		return ActiveColor.Sprint(text)
	case schema.OccasionalStatus:
		return OccasionalColor.Sprint(text)
	default:
		return DormantColor.Sprint(text)
	}
}

// GetColorSyncStatus returns a colored sync status for console output (table).
func GetColorSyncStatus(status schema.SyncStatus) string {
	text := string(status)
	switch status {
	case schema.SyncFailed:
		return FailedColor.Sprint(text)
	case schema.SyncRunning:
		return RunningColor.Sprint(text)
	default:
		return ActiveColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", fatalPrefix.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", warnPrefix.Sprint("Warn"), msg, err)
}

// GetDBFilePath returns the path to the default SQLite DB file.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".contriboard.db"
	}
	return filepath.Join(homeDir, ".contriboard.db")
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
