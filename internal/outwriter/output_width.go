package outwriter

import (
	"os"

	"github.com/huangsam/contriboard/internal/contract"
	"golang.org/x/term"
)

// getMaxTableNameWidth calculates the maximum width for contributor names in
// table output based on terminal width and the fixed leaderboard columns.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Username + Score + six count columns + Status, with borders/padding
	baseWidth := 95

	available := termWidth - baseWidth
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}
