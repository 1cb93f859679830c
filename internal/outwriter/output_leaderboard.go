package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteLeaderboard outputs a leaderboard, dispatching based on the output format configured.
func WriteLeaderboard(board schema.Leaderboard, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, board)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, entryCSVHeader, func(cw *csv.Writer) error {
				return writeEntriesCSV(cw, board.Entries, fmtFloat, intFmt)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "%s: %s\n", board.Title, board.Description); err != nil {
				return err
			}
			if err := writeEntriesTable(w, board.Entries, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Showing %d contributors\n", board.Count)
			return err
		}, "Wrote table")
	}
}

// WriteRanking outputs one ranking page, dispatching based on the output format configured.
func WriteRanking(page schema.RankingPage, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, page)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, entryCSVHeader, func(cw *csv.Writer) error {
				return writeEntriesCSV(cw, page.Entries, fmtFloat, intFmt)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			scope := "all repositories"
			if page.Repository != "" {
				scope = page.Repository
			}
			if _, err := fmt.Fprintf(w, "%s (%s, %s)\n", page.Title, page.Period, scope); err != nil {
				return err
			}
			if err := writeEntriesTable(w, page.Entries, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			p := page.Pagination
			_, err := fmt.Fprintf(w, "Page %d of %d (%d contributors)\n", p.Page, max(p.TotalPages, 1), p.Total)
			return err
		}, "Wrote table")
	}
}

var entryCSVHeader = []string{
	"rank",
	"username",
	"name",
	"score",
	"commits",
	"prs_opened",
	"prs_merged",
	"reviews",
	"comments",
	"issues_opened",
	"rising_star_index",
	"status",
}

// writeEntriesTable generates and writes the human-readable leaderboard table.
func writeEntriesTable(w io.Writer, entries []schema.LeaderboardEntry, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Contributor", "Score", "Commits", "PRs", "Merged", "Reviews", "Comments", "Issues", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			contract.TruncateText(contributorLabel(e.Username, e.Name), nameWidth),
			fmtFloat(e.Score),
			fmt.Sprintf(intFmt, e.Commits),
			fmt.Sprintf(intFmt, e.PRsOpened),
			fmt.Sprintf(intFmt, e.PRsMerged),
			fmt.Sprintf(intFmt, e.Reviews),
			fmt.Sprintf(intFmt, e.Comments),
			fmt.Sprintf(intFmt, e.IssuesOpened),
			contract.GetColorStatus(e.ActivityStatus),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeEntriesCSV writes leaderboard entries in CSV format.
func writeEntriesCSV(w *csv.Writer, entries []schema.LeaderboardEntry, fmtFloat func(float64) string, intFmt string) error {
	for _, e := range entries {
		rec := []string{
			strconv.Itoa(e.Rank),
			e.Username,
			e.Name,
			fmtFloat(e.Score),
			fmt.Sprintf(intFmt, e.Commits),
			fmt.Sprintf(intFmt, e.PRsOpened),
			fmt.Sprintf(intFmt, e.PRsMerged),
			fmt.Sprintf(intFmt, e.Reviews),
			fmt.Sprintf(intFmt, e.Comments),
			fmt.Sprintf(intFmt, e.IssuesOpened),
			strconv.FormatFloat(e.RisingStarIndex, 'f', -1, 64),
			string(e.ActivityStatus),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// contributorLabel shows the username with a short display name when the profile has one.
func contributorLabel(username, name string) string {
	if name == "" {
		return username
	}
	return fmt.Sprintf("%s (%s)", username, schema.DisplayName(name, username))
}
