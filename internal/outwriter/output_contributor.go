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

// WriteContributor outputs a contributor, dispatching based on the output format configured.
// CSV output lists one row per repository.
func WriteContributor(detail schema.ContributorDetail, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, detail)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, repoStatsCSVHeader, func(cw *csv.Writer) error {
				return writeRepoStatsCSV(cw, detail.Contributor, fmtFloat, intFmt)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContributorText(w, detail, fmtFloat, intFmt)
		}, "Wrote table")
	}
}

var repoStatsCSVHeader = []string{
	"username",
	"repository",
	"score",
	"commits",
	"pull_requests",
	"prs_merged",
	"reviews",
	"comments",
	"issues_opened",
	"activities",
	"last_activity_at",
}

func writeContributorText(w io.Writer, detail schema.ContributorDetail, fmtFloat func(float64) string, intFmt string) error {
	c := detail.Contributor
	rank := "unranked"
	if detail.Rank > 0 {
		rank = "#" + strconv.Itoa(detail.Rank)
	}
	lines := []string{
		fmt.Sprintf("%s  %s  %s", contributorLabel(c.Username, c.Profile.Name), rank, contract.GetColorStatus(c.ActivityStatus)),
		fmt.Sprintf("Score: %s  Activities: %d  Rising star: %s", fmtFloat(c.Totals.ActivityScore), c.Totals.Activities, fmtFloat(c.RisingStarIndex)),
		fmt.Sprintf("First activity: %s  Last activity: %s", formatTime(c.FirstActivityAt), formatTime(c.LastActivityAt)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "Score", "Commits", "PRs", "Merged", "Reviews", "Comments", "Issues", "Last Activity"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, 0, len(c.RepositoryStats))
	for _, rs := range c.RepositoryStats {
		data = append(data, []string{
			rs.Repository,
			fmtFloat(rs.Score),
			fmt.Sprintf(intFmt, rs.Commits),
			fmt.Sprintf(intFmt, rs.PullRequests),
			fmt.Sprintf(intFmt, rs.PRsMerged),
			fmt.Sprintf(intFmt, rs.Reviews),
			fmt.Sprintf(intFmt, rs.Comments),
			fmt.Sprintf(intFmt, rs.IssuesOpened),
			formatTime(rs.LastActivityAt),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d snapshots on record\n", len(detail.Snapshots))
	return err
}

func writeRepoStatsCSV(w *csv.Writer, c schema.Contributor, fmtFloat func(float64) string, intFmt string) error {
	for _, rs := range c.RepositoryStats {
		rec := []string{
			c.Username,
			rs.Repository,
			fmtFloat(rs.Score),
			fmt.Sprintf(intFmt, rs.Commits),
			fmt.Sprintf(intFmt, rs.PullRequests),
			fmt.Sprintf(intFmt, rs.PRsMerged),
			fmt.Sprintf(intFmt, rs.Reviews),
			fmt.Sprintf(intFmt, rs.Comments),
			fmt.Sprintf(intFmt, rs.IssuesOpened),
			fmt.Sprintf(intFmt, rs.Activities),
			formatTime(rs.LastActivityAt),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
